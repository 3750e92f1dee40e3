package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/brightclass/results-api/internal/models"
)

// StudentRepository manages mutable working student records. Subject
// lists and score maps live in JSONB columns; this repository is the only
// encode/decode boundary for them.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

type studentRow struct {
	SchoolID       string    `db:"school_id"`
	StudentID      string    `db:"student_id"`
	FirstName      string    `db:"firstname"`
	ClassName      string    `db:"classname"`
	FirstYearClass string    `db:"first_year_class"`
	Term           string    `db:"term"`
	Stream         string    `db:"stream"`
	SubjectCount   int       `db:"number_of_subject"`
	Subjects       []byte    `db:"subjects"`
	Scores         []byte    `db:"scores"`
	TeacherComment string    `db:"teacher_comment"`
	Promoted       bool      `db:"promoted"`
	UpdatedAt      time.Time `db:"updated_at"`
}

const studentColumns = `school_id, student_id, firstname, classname,
        COALESCE(first_year_class, '') AS first_year_class, term,
        COALESCE(stream, 'N/A') AS stream, number_of_subject, subjects, scores,
        COALESCE(teacher_comment, '') AS teacher_comment, promoted, updated_at`

func decodeStudent(row studentRow) (models.StudentRecord, error) {
	record := models.StudentRecord{
		SchoolID:       row.SchoolID,
		StudentID:      row.StudentID,
		FirstName:      row.FirstName,
		ClassName:      row.ClassName,
		FirstYearClass: row.FirstYearClass,
		Term:           row.Term,
		Stream:         row.Stream,
		SubjectCount:   row.SubjectCount,
		TeacherComment: row.TeacherComment,
		Promoted:       row.Promoted,
		UpdatedAt:      row.UpdatedAt,
	}
	if len(row.Subjects) > 0 {
		if err := json.Unmarshal(row.Subjects, &record.Subjects); err != nil {
			return record, fmt.Errorf("decode subjects for %s: %w", row.StudentID, err)
		}
	}
	record.Scores = models.ScoreMap{}
	if len(row.Scores) > 0 {
		if err := json.Unmarshal(row.Scores, &record.Scores); err != nil {
			return record, fmt.Errorf("decode scores for %s: %w", row.StudentID, err)
		}
	}
	return record, nil
}

// List returns working records for a school, optionally filtered by class
// and term.
func (r *StudentRepository) List(ctx context.Context, schoolID, classFilter, termFilter string) ([]models.StudentRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE school_id = $1", studentColumns)
	args := []interface{}{schoolID}
	if classFilter != "" {
		query += fmt.Sprintf(" AND LOWER(classname) = LOWER($%d)", len(args)+1)
		args = append(args, classFilter)
	}
	if termFilter != "" {
		query += fmt.Sprintf(" AND term = $%d", len(args)+1)
		args = append(args, termFilter)
	}
	query += " ORDER BY firstname, student_id"

	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	records := make([]models.StudentRecord, 0, len(rows))
	for _, row := range rows {
		record, err := decodeStudent(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Find returns one student's working record, or nil when absent.
func (r *StudentRepository) Find(ctx context.Context, schoolID, studentID string) (*models.StudentRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE school_id = $1 AND student_id = $2 LIMIT 1", studentColumns)
	var row studentRow
	if err := r.db.GetContext(ctx, &row, query, schoolID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	record, err := decodeStudent(row)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert writes a working record keyed by (school, student).
func (r *StudentRepository) Upsert(ctx context.Context, record *models.StudentRecord) error {
	subjects, err := json.Marshal(record.Subjects)
	if err != nil {
		return fmt.Errorf("encode subjects: %w", err)
	}
	if record.Scores == nil {
		record.Scores = models.ScoreMap{}
	}
	scores, err := json.Marshal(record.Scores)
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}
	record.SubjectCount = len(record.Subjects)
	record.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO students
        (school_id, student_id, firstname, classname, first_year_class, term, stream, number_of_subject, subjects, scores, teacher_comment, promoted, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (school_id, student_id) DO UPDATE SET
          firstname = EXCLUDED.firstname,
          classname = EXCLUDED.classname,
          first_year_class = EXCLUDED.first_year_class,
          term = EXCLUDED.term,
          stream = EXCLUDED.stream,
          number_of_subject = EXCLUDED.number_of_subject,
          subjects = EXCLUDED.subjects,
          scores = EXCLUDED.scores,
          teacher_comment = EXCLUDED.teacher_comment,
          promoted = EXCLUDED.promoted,
          updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query,
		record.SchoolID, record.StudentID, record.FirstName, record.ClassName,
		record.FirstYearClass, record.Term, record.Stream, record.SubjectCount,
		subjects, scores, record.TeacherComment, record.Promoted, record.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}
	return nil
}

// Delete removes a student's working record.
func (r *StudentRepository) Delete(ctx context.Context, schoolID, studentID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE school_id = $1 AND student_id = $2", schoolID, studentID); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
