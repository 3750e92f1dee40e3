package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/brightclass/results-api/internal/models"
	appErrors "github.com/brightclass/results-api/pkg/errors"
)

// PublicationRepository persists publication gates and immutable result
// snapshots.
type PublicationRepository struct {
	db *sqlx.DB
}

// NewPublicationRepository constructs repository.
func NewPublicationRepository(db *sqlx.DB) *PublicationRepository {
	return &PublicationRepository{db: db}
}

type snapshotRow struct {
	SchoolID       string    `db:"school_id"`
	StudentID      string    `db:"student_id"`
	FirstName      string    `db:"firstname"`
	ClassName      string    `db:"classname"`
	AcademicYear   string    `db:"academic_year"`
	Term           string    `db:"term"`
	Stream         string    `db:"stream"`
	SubjectCount   int       `db:"number_of_subject"`
	Subjects       []byte    `db:"subjects"`
	Scores         []byte    `db:"scores"`
	TeacherComment string    `db:"teacher_comment"`
	AverageMarks   float64   `db:"average_marks"`
	Grade          string    `db:"grade"`
	Status         string    `db:"status"`
	PublishedAt    time.Time `db:"published_at"`
}

const snapshotColumns = `school_id, student_id, firstname, classname,
        COALESCE(academic_year, '') AS academic_year, term,
        COALESCE(stream, 'N/A') AS stream, number_of_subject, subjects, scores,
        COALESCE(teacher_comment, '') AS teacher_comment, average_marks, grade, status, published_at`

func decodeSnapshot(row snapshotRow) (models.PublishedSnapshot, error) {
	snapshot := models.PublishedSnapshot{
		SchoolID:       row.SchoolID,
		StudentID:      row.StudentID,
		FirstName:      row.FirstName,
		ClassName:      row.ClassName,
		AcademicYear:   row.AcademicYear,
		Term:           row.Term,
		Stream:         row.Stream,
		SubjectCount:   row.SubjectCount,
		TeacherComment: row.TeacherComment,
		AverageMarks:   row.AverageMarks,
		Grade:          row.Grade,
		Status:         row.Status,
		PublishedAt:    row.PublishedAt,
	}
	if len(row.Subjects) > 0 {
		if err := json.Unmarshal(row.Subjects, &snapshot.Subjects); err != nil {
			return snapshot, fmt.Errorf("decode snapshot subjects for %s: %w", row.StudentID, err)
		}
	}
	snapshot.Scores = models.ScoreMap{}
	if len(row.Scores) > 0 {
		if err := json.Unmarshal(row.Scores, &snapshot.Scores); err != nil {
			return snapshot, fmt.Errorf("decode snapshot scores for %s: %w", row.StudentID, err)
		}
	}
	return snapshot, nil
}

// GetGate returns the publication gate for a class+term+year, or nil when
// no publish was ever attempted for that key.
func (r *PublicationRepository) GetGate(ctx context.Context, schoolID, className, term, academicYear string) (*models.PublicationGate, error) {
	const query = `SELECT school_id, classname, term, COALESCE(academic_year, '') AS academic_year,
            COALESCE(teacher_id, '') AS teacher_id, COALESCE(teacher_name, '') AS teacher_name,
            COALESCE(principal_name, '') AS principal_name, is_published, published_at, updated_at
        FROM result_publications
        WHERE school_id = $1 AND classname = $2 AND term = $3 AND COALESCE(academic_year, '') = $4
        LIMIT 1`
	var gate models.PublicationGate
	if err := r.db.GetContext(ctx, &gate, query, schoolID, className, term, academicYear); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get publication gate: %w", err)
	}
	return &gate, nil
}

const upsertGateQuery = `INSERT INTO result_publications
        (school_id, classname, term, academic_year, teacher_id, teacher_name, principal_name, is_published, published_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
        ON CONFLICT (school_id, classname, term, academic_year) DO UPDATE SET
          teacher_id = EXCLUDED.teacher_id,
          teacher_name = EXCLUDED.teacher_name,
          principal_name = EXCLUDED.principal_name,
          is_published = EXCLUDED.is_published,
          published_at = EXCLUDED.published_at,
          updated_at = NOW()`

// SetPublished upserts the gate row. Saving a working score calls this
// with IsPublished=false, which is the Published -> Draft transition.
func (r *PublicationRepository) SetPublished(ctx context.Context, gate models.PublicationGate) error {
	var publishedAt *time.Time
	if gate.IsPublished {
		now := time.Now().UTC()
		publishedAt = &now
	}
	if _, err := r.db.ExecContext(ctx, upsertGateQuery,
		gate.SchoolID, gate.ClassName, gate.Term, gate.AcademicYear,
		gate.TeacherID, gate.TeacherName, gate.PrincipalName, gate.IsPublished, publishedAt,
	); err != nil {
		return fmt.Errorf("set publication gate: %w", err)
	}
	return nil
}

const upsertSnapshotQuery = `INSERT INTO published_student_results
        (school_id, student_id, firstname, classname, academic_year, term, stream, number_of_subject, subjects, scores, teacher_comment, average_marks, grade, status, published_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        ON CONFLICT (school_id, student_id, academic_year, term) DO UPDATE SET
          firstname = EXCLUDED.firstname,
          classname = EXCLUDED.classname,
          stream = EXCLUDED.stream,
          number_of_subject = EXCLUDED.number_of_subject,
          subjects = EXCLUDED.subjects,
          scores = EXCLUDED.scores,
          teacher_comment = EXCLUDED.teacher_comment,
          average_marks = EXCLUDED.average_marks,
          grade = EXCLUDED.grade,
          status = EXCLUDED.status,
          published_at = EXCLUDED.published_at`

// PublishClass writes all student snapshots and flips the gate in one
// transaction. The gate row is locked FOR UPDATE first so concurrent
// publishers of the same key serialize: the loser of the race observes
// is_published=true after the lock is granted and aborts without writing.
// Within a single winner the semantics are last-writer-wins upserts.
func (r *PublicationRepository) PublishClass(ctx context.Context, gate models.PublicationGate, snapshots []models.PublishedSnapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin publish: %w", err)
	}

	var published bool
	err = tx.GetContext(ctx, &published,
		`SELECT is_published FROM result_publications
         WHERE school_id = $1 AND classname = $2 AND term = $3 AND COALESCE(academic_year, '') = $4
         FOR UPDATE`,
		gate.SchoolID, gate.ClassName, gate.Term, gate.AcademicYear)
	if err != nil && err != sql.ErrNoRows {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("lock publication gate: %w", err)
	}
	if published {
		tx.Rollback() //nolint:errcheck
		return appErrors.ErrAlreadyPublished
	}

	publishedAt := time.Now().UTC()
	for i := range snapshots {
		snapshot := &snapshots[i]
		if snapshot.PublishedAt.IsZero() {
			snapshot.PublishedAt = publishedAt
		}
		subjects, err := json.Marshal(snapshot.Subjects)
		if err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("encode snapshot subjects: %w", err)
		}
		scores, err := json.Marshal(snapshot.Scores)
		if err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("encode snapshot scores: %w", err)
		}
		if _, err := tx.ExecContext(ctx, upsertSnapshotQuery,
			snapshot.SchoolID, snapshot.StudentID, snapshot.FirstName, snapshot.ClassName,
			snapshot.AcademicYear, snapshot.Term, snapshot.Stream, snapshot.SubjectCount,
			subjects, scores, snapshot.TeacherComment, snapshot.AverageMarks,
			snapshot.Grade, snapshot.Status, snapshot.PublishedAt,
		); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("upsert snapshot for %s: %w", snapshot.StudentID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, upsertGateQuery,
		gate.SchoolID, gate.ClassName, gate.Term, gate.AcademicYear,
		gate.TeacherID, gate.TeacherName, gate.PrincipalName, true, publishedAt,
	); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("flip publication gate: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit publish: %w", err)
	}
	return nil
}

// LoadSnapshot returns the newest snapshot for a student+term, optionally
// narrowed by academic year and class, or nil when none exists.
func (r *PublicationRepository) LoadSnapshot(ctx context.Context, schoolID, studentID, term, academicYear, className string) (*models.PublishedSnapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM published_student_results
        WHERE school_id = $1 AND student_id = $2 AND term = $3`, snapshotColumns)
	args := []interface{}{schoolID, studentID, term}
	if academicYear != "" {
		query += fmt.Sprintf(" AND COALESCE(academic_year, '') = $%d", len(args)+1)
		args = append(args, academicYear)
	}
	if className != "" {
		query += fmt.Sprintf(" AND LOWER(classname) = LOWER($%d)", len(args)+1)
		args = append(args, className)
	}
	query += " ORDER BY published_at DESC LIMIT 1"

	var row snapshotRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	snapshot, err := decodeSnapshot(row)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// LoadClassSnapshots returns all snapshots for a class+term, used for
// historical ranking reconstruction. Never touches working records.
func (r *PublicationRepository) LoadClassSnapshots(ctx context.Context, schoolID, className, term, academicYear string) ([]models.PublishedSnapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM published_student_results
        WHERE school_id = $1 AND classname = $2 AND term = $3`, snapshotColumns)
	args := []interface{}{schoolID, className, term}
	if academicYear != "" {
		query += fmt.Sprintf(" AND COALESCE(academic_year, '') = $%d", len(args)+1)
		args = append(args, academicYear)
	}

	var rows []snapshotRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load class snapshots: %w", err)
	}
	snapshots := make([]models.PublishedSnapshot, 0, len(rows))
	for _, row := range rows {
		snapshot, err := decodeSnapshot(row)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

// PublishedTermsForStudent lists the distinct published (year, term,
// class) entries for one student, oldest first.
func (r *PublicationRepository) PublishedTermsForStudent(ctx context.Context, schoolID, studentID, className string) ([]models.PublishedTerm, error) {
	query := `SELECT COALESCE(academic_year, '') AS academic_year, term, classname
        FROM published_student_results
        WHERE school_id = $1 AND student_id = $2`
	args := []interface{}{schoolID, studentID}
	if className != "" {
		query += " AND LOWER(classname) = LOWER($3)"
		args = append(args, className)
	}
	query += " ORDER BY published_at ASC"

	var rows []struct {
		AcademicYear string `db:"academic_year"`
		Term         string `db:"term"`
		ClassName    string `db:"classname"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("published terms: %w", err)
	}

	seen := make(map[string]bool, len(rows))
	terms := make([]models.PublishedTerm, 0, len(rows))
	for _, row := range rows {
		token := models.TermToken(row.AcademicYear, row.Term)
		key := token + "|" + row.ClassName
		if seen[key] {
			continue
		}
		seen[key] = true
		label := row.Term
		if row.AcademicYear != "" {
			label = fmt.Sprintf("%s (%s)", row.Term, row.AcademicYear)
		}
		terms = append(terms, models.PublishedTerm{
			AcademicYear: row.AcademicYear,
			Term:         row.Term,
			ClassName:    row.ClassName,
			Token:        token,
			Label:        label,
		})
	}
	return terms, nil
}

// GatesForTerm returns all gate rows for a school+term keyed by class,
// used by the admin publication dashboard.
func (r *PublicationRepository) GatesForTerm(ctx context.Context, schoolID, term, academicYear string) (map[string]models.PublicationGate, error) {
	const query = `SELECT school_id, classname, term, COALESCE(academic_year, '') AS academic_year,
            COALESCE(teacher_id, '') AS teacher_id, COALESCE(teacher_name, '') AS teacher_name,
            COALESCE(principal_name, '') AS principal_name, is_published, published_at, updated_at
        FROM result_publications
        WHERE school_id = $1 AND term = $2 AND COALESCE(academic_year, '') = $3`
	var gates []models.PublicationGate
	if err := r.db.SelectContext(ctx, &gates, query, schoolID, term, academicYear); err != nil {
		return nil, fmt.Errorf("gates for term: %w", err)
	}
	result := make(map[string]models.PublicationGate, len(gates))
	for _, gate := range gates {
		result[gate.ClassName] = gate
	}
	return result, nil
}
