package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/brightclass/results-api/internal/models"
)

// RolloverRepository performs the term-transition writes: carrying class
// assignments forward and moving working records into the new term.
type RolloverRepository struct {
	db *sqlx.DB
}

// NewRolloverRepository constructs repository.
func NewRolloverRepository(db *sqlx.DB) *RolloverRepository {
	return &RolloverRepository{db: db}
}

// RolloverResult reports what a term transition touched.
type RolloverResult struct {
	AssignmentsCopied int `json:"assignments_copied"`
	StudentsMoved     int `json:"students_moved"`
}

// Rollover moves a school from one (term, year) to the next in a single
// transaction. Assignments are copied insert-if-missing so reruns and
// manual pre-assignments are preserved; working records keep identity and
// subject lists but drop scores and comments. Graduated students stay in
// their final term. Published snapshots are never touched.
func (r *RolloverRepository) Rollover(ctx context.Context, schoolID, fromTerm, fromYear, toTerm, toYear string) (*RolloverResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin rollover: %w", err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO class_assignments
            (school_id, teacher_id, teacher_name, classname, term, academic_year, created_at)
        SELECT school_id, teacher_id, teacher_name, classname, $4, $5, NOW()
        FROM class_assignments
        WHERE school_id = $1 AND term = $2 AND COALESCE(academic_year, '') = $3
        ON CONFLICT (school_id, classname, term, academic_year) DO NOTHING`,
		schoolID, fromTerm, fromYear, toTerm, toYear)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("copy assignments: %w", err)
	}
	assignmentsCopied, _ := res.RowsAffected()

	emptyScores, err := json.Marshal(models.ScoreMap{})
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("encode empty scores: %w", err)
	}
	res, err = tx.ExecContext(ctx, `UPDATE students SET
            term = $3,
            scores = $4,
            teacher_comment = '',
            promoted = FALSE,
            updated_at = NOW()
        WHERE school_id = $1 AND term = $2 AND UPPER(classname) <> UPPER($5)`,
		schoolID, fromTerm, toTerm, emptyScores, models.ClassGraduated)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("move students: %w", err)
	}
	studentsMoved, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit rollover: %w", err)
	}
	return &RolloverResult{
		AssignmentsCopied: int(assignmentsCopied),
		StudentsMoved:     int(studentsMoved),
	}, nil
}

// PromotionUpdate is one resolved class-transition write. Remove deletes
// the working record; otherwise the record moves to ClassName with the
// rebuilt subject list. Promoted is false for students repeating their
// class.
type PromotionUpdate struct {
	StudentID string
	Remove    bool
	ClassName string
	Stream    string
	Subjects  []string
	Promoted  bool
}

// ApplyPromotions writes a batch of promotion decisions atomically.
// Either every student in the batch transitions or none do. Every
// transition clears the score map; the new class starts from a clean
// sheet while published snapshots keep the history.
func (r *RolloverRepository) ApplyPromotions(ctx context.Context, schoolID string, updates []PromotionUpdate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin promotions: %w", err)
	}

	emptyScores, err := json.Marshal(models.ScoreMap{})
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("encode empty scores: %w", err)
	}
	for _, update := range updates {
		if update.Remove {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM students WHERE school_id = $1 AND student_id = $2",
				schoolID, update.StudentID,
			); err != nil {
				tx.Rollback() //nolint:errcheck
				return fmt.Errorf("remove student %s: %w", update.StudentID, err)
			}
			continue
		}
		subjects, err := json.Marshal(update.Subjects)
		if err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("encode subjects for %s: %w", update.StudentID, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE students SET
                classname = $3,
                stream = $4,
                subjects = $5,
                number_of_subject = $6,
                scores = $7,
                promoted = $8,
                updated_at = NOW()
            WHERE school_id = $1 AND student_id = $2`,
			schoolID, update.StudentID, update.ClassName, update.Stream,
			subjects, len(update.Subjects), emptyScores, update.Promoted,
		); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("promote student %s: %w", update.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit promotions: %w", err)
	}
	return nil
}
