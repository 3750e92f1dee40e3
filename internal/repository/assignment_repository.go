package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/brightclass/results-api/internal/models"
)

// AssignmentRepository manages teacher-to-class assignments per term.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `school_id, teacher_id, COALESCE(teacher_name, '') AS teacher_name,
        classname, term, COALESCE(academic_year, '') AS academic_year, created_at`

// Upsert inserts an assignment if the class is not already assigned for
// that term. An existing assignment wins: DO NOTHING keeps the first
// teacher, matching rollover's insert-if-missing behavior.
func (r *AssignmentRepository) Upsert(ctx context.Context, assignment models.ClassAssignment) error {
	const query = `INSERT INTO class_assignments
        (school_id, teacher_id, teacher_name, classname, term, academic_year, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        ON CONFLICT (school_id, classname, term, academic_year) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query,
		assignment.SchoolID, assignment.TeacherID, assignment.TeacherName,
		assignment.ClassName, assignment.Term, assignment.AcademicYear,
	); err != nil {
		return fmt.Errorf("upsert class assignment: %w", err)
	}
	return nil
}

// ListByTerm returns assignments for one term, optionally narrowed to a
// single teacher.
func (r *AssignmentRepository) ListByTerm(ctx context.Context, schoolID, term, academicYear, teacherID string) ([]models.ClassAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_assignments
        WHERE school_id = $1 AND term = $2 AND COALESCE(academic_year, '') = $3`, assignmentColumns)
	args := []interface{}{schoolID, term, academicYear}
	if teacherID != "" {
		query += " AND teacher_id = $4"
		args = append(args, teacherID)
	}
	query += " ORDER BY classname ASC"

	var assignments []models.ClassAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list class assignments: %w", err)
	}
	return assignments, nil
}

// Remove deletes one assignment.
func (r *AssignmentRepository) Remove(ctx context.Context, schoolID, className, term, academicYear string) error {
	const query = `DELETE FROM class_assignments
        WHERE school_id = $1 AND classname = $2 AND term = $3 AND COALESCE(academic_year, '') = $4`
	if _, err := r.db.ExecContext(ctx, query, schoolID, className, term, academicYear); err != nil {
		return fmt.Errorf("remove class assignment: %w", err)
	}
	return nil
}

// HasClass reports whether a teacher is assigned to a class for a term.
func (r *AssignmentRepository) HasClass(ctx context.Context, schoolID, teacherID, className, term, academicYear string) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM class_assignments
        WHERE school_id = $1 AND teacher_id = $2 AND LOWER(classname) = LOWER($3)
          AND term = $4 AND COALESCE(academic_year, '') = $5)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, schoolID, teacherID, className, term, academicYear); err != nil {
		return false, fmt.Errorf("check class assignment: %w", err)
	}
	return exists, nil
}
