package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/brightclass/results-api/internal/models"
)

// ResultViewRepository records first/last view timestamps for published
// results. Failures here never affect the publish or read path outcome.
type ResultViewRepository struct {
	db *sqlx.DB
}

// NewResultViewRepository constructs repository.
func NewResultViewRepository(db *sqlx.DB) *ResultViewRepository {
	return &ResultViewRepository{db: db}
}

// RecordView upserts a view row, bumping the counter and last-viewed
// timestamp on repeat views.
func (r *ResultViewRepository) RecordView(ctx context.Context, schoolID, studentID, term, academicYear string) error {
	const query = `INSERT INTO result_views
        (school_id, student_id, term, academic_year, first_viewed_at, last_viewed_at, view_count)
        VALUES ($1, $2, $3, $4, NOW(), NOW(), 1)
        ON CONFLICT (school_id, student_id, term, academic_year) DO UPDATE SET
          last_viewed_at = NOW(),
          view_count = result_views.view_count + 1`
	if _, err := r.db.ExecContext(ctx, query, schoolID, studentID, term, academicYear); err != nil {
		return fmt.Errorf("record result view: %w", err)
	}
	return nil
}

// ClassViewCounts aggregates published and viewed student counts per
// class for one term, for the admin publication dashboard.
func (r *ResultViewRepository) ClassViewCounts(ctx context.Context, schoolID, term, academicYear string) (map[string]models.ClassViewCount, error) {
	const query = `SELECT p.classname,
            COUNT(DISTINCT p.student_id) AS published_count,
            COUNT(DISTINCT v.student_id) AS viewed_count
        FROM published_student_results p
        LEFT JOIN result_views v
          ON v.school_id = p.school_id
         AND v.student_id = p.student_id
         AND v.term = p.term
         AND COALESCE(v.academic_year, '') = COALESCE(p.academic_year, '')
        WHERE p.school_id = $1 AND p.term = $2 AND COALESCE(p.academic_year, '') = $3
        GROUP BY p.classname`
	var rows []models.ClassViewCount
	if err := r.db.SelectContext(ctx, &rows, query, schoolID, term, academicYear); err != nil {
		return nil, fmt.Errorf("class view counts: %w", err)
	}
	counts := make(map[string]models.ClassViewCount, len(rows))
	for _, row := range rows {
		counts[row.ClassName] = row
	}
	return counts, nil
}
