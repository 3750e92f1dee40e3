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

// SettingsRepository reads and writes tenant-level settings: the school
// record, per-level assessment configs, and per-class subject configs.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSchool loads one tenant's settings record, or nil when unknown.
func (r *SettingsRepository) GetSchool(ctx context.Context, schoolID string) (*models.School, error) {
	const query = `SELECT id, name, COALESCE(principal_name, '') AS principal_name,
            COALESCE(current_term, '') AS current_term, COALESCE(academic_year, '') AS academic_year,
            grade_a_min, grade_b_min, grade_c_min, grade_d_min, pass_mark,
            COALESCE(max_tests, 0) AS max_tests, COALESCE(test_score_max, 0) AS test_score_max,
            test_enabled, exam_enabled,
            COALESCE(ranking_mode, 'separate') AS ranking_mode,
            COALESCE(ss1_stream_mode, 'separate') AS ss1_stream_mode,
            operations_enabled, created_at, updated_at
        FROM schools WHERE id = $1 LIMIT 1`
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, schoolID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get school: %w", err)
	}
	return &school, nil
}

// SaveGradeThresholds sets the tenant grading boundaries.
func (r *SettingsRepository) SaveGradeThresholds(ctx context.Context, schoolID string, thresholds models.GradeThresholds) error {
	const query = `UPDATE schools SET
            grade_a_min = $2, grade_b_min = $3, grade_c_min = $4, grade_d_min = $5,
            pass_mark = $6, updated_at = NOW()
        WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, schoolID,
		thresholds.A, thresholds.B, thresholds.C, thresholds.D, thresholds.PassMark,
	); err != nil {
		return fmt.Errorf("save grade thresholds: %w", err)
	}
	return nil
}

// SaveTerm updates the tenant's current term and academic year.
func (r *SettingsRepository) SaveTerm(ctx context.Context, schoolID, term, academicYear string) error {
	const query = `UPDATE schools SET current_term = $2, academic_year = $3, updated_at = NOW()
        WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, schoolID, term, academicYear); err != nil {
		return fmt.Errorf("save school term: %w", err)
	}
	return nil
}

// AssessmentConfig resolves the exam setup for one level, falling back
// to the built-in defaults when the tenant never configured it.
func (r *SettingsRepository) AssessmentConfig(ctx context.Context, schoolID, level string) (models.AssessmentConfig, error) {
	const query = `SELECT school_id, level, exam_mode, objective_max, theory_max, exam_score_max, updated_at
        FROM assessment_configs WHERE school_id = $1 AND level = $2 LIMIT 1`
	var config models.AssessmentConfig
	if err := r.db.GetContext(ctx, &config, query, schoolID, level); err != nil {
		if err == sql.ErrNoRows {
			config = models.DefaultAssessmentConfig(level)
			config.SchoolID = schoolID
			return config, nil
		}
		return config, fmt.Errorf("get assessment config: %w", err)
	}
	return config, nil
}

// SaveAssessmentConfig upserts the exam setup for one level.
func (r *SettingsRepository) SaveAssessmentConfig(ctx context.Context, config models.AssessmentConfig) error {
	const query = `INSERT INTO assessment_configs
        (school_id, level, exam_mode, objective_max, theory_max, exam_score_max, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        ON CONFLICT (school_id, level) DO UPDATE SET
          exam_mode = EXCLUDED.exam_mode,
          objective_max = EXCLUDED.objective_max,
          theory_max = EXCLUDED.theory_max,
          exam_score_max = EXCLUDED.exam_score_max,
          updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query,
		config.SchoolID, config.Level, config.ExamMode,
		config.ObjectiveMax, config.TheoryMax, config.ExamScoreMax,
	); err != nil {
		return fmt.Errorf("save assessment config: %w", err)
	}
	return nil
}

type subjectConfigRow struct {
	SchoolID  string    `db:"school_id"`
	ClassKey  string    `db:"class_key"`
	Config    []byte    `db:"config"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ClassSubjectConfig loads the subject buckets for one canonical class
// key, or nil when none is configured.
func (r *SettingsRepository) ClassSubjectConfig(ctx context.Context, schoolID, classKey string) (*models.ClassSubjectConfig, error) {
	const query = `SELECT school_id, class_key, config, updated_at
        FROM class_subject_configs WHERE school_id = $1 AND class_key = $2 LIMIT 1`
	var row subjectConfigRow
	if err := r.db.GetContext(ctx, &row, query, schoolID, classKey); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get class subject config: %w", err)
	}
	var config models.ClassSubjectConfig
	if err := json.Unmarshal(row.Config, &config); err != nil {
		return nil, fmt.Errorf("decode class subject config: %w", err)
	}
	config.SchoolID = row.SchoolID
	config.ClassKey = row.ClassKey
	config.UpdatedAt = row.UpdatedAt
	return &config, nil
}

// SaveClassSubjectConfig upserts the subject buckets for one class key.
func (r *SettingsRepository) SaveClassSubjectConfig(ctx context.Context, config models.ClassSubjectConfig) error {
	payload, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode class subject config: %w", err)
	}
	const query = `INSERT INTO class_subject_configs (school_id, class_key, config, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (school_id, class_key) DO UPDATE SET
          config = EXCLUDED.config,
          updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, config.SchoolID, config.ClassKey, payload); err != nil {
		return fmt.Errorf("save class subject config: %w", err)
	}
	return nil
}

// DeleteClassSubjectConfig removes the subject buckets for one class key.
func (r *SettingsRepository) DeleteClassSubjectConfig(ctx context.Context, schoolID, classKey string) error {
	const query = `DELETE FROM class_subject_configs WHERE school_id = $1 AND class_key = $2`
	if _, err := r.db.ExecContext(ctx, query, schoolID, classKey); err != nil {
		return fmt.Errorf("delete class subject config: %w", err)
	}
	return nil
}
