package models

import "time"

// RankingMode controls how senior-secondary cohorts are ranked.
type RankingMode string

const (
	// RankingTogether ranks a whole class as one cohort.
	RankingTogether RankingMode = "together"
	// RankingSeparate splits stream classes into per-stream cohorts.
	RankingSeparate RankingMode = "separate"
)

// StreamMode controls whether the entry-level stream class is combined.
type StreamMode string

const (
	StreamModeSeparate StreamMode = "separate"
	StreamModeCombined StreamMode = "combined"
)

// School is one tenant's settings record. All engine data is partitioned
// by SchoolID.
type School struct {
	ID            string `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	PrincipalName string `db:"principal_name" json:"principal_name"`
	CurrentTerm   string `db:"current_term" json:"current_term"`
	AcademicYear  string `db:"academic_year" json:"academic_year"`

	// Grade thresholds are nullable so the engine can tell a tenant that
	// has never configured grading apart from one using the defaults.
	GradeAMin *int `db:"grade_a_min" json:"grade_a_min,omitempty"`
	GradeBMin *int `db:"grade_b_min" json:"grade_b_min,omitempty"`
	GradeCMin *int `db:"grade_c_min" json:"grade_c_min,omitempty"`
	GradeDMin *int `db:"grade_d_min" json:"grade_d_min,omitempty"`
	PassMark  *int `db:"pass_mark" json:"pass_mark,omitempty"`

	MaxTests     int     `db:"max_tests" json:"max_tests"`
	TestScoreMax float64 `db:"test_score_max" json:"test_score_max"`
	TestEnabled  bool    `db:"test_enabled" json:"test_enabled"`
	ExamEnabled  bool    `db:"exam_enabled" json:"exam_enabled"`

	RankingMode   RankingMode `db:"ranking_mode" json:"ranking_mode"`
	SS1StreamMode StreamMode  `db:"ss1_stream_mode" json:"ss1_stream_mode"`

	OperationsEnabled bool      `db:"operations_enabled" json:"operations_enabled"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// GradeThresholds are the tenant grading boundaries, a >= b >= c >= d.
type GradeThresholds struct {
	A        int `json:"a"`
	B        int `json:"b"`
	C        int `json:"c"`
	D        int `json:"d"`
	PassMark int `json:"pass_mark"`
}

// DefaultGradeThresholds are applied on read paths when a tenant has not
// configured grading. Write paths must not fall back to these.
func DefaultGradeThresholds() GradeThresholds {
	return GradeThresholds{A: 70, B: 60, C: 50, D: 40, PassMark: 50}
}

// Thresholds resolves the tenant thresholds. The second return value is
// false when the tenant has never configured grading and the defaults
// were substituted.
func (s *School) Thresholds() (GradeThresholds, bool) {
	if s == nil || s.GradeAMin == nil || s.GradeBMin == nil || s.GradeCMin == nil || s.GradeDMin == nil || s.PassMark == nil {
		return DefaultGradeThresholds(), false
	}
	return GradeThresholds{
		A:        *s.GradeAMin,
		B:        *s.GradeBMin,
		C:        *s.GradeCMin,
		D:        *s.GradeDMin,
		PassMark: *s.PassMark,
	}, true
}
