package models

import "time"

// AssessmentConfig drives exam-entry validation for one education level.
type AssessmentConfig struct {
	SchoolID     string    `db:"school_id" json:"school_id"`
	Level        string    `db:"level" json:"level"`
	ExamMode     ExamMode  `db:"exam_mode" json:"exam_mode"`
	ObjectiveMax int       `db:"objective_max" json:"objective_max"`
	TheoryMax    int       `db:"theory_max" json:"theory_max"`
	ExamScoreMax int       `db:"exam_score_max" json:"exam_score_max"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultAssessmentConfig returns the built-in exam setup per level.
func DefaultAssessmentConfig(level string) AssessmentConfig {
	switch level {
	case "jss":
		return AssessmentConfig{Level: "jss", ExamMode: ExamModeCombined, ExamScoreMax: 70}
	case "ss":
		return AssessmentConfig{Level: "ss", ExamMode: ExamModeSeparate, ObjectiveMax: 30, TheoryMax: 40, ExamScoreMax: 70}
	default:
		return AssessmentConfig{Level: "primary", ExamMode: ExamModeCombined, ExamScoreMax: 60}
	}
}

// ClassSubjectConfig defines the subject buckets for one canonicalized
// class name. Non-stream classes use only CoreSubjects; stream classes
// must supply at least one non-empty stream bucket.
type ClassSubjectConfig struct {
	SchoolID             string    `json:"school_id"`
	ClassKey             string    `json:"class_key"`
	CoreSubjects         []string  `json:"core_subjects"`
	ScienceSubjects      []string  `json:"science_subjects,omitempty"`
	ArtSubjects          []string  `json:"art_subjects,omitempty"`
	CommercialSubjects   []string  `json:"commercial_subjects,omitempty"`
	OptionalSubjects     []string  `json:"optional_subjects,omitempty"`
	OptionalSubjectLimit int       `json:"optional_subject_limit"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// StreamSubjects returns the bucket for a named stream.
func (c *ClassSubjectConfig) StreamSubjects(stream string) []string {
	switch stream {
	case "Science":
		return c.ScienceSubjects
	case "Art":
		return c.ArtSubjects
	case "Commercial":
		return c.CommercialSubjects
	}
	return nil
}
