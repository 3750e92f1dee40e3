package models

import "time"

// StreamUnassigned marks a student in a stream class without an allocated
// stream. It forms its own ranking cohort, never merged with a named stream.
const StreamUnassigned = "N/A"

// StudentRecord is the mutable working record for one (tenant, student).
// Subjects and Scores are stored as structured JSON blobs and decoded at
// the repository boundary.
type StudentRecord struct {
	SchoolID       string    `json:"school_id"`
	StudentID      string    `json:"student_id"`
	FirstName      string    `json:"firstname"`
	ClassName      string    `json:"classname"`
	FirstYearClass string    `json:"first_year_class"`
	Term           string    `json:"term"`
	Stream         string    `json:"stream"`
	SubjectCount   int       `json:"number_of_subject"`
	Subjects       []string  `json:"subjects"`
	Scores         ScoreMap  `json:"scores"`
	TeacherComment string    `json:"teacher_comment"`
	Promoted       bool      `json:"promoted"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StreamOrUnassigned normalises the stream value for cohort grouping.
func (r *StudentRecord) StreamOrUnassigned() string {
	if r == nil {
		return StreamUnassigned
	}
	s := r.Stream
	if s == "" {
		return StreamUnassigned
	}
	return s
}

// PromotionAction is a per-student class-transition decision.
type PromotionAction string

const (
	PromotionPromote PromotionAction = "promote"
	PromotionRepeat  PromotionAction = "repeat"
	PromotionRemove  PromotionAction = "remove"
)
