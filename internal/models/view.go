package models

import "time"

// ResultView tracks when a student first and last viewed a published
// result. Written only by the read path; not part of correctness.
type ResultView struct {
	SchoolID      string    `db:"school_id" json:"school_id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	Term          string    `db:"term" json:"term"`
	AcademicYear  string    `db:"academic_year" json:"academic_year"`
	FirstViewedAt time.Time `db:"first_viewed_at" json:"first_viewed_at"`
	LastViewedAt  time.Time `db:"last_viewed_at" json:"last_viewed_at"`
	ViewCount     int       `db:"view_count" json:"view_count"`
}

// ClassViewCount aggregates published/viewed counts for one class.
type ClassViewCount struct {
	ClassName      string `db:"classname" json:"classname"`
	PublishedCount int    `db:"published_count" json:"published_count"`
	ViewedCount    int    `db:"viewed_count" json:"viewed_count"`
}
