package models

import "time"

// ClassAssignment links a teacher to a class for one term and year.
// Unique per (school, class, term, year): one responsible teacher per
// class per term.
type ClassAssignment struct {
	SchoolID     string    `db:"school_id" json:"school_id"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	TeacherName  string    `db:"teacher_name" json:"teacher_name"`
	ClassName    string    `db:"classname" json:"classname"`
	Term         string    `db:"term" json:"term"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
