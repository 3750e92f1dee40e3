package models

import (
	"fmt"
	"strings"
	"time"
)

// PublicationGate is the single authority for whether a class+term's
// working scores are locked. Keyed by (school, class, term, year).
type PublicationGate struct {
	SchoolID      string     `db:"school_id" json:"school_id"`
	ClassName     string     `db:"classname" json:"classname"`
	Term          string     `db:"term" json:"term"`
	AcademicYear  string     `db:"academic_year" json:"academic_year"`
	TeacherID     string     `db:"teacher_id" json:"teacher_id"`
	TeacherName   string     `db:"teacher_name" json:"teacher_name"`
	PrincipalName string     `db:"principal_name" json:"principal_name"`
	IsPublished   bool       `db:"is_published" json:"is_published"`
	PublishedAt   *time.Time `db:"published_at" json:"published_at,omitempty"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// PublishedSnapshot is the frozen student-visible result row, keyed by
// (school, student, academic year, term). Only a publish event writes it.
type PublishedSnapshot struct {
	SchoolID       string    `json:"school_id"`
	StudentID      string    `json:"student_id"`
	FirstName      string    `json:"firstname"`
	ClassName      string    `json:"classname"`
	AcademicYear   string    `json:"academic_year"`
	Term           string    `json:"term"`
	Stream         string    `json:"stream"`
	SubjectCount   int       `json:"number_of_subject"`
	Subjects       []string  `json:"subjects"`
	Scores         ScoreMap  `json:"scores"`
	TeacherComment string    `json:"teacher_comment"`
	AverageMarks   float64   `json:"average_marks"`
	Grade          string    `json:"grade"`
	Status         string    `json:"status"`
	PublishedAt    time.Time `json:"published_at"`
}

// PublishedTerm identifies one published (year, term, class) entry a
// student can select.
type PublishedTerm struct {
	AcademicYear string `json:"academic_year"`
	Term         string `json:"term"`
	ClassName    string `json:"classname"`
	Token        string `json:"token"`
	Label        string `json:"label"`
}

// TermToken builds the "year::term" selector format.
func TermToken(academicYear, term string) string {
	return fmt.Sprintf("%s::%s", strings.TrimSpace(academicYear), strings.TrimSpace(term))
}

// ParseTermToken splits a selector into year and term. Plain term names
// come back with an empty year.
func ParseTermToken(token string) (year, term string) {
	raw := strings.TrimSpace(token)
	if idx := strings.Index(raw, "::"); idx >= 0 {
		return strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+2:])
	}
	return "", raw
}

// PublicationStatus is one admin-dashboard row for a class in a term.
type PublicationStatus struct {
	ClassName      string `json:"classname"`
	TeacherID      string `json:"teacher_id"`
	TeacherName    string `json:"teacher_name"`
	Term           string `json:"term"`
	IsPublished    bool   `json:"is_published"`
	PublishedAt    string `json:"published_at"`
	PublishedCount int    `json:"published_count"`
	ViewedCount    int    `json:"viewed_count"`
}
