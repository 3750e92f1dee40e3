// Package grading holds the pure score aggregation and grade policy
// functions shared by the live and published read paths.
package grading

import (
	"math"

	"github.com/brightclass/results-api/internal/models"
)

// TrackingSettings is the subset of tenant settings the aggregator needs.
type TrackingSettings struct {
	TestEnabled bool
	ExamEnabled bool
}

// ComputeOverallMark computes one subject's total from its components.
// Missing or non-finite components degrade to 0 rather than erroring;
// this is a read-side helper over possibly-partial data. Legacy rows that
// carry only an overall mark and no components return that mark directly.
func ComputeOverallMark(block models.ScoreBlock, settings TrackingSettings) float64 {
	totalTest := 0.0
	if settings.TestEnabled {
		if block.TotalTest != nil {
			totalTest = finiteOrZero(*block.TotalTest)
		} else {
			for _, v := range block.Tests {
				totalTest += finiteOrZero(v)
			}
		}
	}

	totalExam := 0.0
	if settings.ExamEnabled {
		switch {
		case block.TotalExam != nil:
			totalExam = finiteOrZero(*block.TotalExam)
		case block.ExamScore != nil:
			totalExam = finiteOrZero(*block.ExamScore)
		default:
			if block.Objective != nil {
				totalExam += finiteOrZero(*block.Objective)
			}
			if block.Theory != nil {
				totalExam += finiteOrZero(*block.Theory)
			}
		}
	}

	// When no component was ever entered, trust the stored overall mark so
	// historic rows are not silently zeroed. Any present component wins
	// over a stale stored value.
	if !block.HasComponents() && block.OverallMark != nil {
		return finiteOrZero(*block.OverallMark)
	}

	return totalTest + totalExam
}

// AverageMarks is the arithmetic mean of all subjects' overall marks,
// 0 when the student has no subjects.
func AverageMarks(scores models.ScoreMap, settings TrackingSettings) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, block := range scores {
		sum += ComputeOverallMark(block, settings)
	}
	return sum / float64(len(scores))
}

// Grade maps a score to the highest threshold it meets, defaulting to F.
func Grade(score float64, t models.GradeThresholds) string {
	switch {
	case score >= float64(t.A):
		return "A"
	case score >= float64(t.B):
		return "B"
	case score >= float64(t.C):
		return "C"
	case score >= float64(t.D):
		return "D"
	}
	return "F"
}

// Status reports Pass when the score meets the tenant pass mark.
func Status(score float64, t models.GradeThresholds) string {
	if score >= float64(t.PassMark) {
		return "Pass"
	}
	return "Fail"
}

// IsSubjectComplete reports whether a subject's score block has every
// component the tenant settings require plus a computed overall mark.
func IsSubjectComplete(block models.ScoreBlock, settings TrackingSettings) bool {
	if block.OverallMark == nil {
		return false
	}
	if settings.TestEnabled && block.TotalTest == nil {
		return false
	}
	if settings.ExamEnabled && block.TotalExam == nil {
		return false
	}
	return true
}

// IsStudentComplete reports whether every configured subject of a student
// at the given term has a complete score block.
func IsStudentComplete(record *models.StudentRecord, settings TrackingSettings, term string) bool {
	if record == nil || record.Term != term {
		return false
	}
	if len(record.Subjects) == 0 {
		return false
	}
	for _, subject := range record.Subjects {
		block, ok := record.Scores[subject]
		if !ok || !IsSubjectComplete(block, settings) {
			return false
		}
	}
	return true
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
