package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/brightclass/results-api/internal/grading"
	"github.com/brightclass/results-api/internal/models"
	appErrors "github.com/brightclass/results-api/pkg/errors"
)

type studentRepo interface {
	List(ctx context.Context, schoolID, classFilter, termFilter string) ([]models.StudentRecord, error)
	Find(ctx context.Context, schoolID, studentID string) (*models.StudentRecord, error)
	Upsert(ctx context.Context, record *models.StudentRecord) error
	Delete(ctx context.Context, schoolID, studentID string) error
}

type gateReader interface {
	GetGate(ctx context.Context, schoolID, className, term, academicYear string) (*models.PublicationGate, error)
	SetPublished(ctx context.Context, gate models.PublicationGate) error
}

type schoolReader interface {
	GetSchool(ctx context.Context, schoolID string) (*models.School, error)
	AssessmentConfig(ctx context.Context, schoolID, level string) (models.AssessmentConfig, error)
}

// SubjectScoreInput is one subject's raw component entry.
type SubjectScoreInput struct {
	Subject   string    `json:"subject" validate:"required"`
	Tests     []float64 `json:"tests,omitempty"`
	ExamScore *float64  `json:"exam_score,omitempty"`
	Objective *float64  `json:"objective,omitempty"`
	Theory    *float64  `json:"theory,omitempty"`
}

// SaveScoresRequest carries one student's score sheet for a term.
type SaveScoresRequest struct {
	StudentID      string              `json:"student_id" validate:"required"`
	Term           string              `json:"term" validate:"required"`
	AcademicYear   string              `json:"academic_year"`
	TeacherComment string              `json:"teacher_comment"`
	Scores         []SubjectScoreInput `json:"scores" validate:"required,dive"`
}

// StudentCompleteness reports whether one student's sheet is publishable.
type StudentCompleteness struct {
	StudentID       string   `json:"student_id"`
	FirstName       string   `json:"firstname"`
	Complete        bool     `json:"complete"`
	MissingSubjects []string `json:"missing_subjects,omitempty"`
}

// ScoreService handles working-record score entry and validation.
type ScoreService struct {
	students  studentRepo
	gates     gateReader
	settings  schoolReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScoreService constructs ScoreService.
func NewScoreService(students studentRepo, gates gateReader, settings schoolReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{students: students, gates: gates, settings: settings, cache: cache, validator: validate, logger: logger}
}

// SaveScores validates and stores one student's score sheet. When the
// class+term is already published, the edit is rejected unless the caller
// holds reopen authority, in which case the gate drops back to draft and
// the published snapshot stays frozen until the next publish.
func (s *ScoreService) SaveScores(ctx context.Context, schoolID string, req SaveScoresRequest, allowReopen bool) (*models.StudentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}

	record, err := s.students.Find(ctx, schoolID, req.StudentID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	school, err := s.settings.GetSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if school == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
	}

	gate, err := s.gates.GetGate(ctx, schoolID, record.ClassName, req.Term, req.AcademicYear)
	if err != nil {
		return nil, err
	}
	// The gate only drops back to draft once the edit has actually been
	// saved; a rejected payload leaves the class published and untouched.
	var reopen *models.PublicationGate
	if gate != nil && gate.IsPublished {
		if !allowReopen {
			return nil, appErrors.ErrResultsLocked
		}
		reopened := *gate
		reopened.IsPublished = false
		reopen = &reopened
	}

	if models.UsesStreamForSchool(school, record.ClassName) && record.StreamOrUnassigned() == models.StreamUnassigned {
		return nil, appErrors.ErrStreamRequired
	}

	level := models.ClassLevel(record.ClassName)
	assessment, err := s.settings.AssessmentConfig(ctx, schoolID, level)
	if err != nil {
		return nil, err
	}
	tracking := grading.TrackingSettings{TestEnabled: school.TestEnabled, ExamEnabled: school.ExamEnabled}
	thresholds, _ := school.Thresholds()

	if record.Scores == nil {
		record.Scores = models.ScoreMap{}
	}
	for _, input := range req.Scores {
		block, err := s.buildBlock(input, school, assessment, tracking, thresholds)
		if err != nil {
			return nil, err
		}
		record.Scores[strings.TrimSpace(input.Subject)] = block
	}
	record.Term = req.Term
	if req.TeacherComment != "" {
		record.TeacherComment = req.TeacherComment
	}

	if err := s.students.Upsert(ctx, record); err != nil {
		return nil, err
	}
	if reopen != nil {
		if err := s.gates.SetPublished(ctx, *reopen); err != nil {
			return nil, err
		}
		s.logger.Info("publication gate reopened for edit",
			zap.String("school_id", schoolID),
			zap.String("classname", record.ClassName),
			zap.String("term", req.Term))
	}

	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, SchoolCachePattern(schoolID, record.ClassName)); err != nil {
			s.logger.Warn("ranking cache invalidation failed", zap.Error(err))
		}
	}
	return record, nil
}

func (s *ScoreService) buildBlock(input SubjectScoreInput, school *models.School, assessment models.AssessmentConfig, tracking grading.TrackingSettings, thresholds models.GradeThresholds) (models.ScoreBlock, error) {
	block := models.ScoreBlock{ExamMode: assessment.ExamMode}

	if tracking.TestEnabled {
		if school.MaxTests > 0 && len(input.Tests) > school.MaxTests {
			return block, appErrors.Clone(appErrors.ErrScoreOutOfRange,
				fmt.Sprintf("%s: at most %d tests allowed", input.Subject, school.MaxTests))
		}
		totalTest := 0.0
		for _, v := range input.Tests {
			if v < 0 || (school.TestScoreMax > 0 && v > school.TestScoreMax) {
				return block, appErrors.Clone(appErrors.ErrScoreOutOfRange,
					fmt.Sprintf("%s: test score %.1f outside 0..%.0f", input.Subject, v, school.TestScoreMax))
			}
			totalTest += v
		}
		if len(input.Tests) > 0 {
			block.Tests = append([]float64(nil), input.Tests...)
			block.TotalTest = &totalTest
		}
	}

	if tracking.ExamEnabled {
		switch assessment.ExamMode {
		case models.ExamModeSeparate:
			if input.ExamScore != nil {
				return block, appErrors.Clone(appErrors.ErrScoreOutOfRange,
					fmt.Sprintf("%s: combined exam score not accepted in separate mode", input.Subject))
			}
			totalExam := 0.0
			entered := false
			if input.Objective != nil {
				if *input.Objective < 0 || *input.Objective > float64(assessment.ObjectiveMax) {
					return block, appErrors.Clone(appErrors.ErrScoreOutOfRange,
						fmt.Sprintf("%s: objective %.1f outside 0..%d", input.Subject, *input.Objective, assessment.ObjectiveMax))
				}
				objective := *input.Objective
				block.Objective = &objective
				totalExam += objective
				entered = true
			}
			if input.Theory != nil {
				if *input.Theory < 0 || *input.Theory > float64(assessment.TheoryMax) {
					return block, appErrors.Clone(appErrors.ErrScoreOutOfRange,
						fmt.Sprintf("%s: theory %.1f outside 0..%d", input.Subject, *input.Theory, assessment.TheoryMax))
				}
				theory := *input.Theory
				block.Theory = &theory
				totalExam += theory
				entered = true
			}
			if entered {
				block.TotalExam = &totalExam
			}
		default:
			if input.Objective != nil || input.Theory != nil {
				return block, appErrors.Clone(appErrors.ErrScoreOutOfRange,
					fmt.Sprintf("%s: objective/theory not accepted in combined mode", input.Subject))
			}
			if input.ExamScore != nil {
				if *input.ExamScore < 0 || *input.ExamScore > float64(assessment.ExamScoreMax) {
					return block, appErrors.Clone(appErrors.ErrScoreOutOfRange,
						fmt.Sprintf("%s: exam score %.1f outside 0..%d", input.Subject, *input.ExamScore, assessment.ExamScoreMax))
				}
				examScore := *input.ExamScore
				block.ExamScore = &examScore
				block.TotalExam = &examScore
			}
		}
	}

	overall := grading.ComputeOverallMark(block, tracking)
	block.OverallMark = &overall
	block.Grade = grading.Grade(overall, thresholds)
	return block, nil
}

// Completeness reports each student's publish readiness for a class+term.
func (s *ScoreService) Completeness(ctx context.Context, schoolID, className, term string) ([]StudentCompleteness, error) {
	school, err := s.settings.GetSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	tracking := grading.TrackingSettings{}
	if school != nil {
		tracking = grading.TrackingSettings{TestEnabled: school.TestEnabled, ExamEnabled: school.ExamEnabled}
	}

	records, err := s.students.List(ctx, schoolID, className, term)
	if err != nil {
		return nil, err
	}
	report := make([]StudentCompleteness, 0, len(records))
	for i := range records {
		record := &records[i]
		entry := StudentCompleteness{StudentID: record.StudentID, FirstName: record.FirstName, Complete: true}
		if len(record.Subjects) == 0 {
			entry.Complete = false
		}
		for _, subject := range record.Subjects {
			block, ok := record.Scores[subject]
			if !ok || !grading.IsSubjectComplete(block, tracking) {
				entry.Complete = false
				entry.MissingSubjects = append(entry.MissingSubjects, subject)
			}
		}
		report = append(report, entry)
	}
	return report, nil
}
