package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/brightclass/results-api/internal/models"
	"github.com/brightclass/results-api/internal/repository"
	appErrors "github.com/brightclass/results-api/pkg/errors"
)

type rolloverRepo interface {
	Rollover(ctx context.Context, schoolID, fromTerm, fromYear, toTerm, toYear string) (*repository.RolloverResult, error)
	ApplyPromotions(ctx context.Context, schoolID string, updates []repository.PromotionUpdate) error
}

type termWriter interface {
	SaveTerm(ctx context.Context, schoolID, term, academicYear string) error
}

type subjectBuilder interface {
	BuildSubjects(ctx context.Context, schoolID, className, stream string, optionalPicks []string) ([]string, error)
}

// RolloverRequest moves a school to a new current term and year.
type RolloverRequest struct {
	ToTerm string `json:"to_term" validate:"required"`
	ToYear string `json:"to_year"`
}

// PromotionDecision is one student's class transition for year end.
type PromotionDecision struct {
	StudentID     string                 `json:"student_id" validate:"required"`
	Action        models.PromotionAction `json:"action" validate:"required,oneof=promote repeat remove"`
	TargetClass   string                 `json:"target_class"`
	Stream        string                 `json:"stream"`
	OptionalPicks []string               `json:"optional_picks"`
}

// PromotionResult summarises an applied promotion batch.
type PromotionResult struct {
	Promoted  int `json:"promoted"`
	Repeated  int `json:"repeated"`
	Removed   int `json:"removed"`
	Graduated int `json:"graduated"`
}

// RolloverService handles term transitions and year-end promotions.
type RolloverService struct {
	rollovers rolloverRepo
	students  studentRepo
	settings  schoolReader
	terms     termWriter
	subjects  subjectBuilder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRolloverService constructs RolloverService.
func NewRolloverService(rollovers rolloverRepo, students studentRepo, settings schoolReader, terms termWriter, subjects subjectBuilder, validate *validator.Validate, logger *zap.Logger) *RolloverService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RolloverService{
		rollovers: rollovers,
		students:  students,
		settings:  settings,
		terms:     terms,
		subjects:  subjects,
		validator: validate,
		logger:    logger,
	}
}

// Rollover transitions the school to a new term. Repeating the current
// term and year is a no-op rather than an error so retried requests do
// not clear scores twice. Published snapshots are never touched.
func (s *RolloverService) Rollover(ctx context.Context, schoolID string, req RolloverRequest) (*repository.RolloverResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rollover payload")
	}

	school, err := s.settings.GetSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if school == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
	}

	toTerm := strings.TrimSpace(req.ToTerm)
	toYear := strings.TrimSpace(req.ToYear)
	if toYear == "" {
		toYear = school.AcademicYear
	}
	if toTerm == school.CurrentTerm && toYear == school.AcademicYear {
		return &repository.RolloverResult{}, nil
	}

	result, err := s.rollovers.Rollover(ctx, schoolID, school.CurrentTerm, school.AcademicYear, toTerm, toYear)
	if err != nil {
		return nil, err
	}
	if err := s.terms.SaveTerm(ctx, schoolID, toTerm, toYear); err != nil {
		return nil, err
	}
	s.logger.Info("term rollover applied",
		zap.String("school_id", schoolID),
		zap.String("from_term", school.CurrentTerm),
		zap.String("to_term", toTerm),
		zap.String("to_year", toYear),
		zap.Int("students_moved", result.StudentsMoved),
		zap.Int("assignments_copied", result.AssignmentsCopied))
	return result, nil
}

// Promote applies a batch of year-end decisions atomically. Promotion
// only moves a student to the direct next class; SS3 promotes to
// Graduated, a terminal state with no subjects or stream. Promoted
// students get their subject list rebuilt for the target class.
func (s *RolloverService) Promote(ctx context.Context, schoolID string, decisions []PromotionDecision) (*PromotionResult, error) {
	if len(decisions) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no promotion decisions supplied")
	}

	school, err := s.settings.GetSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if school == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
	}

	result := &PromotionResult{}
	updates := make([]repository.PromotionUpdate, 0, len(decisions))
	for _, decision := range decisions {
		if err := s.validator.Struct(decision); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("invalid decision for student %s", decision.StudentID))
		}

		record, err := s.students.Find(ctx, schoolID, decision.StudentID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound,
				fmt.Sprintf("student %s not found", decision.StudentID))
		}
		if models.IsGraduated(record.ClassName) {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("student %s has already graduated", decision.StudentID))
		}

		switch decision.Action {
		case models.PromotionRemove:
			updates = append(updates, repository.PromotionUpdate{StudentID: decision.StudentID, Remove: true})
			result.Removed++

		case models.PromotionRepeat:
			updates = append(updates, repository.PromotionUpdate{
				StudentID: decision.StudentID,
				ClassName: record.ClassName,
				Stream:    record.StreamOrUnassigned(),
				Subjects:  record.Subjects,
				Promoted:  false,
			})
			result.Repeated++

		case models.PromotionPromote:
			target := strings.TrimSpace(decision.TargetClass)
			if target == "" {
				target = models.NextClassInSequence(record.ClassName)
			}
			if target == "" || !models.IsValidPromotionTarget(record.ClassName, target) {
				return nil, appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("student %s cannot move from %s to %s", decision.StudentID, record.ClassName, decision.TargetClass))
			}
			if models.IsGraduated(target) {
				updates = append(updates, repository.PromotionUpdate{
					StudentID: decision.StudentID,
					ClassName: models.ClassGraduated,
					Stream:    models.StreamUnassigned,
					Promoted:  true,
				})
				result.Graduated++
				continue
			}

			stream := decision.Stream
			if stream == "" {
				stream = record.Stream
			}
			subjects, err := s.subjects.BuildSubjects(ctx, schoolID, target, stream, decision.OptionalPicks)
			if err != nil {
				return nil, appErrors.FromError(err)
			}
			normalizedStream := models.StreamUnassigned
			if normalized, ok := models.NormalizeStream(school, target, stream); ok {
				normalizedStream = normalized
			}
			updates = append(updates, repository.PromotionUpdate{
				StudentID: decision.StudentID,
				ClassName: target,
				Stream:    normalizedStream,
				Subjects:  subjects,
				Promoted:  true,
			})
			result.Promoted++
		}
	}

	if err := s.rollovers.ApplyPromotions(ctx, schoolID, updates); err != nil {
		return nil, err
	}
	s.logger.Info("promotions applied",
		zap.String("school_id", schoolID),
		zap.Int("promoted", result.Promoted),
		zap.Int("repeated", result.Repeated),
		zap.Int("removed", result.Removed),
		zap.Int("graduated", result.Graduated))
	return result, nil
}
