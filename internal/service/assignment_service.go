package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/brightclass/results-api/internal/models"
	appErrors "github.com/brightclass/results-api/pkg/errors"
)

type assignmentRepo interface {
	Upsert(ctx context.Context, assignment models.ClassAssignment) error
	ListByTerm(ctx context.Context, schoolID, term, academicYear, teacherID string) ([]models.ClassAssignment, error)
	Remove(ctx context.Context, schoolID, className, term, academicYear string) error
	HasClass(ctx context.Context, schoolID, teacherID, className, term, academicYear string) (bool, error)
}

// AssignClassRequest links a teacher to a class for one term.
type AssignClassRequest struct {
	TeacherID    string `json:"teacher_id" validate:"required"`
	TeacherName  string `json:"teacher_name"`
	ClassName    string `json:"classname" validate:"required"`
	Term         string `json:"term" validate:"required"`
	AcademicYear string `json:"academic_year"`
}

// AssignmentService manages teacher-class assignments.
type AssignmentService struct {
	assignments assignmentRepo
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService constructs AssignmentService.
func NewAssignmentService(assignments assignmentRepo, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{assignments: assignments, validator: validate, logger: logger}
}

// Assign links a teacher to a class. An already-assigned class keeps its
// existing teacher.
func (s *AssignmentService) Assign(ctx context.Context, schoolID string, req AssignClassRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	return s.assignments.Upsert(ctx, models.ClassAssignment{
		SchoolID:     schoolID,
		TeacherID:    req.TeacherID,
		TeacherName:  strings.TrimSpace(req.TeacherName),
		ClassName:    strings.TrimSpace(req.ClassName),
		Term:         req.Term,
		AcademicYear: req.AcademicYear,
	})
}

// List returns the assignments for a term, optionally one teacher's.
func (s *AssignmentService) List(ctx context.Context, schoolID, term, academicYear, teacherID string) ([]models.ClassAssignment, error) {
	return s.assignments.ListByTerm(ctx, schoolID, term, academicYear, teacherID)
}

// Remove drops one assignment.
func (s *AssignmentService) Remove(ctx context.Context, schoolID, className, term, academicYear string) error {
	return s.assignments.Remove(ctx, schoolID, className, term, academicYear)
}

// CanManage reports whether a teacher may enter or publish scores for a
// class this term.
func (s *AssignmentService) CanManage(ctx context.Context, schoolID, teacherID, className, term, academicYear string) (bool, error) {
	return s.assignments.HasClass(ctx, schoolID, teacherID, className, term, academicYear)
}
