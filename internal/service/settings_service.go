package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/brightclass/results-api/internal/models"
	appErrors "github.com/brightclass/results-api/pkg/errors"
)

type settingsRepo interface {
	GetSchool(ctx context.Context, schoolID string) (*models.School, error)
	SaveGradeThresholds(ctx context.Context, schoolID string, thresholds models.GradeThresholds) error
	SaveTerm(ctx context.Context, schoolID, term, academicYear string) error
	AssessmentConfig(ctx context.Context, schoolID, level string) (models.AssessmentConfig, error)
	SaveAssessmentConfig(ctx context.Context, config models.AssessmentConfig) error
}

// GradeThresholdsRequest sets a tenant's grading boundaries.
type GradeThresholdsRequest struct {
	A        int `json:"a" validate:"required,min=1,max=100"`
	B        int `json:"b" validate:"min=0,max=100"`
	C        int `json:"c" validate:"min=0,max=100"`
	D        int `json:"d" validate:"min=0,max=100"`
	PassMark int `json:"pass_mark" validate:"min=0,max=100"`
}

// AssessmentConfigRequest sets the exam setup for one level.
type AssessmentConfigRequest struct {
	Level        string `json:"level" validate:"required,oneof=primary jss ss"`
	ExamMode     string `json:"exam_mode" validate:"required,oneof=combined separate"`
	ObjectiveMax int    `json:"objective_max" validate:"min=0,max=100"`
	TheoryMax    int    `json:"theory_max" validate:"min=0,max=100"`
	ExamScoreMax int    `json:"exam_score_max" validate:"min=0,max=100"`
}

// SettingsService manages tenant grading, term and assessment settings.
type SettingsService struct {
	settings  settingsRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs SettingsService.
func NewSettingsService(settings settingsRepo, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{settings: settings, validator: validate, logger: logger}
}

// School loads one tenant's settings record.
func (s *SettingsService) School(ctx context.Context, schoolID string) (*models.School, error) {
	school, err := s.settings.GetSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if school == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
	}
	return school, nil
}

// SaveGradeThresholds validates ordering and stores the boundaries.
// Thresholds must descend: a grade boundary below the next grade down
// would make the grade scale ambiguous.
func (s *SettingsService) SaveGradeThresholds(ctx context.Context, schoolID string, req GradeThresholdsRequest) (models.GradeThresholds, error) {
	thresholds := models.GradeThresholds{A: req.A, B: req.B, C: req.C, D: req.D, PassMark: req.PassMark}
	if err := s.validator.Struct(req); err != nil {
		return thresholds, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid threshold payload")
	}
	if !(req.A > req.B && req.B > req.C && req.C > req.D) {
		return thresholds, appErrors.Clone(appErrors.ErrValidation, "thresholds must satisfy a > b > c > d")
	}
	if err := s.settings.SaveGradeThresholds(ctx, schoolID, thresholds); err != nil {
		return thresholds, err
	}
	s.logger.Info("grade thresholds updated", zap.String("school_id", schoolID))
	return thresholds, nil
}

// AssessmentConfig resolves the exam setup for one level, defaults
// applied when the tenant never configured it.
func (s *SettingsService) AssessmentConfig(ctx context.Context, schoolID, level string) (models.AssessmentConfig, error) {
	return s.settings.AssessmentConfig(ctx, schoolID, level)
}

// SaveAssessmentConfig validates and stores the exam setup for a level.
// Separate mode needs both component maxima; combined mode needs the
// single exam maximum.
func (s *SettingsService) SaveAssessmentConfig(ctx context.Context, schoolID string, req AssessmentConfigRequest) (models.AssessmentConfig, error) {
	config := models.AssessmentConfig{
		SchoolID:     schoolID,
		Level:        req.Level,
		ExamMode:     models.ExamMode(req.ExamMode),
		ObjectiveMax: req.ObjectiveMax,
		TheoryMax:    req.TheoryMax,
		ExamScoreMax: req.ExamScoreMax,
	}
	if err := s.validator.Struct(req); err != nil {
		return config, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	switch config.ExamMode {
	case models.ExamModeSeparate:
		if config.ObjectiveMax <= 0 || config.TheoryMax <= 0 {
			return config, appErrors.Clone(appErrors.ErrValidation, "separate mode needs objective and theory maxima")
		}
		config.ExamScoreMax = config.ObjectiveMax + config.TheoryMax
	default:
		if config.ExamScoreMax <= 0 {
			return config, appErrors.Clone(appErrors.ErrValidation, "combined mode needs an exam score maximum")
		}
		config.ObjectiveMax = 0
		config.TheoryMax = 0
	}
	if err := s.settings.SaveAssessmentConfig(ctx, config); err != nil {
		return config, err
	}
	return config, nil
}
