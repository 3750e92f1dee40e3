package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/brightclass/results-api/internal/models"
	appErrors "github.com/brightclass/results-api/pkg/errors"
)

type subjectConfigRepo interface {
	ClassSubjectConfig(ctx context.Context, schoolID, classKey string) (*models.ClassSubjectConfig, error)
	SaveClassSubjectConfig(ctx context.Context, config models.ClassSubjectConfig) error
	DeleteClassSubjectConfig(ctx context.Context, schoolID, classKey string) error
}

// SaveSubjectConfigRequest carries the subject buckets for one class.
type SaveSubjectConfigRequest struct {
	ClassName            string   `json:"classname" validate:"required"`
	CoreSubjects         []string `json:"core_subjects"`
	ScienceSubjects      []string `json:"science_subjects"`
	ArtSubjects          []string `json:"art_subjects"`
	CommercialSubjects   []string `json:"commercial_subjects"`
	OptionalSubjects     []string `json:"optional_subjects"`
	OptionalSubjectLimit int      `json:"optional_subject_limit"`
}

// SubjectConfigService manages per-class subject configuration and
// derives each student's subject list from it.
type SubjectConfigService struct {
	configs   subjectConfigRepo
	students  studentRepo
	settings  schoolReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectConfigService constructs SubjectConfigService.
func NewSubjectConfigService(configs subjectConfigRepo, students studentRepo, settings schoolReader, validate *validator.Validate, logger *zap.Logger) *SubjectConfigService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectConfigService{configs: configs, students: students, settings: settings, validator: validate, logger: logger}
}

func cleanSubjects(subjects []string) []string {
	seen := make(map[string]bool, len(subjects))
	cleaned := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		subject = strings.TrimSpace(subject)
		if subject == "" {
			continue
		}
		key := strings.ToLower(subject)
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, subject)
	}
	return cleaned
}

// Get loads the subject config for a class, or nil when unconfigured.
func (s *SubjectConfigService) Get(ctx context.Context, schoolID, className string) (*models.ClassSubjectConfig, error) {
	return s.configs.ClassSubjectConfig(ctx, schoolID, models.CanonicalClassName(className))
}

// Save validates and stores the subject buckets for a class. Stream
// classes must define at least one stream bucket; non-stream classes
// must not define any.
func (s *SubjectConfigService) Save(ctx context.Context, schoolID string, req SaveSubjectConfigRequest) (*models.ClassSubjectConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject config payload")
	}

	config := models.ClassSubjectConfig{
		SchoolID:             schoolID,
		ClassKey:             models.CanonicalClassName(req.ClassName),
		CoreSubjects:         cleanSubjects(req.CoreSubjects),
		ScienceSubjects:      cleanSubjects(req.ScienceSubjects),
		ArtSubjects:          cleanSubjects(req.ArtSubjects),
		CommercialSubjects:   cleanSubjects(req.CommercialSubjects),
		OptionalSubjects:     cleanSubjects(req.OptionalSubjects),
		OptionalSubjectLimit: req.OptionalSubjectLimit,
	}
	if config.ClassKey == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classname required")
	}
	if config.OptionalSubjectLimit < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "optional subject limit cannot be negative")
	}

	hasStreamBuckets := len(config.ScienceSubjects) > 0 || len(config.ArtSubjects) > 0 || len(config.CommercialSubjects) > 0
	if models.ClassUsesStream(req.ClassName) {
		if !hasStreamBuckets {
			return nil, appErrors.Clone(appErrors.ErrValidation, "stream classes need at least one stream subject bucket")
		}
	} else {
		if hasStreamBuckets {
			return nil, appErrors.Clone(appErrors.ErrValidation, "non-stream classes only use core and optional subjects")
		}
		if len(config.CoreSubjects) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "at least one core subject required")
		}
	}

	if err := s.configs.SaveClassSubjectConfig(ctx, config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Delete removes a class's subject config.
func (s *SubjectConfigService) Delete(ctx context.Context, schoolID, className string) error {
	return s.configs.DeleteClassSubjectConfig(ctx, schoolID, models.CanonicalClassName(className))
}

// BuildSubjects derives one student's subject list from the class config:
// core subjects, plus the stream bucket when the class carries streams
// for this tenant, plus validated optional picks. When SS1 runs in
// combined mode every stream bucket merges into the shared list.
func (s *SubjectConfigService) BuildSubjects(ctx context.Context, schoolID, className, stream string, optionalPicks []string) ([]string, error) {
	school, err := s.settings.GetSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	config, err := s.configs.ClassSubjectConfig(ctx, schoolID, models.CanonicalClassName(className))
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, appErrors.Clone(appErrors.ErrConfigMissing,
			fmt.Sprintf("no subject configuration for class %s", className))
	}

	subjects := append([]string(nil), config.CoreSubjects...)
	if models.ClassUsesStream(className) {
		if models.UsesStreamForSchool(school, className) {
			normalized, ok := models.NormalizeStream(school, className, stream)
			if !ok || normalized == models.StreamUnassigned {
				return nil, appErrors.ErrStreamRequired
			}
			bucket := config.StreamSubjects(normalized)
			if len(bucket) == 0 {
				return nil, appErrors.Clone(appErrors.ErrConfigMissing,
					fmt.Sprintf("no %s subjects configured for class %s", normalized, className))
			}
			subjects = append(subjects, bucket...)
		} else {
			// Combined SS1: all stream buckets form one shared list.
			subjects = append(subjects, config.ScienceSubjects...)
			subjects = append(subjects, config.ArtSubjects...)
			subjects = append(subjects, config.CommercialSubjects...)
		}
	}

	if len(optionalPicks) > 0 {
		if config.OptionalSubjectLimit > 0 && len(optionalPicks) > config.OptionalSubjectLimit {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("at most %d optional subjects allowed", config.OptionalSubjectLimit))
		}
		allowed := make(map[string]string, len(config.OptionalSubjects))
		for _, subject := range config.OptionalSubjects {
			allowed[strings.ToLower(subject)] = subject
		}
		for _, pick := range optionalPicks {
			subject, ok := allowed[strings.ToLower(strings.TrimSpace(pick))]
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("%s is not an optional subject for this class", pick))
			}
			subjects = append(subjects, subject)
		}
	}

	return cleanSubjects(subjects), nil
}

// SyncStudentSubjects rebuilds every student's subject list in a class
// after its config changes, pruning score blocks for dropped subjects.
// Students whose stream is still unassigned in a stream class are
// skipped and reported.
func (s *SubjectConfigService) SyncStudentSubjects(ctx context.Context, schoolID, className, term string) ([]string, error) {
	records, err := s.students.List(ctx, schoolID, className, term)
	if err != nil {
		return nil, err
	}

	var skipped []string
	for i := range records {
		record := &records[i]
		subjects, err := s.BuildSubjects(ctx, schoolID, className, record.Stream, nil)
		if err != nil {
			if err == appErrors.ErrStreamRequired {
				skipped = append(skipped, record.StudentID)
				continue
			}
			return nil, err
		}
		record.Subjects = subjects

		kept := make(models.ScoreMap, len(record.Scores))
		for _, subject := range subjects {
			if block, ok := record.Scores[subject]; ok {
				kept[subject] = block
			}
		}
		record.Scores = kept
		if err := s.students.Upsert(ctx, record); err != nil {
			return nil, err
		}
	}
	sort.Strings(skipped)
	return skipped, nil
}
