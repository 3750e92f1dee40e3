package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightclass/results-api/internal/models"
)

type mockSettingsRepo struct {
	school      *models.School
	thresholds  *models.GradeThresholds
	assessments map[string]models.AssessmentConfig
	term        string
	year        string
}

func (m *mockSettingsRepo) GetSchool(ctx context.Context, schoolID string) (*models.School, error) {
	return m.school, nil
}

func (m *mockSettingsRepo) SaveGradeThresholds(ctx context.Context, schoolID string, thresholds models.GradeThresholds) error {
	m.thresholds = &thresholds
	return nil
}

func (m *mockSettingsRepo) SaveTerm(ctx context.Context, schoolID, term, academicYear string) error {
	m.term = term
	m.year = academicYear
	return nil
}

func (m *mockSettingsRepo) AssessmentConfig(ctx context.Context, schoolID, level string) (models.AssessmentConfig, error) {
	if cfg, ok := m.assessments[level]; ok {
		return cfg, nil
	}
	cfg := models.DefaultAssessmentConfig(level)
	cfg.SchoolID = schoolID
	return cfg, nil
}

func (m *mockSettingsRepo) SaveAssessmentConfig(ctx context.Context, config models.AssessmentConfig) error {
	if m.assessments == nil {
		m.assessments = make(map[string]models.AssessmentConfig)
	}
	m.assessments[config.Level] = config
	return nil
}

func TestSaveGradeThresholdsOrdering(t *testing.T) {
	repo := &mockSettingsRepo{school: configuredSchool()}
	svc := NewSettingsService(repo, validator.New(), zap.NewNop())

	saved, err := svc.SaveGradeThresholds(context.Background(), "sch1", GradeThresholdsRequest{
		A: 75, B: 65, C: 55, D: 45, PassMark: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 75, saved.A)
	require.NotNil(t, repo.thresholds)
	assert.Equal(t, 45, repo.thresholds.D)

	_, err = svc.SaveGradeThresholds(context.Background(), "sch1", GradeThresholdsRequest{
		A: 60, B: 65, C: 55, D: 45, PassMark: 50,
	})
	require.Error(t, err)
	assert.Equal(t, 45, repo.thresholds.D) // unchanged
}

func TestSaveAssessmentConfigSeparateDerivesTotal(t *testing.T) {
	repo := &mockSettingsRepo{school: configuredSchool()}
	svc := NewSettingsService(repo, validator.New(), zap.NewNop())

	saved, err := svc.SaveAssessmentConfig(context.Background(), "sch1", AssessmentConfigRequest{
		Level: "ss", ExamMode: "separate", ObjectiveMax: 30, TheoryMax: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, 70, saved.ExamScoreMax)

	_, err = svc.SaveAssessmentConfig(context.Background(), "sch1", AssessmentConfigRequest{
		Level: "ss", ExamMode: "separate", ObjectiveMax: 30,
	})
	require.Error(t, err)
}

func TestSaveAssessmentConfigCombinedClearsComponents(t *testing.T) {
	repo := &mockSettingsRepo{school: configuredSchool()}
	svc := NewSettingsService(repo, validator.New(), zap.NewNop())

	saved, err := svc.SaveAssessmentConfig(context.Background(), "sch1", AssessmentConfigRequest{
		Level: "jss", ExamMode: "combined", ExamScoreMax: 70, ObjectiveMax: 30, TheoryMax: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, saved.ObjectiveMax)
	assert.Equal(t, 0, saved.TheoryMax)
	assert.Equal(t, 70, saved.ExamScoreMax)
}

func TestAssessmentConfigDefaults(t *testing.T) {
	repo := &mockSettingsRepo{school: configuredSchool()}
	svc := NewSettingsService(repo, validator.New(), zap.NewNop())

	cfg, err := svc.AssessmentConfig(context.Background(), "sch1", "primary")
	require.NoError(t, err)
	assert.Equal(t, models.ExamModeCombined, cfg.ExamMode)
	assert.Equal(t, 60, cfg.ExamScoreMax)

	cfg, err = svc.AssessmentConfig(context.Background(), "sch1", "ss")
	require.NoError(t, err)
	assert.Equal(t, models.ExamModeSeparate, cfg.ExamMode)
	assert.Equal(t, 30, cfg.ObjectiveMax)
	assert.Equal(t, 40, cfg.TheoryMax)
}
