package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightclass/results-api/internal/models"
	"github.com/brightclass/results-api/internal/repository"
	appErrors "github.com/brightclass/results-api/pkg/errors"
)

type mockRolloverRepo struct {
	rolledFrom string
	rolledTo   string
	applied    []repository.PromotionUpdate
}

func (m *mockRolloverRepo) Rollover(ctx context.Context, schoolID, fromTerm, fromYear, toTerm, toYear string) (*repository.RolloverResult, error) {
	m.rolledFrom = fromTerm
	m.rolledTo = toTerm
	return &repository.RolloverResult{AssignmentsCopied: 3, StudentsMoved: 25}, nil
}

func (m *mockRolloverRepo) ApplyPromotions(ctx context.Context, schoolID string, updates []repository.PromotionUpdate) error {
	m.applied = updates
	return nil
}

type mockTermWriter struct {
	term string
	year string
}

func (m *mockTermWriter) SaveTerm(ctx context.Context, schoolID, term, academicYear string) error {
	m.term = term
	m.year = academicYear
	return nil
}

type mockSubjectBuilder struct {
	subjects map[string][]string
}

func (m *mockSubjectBuilder) BuildSubjects(ctx context.Context, schoolID, className, stream string, optionalPicks []string) ([]string, error) {
	key := models.CanonicalClassName(className)
	if subjects, ok := m.subjects[key]; ok {
		return subjects, nil
	}
	return nil, appErrors.ErrConfigMissing
}

func newRolloverService(rollovers *mockRolloverRepo, students *mockStudentRepo, settings *mockSchoolReader, terms *mockTermWriter, subjects *mockSubjectBuilder) *RolloverService {
	return NewRolloverService(rollovers, students, settings, terms, subjects, validator.New(), zap.NewNop())
}

func TestRolloverMovesTermAndUpdatesSchool(t *testing.T) {
	rollovers := &mockRolloverRepo{}
	terms := &mockTermWriter{}
	svc := newRolloverService(rollovers, &mockStudentRepo{}, &mockSchoolReader{school: configuredSchool()}, terms, &mockSubjectBuilder{})

	result, err := svc.Rollover(context.Background(), "sch1", RolloverRequest{ToTerm: "Second Term"})
	require.NoError(t, err)
	assert.Equal(t, 25, result.StudentsMoved)
	assert.Equal(t, "First Term", rollovers.rolledFrom)
	assert.Equal(t, "Second Term", rollovers.rolledTo)
	assert.Equal(t, "Second Term", terms.term)
	assert.Equal(t, "2025/2026", terms.year)
}

func TestRolloverSameTermIsNoOp(t *testing.T) {
	rollovers := &mockRolloverRepo{}
	terms := &mockTermWriter{}
	svc := newRolloverService(rollovers, &mockStudentRepo{}, &mockSchoolReader{school: configuredSchool()}, terms, &mockSubjectBuilder{})

	result, err := svc.Rollover(context.Background(), "sch1", RolloverRequest{ToTerm: "First Term", ToYear: "2025/2026"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.StudentsMoved)
	assert.Empty(t, rollovers.rolledTo)
	assert.Empty(t, terms.term)
}

func TestPromoteBuildsTargetSubjects(t *testing.T) {
	rollovers := &mockRolloverRepo{}
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{
		"stu1": {SchoolID: "sch1", StudentID: "stu1", ClassName: "JSS3", Stream: models.StreamUnassigned},
	}}
	subjects := &mockSubjectBuilder{subjects: map[string][]string{
		"SS1": {"Mathematics", "English", "Physics"},
	}}
	svc := newRolloverService(rollovers, students, &mockSchoolReader{school: configuredSchool()}, &mockTermWriter{}, subjects)

	result, err := svc.Promote(context.Background(), "sch1", []PromotionDecision{{
		StudentID: "stu1", Action: models.PromotionPromote, TargetClass: "SS1", Stream: "Science",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Promoted)

	require.Len(t, rollovers.applied, 1)
	update := rollovers.applied[0]
	assert.Equal(t, "SS1", update.ClassName)
	assert.Equal(t, "Science", update.Stream)
	assert.Equal(t, []string{"Mathematics", "English", "Physics"}, update.Subjects)
	assert.True(t, update.Promoted)
}

func TestPromoteRejectsClassSkipping(t *testing.T) {
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{
		"stu1": {SchoolID: "sch1", StudentID: "stu1", ClassName: "JSS1"},
	}}
	svc := newRolloverService(&mockRolloverRepo{}, students, &mockSchoolReader{school: configuredSchool()}, &mockTermWriter{}, &mockSubjectBuilder{})

	_, err := svc.Promote(context.Background(), "sch1", []PromotionDecision{{
		StudentID: "stu1", Action: models.PromotionPromote, TargetClass: "JSS3",
	}})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.FromError(err).Code)
}

func TestPromoteSS3Graduates(t *testing.T) {
	rollovers := &mockRolloverRepo{}
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{
		"stu1": {SchoolID: "sch1", StudentID: "stu1", ClassName: "SS3", Stream: "Art"},
	}}
	svc := newRolloverService(rollovers, students, &mockSchoolReader{school: configuredSchool()}, &mockTermWriter{}, &mockSubjectBuilder{})

	result, err := svc.Promote(context.Background(), "sch1", []PromotionDecision{{
		StudentID: "stu1", Action: models.PromotionPromote,
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Graduated)

	require.Len(t, rollovers.applied, 1)
	assert.Equal(t, models.ClassGraduated, rollovers.applied[0].ClassName)
	assert.Empty(t, rollovers.applied[0].Subjects)
}

func TestPromoteGraduatedStudentRejected(t *testing.T) {
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{
		"stu1": {SchoolID: "sch1", StudentID: "stu1", ClassName: models.ClassGraduated},
	}}
	svc := newRolloverService(&mockRolloverRepo{}, students, &mockSchoolReader{school: configuredSchool()}, &mockTermWriter{}, &mockSubjectBuilder{})

	_, err := svc.Promote(context.Background(), "sch1", []PromotionDecision{{
		StudentID: "stu1", Action: models.PromotionRepeat,
	}})
	require.Error(t, err)
}

func TestPromoteRepeatAndRemove(t *testing.T) {
	rollovers := &mockRolloverRepo{}
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{
		"stu1": {SchoolID: "sch1", StudentID: "stu1", ClassName: "JSS2", Subjects: []string{"Mathematics"}},
		"stu2": {SchoolID: "sch1", StudentID: "stu2", ClassName: "JSS2"},
	}}
	svc := newRolloverService(rollovers, students, &mockSchoolReader{school: configuredSchool()}, &mockTermWriter{}, &mockSubjectBuilder{})

	result, err := svc.Promote(context.Background(), "sch1", []PromotionDecision{
		{StudentID: "stu1", Action: models.PromotionRepeat},
		{StudentID: "stu2", Action: models.PromotionRemove},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Repeated)
	assert.Equal(t, 1, result.Removed)

	require.Len(t, rollovers.applied, 2)
	assert.Equal(t, "JSS2", rollovers.applied[0].ClassName)
	assert.False(t, rollovers.applied[0].Promoted)
	assert.True(t, rollovers.applied[1].Remove)
}
