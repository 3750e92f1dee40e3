package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightclass/results-api/internal/models"
	appErrors "github.com/brightclass/results-api/pkg/errors"
)

func newScoreService(students *mockStudentRepo, pubs *mockPublicationRepo, settings *mockSchoolReader) *ScoreService {
	return NewScoreService(students, pubs, settings, nil, validator.New(), zap.NewNop())
}

func draftStudent(id, class string) *models.StudentRecord {
	return &models.StudentRecord{
		SchoolID:  "sch1",
		StudentID: id,
		FirstName: "Ada",
		ClassName: class,
		Term:      "First Term",
		Stream:    models.StreamUnassigned,
		Subjects:  []string{"Mathematics"},
		Scores:    models.ScoreMap{},
	}
}

func TestSaveScoresComputesDerivedFields(t *testing.T) {
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{"stu1": draftStudent("stu1", "JSS1")}}
	svc := newScoreService(students, &mockPublicationRepo{}, &mockSchoolReader{school: configuredSchool()})

	record, err := svc.SaveScores(context.Background(), "sch1", SaveScoresRequest{
		StudentID: "stu1",
		Term:      "First Term",
		Scores: []SubjectScoreInput{{
			Subject:   "Mathematics",
			Tests:     []float64{12, 13},
			ExamScore: floatPtr(50),
		}},
	}, false)
	require.NoError(t, err)

	block := record.Scores["Mathematics"]
	require.NotNil(t, block.TotalTest)
	assert.InDelta(t, 25.0, *block.TotalTest, 1e-9)
	require.NotNil(t, block.TotalExam)
	assert.InDelta(t, 50.0, *block.TotalExam, 1e-9)
	require.NotNil(t, block.OverallMark)
	assert.InDelta(t, 75.0, *block.OverallMark, 1e-9)
	assert.Equal(t, "A", block.Grade)

	// Persisted, not just returned.
	stored := students.records["stu1"]
	assert.InDelta(t, 75.0, stored.Scores["Mathematics"].OverallMarkValue(), 1e-9)
}

func TestSaveScoresRejectsPublishedTerm(t *testing.T) {
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{"stu1": draftStudent("stu1", "JSS1")}}
	pubs := &mockPublicationRepo{gates: map[string]models.PublicationGate{
		gateKey("sch1", "JSS1", "First Term", ""): {SchoolID: "sch1", ClassName: "JSS1", Term: "First Term", IsPublished: true},
	}}
	svc := newScoreService(students, pubs, &mockSchoolReader{school: configuredSchool()})

	req := SaveScoresRequest{
		StudentID: "stu1",
		Term:      "First Term",
		Scores:    []SubjectScoreInput{{Subject: "Mathematics", ExamScore: floatPtr(40)}},
	}
	_, err := svc.SaveScores(context.Background(), "sch1", req, false)
	require.Error(t, err)
	assert.Equal(t, "RESULTS_LOCKED", appErrors.FromError(err).Code)

	// Reopen authority drops the gate back to draft and saves.
	_, err = svc.SaveScores(context.Background(), "sch1", req, true)
	require.NoError(t, err)
	gate := pubs.gates[gateKey("sch1", "JSS1", "First Term", "")]
	assert.False(t, gate.IsPublished)
}

func TestSaveScoresRejectedReopenLeavesGatePublished(t *testing.T) {
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{"stu1": draftStudent("stu1", "JSS1")}}
	pubs := &mockPublicationRepo{gates: map[string]models.PublicationGate{
		gateKey("sch1", "JSS1", "First Term", ""): {SchoolID: "sch1", ClassName: "JSS1", Term: "First Term", IsPublished: true},
	}}
	svc := newScoreService(students, pubs, &mockSchoolReader{school: configuredSchool()})

	// An out-of-range score on the reopen path fails validation after the
	// locked check; the class must stay published and the sheet untouched.
	_, err := svc.SaveScores(context.Background(), "sch1", SaveScoresRequest{
		StudentID: "stu1",
		Term:      "First Term",
		Scores:    []SubjectScoreInput{{Subject: "Mathematics", Tests: []float64{16}}},
	}, true)
	require.Error(t, err)
	assert.Equal(t, "SCORE_OUT_OF_RANGE", appErrors.FromError(err).Code)

	gate := pubs.gates[gateKey("sch1", "JSS1", "First Term", "")]
	assert.True(t, gate.IsPublished)
	assert.Empty(t, students.records["stu1"].Scores)
}

func TestSaveScoresRequiresStreamInStreamClass(t *testing.T) {
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{"stu1": draftStudent("stu1", "SS2")}}
	svc := newScoreService(students, &mockPublicationRepo{}, &mockSchoolReader{school: configuredSchool()})

	_, err := svc.SaveScores(context.Background(), "sch1", SaveScoresRequest{
		StudentID: "stu1",
		Term:      "First Term",
		Scores:    []SubjectScoreInput{{Subject: "Physics", Objective: floatPtr(20)}},
	}, false)
	require.Error(t, err)
	assert.Equal(t, "STREAM_REQUIRED", appErrors.FromError(err).Code)
}

func TestSaveScoresValidatesRanges(t *testing.T) {
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{"stu1": draftStudent("stu1", "JSS1")}}
	svc := newScoreService(students, &mockPublicationRepo{}, &mockSchoolReader{school: configuredSchool()})

	// Test score above the tenant cap.
	_, err := svc.SaveScores(context.Background(), "sch1", SaveScoresRequest{
		StudentID: "stu1",
		Term:      "First Term",
		Scores:    []SubjectScoreInput{{Subject: "Mathematics", Tests: []float64{16}}},
	}, false)
	require.Error(t, err)
	assert.Equal(t, "SCORE_OUT_OF_RANGE", appErrors.FromError(err).Code)

	// More tests than the tenant allows.
	_, err = svc.SaveScores(context.Background(), "sch1", SaveScoresRequest{
		StudentID: "stu1",
		Term:      "First Term",
		Scores:    []SubjectScoreInput{{Subject: "Mathematics", Tests: []float64{10, 10, 10}}},
	}, false)
	require.Error(t, err)
	assert.Equal(t, "SCORE_OUT_OF_RANGE", appErrors.FromError(err).Code)

	// Exam score above the level maximum (jss combined caps at 70).
	_, err = svc.SaveScores(context.Background(), "sch1", SaveScoresRequest{
		StudentID: "stu1",
		Term:      "First Term",
		Scores:    []SubjectScoreInput{{Subject: "Mathematics", ExamScore: floatPtr(71)}},
	}, false)
	require.Error(t, err)
	assert.Equal(t, "SCORE_OUT_OF_RANGE", appErrors.FromError(err).Code)
}

func TestSaveScoresRejectsWrongModeComponents(t *testing.T) {
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{"stu1": draftStudent("stu1", "JSS1")}}
	svc := newScoreService(students, &mockPublicationRepo{}, &mockSchoolReader{school: configuredSchool()})

	// JSS runs combined mode, so objective/theory are not accepted.
	_, err := svc.SaveScores(context.Background(), "sch1", SaveScoresRequest{
		StudentID: "stu1",
		Term:      "First Term",
		Scores:    []SubjectScoreInput{{Subject: "Mathematics", Objective: floatPtr(20), Theory: floatPtr(30)}},
	}, false)
	require.Error(t, err)
	assert.Equal(t, "SCORE_OUT_OF_RANGE", appErrors.FromError(err).Code)
}

func TestSaveScoresSeparateModeSumsComponents(t *testing.T) {
	record := draftStudent("stu1", "SS2")
	record.Stream = "Science"
	record.Subjects = []string{"Physics"}
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{"stu1": record}}
	svc := newScoreService(students, &mockPublicationRepo{}, &mockSchoolReader{school: configuredSchool()})

	saved, err := svc.SaveScores(context.Background(), "sch1", SaveScoresRequest{
		StudentID: "stu1",
		Term:      "First Term",
		Scores: []SubjectScoreInput{{
			Subject:   "Physics",
			Tests:     []float64{10, 10},
			Objective: floatPtr(25),
			Theory:    floatPtr(35),
		}},
	}, false)
	require.NoError(t, err)

	block := saved.Scores["Physics"]
	assert.Equal(t, models.ExamModeSeparate, block.ExamMode)
	assert.InDelta(t, 60.0, block.TotalExamValue(), 1e-9)
	assert.InDelta(t, 80.0, block.OverallMarkValue(), 1e-9)
	assert.Equal(t, "A", block.Grade)
}

func TestCompletenessReportsMissingSubjects(t *testing.T) {
	complete := completeStudent("stu1", "Ada", "JSS1", "First Term", map[string][2]float64{"Mathematics": {20, 40}})
	partial := draftStudent("stu2", "JSS1")
	partial.FirstName = "Bayo"
	partial.Subjects = []string{"Mathematics", "English"}
	partial.Scores = models.ScoreMap{"Mathematics": completeBlock(20, 40)}

	students := &mockStudentRepo{records: map[string]*models.StudentRecord{"stu1": complete, "stu2": partial}}
	svc := newScoreService(students, &mockPublicationRepo{}, &mockSchoolReader{school: configuredSchool()})

	report, err := svc.Completeness(context.Background(), "sch1", "JSS1", "First Term")
	require.NoError(t, err)
	require.Len(t, report, 2)

	byID := make(map[string]StudentCompleteness, len(report))
	for _, entry := range report {
		byID[entry.StudentID] = entry
	}
	assert.True(t, byID["stu1"].Complete)
	assert.False(t, byID["stu2"].Complete)
	assert.Equal(t, []string{"English"}, byID["stu2"].MissingSubjects)
}
