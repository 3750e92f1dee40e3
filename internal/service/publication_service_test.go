package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightclass/results-api/internal/models"
	appErrors "github.com/brightclass/results-api/pkg/errors"
)

type mockPublicationRepo struct {
	gates     map[string]models.PublicationGate
	snapshots []models.PublishedSnapshot
}

func gateKey(schoolID, className, term, year string) string {
	return schoolID + "|" + className + "|" + term + "|" + year
}

func (m *mockPublicationRepo) GetGate(ctx context.Context, schoolID, className, term, academicYear string) (*models.PublicationGate, error) {
	if m.gates == nil {
		return nil, nil
	}
	if gate, ok := m.gates[gateKey(schoolID, className, term, academicYear)]; ok {
		copied := gate
		return &copied, nil
	}
	return nil, nil
}

func (m *mockPublicationRepo) SetPublished(ctx context.Context, gate models.PublicationGate) error {
	if m.gates == nil {
		m.gates = make(map[string]models.PublicationGate)
	}
	m.gates[gateKey(gate.SchoolID, gate.ClassName, gate.Term, gate.AcademicYear)] = gate
	return nil
}

func (m *mockPublicationRepo) PublishClass(ctx context.Context, gate models.PublicationGate, snapshots []models.PublishedSnapshot) error {
	key := gateKey(gate.SchoolID, gate.ClassName, gate.Term, gate.AcademicYear)
	if existing, ok := m.gates[key]; ok && existing.IsPublished {
		return appErrors.ErrAlreadyPublished
	}
	if m.gates == nil {
		m.gates = make(map[string]models.PublicationGate)
	}
	gate.IsPublished = true
	m.gates[key] = gate
	for _, snapshot := range snapshots {
		replaced := false
		for i := range m.snapshots {
			if m.snapshots[i].StudentID == snapshot.StudentID &&
				m.snapshots[i].Term == snapshot.Term &&
				m.snapshots[i].AcademicYear == snapshot.AcademicYear {
				m.snapshots[i] = snapshot
				replaced = true
			}
		}
		if !replaced {
			m.snapshots = append(m.snapshots, snapshot)
		}
	}
	return nil
}

func (m *mockPublicationRepo) LoadSnapshot(ctx context.Context, schoolID, studentID, term, academicYear, className string) (*models.PublishedSnapshot, error) {
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		s := m.snapshots[i]
		if s.SchoolID == schoolID && s.StudentID == studentID && s.Term == term {
			if academicYear != "" && s.AcademicYear != academicYear {
				continue
			}
			copied := s
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockPublicationRepo) LoadClassSnapshots(ctx context.Context, schoolID, className, term, academicYear string) ([]models.PublishedSnapshot, error) {
	var out []models.PublishedSnapshot
	for _, s := range m.snapshots {
		if s.SchoolID == schoolID && s.ClassName == className && s.Term == term {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockPublicationRepo) PublishedTermsForStudent(ctx context.Context, schoolID, studentID, className string) ([]models.PublishedTerm, error) {
	var out []models.PublishedTerm
	for _, s := range m.snapshots {
		if s.SchoolID == schoolID && s.StudentID == studentID {
			out = append(out, models.PublishedTerm{
				AcademicYear: s.AcademicYear,
				Term:         s.Term,
				ClassName:    s.ClassName,
				Token:        models.TermToken(s.AcademicYear, s.Term),
			})
		}
	}
	return out, nil
}

func (m *mockPublicationRepo) GatesForTerm(ctx context.Context, schoolID, term, academicYear string) (map[string]models.PublicationGate, error) {
	out := make(map[string]models.PublicationGate)
	for _, gate := range m.gates {
		if gate.SchoolID == schoolID && gate.Term == term {
			out[gate.ClassName] = gate
		}
	}
	return out, nil
}

type mockStudentRepo struct {
	records map[string]*models.StudentRecord
}

func (m *mockStudentRepo) List(ctx context.Context, schoolID, classFilter, termFilter string) ([]models.StudentRecord, error) {
	var out []models.StudentRecord
	for _, record := range m.records {
		if record.SchoolID != schoolID {
			continue
		}
		if classFilter != "" && record.ClassName != classFilter {
			continue
		}
		if termFilter != "" && record.Term != termFilter {
			continue
		}
		out = append(out, *record)
	}
	return out, nil
}

func (m *mockStudentRepo) Find(ctx context.Context, schoolID, studentID string) (*models.StudentRecord, error) {
	if record, ok := m.records[studentID]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, nil
}

func (m *mockStudentRepo) Upsert(ctx context.Context, record *models.StudentRecord) error {
	if m.records == nil {
		m.records = make(map[string]*models.StudentRecord)
	}
	copied := *record
	m.records[record.StudentID] = &copied
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, schoolID, studentID string) error {
	delete(m.records, studentID)
	return nil
}

type mockSchoolReader struct {
	school      *models.School
	assessments map[string]models.AssessmentConfig
}

func (m *mockSchoolReader) GetSchool(ctx context.Context, schoolID string) (*models.School, error) {
	return m.school, nil
}

func (m *mockSchoolReader) AssessmentConfig(ctx context.Context, schoolID, level string) (models.AssessmentConfig, error) {
	if cfg, ok := m.assessments[level]; ok {
		return cfg, nil
	}
	cfg := models.DefaultAssessmentConfig(level)
	cfg.SchoolID = schoolID
	return cfg, nil
}

type mockViewRepo struct {
	views map[string]int
}

func (m *mockViewRepo) RecordView(ctx context.Context, schoolID, studentID, term, academicYear string) error {
	if m.views == nil {
		m.views = make(map[string]int)
	}
	m.views[studentID+"|"+term]++
	return nil
}

func (m *mockViewRepo) ClassViewCounts(ctx context.Context, schoolID, term, academicYear string) (map[string]models.ClassViewCount, error) {
	return map[string]models.ClassViewCount{}, nil
}

type mockAssignmentLister struct {
	assignments []models.ClassAssignment
}

func (m *mockAssignmentLister) ListByTerm(ctx context.Context, schoolID, term, academicYear, teacherID string) ([]models.ClassAssignment, error) {
	return m.assignments, nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func configuredSchool() *models.School {
	return &models.School{
		ID:            "sch1",
		Name:          "Bright Academy",
		CurrentTerm:   "First Term",
		AcademicYear:  "2025/2026",
		GradeAMin:     intPtr(70),
		GradeBMin:     intPtr(60),
		GradeCMin:     intPtr(50),
		GradeDMin:     intPtr(40),
		PassMark:      intPtr(50),
		MaxTests:      2,
		TestScoreMax:  15,
		TestEnabled:   true,
		ExamEnabled:   true,
		RankingMode:   models.RankingSeparate,
		SS1StreamMode: models.StreamModeSeparate,
	}
}

func completeBlock(totalTest, totalExam float64) models.ScoreBlock {
	overall := totalTest + totalExam
	return models.ScoreBlock{
		ExamMode:    models.ExamModeCombined,
		TotalTest:   floatPtr(totalTest),
		TotalExam:   floatPtr(totalExam),
		OverallMark: floatPtr(overall),
	}
}

func completeStudent(id, name, class, term string, marks map[string][2]float64) *models.StudentRecord {
	record := &models.StudentRecord{
		SchoolID:  "sch1",
		StudentID: id,
		FirstName: name,
		ClassName: class,
		Term:      term,
		Stream:    models.StreamUnassigned,
		Scores:    models.ScoreMap{},
	}
	for subject, parts := range marks {
		record.Subjects = append(record.Subjects, subject)
		record.Scores[subject] = completeBlock(parts[0], parts[1])
	}
	record.SubjectCount = len(record.Subjects)
	return record
}

func newPublicationService(pubs *mockPublicationRepo, students *mockStudentRepo, settings *mockSchoolReader, views *mockViewRepo) *PublicationService {
	return NewPublicationService(pubs, students, settings, views, &mockAssignmentLister{}, nil, nil, zap.NewNop())
}

func TestPublishClassFreezesComputedResults(t *testing.T) {
	pubs := &mockPublicationRepo{}
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{
		"stu1": completeStudent("stu1", "Ada", "JSS1", "First Term", map[string][2]float64{
			"Mathematics": {25, 40}, // 65
			"English":     {30, 45}, // 75
		}),
	}}
	svc := newPublicationService(pubs, students, &mockSchoolReader{school: configuredSchool()}, &mockViewRepo{})

	result, err := svc.PublishClass(context.Background(), "sch1", PublishRequest{
		ClassName: "JSS1", Term: "First Term", AcademicYear: "2025/2026",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.StudentCount)

	require.Len(t, pubs.snapshots, 1)
	snapshot := pubs.snapshots[0]
	assert.InDelta(t, 70.0, snapshot.AverageMarks, 1e-9)
	assert.Equal(t, "A", snapshot.Grade)
	assert.Equal(t, "Pass", snapshot.Status)
	assert.Equal(t, "A", snapshot.Scores["English"].Grade)
	assert.Equal(t, "B", snapshot.Scores["Mathematics"].Grade)
}

func TestPublishClassIsPublishOnce(t *testing.T) {
	pubs := &mockPublicationRepo{}
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{
		"stu1": completeStudent("stu1", "Ada", "JSS1", "First Term", map[string][2]float64{"Mathematics": {20, 40}}),
	}}
	svc := newPublicationService(pubs, students, &mockSchoolReader{school: configuredSchool()}, &mockViewRepo{})

	req := PublishRequest{ClassName: "JSS1", Term: "First Term", AcademicYear: "2025/2026"}
	_, err := svc.PublishClass(context.Background(), "sch1", req)
	require.NoError(t, err)

	_, err = svc.PublishClass(context.Background(), "sch1", req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrAlreadyPublished) || appErrors.FromError(err).Code == "ALREADY_PUBLISHED")
}

func TestPublishClassRejectsIncompleteScores(t *testing.T) {
	incomplete := completeStudent("stu2", "Bayo", "JSS1", "First Term", map[string][2]float64{"Mathematics": {20, 40}})
	incomplete.Subjects = append(incomplete.Subjects, "English") // no score block

	pubs := &mockPublicationRepo{}
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{"stu2": incomplete}}
	svc := newPublicationService(pubs, students, &mockSchoolReader{school: configuredSchool()}, &mockViewRepo{})

	_, err := svc.PublishClass(context.Background(), "sch1", PublishRequest{ClassName: "JSS1", Term: "First Term"})
	require.Error(t, err)
	assert.Equal(t, "INCOMPLETE_SCORES", appErrors.FromError(err).Code)
	assert.Contains(t, appErrors.FromError(err).Message, "Bayo")
	assert.Empty(t, pubs.snapshots)
}

func TestPublishClassRequiresConfiguredThresholds(t *testing.T) {
	school := configuredSchool()
	school.GradeAMin = nil

	pubs := &mockPublicationRepo{}
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{
		"stu1": completeStudent("stu1", "Ada", "JSS1", "First Term", map[string][2]float64{"Mathematics": {20, 40}}),
	}}
	svc := newPublicationService(pubs, students, &mockSchoolReader{school: school}, &mockViewRepo{})

	_, err := svc.PublishClass(context.Background(), "sch1", PublishRequest{ClassName: "JSS1", Term: "First Term"})
	require.Error(t, err)
	assert.Equal(t, "CONFIG_MISSING", appErrors.FromError(err).Code)
}

func TestUnpublishReopensThenRepublishOverwrites(t *testing.T) {
	pubs := &mockPublicationRepo{}
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{
		"stu1": completeStudent("stu1", "Ada", "JSS1", "First Term", map[string][2]float64{"Mathematics": {20, 40}}),
	}}
	svc := newPublicationService(pubs, students, &mockSchoolReader{school: configuredSchool()}, &mockViewRepo{})

	req := PublishRequest{ClassName: "JSS1", Term: "First Term", AcademicYear: "2025/2026"}
	_, err := svc.PublishClass(context.Background(), "sch1", req)
	require.NoError(t, err)

	require.NoError(t, svc.Unpublish(context.Background(), "sch1", "JSS1", "First Term", "2025/2026"))

	// Snapshot stays frozen while the gate is reopened.
	snapshot, err := svc.StudentResult(context.Background(), "sch1", "stu1", "")
	require.NoError(t, err)
	assert.InDelta(t, 60.0, snapshot.AverageMarks, 1e-9)

	// Edits to the working record only surface after republishing.
	students.records["stu1"].Scores["Mathematics"] = completeBlock(30, 50)
	_, err = svc.PublishClass(context.Background(), "sch1", req)
	require.NoError(t, err)

	snapshot, err = svc.StudentResult(context.Background(), "sch1", "stu1", "")
	require.NoError(t, err)
	assert.InDelta(t, 80.0, snapshot.AverageMarks, 1e-9)
}

func TestUnpublishWithoutPublicationFails(t *testing.T) {
	svc := newPublicationService(&mockPublicationRepo{}, &mockStudentRepo{}, &mockSchoolReader{school: configuredSchool()}, &mockViewRepo{})
	err := svc.Unpublish(context.Background(), "sch1", "JSS1", "First Term", "")
	require.Error(t, err)
	assert.Equal(t, "NOT_PUBLISHED", appErrors.FromError(err).Code)
}

func TestStudentResultRecordsViewAndResolvesLatestTerm(t *testing.T) {
	pubs := &mockPublicationRepo{}
	students := &mockStudentRepo{records: map[string]*models.StudentRecord{
		"stu1": completeStudent("stu1", "Ada", "JSS1", "First Term", map[string][2]float64{"Mathematics": {20, 40}}),
	}}
	views := &mockViewRepo{}
	svc := newPublicationService(pubs, students, &mockSchoolReader{school: configuredSchool()}, views)

	_, err := svc.PublishClass(context.Background(), "sch1", PublishRequest{ClassName: "JSS1", Term: "First Term", AcademicYear: "2025/2026"})
	require.NoError(t, err)

	snapshot, err := svc.StudentResult(context.Background(), "sch1", "stu1", "")
	require.NoError(t, err)
	assert.Equal(t, "First Term", snapshot.Term)
	assert.Equal(t, 1, views.views["stu1|First Term"])

	// Explicit token selects the same published term.
	snapshot, err = svc.StudentResult(context.Background(), "sch1", "stu1", "2025/2026::First Term")
	require.NoError(t, err)
	assert.Equal(t, "First Term", snapshot.Term)
	assert.Equal(t, 2, views.views["stu1|First Term"])
}

func TestStudentResultUnpublishedStudent(t *testing.T) {
	svc := newPublicationService(&mockPublicationRepo{}, &mockStudentRepo{}, &mockSchoolReader{school: configuredSchool()}, &mockViewRepo{})
	_, err := svc.StudentResult(context.Background(), "sch1", "ghost", "")
	require.Error(t, err)
	assert.Equal(t, "NOT_PUBLISHED", appErrors.FromError(err).Code)
}
