package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brightclass/results-api/internal/grading"
	"github.com/brightclass/results-api/internal/models"
	appErrors "github.com/brightclass/results-api/pkg/errors"
)

type publicationRepo interface {
	GetGate(ctx context.Context, schoolID, className, term, academicYear string) (*models.PublicationGate, error)
	SetPublished(ctx context.Context, gate models.PublicationGate) error
	PublishClass(ctx context.Context, gate models.PublicationGate, snapshots []models.PublishedSnapshot) error
	LoadSnapshot(ctx context.Context, schoolID, studentID, term, academicYear, className string) (*models.PublishedSnapshot, error)
	LoadClassSnapshots(ctx context.Context, schoolID, className, term, academicYear string) ([]models.PublishedSnapshot, error)
	PublishedTermsForStudent(ctx context.Context, schoolID, studentID, className string) ([]models.PublishedTerm, error)
	GatesForTerm(ctx context.Context, schoolID, term, academicYear string) (map[string]models.PublicationGate, error)
}

type viewRepo interface {
	RecordView(ctx context.Context, schoolID, studentID, term, academicYear string) error
	ClassViewCounts(ctx context.Context, schoolID, term, academicYear string) (map[string]models.ClassViewCount, error)
}

type assignmentLister interface {
	ListByTerm(ctx context.Context, schoolID, term, academicYear, teacherID string) ([]models.ClassAssignment, error)
}

// PublishRequest identifies the class scope to publish.
type PublishRequest struct {
	ClassName     string `json:"classname" validate:"required"`
	Term          string `json:"term" validate:"required"`
	AcademicYear  string `json:"academic_year"`
	TeacherID     string `json:"teacher_id"`
	TeacherName   string `json:"teacher_name"`
	PrincipalName string `json:"principal_name"`
}

// PublishResult summarises a successful publication.
type PublishResult struct {
	ClassName    string    `json:"classname"`
	Term         string    `json:"term"`
	AcademicYear string    `json:"academic_year"`
	StudentCount int       `json:"student_count"`
	PublishedAt  time.Time `json:"published_at"`
}

// PublicationService orchestrates the publish-once flow and all reads of
// frozen snapshots. Working records and snapshots never mix: the publish
// transaction is the only path from one to the other.
type PublicationService struct {
	publications publicationRepo
	students     studentRepo
	settings     schoolReader
	views        viewRepo
	assignments  assignmentLister
	cache        *CacheService
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewPublicationService constructs PublicationService.
func NewPublicationService(publications publicationRepo, students studentRepo, settings schoolReader, views viewRepo, assignments assignmentLister, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *PublicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicationService{
		publications: publications,
		students:     students,
		settings:     settings,
		views:        views,
		assignments:  assignments,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
	}
}

// PublishClass freezes every student's computed result for a class+term
// into snapshots and flips the gate, atomically. A tenant that never
// configured grade thresholds cannot publish: silently grading a whole
// class on defaults is worse than failing.
func (s *PublicationService) PublishClass(ctx context.Context, schoolID string, req PublishRequest) (*PublishResult, error) {
	start := time.Now()
	result, err := s.publishClass(ctx, schoolID, req)
	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		s.metrics.RecordPublish(outcome, time.Since(start))
	}
	return result, err
}

func (s *PublicationService) publishClass(ctx context.Context, schoolID string, req PublishRequest) (*PublishResult, error) {
	school, err := s.settings.GetSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if school == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
	}
	thresholds, configured := school.Thresholds()
	if !configured {
		return nil, appErrors.Clone(appErrors.ErrConfigMissing, "grade thresholds not configured for this school")
	}

	gate, err := s.publications.GetGate(ctx, schoolID, req.ClassName, req.Term, req.AcademicYear)
	if err != nil {
		return nil, err
	}
	if gate != nil && gate.IsPublished {
		return nil, appErrors.ErrAlreadyPublished
	}

	records, err := s.students.List(ctx, schoolID, req.ClassName, req.Term)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no students with scores for this class and term")
	}

	tracking := grading.TrackingSettings{TestEnabled: school.TestEnabled, ExamEnabled: school.ExamEnabled}
	var incomplete []string
	for i := range records {
		if !grading.IsStudentComplete(&records[i], tracking, req.Term) {
			incomplete = append(incomplete, records[i].FirstName)
		}
	}
	if len(incomplete) > 0 {
		return nil, appErrors.Clone(appErrors.ErrIncompleteScores,
			fmt.Sprintf("incomplete scores for: %s", strings.Join(incomplete, ", ")))
	}

	snapshots := make([]models.PublishedSnapshot, 0, len(records))
	for i := range records {
		record := &records[i]
		scores := make(models.ScoreMap, len(record.Scores))
		for subject, block := range record.Scores {
			overall := grading.ComputeOverallMark(block, tracking)
			block.OverallMark = &overall
			block.Grade = grading.Grade(overall, thresholds)
			scores[subject] = block
		}
		average := grading.AverageMarks(scores, tracking)
		snapshots = append(snapshots, models.PublishedSnapshot{
			SchoolID:       schoolID,
			StudentID:      record.StudentID,
			FirstName:      record.FirstName,
			ClassName:      record.ClassName,
			AcademicYear:   req.AcademicYear,
			Term:           req.Term,
			Stream:         record.StreamOrUnassigned(),
			SubjectCount:   len(record.Subjects),
			Subjects:       record.Subjects,
			Scores:         scores,
			TeacherComment: record.TeacherComment,
			AverageMarks:   average,
			Grade:          grading.Grade(average, thresholds),
			Status:         grading.Status(average, thresholds),
		})
	}

	newGate := models.PublicationGate{
		SchoolID:      schoolID,
		ClassName:     req.ClassName,
		Term:          req.Term,
		AcademicYear:  req.AcademicYear,
		TeacherID:     req.TeacherID,
		TeacherName:   req.TeacherName,
		PrincipalName: req.PrincipalName,
		IsPublished:   true,
	}
	if err := s.publications.PublishClass(ctx, newGate, snapshots); err != nil {
		return nil, err
	}

	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, SchoolCachePattern(schoolID, req.ClassName)); err != nil {
			s.logger.Warn("ranking cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info("class results published",
		zap.String("school_id", schoolID),
		zap.String("classname", req.ClassName),
		zap.String("term", req.Term),
		zap.Int("students", len(snapshots)))

	return &PublishResult{
		ClassName:    req.ClassName,
		Term:         req.Term,
		AcademicYear: req.AcademicYear,
		StudentCount: len(snapshots),
		PublishedAt:  time.Now().UTC(),
	}, nil
}

// Unpublish reopens a published class+term so teachers can edit scores.
// The frozen snapshots stay readable until the next publish overwrites
// them.
func (s *PublicationService) Unpublish(ctx context.Context, schoolID, className, term, academicYear string) error {
	gate, err := s.publications.GetGate(ctx, schoolID, className, term, academicYear)
	if err != nil {
		return err
	}
	if gate == nil || !gate.IsPublished {
		return appErrors.ErrNotPublished
	}
	reopened := *gate
	reopened.IsPublished = false
	if err := s.publications.SetPublished(ctx, reopened); err != nil {
		return err
	}
	s.logger.Info("class results unpublished",
		zap.String("school_id", schoolID),
		zap.String("classname", className),
		zap.String("term", term))
	return nil
}

// StudentResult resolves one student's published snapshot. An empty
// termToken selects the most recent published term; otherwise the token
// is "year::term" or a bare term name. Reads are counted but a failed
// view write never blocks the result.
func (s *PublicationService) StudentResult(ctx context.Context, schoolID, studentID, termToken string) (*models.PublishedSnapshot, error) {
	year, term := models.ParseTermToken(termToken)
	if term == "" {
		terms, err := s.publications.PublishedTermsForStudent(ctx, schoolID, studentID, "")
		if err != nil {
			return nil, err
		}
		if len(terms) == 0 {
			return nil, appErrors.ErrNotPublished
		}
		latest := terms[len(terms)-1]
		year, term = latest.AcademicYear, latest.Term
	}

	snapshot, err := s.publications.LoadSnapshot(ctx, schoolID, studentID, term, year, "")
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, appErrors.ErrNotPublished
	}

	if s.metrics != nil {
		s.metrics.RecordSnapshotRead()
	}
	if s.views != nil {
		if err := s.views.RecordView(ctx, schoolID, studentID, term, year); err != nil {
			s.logger.Warn("result view tracking failed",
				zap.String("student_id", studentID), zap.Error(err))
		}
	}
	return snapshot, nil
}

// PublishedTerms lists the term selector entries for one student,
// newest last.
func (s *PublicationService) PublishedTerms(ctx context.Context, schoolID, studentID string) ([]models.PublishedTerm, error) {
	terms, err := s.publications.PublishedTermsForStudent(ctx, schoolID, studentID, "")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(terms, func(i, j int) bool {
		if terms[i].AcademicYear != terms[j].AcademicYear {
			return terms[i].AcademicYear < terms[j].AcademicYear
		}
		return models.TermSortValue(terms[i].Term) < models.TermSortValue(terms[j].Term)
	})
	return terms, nil
}

// ClassSnapshots returns the frozen sheets for a class+term.
func (s *PublicationService) ClassSnapshots(ctx context.Context, schoolID, className, term, academicYear string) ([]models.PublishedSnapshot, error) {
	snapshots, err := s.publications.LoadClassSnapshots(ctx, schoolID, className, term, academicYear)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, appErrors.ErrNotPublished
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].FirstName < snapshots[j].FirstName
	})
	return snapshots, nil
}

// Statuses builds the admin dashboard rows: every assigned class for the
// term with its gate state and published/viewed counts.
func (s *PublicationService) Statuses(ctx context.Context, schoolID, term, academicYear string) ([]models.PublicationStatus, error) {
	assignments, err := s.assignments.ListByTerm(ctx, schoolID, term, academicYear, "")
	if err != nil {
		return nil, err
	}
	gates, err := s.publications.GatesForTerm(ctx, schoolID, term, academicYear)
	if err != nil {
		return nil, err
	}
	var counts map[string]models.ClassViewCount
	if s.views != nil {
		counts, err = s.views.ClassViewCounts(ctx, schoolID, term, academicYear)
		if err != nil {
			s.logger.Warn("class view counts unavailable", zap.Error(err))
			counts = nil
		}
	}

	statuses := make([]models.PublicationStatus, 0, len(assignments))
	for _, assignment := range assignments {
		status := models.PublicationStatus{
			ClassName:   assignment.ClassName,
			TeacherID:   assignment.TeacherID,
			TeacherName: assignment.TeacherName,
			Term:        term,
		}
		if gate, ok := gates[assignment.ClassName]; ok {
			status.IsPublished = gate.IsPublished
			if gate.PublishedAt != nil {
				status.PublishedAt = gate.PublishedAt.UTC().Format(time.RFC3339)
			}
		}
		if count, ok := counts[assignment.ClassName]; ok {
			status.PublishedCount = count.PublishedCount
			status.ViewedCount = count.ViewedCount
		}
		statuses = append(statuses, status)
	}
	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].ClassName < statuses[j].ClassName
	})
	return statuses, nil
}
