package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/brightclass/results-api/internal/grading"
	"github.com/brightclass/results-api/internal/models"
	"github.com/brightclass/results-api/internal/ranking"
	appErrors "github.com/brightclass/results-api/pkg/errors"
)

// RankedStudent is one row of a class ranking payload.
type RankedStudent struct {
	StudentID    string  `json:"student_id"`
	FirstName    string  `json:"firstname"`
	Stream       string  `json:"stream"`
	AverageMarks float64 `json:"average_marks"`
	Position     int     `json:"position"`
	CohortSize   int     `json:"cohort_size"`
	Cohort       string  `json:"cohort"`
}

// ClassRanking is the cached ranking payload for one class+term.
type ClassRanking struct {
	ClassName    string          `json:"classname"`
	Term         string          `json:"term"`
	AcademicYear string          `json:"academic_year"`
	FromSnapshot bool            `json:"from_snapshot"`
	Students     []RankedStudent `json:"students"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// StudentStanding is one student's class position plus per-subject
// positions within the same cohort.
type StudentStanding struct {
	StudentID        string                      `json:"student_id"`
	ClassName        string                      `json:"classname"`
	Term             string                      `json:"term"`
	AverageMarks     float64                     `json:"average_marks"`
	Position         int                         `json:"position"`
	CohortSize       int                         `json:"cohort_size"`
	SubjectPositions map[string]ranking.Position `json:"subject_positions"`
}

// RankingService computes class and subject positions over either the
// live working records or the frozen snapshots of a published term.
type RankingService struct {
	students     studentRepo
	publications publicationRepo
	settings     schoolReader
	cache        *CacheService
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NewRankingService constructs RankingService.
func NewRankingService(students studentRepo, publications publicationRepo, settings schoolReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *RankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{
		students:     students,
		publications: publications,
		settings:     settings,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

type rankable struct {
	studentID string
	firstName string
	stream    string
	average   float64
}

// ClassRanking ranks a class for a term. When fromSnapshot is true the
// frozen published sheets are ranked, so a historical ranking never
// shifts as working records change. Cohort splitting follows the
// tenant's ranking and SS1 stream modes.
func (s *RankingService) ClassRanking(ctx context.Context, schoolID, className, term, academicYear string, fromSnapshot bool) (*ClassRanking, error) {
	cacheKey := RankingCacheKey(schoolID, className, term, academicYear)
	if fromSnapshot {
		cacheKey += ":published"
	}
	if s.cache.Enabled() {
		var cached ClassRanking
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	school, err := s.settings.GetSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if school == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
	}
	tracking := grading.TrackingSettings{TestEnabled: school.TestEnabled, ExamEnabled: school.ExamEnabled}

	var cohort []rankable
	if fromSnapshot {
		snapshots, err := s.publications.LoadClassSnapshots(ctx, schoolID, className, term, academicYear)
		if err != nil {
			return nil, err
		}
		if len(snapshots) == 0 {
			return nil, appErrors.ErrNotPublished
		}
		for _, snapshot := range snapshots {
			cohort = append(cohort, rankable{
				studentID: snapshot.StudentID,
				firstName: snapshot.FirstName,
				stream:    snapshot.Stream,
				average:   snapshot.AverageMarks,
			})
		}
	} else {
		records, err := s.students.List(ctx, schoolID, className, term)
		if err != nil {
			return nil, err
		}
		for i := range records {
			record := &records[i]
			cohort = append(cohort, rankable{
				studentID: record.StudentID,
				firstName: record.FirstName,
				stream:    record.StreamOrUnassigned(),
				average:   grading.AverageMarks(record.Scores, tracking),
			})
		}
	}

	entries := make([]ranking.Entry, 0, len(cohort))
	for _, member := range cohort {
		entries = append(entries, ranking.Entry{
			StudentID:    member.studentID,
			ClassName:    className,
			Term:         term,
			Stream:       member.stream,
			AverageMarks: member.average,
		})
	}
	positions := ranking.ComputePositions(entries, school.RankingMode, func(name string) bool {
		return models.UsesStreamForSchool(school, name)
	})

	result := &ClassRanking{
		ClassName:    className,
		Term:         term,
		AcademicYear: academicYear,
		FromSnapshot: fromSnapshot,
		GeneratedAt:  time.Now().UTC(),
	}
	for _, member := range cohort {
		position := positions[member.studentID]
		result.Students = append(result.Students, RankedStudent{
			StudentID:    member.studentID,
			FirstName:    member.firstName,
			Stream:       member.stream,
			AverageMarks: member.average,
			Position:     position.Pos,
			CohortSize:   position.Size,
			Cohort:       position.Group,
		})
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("ranking cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// StudentStanding computes one student's overall and per-subject
// positions within their ranking cohort for a published term. Subject
// positions are ranked on the per-subject overall mark over the same
// cohort that the class position uses.
func (s *RankingService) StudentStanding(ctx context.Context, schoolID, studentID, className, term, academicYear string) (*StudentStanding, error) {
	school, err := s.settings.GetSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if school == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
	}
	tracking := grading.TrackingSettings{TestEnabled: school.TestEnabled, ExamEnabled: school.ExamEnabled}

	snapshots, err := s.publications.LoadClassSnapshots(ctx, schoolID, className, term, academicYear)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, appErrors.ErrNotPublished
	}

	var target *models.PublishedSnapshot
	for i := range snapshots {
		if snapshots[i].StudentID == studentID {
			target = &snapshots[i]
			break
		}
	}
	if target == nil {
		return nil, appErrors.ErrNotPublished
	}

	entries := make([]ranking.Entry, 0, len(snapshots))
	for _, snapshot := range snapshots {
		entries = append(entries, ranking.Entry{
			StudentID:    snapshot.StudentID,
			ClassName:    snapshot.ClassName,
			Term:         snapshot.Term,
			Stream:       snapshot.Stream,
			AverageMarks: snapshot.AverageMarks,
		})
	}
	positions := ranking.ComputePositions(entries, school.RankingMode, func(name string) bool {
		return models.UsesStreamForSchool(school, name)
	})
	classPosition := positions[studentID]

	// Subject cohort = the students sharing the target's ranking group.
	cohortIDs := make(map[string]bool, len(snapshots))
	for _, snapshot := range snapshots {
		if positions[snapshot.StudentID].Group == classPosition.Group {
			cohortIDs[snapshot.StudentID] = true
		}
	}

	subjectPositions := make(map[string]ranking.Position, len(target.Subjects))
	for _, subject := range target.Subjects {
		marks := make([]ranking.SubjectMark, 0, len(snapshots))
		for _, snapshot := range snapshots {
			if !cohortIDs[snapshot.StudentID] {
				continue
			}
			// Peers without a block for this subject still rank, at mark 0,
			// so the subject cohort stays the size of the class cohort.
			mark := 0.0
			if block, ok := snapshot.Scores[subject]; ok {
				mark = grading.ComputeOverallMark(block, tracking)
			}
			marks = append(marks, ranking.SubjectMark{
				StudentID: snapshot.StudentID,
				Mark:      mark,
			})
		}
		if position, ok := ranking.RankMarks(marks)[studentID]; ok {
			subjectPositions[subject] = position
		}
	}

	return &StudentStanding{
		StudentID:        studentID,
		ClassName:        className,
		Term:             term,
		AverageMarks:     target.AverageMarks,
		Position:         classPosition.Pos,
		CohortSize:       classPosition.Size,
		SubjectPositions: subjectPositions,
	}, nil
}
