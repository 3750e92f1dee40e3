package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/brightclass/results-api/pkg/errors"
	"github.com/brightclass/results-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type classRanker interface {
	ClassRanking(ctx context.Context, schoolID, className, term, academicYear string, fromSnapshot bool) (*ClassRanking, error)
}

// ExportFile is a rendered result sheet ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders published class result sheets as CSV or PDF.
// Exports always read the frozen snapshots, never working records, so a
// printed sheet matches what students see.
type ExportService struct {
	publications publicationRepo
	rankings     classRanker
	csv          csvRenderer
	pdf          pdfRenderer
	logger       *zap.Logger
	enabled      bool
}

// NewExportService constructs an ExportService.
func NewExportService(publications publicationRepo, rankings classRanker, csv csvRenderer, pdf pdfRenderer, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		publications: publications,
		rankings:     rankings,
		csv:          csv,
		pdf:          pdf,
		logger:       logger,
		enabled:      enabled,
	}
}

// ClassResultSheet renders the published sheet for one class+term.
// Format is "csv" or "pdf".
func (s *ExportService) ClassResultSheet(ctx context.Context, schoolID, className, term, academicYear, format string) (*ExportFile, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled for this deployment")
	}

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

	positions := make(map[string]int, len(snapshots))
	if s.rankings != nil {
		ranked, err := s.rankings.ClassRanking(ctx, schoolID, className, term, academicYear, true)
		if err == nil {
			for _, student := range ranked.Students {
				positions[student.StudentID] = student.Position
			}
		} else {
			s.logger.Warn("ranking unavailable for export", zap.Error(err))
		}
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Class", "Stream", "Subjects", "Average", "Grade", "Status", "Position"},
	}
	for _, snapshot := range snapshots {
		position := ""
		if pos, ok := positions[snapshot.StudentID]; ok {
			position = fmt.Sprintf("%d", pos)
		}
		dataset.Rows = append(dataset.Rows, []string{
			snapshot.FirstName,
			snapshot.ClassName,
			snapshot.Stream,
			fmt.Sprintf("%d", snapshot.SubjectCount),
			fmt.Sprintf("%.2f", snapshot.AverageMarks),
			snapshot.Grade,
			snapshot.Status,
			position,
		})
	}

	title := fmt.Sprintf("%s %s Results", className, term)
	if academicYear != "" {
		title = fmt.Sprintf("%s %s (%s) Results", className, term, academicYear)
	}
	stamp := time.Now().UTC().Format("20060102")
	base := strings.ReplaceAll(strings.ToLower(className+"-"+term), " ", "-")

	switch strings.ToLower(format) {
	case "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, fmt.Errorf("render csv: %w", err)
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("results-%s-%s.csv", base, stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, fmt.Errorf("render pdf: %w", err)
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("results-%s-%s.pdf", base, stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
}
