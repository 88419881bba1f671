package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/rs/zerolog"
)

// ExportService renders a course's score table as CSV.
type ExportService interface {
	CourseScoresCSV(ctx context.Context, courseID uint) ([]byte, error)
}

type exportService struct {
	scores ScoreService
	logger zerolog.Logger
}

// NewExportService builds the export service.
func NewExportService(scores ScoreService, logger zerolog.Logger) ExportService {
	return &exportService{
		scores: scores,
		logger: logger.With().Str("component", "export_service").Logger(),
	}
}

func (s *exportService) CourseScoresCSV(ctx context.Context, courseID uint) ([]byte, error) {
	records, err := s.scores.ListCourseScores(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"student_id", "absence_count", "participation_count", "midterm_score", "final_score", "report_score", "semester_score"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, record := range records {
		row := []string{
			fmt.Sprintf("%d", record.StudentID),
			fmt.Sprintf("%d", record.AbsenceCount),
			fmt.Sprintf("%d", record.ParticipationCount),
			formatFloatCell(record.MidtermScore),
			formatFloatCell(record.FinalScore),
			formatFloatCell(record.ReportScore),
			formatIntCell(record.SemesterScore),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func formatFloatCell(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%g", *value)
}

func formatIntCell(value *int) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%d", *value)
}
