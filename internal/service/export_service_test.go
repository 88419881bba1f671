package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/joseph0711/grading-system-sub000/internal/models"
)

func TestExportServiceCourseScoresCSV(t *testing.T) {
	scores := newFakeScoreRepo()
	scores.records[scoreKey{1, 7}] = models.ScoreRecord{
		CourseID:           1,
		StudentID:          7,
		AbsenceCount:       2,
		ParticipationCount: 8,
		MidtermScore:       floatPtr(80),
		FinalScore:         floatPtr(90.5),
		SemesterScore:      intPtr(83),
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	scoreService := NewScoreService(scores, newFakeCriteriaRepo(), newFakeCourseRepo(), nil, 0, validate, testLogger())
	svc := NewExportService(scoreService, testLogger())

	payload, err := svc.CourseScoresCSV(context.Background(), 1)
	require.NoError(t, err)

	expected := "student_id,absence_count,participation_count,midterm_score,final_score,report_score,semester_score\n" +
		"7,2,8,80,90.5,,83\n"
	require.Equal(t, expected, string(payload))
}
