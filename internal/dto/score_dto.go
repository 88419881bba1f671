package dto

import (
	"time"

	"github.com/joseph0711/grading-system-sub000/internal/models"
)

// CriteriaRequest carries the five weight percentages for a course. Each
// weight lives in [0,100]; the sum-to-100 gate belongs to the service.
type CriteriaRequest struct {
	AttendanceWeight    float64 `json:"attendance_weight" validate:"min=0,max=100"`
	ParticipationWeight float64 `json:"participation_weight" validate:"min=0,max=100"`
	MidtermWeight       float64 `json:"midterm_weight" validate:"min=0,max=100"`
	FinalWeight         float64 `json:"final_weight" validate:"min=0,max=100"`
	ReportWeight        float64 `json:"report_weight" validate:"min=0,max=100"`
}

// CriteriaResponse is the serialized grading-criteria representation.
type CriteriaResponse struct {
	CourseID            uint      `json:"course_id"`
	AttendanceWeight    float64   `json:"attendance_weight"`
	ParticipationWeight float64   `json:"participation_weight"`
	MidtermWeight       float64   `json:"midterm_weight"`
	FinalWeight         float64   `json:"final_weight"`
	ReportWeight        float64   `json:"report_weight"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewCriteriaResponse converts a model into a DTO.
func NewCriteriaResponse(model models.GradingCriteria) CriteriaResponse {
	return CriteriaResponse{
		CourseID:            model.CourseID,
		AttendanceWeight:    model.AttendanceWeight,
		ParticipationWeight: model.ParticipationWeight,
		MidtermWeight:       model.MidtermWeight,
		FinalWeight:         model.FinalWeight,
		ReportWeight:        model.ReportWeight,
		UpdatedAt:           model.UpdatedAt,
	}
}

// RawScoreUpdateRequest upserts any subset of a student's raw sub-scores.
// Omitted fields keep their stored value.
type RawScoreUpdateRequest struct {
	AbsenceCount       *int     `json:"absence_count" validate:"omitempty,min=0"`
	ParticipationCount *int     `json:"participation_count" validate:"omitempty,min=0"`
	MidtermScore       *float64 `json:"midterm_score" validate:"omitempty,min=0,max=100"`
	FinalScore         *float64 `json:"final_score" validate:"omitempty,min=0,max=100"`
	ReportScore        *float64 `json:"report_score" validate:"omitempty,min=0,max=100"`
}

// SemesterOverrideRequest directly sets one student's semester score.
type SemesterOverrideRequest struct {
	SemesterScore int `json:"semester_score" validate:"min=0,max=100"`
}

// ScoreRecordResponse is the serialized score-record representation.
type ScoreRecordResponse struct {
	CourseID           uint      `json:"course_id"`
	StudentID          uint      `json:"student_id"`
	AbsenceCount       int       `json:"absence_count"`
	ParticipationCount int       `json:"participation_count"`
	MidtermScore       *float64  `json:"midterm_score"`
	FinalScore         *float64  `json:"final_score"`
	ReportScore        *float64  `json:"report_score"`
	SemesterScore      *int      `json:"semester_score"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewScoreRecordResponse converts a model into a DTO.
func NewScoreRecordResponse(model models.ScoreRecord) ScoreRecordResponse {
	return ScoreRecordResponse{
		CourseID:           model.CourseID,
		StudentID:          model.StudentID,
		AbsenceCount:       model.AbsenceCount,
		ParticipationCount: model.ParticipationCount,
		MidtermScore:       model.MidtermScore,
		FinalScore:         model.FinalScore,
		ReportScore:        model.ReportScore,
		SemesterScore:      model.SemesterScore,
		UpdatedAt:          model.UpdatedAt,
	}
}

// NewScoreRecordResponseSlice converts a slice of models into DTOs.
func NewScoreRecordResponseSlice(records []models.ScoreRecord) []ScoreRecordResponse {
	responses := make([]ScoreRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewScoreRecordResponse(record))
	}
	return responses
}

// SemesterScoreResult is one student's outcome of a course recalculation.
type SemesterScoreResult struct {
	StudentID     uint `json:"student_id"`
	SemesterScore int  `json:"semester_score"`
}
