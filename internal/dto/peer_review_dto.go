package dto

import (
	"time"

	"github.com/joseph0711/grading-system-sub000/internal/models"
)

// PeerReviewRequest is one student's evaluation of a classmate's report.
type PeerReviewRequest struct {
	RevieweeID uint    `json:"reviewee_id" validate:"required,min=1"`
	Score      float64 `json:"score" validate:"min=0,max=100"`
	Comment    string  `json:"comment" validate:"omitempty,max=2000"`
}

// PeerReviewResponse is the serialized peer-review representation.
type PeerReviewResponse struct {
	ID         uint      `json:"id"`
	CourseID   uint      `json:"course_id"`
	ReviewerID uint      `json:"reviewer_id"`
	RevieweeID uint      `json:"reviewee_id"`
	Score      float64   `json:"score"`
	Comment    string    `json:"comment"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewPeerReviewResponse converts a model into a DTO.
func NewPeerReviewResponse(model models.PeerReview) PeerReviewResponse {
	return PeerReviewResponse{
		ID:         model.ID,
		CourseID:   model.CourseID,
		ReviewerID: model.ReviewerID,
		RevieweeID: model.RevieweeID,
		Score:      model.Score,
		Comment:    model.Comment,
		UpdatedAt:  model.UpdatedAt,
	}
}

// NewPeerReviewResponseSlice converts a slice of models into DTOs.
func NewPeerReviewResponseSlice(reviews []models.PeerReview) []PeerReviewResponse {
	responses := make([]PeerReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, NewPeerReviewResponse(review))
	}
	return responses
}

// ReportScoreAggregate is one student's averaged peer score after rollup.
type ReportScoreAggregate struct {
	StudentID   uint    `json:"student_id"`
	ReportScore float64 `json:"report_score"`
}
