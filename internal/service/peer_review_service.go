package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/joseph0711/grading-system-sub000/internal/dto"
	"github.com/joseph0711/grading-system-sub000/internal/models"
	"github.com/joseph0711/grading-system-sub000/internal/repository"
)

// ErrSelfReview indicates a student tried to review their own report.
var ErrSelfReview = errors.New("cannot review your own report")

// ErrRevieweeNotEnrolled indicates the reviewed student is not on the roster.
var ErrRevieweeNotEnrolled = errors.New("reviewee not enrolled in course")

// PeerReviewService handles peer evaluations of course reports and their
// rollup into report scores.
type PeerReviewService interface {
	Submit(ctx context.Context, courseID, reviewerID uint, payload dto.PeerReviewRequest) (dto.PeerReviewResponse, error)
	ListByCourse(ctx context.Context, courseID uint) ([]dto.PeerReviewResponse, error)
	AggregateReportScores(ctx context.Context, courseID uint) ([]dto.ReportScoreAggregate, error)
}

type peerReviewService struct {
	reviews   repository.PeerReviewRepository
	scores    ScoreService
	courses   repository.CourseRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewPeerReviewService builds the peer-review service.
func NewPeerReviewService(reviews repository.PeerReviewRepository, scores ScoreService, courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) PeerReviewService {
	return &peerReviewService{
		reviews:   reviews,
		scores:    scores,
		courses:   courses,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "peer_review_service").Logger(),
	}
}

func (s *peerReviewService) Submit(ctx context.Context, courseID, reviewerID uint, payload dto.PeerReviewRequest) (dto.PeerReviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PeerReviewResponse{}, err
	}

	if payload.RevieweeID == reviewerID {
		return dto.PeerReviewResponse{}, ErrSelfReview
	}

	enrolled, err := s.courses.IsEnrolled(ctx, courseID, payload.RevieweeID)
	if err != nil {
		return dto.PeerReviewResponse{}, err
	}
	if !enrolled {
		return dto.PeerReviewResponse{}, ErrRevieweeNotEnrolled
	}

	review := models.PeerReview{
		CourseID:   courseID,
		ReviewerID: reviewerID,
		RevieweeID: payload.RevieweeID,
		Score:      payload.Score,
		Comment:    strings.TrimSpace(s.sanitizer.Sanitize(payload.Comment)),
	}

	if err := s.reviews.Upsert(ctx, &review); err != nil {
		return dto.PeerReviewResponse{}, err
	}

	s.logger.Info().
		Uint("course_id", courseID).
		Uint("reviewer_id", reviewerID).
		Uint("reviewee_id", payload.RevieweeID).
		Msg("peer review submitted")

	return dto.NewPeerReviewResponse(review), nil
}

func (s *peerReviewService) ListByCourse(ctx context.Context, courseID uint) ([]dto.PeerReviewResponse, error) {
	reviews, err := s.reviews.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return dto.NewPeerReviewResponseSlice(reviews), nil
}

// AggregateReportScores rolls the average peer score per reviewee into that
// student's report score. The whole batch lands in one transaction: either
// every reviewee's report score is written or none is.
func (s *peerReviewService) AggregateReportScores(ctx context.Context, courseID uint) ([]dto.ReportScoreAggregate, error) {
	averages, err := s.reviews.AveragesByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	updates := make([]repository.ReportScoreUpdate, 0, len(averages))
	aggregates := make([]dto.ReportScoreAggregate, 0, len(averages))
	for _, average := range averages {
		updates = append(updates, repository.ReportScoreUpdate{
			StudentID:   average.RevieweeID,
			ReportScore: average.AverageScore,
		})
		aggregates = append(aggregates, dto.ReportScoreAggregate{
			StudentID:   average.RevieweeID,
			ReportScore: average.AverageScore,
		})
	}

	if err := s.scores.ApplyReportScores(ctx, courseID, updates); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("course_id", courseID).Int("students", len(aggregates)).Msg("report scores aggregated")

	return aggregates, nil
}
