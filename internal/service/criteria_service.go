package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/joseph0711/grading-system-sub000/internal/dto"
	"github.com/joseph0711/grading-system-sub000/internal/grading"
	"github.com/joseph0711/grading-system-sub000/internal/models"
	"github.com/joseph0711/grading-system-sub000/internal/repository"
)

// ErrInvalidWeights indicates the five weights do not sum to 100.
var ErrInvalidWeights = errors.New("grading weights must sum to 100")

// ErrCriteriaNotConfigured indicates no grading criteria exist for the course.
var ErrCriteriaNotConfigured = errors.New("grading criteria not configured")

// CriteriaService manages a course's grading criteria.
type CriteriaService interface {
	Get(ctx context.Context, courseID uint) (dto.CriteriaResponse, error)
	Save(ctx context.Context, courseID uint, payload dto.CriteriaRequest) (dto.CriteriaResponse, error)
}

type criteriaService struct {
	criteria  repository.CriteriaRepository
	scores    ScoreCacheInvalidator
	validator *validator.Validate
	logger    zerolog.Logger
}

// ScoreCacheInvalidator drops any cached score view for a course. Criteria
// edits change what a recalculation would produce, so cached tables go stale.
type ScoreCacheInvalidator interface {
	InvalidateCourse(ctx context.Context, courseID uint)
}

// NewCriteriaService builds the criteria service.
func NewCriteriaService(criteria repository.CriteriaRepository, scores ScoreCacheInvalidator, validate *validator.Validate, logger zerolog.Logger) CriteriaService {
	return &criteriaService{
		criteria:  criteria,
		scores:    scores,
		validator: validate,
		logger:    logger.With().Str("component", "criteria_service").Logger(),
	}
}

func (s *criteriaService) Get(ctx context.Context, courseID uint) (dto.CriteriaResponse, error) {
	criteria, err := s.criteria.GetByCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CriteriaResponse{}, ErrCriteriaNotConfigured
		}
		return dto.CriteriaResponse{}, err
	}

	return dto.NewCriteriaResponse(criteria), nil
}

// Save validates the weight sum before any write; an invalid sum is a
// user-facing rejection, never a clamp.
func (s *criteriaService) Save(ctx context.Context, courseID uint, payload dto.CriteriaRequest) (dto.CriteriaResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CriteriaResponse{}, err
	}

	weights := grading.Weights{
		Attendance:    payload.AttendanceWeight,
		Participation: payload.ParticipationWeight,
		Midterm:       payload.MidtermWeight,
		Final:         payload.FinalWeight,
		Report:        payload.ReportWeight,
	}
	if !weights.Valid() {
		return dto.CriteriaResponse{}, ErrInvalidWeights
	}

	criteria := models.GradingCriteria{
		CourseID:            courseID,
		AttendanceWeight:    payload.AttendanceWeight,
		ParticipationWeight: payload.ParticipationWeight,
		MidtermWeight:       payload.MidtermWeight,
		FinalWeight:         payload.FinalWeight,
		ReportWeight:        payload.ReportWeight,
	}

	if err := s.criteria.Upsert(ctx, &criteria); err != nil {
		return dto.CriteriaResponse{}, err
	}

	if s.scores != nil {
		s.scores.InvalidateCourse(ctx, courseID)
	}

	s.logger.Info().Uint("course_id", courseID).Msg("grading criteria saved")

	return dto.NewCriteriaResponse(criteria), nil
}
