package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/joseph0711/grading-system-sub000/internal/dto"
	"github.com/joseph0711/grading-system-sub000/internal/grading"
	"github.com/joseph0711/grading-system-sub000/internal/models"
	"github.com/joseph0711/grading-system-sub000/internal/observability"
	"github.com/joseph0711/grading-system-sub000/internal/repository"
)

// ErrScoreRecordNotFound indicates no score row exists for the student.
var ErrScoreRecordNotFound = errors.New("score record not found")

// ErrStudentNotEnrolled indicates the student is not on the course roster.
var ErrStudentNotEnrolled = errors.New("student not enrolled in course")

// ScoreService exposes raw-score entry, score views and the semester-score
// aggregation workflow.
type ScoreService interface {
	ListCourseScores(ctx context.Context, courseID uint) ([]dto.ScoreRecordResponse, error)
	ScoreForStudent(ctx context.Context, courseID, studentID uint) (dto.ScoreRecordResponse, error)
	UpsertRawScore(ctx context.Context, courseID, studentID uint, payload dto.RawScoreUpdateRequest) (dto.ScoreRecordResponse, error)
	OverrideSemesterScore(ctx context.Context, courseID, studentID uint, payload dto.SemesterOverrideRequest) (int64, error)
	ApplyReportScores(ctx context.Context, courseID uint, updates []repository.ReportScoreUpdate) error
	Recalculate(ctx context.Context, courseID uint) ([]dto.SemesterScoreResult, error)
	InvalidateCourse(ctx context.Context, courseID uint)
}

type scoreService struct {
	scores    repository.ScoreRepository
	criteria  repository.CriteriaRepository
	courses   repository.CourseRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewScoreService builds the score service.
func NewScoreService(scores repository.ScoreRepository, criteria repository.CriteriaRepository, courses repository.CourseRepository, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) ScoreService {
	return &scoreService{
		scores:    scores,
		criteria:  criteria,
		courses:   courses,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "score_service").Logger(),
	}
}

func scoreCacheKey(courseID uint) string {
	return fmt.Sprintf("scores:course:%d", courseID)
}

func (s *scoreService) ListCourseScores(ctx context.Context, courseID uint) ([]dto.ScoreRecordResponse, error) {
	cacheKey := scoreCacheKey(courseID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var responses []dto.ScoreRecordResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &responses); unmarshalErr == nil {
				s.logger.Debug().Uint("course_id", courseID).Msg("score table cache hit")
				return responses, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read score cache")
		}
	}

	records, err := s.scores.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	responses := dto.NewScoreRecordResponseSlice(records)

	if s.cache != nil {
		if payload, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store score cache")
			}
		}
	}

	return responses, nil
}

func (s *scoreService) ScoreForStudent(ctx context.Context, courseID, studentID uint) (dto.ScoreRecordResponse, error) {
	record, err := s.scores.GetByCourseStudent(ctx, courseID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScoreRecordResponse{}, ErrScoreRecordNotFound
		}
		return dto.ScoreRecordResponse{}, err
	}

	return dto.NewScoreRecordResponse(record), nil
}

// UpsertRawScore creates the score row on first write and merges the supplied
// fields into it afterwards. Enrollment is checked before any write.
func (s *scoreService) UpsertRawScore(ctx context.Context, courseID, studentID uint, payload dto.RawScoreUpdateRequest) (dto.ScoreRecordResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScoreRecordResponse{}, err
	}

	enrolled, err := s.courses.IsEnrolled(ctx, courseID, studentID)
	if err != nil {
		return dto.ScoreRecordResponse{}, err
	}
	if !enrolled {
		return dto.ScoreRecordResponse{}, ErrStudentNotEnrolled
	}

	record, err := s.scores.GetByCourseStudent(ctx, courseID, studentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScoreRecordResponse{}, err
		}
		// First write for this student: start from a zeroed row.
		record = models.ScoreRecord{CourseID: courseID, StudentID: studentID}
	}

	if payload.AbsenceCount != nil {
		record.AbsenceCount = *payload.AbsenceCount
	}
	if payload.ParticipationCount != nil {
		record.ParticipationCount = *payload.ParticipationCount
	}
	if payload.MidtermScore != nil {
		record.MidtermScore = payload.MidtermScore
	}
	if payload.FinalScore != nil {
		record.FinalScore = payload.FinalScore
	}
	if payload.ReportScore != nil {
		record.ReportScore = payload.ReportScore
	}

	if err := s.scores.Upsert(ctx, &record); err != nil {
		return dto.ScoreRecordResponse{}, err
	}

	s.InvalidateCourse(ctx, courseID)

	return dto.NewScoreRecordResponse(record), nil
}

// OverrideSemesterScore directly sets one student's semester score and
// returns the affected-row count as confirmation.
func (s *scoreService) OverrideSemesterScore(ctx context.Context, courseID, studentID uint, payload dto.SemesterOverrideRequest) (int64, error) {
	if err := s.validator.Struct(payload); err != nil {
		return 0, err
	}

	affected, err := s.scores.UpdateSemesterScore(ctx, courseID, studentID, payload.SemesterScore)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrScoreRecordNotFound
	}

	s.InvalidateCourse(ctx, courseID)

	return affected, nil
}

// ApplyReportScores writes a batch of aggregated report scores. Enrollment is
// checked for every student before any write; the batch then persists in one
// transaction, so a failure leaves no partial result.
func (s *scoreService) ApplyReportScores(ctx context.Context, courseID uint, updates []repository.ReportScoreUpdate) error {
	for _, update := range updates {
		enrolled, err := s.courses.IsEnrolled(ctx, courseID, update.StudentID)
		if err != nil {
			return err
		}
		if !enrolled {
			return ErrStudentNotEnrolled
		}
	}

	if err := s.scores.ApplyReportScores(ctx, courseID, updates); err != nil {
		return err
	}

	s.InvalidateCourse(ctx, courseID)

	return nil
}

// Recalculate recomputes every enrolled student's semester score.
//
// Reads happen up front: criteria once, roster once, score rows once. Enrolled
// students without a score row get a zeroed row first, matching the lazy-row
// policy of single-student updates. Computation is pure and in memory; the
// whole batch then persists in one transaction, so a failure leaves no
// partial result.
func (s *scoreService) Recalculate(ctx context.Context, courseID uint) ([]dto.SemesterScoreResult, error) {
	tracer := otel.Tracer("github.com/joseph0711/grading-system-sub000/internal/service/score")
	ctx, span := tracer.Start(ctx, "scores.recalculate")
	span.SetAttributes(attribute.Int64("course_id", int64(courseID)))
	defer span.End()

	criteria, err := s.criteria.GetByCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "criteria_missing")
			observability.Recalculations().WithLabelValues("not_configured").Inc()
			return nil, ErrCriteriaNotConfigured
		}
		span.RecordError(err)
		return nil, err
	}

	weights := grading.Weights{
		Attendance:    criteria.AttendanceWeight,
		Participation: criteria.ParticipationWeight,
		Midterm:       criteria.MidtermWeight,
		Final:         criteria.FinalWeight,
		Report:        criteria.ReportWeight,
	}
	if !weights.Valid() {
		span.SetStatus(codes.Error, "invalid_weights")
		observability.Recalculations().WithLabelValues("invalid_weights").Inc()
		return nil, ErrInvalidWeights
	}

	roster, err := s.courses.Roster(ctx, courseID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	records, err := s.scores.ListByCourse(ctx, courseID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	recordByStudent := make(map[uint]models.ScoreRecord, len(records))
	for _, record := range records {
		recordByStudent[record.StudentID] = record
	}

	for _, student := range roster {
		if _, ok := recordByStudent[student.ID]; ok {
			continue
		}
		record := models.ScoreRecord{CourseID: courseID, StudentID: student.ID}
		if err := s.scores.Upsert(ctx, &record); err != nil {
			span.RecordError(err)
			return nil, err
		}
		recordByStudent[student.ID] = record
	}

	results := make([]dto.SemesterScoreResult, 0, len(roster))
	updates := make([]repository.SemesterScoreUpdate, 0, len(roster))
	for _, student := range roster {
		record := recordByStudent[student.ID]
		score := grading.SemesterScore(grading.RawScore{
			AbsenceCount:       record.AbsenceCount,
			ParticipationCount: record.ParticipationCount,
			Midterm:            record.MidtermScore,
			Final:              record.FinalScore,
			Report:             record.ReportScore,
		}, weights)

		results = append(results, dto.SemesterScoreResult{StudentID: student.ID, SemesterScore: score})
		updates = append(updates, repository.SemesterScoreUpdate{StudentID: student.ID, SemesterScore: score})
	}

	if err := s.scores.ApplySemesterScores(ctx, courseID, updates); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch_write_failed")
		observability.Recalculations().WithLabelValues("error").Inc()
		return nil, err
	}

	s.InvalidateCourse(ctx, courseID)

	span.SetAttributes(attribute.Int("students", len(results)))
	observability.Recalculations().WithLabelValues("success").Inc()
	s.logger.Info().Uint("course_id", courseID).Int("students", len(results)).Msg("semester scores recalculated")

	return results, nil
}

// InvalidateCourse drops the cached score table for a course.
func (s *scoreService) InvalidateCourse(ctx context.Context, courseID uint) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, scoreCacheKey(courseID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("course_id", courseID).Msg("failed to invalidate score cache")
	}
}
