package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/joseph0711/grading-system-sub000/internal/dto"
	"github.com/joseph0711/grading-system-sub000/internal/models"
	"github.com/joseph0711/grading-system-sub000/internal/repository"
)

type fakePeerReviewRepo struct {
	reviews  []models.PeerReview
	averages []repository.RevieweeAverage
}

func (f *fakePeerReviewRepo) Upsert(ctx context.Context, review *models.PeerReview) error {
	f.reviews = append(f.reviews, *review)
	return nil
}

func (f *fakePeerReviewRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.PeerReview, error) {
	return f.reviews, nil
}

func (f *fakePeerReviewRepo) AveragesByCourse(ctx context.Context, courseID uint) ([]repository.RevieweeAverage, error) {
	return f.averages, nil
}

func setupPeerReviewService(t *testing.T) (PeerReviewService, *fakePeerReviewRepo, *fakeScoreRepo, *fakeCourseRepo) {
	t.Helper()

	reviews := &fakePeerReviewRepo{}
	scores := newFakeScoreRepo()
	courses := newFakeCourseRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())

	scoreService := NewScoreService(scores, newFakeCriteriaRepo(), courses, nil, 0, validate, testLogger())
	svc := NewPeerReviewService(reviews, scoreService, courses, validate, testLogger())

	return svc, reviews, scores, courses
}

func TestPeerReviewServiceRejectsSelfReview(t *testing.T) {
	svc, reviews, _, courses := setupPeerReviewService(t)
	courses.addStudent(1, models.User{ID: 5, Role: models.RoleStudent})

	_, err := svc.Submit(context.Background(), 1, 5, dto.PeerReviewRequest{RevieweeID: 5, Score: 80})
	require.ErrorIs(t, err, ErrSelfReview)
	require.Empty(t, reviews.reviews)
}

func TestPeerReviewServiceRejectsUnknownReviewee(t *testing.T) {
	svc, reviews, _, _ := setupPeerReviewService(t)

	_, err := svc.Submit(context.Background(), 1, 5, dto.PeerReviewRequest{RevieweeID: 6, Score: 80})
	require.ErrorIs(t, err, ErrRevieweeNotEnrolled)
	require.Empty(t, reviews.reviews)
}

func TestPeerReviewServiceSanitizesComment(t *testing.T) {
	svc, reviews, _, courses := setupPeerReviewService(t)
	courses.addStudent(1, models.User{ID: 6, Role: models.RoleStudent})

	review, err := svc.Submit(context.Background(), 1, 5, dto.PeerReviewRequest{
		RevieweeID: 6,
		Score:      75,
		Comment:    `<script>alert("x")</script>solid analysis`,
	})
	require.NoError(t, err)
	require.Equal(t, "solid analysis", review.Comment)
	require.Len(t, reviews.reviews, 1)
	require.Equal(t, 75.0, reviews.reviews[0].Score)
}

func TestPeerReviewServiceAggregateRollsIntoReportScores(t *testing.T) {
	svc, reviews, scores, courses := setupPeerReviewService(t)
	courses.addStudent(2, models.User{ID: 10, Role: models.RoleStudent})
	courses.addStudent(2, models.User{ID: 11, Role: models.RoleStudent})

	reviews.averages = []repository.RevieweeAverage{
		{RevieweeID: 10, AverageScore: 82.5},
		{RevieweeID: 11, AverageScore: 64},
	}

	aggregates, err := svc.AggregateReportScores(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, aggregates, 2)
	require.Equal(t, 82.5, aggregates[0].ReportScore)

	first := scores.records[scoreKey{2, 10}]
	require.NotNil(t, first.ReportScore)
	require.Equal(t, 82.5, *first.ReportScore)

	second := scores.records[scoreKey{2, 11}]
	require.NotNil(t, second.ReportScore)
	require.Equal(t, 64.0, *second.ReportScore)
}

func TestPeerReviewServiceAggregateWritesNothingOnFailure(t *testing.T) {
	svc, reviews, scores, courses := setupPeerReviewService(t)
	courses.addStudent(2, models.User{ID: 10, Role: models.RoleStudent})
	courses.addStudent(2, models.User{ID: 11, Role: models.RoleStudent})

	reviews.averages = []repository.RevieweeAverage{
		{RevieweeID: 10, AverageScore: 80},
		{RevieweeID: 11, AverageScore: 64},
	}
	scores.reportApplyErr = errors.New("datastore unavailable")

	_, err := svc.AggregateReportScores(context.Background(), 2)
	require.Error(t, err)

	// The batch is a single transaction: no reviewee's report score lands.
	require.Empty(t, scores.records)
}

func TestPeerReviewServiceAggregateRejectsUnenrolledReviewee(t *testing.T) {
	svc, reviews, scores, courses := setupPeerReviewService(t)
	courses.addStudent(2, models.User{ID: 10, Role: models.RoleStudent})

	reviews.averages = []repository.RevieweeAverage{
		{RevieweeID: 10, AverageScore: 80},
		{RevieweeID: 99, AverageScore: 64},
	}

	_, err := svc.AggregateReportScores(context.Background(), 2)
	require.ErrorIs(t, err, ErrStudentNotEnrolled)
	require.Empty(t, scores.records)
}
