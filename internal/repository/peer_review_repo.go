package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joseph0711/grading-system-sub000/internal/models"
)

// RevieweeAverage is the mean peer score a student received in a course.
type RevieweeAverage struct {
	RevieweeID   uint
	AverageScore float64
}

// PeerReviewRepository defines persistence operations for peer reviews.
type PeerReviewRepository interface {
	Upsert(ctx context.Context, review *models.PeerReview) error
	ListByCourse(ctx context.Context, courseID uint) ([]models.PeerReview, error)
	AveragesByCourse(ctx context.Context, courseID uint) ([]RevieweeAverage, error)
}

type peerReviewRepository struct {
	db *gorm.DB
}

// NewPeerReviewRepository instantiates a GORM-backed repository.
func NewPeerReviewRepository(db *gorm.DB) PeerReviewRepository {
	return &peerReviewRepository{db: db}
}

// Upsert writes a review keyed on (course_id, reviewer_id, reviewee_id);
// resubmitting replaces the previous review.
func (r *peerReviewRepository) Upsert(ctx context.Context, review *models.PeerReview) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "reviewer_id"}, {Name: "reviewee_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "comment", "updated_at"}),
	}).Create(review).Error
}

func (r *peerReviewRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.PeerReview, error) {
	var reviews []models.PeerReview
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("reviewee_id ASC, reviewer_id ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	return reviews, nil
}

func (r *peerReviewRepository) AveragesByCourse(ctx context.Context, courseID uint) ([]RevieweeAverage, error) {
	var averages []RevieweeAverage
	err := r.db.WithContext(ctx).Model(&models.PeerReview{}).
		Select("reviewee_id, AVG(score) AS average_score").
		Where("course_id = ?", courseID).
		Group("reviewee_id").
		Order("reviewee_id ASC").
		Scan(&averages).Error
	if err != nil {
		return nil, err
	}

	return averages, nil
}
