package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joseph0711/grading-system-sub000/internal/models"
)

// CriteriaRepository defines persistence operations for grading criteria.
type CriteriaRepository interface {
	GetByCourse(ctx context.Context, courseID uint) (models.GradingCriteria, error)
	Upsert(ctx context.Context, criteria *models.GradingCriteria) error
}

type criteriaRepository struct {
	db *gorm.DB
}

// NewCriteriaRepository instantiates a GORM-backed repository.
func NewCriteriaRepository(db *gorm.DB) CriteriaRepository {
	return &criteriaRepository{db: db}
}

func (r *criteriaRepository) GetByCourse(ctx context.Context, courseID uint) (models.GradingCriteria, error) {
	var criteria models.GradingCriteria
	if err := r.db.WithContext(ctx).Where("course_id = ?", courseID).First(&criteria).Error; err != nil {
		return models.GradingCriteria{}, err
	}

	return criteria, nil
}

// Upsert writes the criteria keyed on course_id.
func (r *criteriaRepository) Upsert(ctx context.Context, criteria *models.GradingCriteria) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"attendance_weight", "participation_weight", "midterm_weight",
			"final_weight", "report_weight", "updated_at",
		}),
	}).Create(criteria).Error
}
