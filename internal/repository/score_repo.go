package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joseph0711/grading-system-sub000/internal/models"
)

// SemesterScoreUpdate pairs a student with a freshly computed semester score.
type SemesterScoreUpdate struct {
	StudentID     uint
	SemesterScore int
}

// ReportScoreUpdate pairs a student with an aggregated report score.
type ReportScoreUpdate struct {
	StudentID   uint
	ReportScore float64
}

// ScoreRepository defines persistence operations for raw score records.
type ScoreRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.ScoreRecord, error)
	GetByCourseStudent(ctx context.Context, courseID, studentID uint) (models.ScoreRecord, error)
	Upsert(ctx context.Context, record *models.ScoreRecord) error
	UpdateSemesterScore(ctx context.Context, courseID, studentID uint, score int) (int64, error)
	ApplySemesterScores(ctx context.Context, courseID uint, updates []SemesterScoreUpdate) error
	ApplyReportScores(ctx context.Context, courseID uint, updates []ReportScoreUpdate) error
}

type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository instantiates a GORM-backed repository.
func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.ScoreRecord, error) {
	var records []models.ScoreRecord
	if err := r.db.WithContext(ctx).Where("course_id = ?", courseID).Order("student_id ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *scoreRepository) GetByCourseStudent(ctx context.Context, courseID, studentID uint) (models.ScoreRecord, error) {
	var record models.ScoreRecord
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		First(&record).Error
	if err != nil {
		return models.ScoreRecord{}, err
	}

	return record, nil
}

// Upsert writes a score record keyed on (course_id, student_id).
func (r *scoreRepository) Upsert(ctx context.Context, record *models.ScoreRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "course_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"absence_count", "participation_count", "midterm_score",
			"final_score", "report_score", "semester_score", "updated_at",
		}),
	}).Create(record).Error
}

// UpdateSemesterScore overrides a single student's semester score and reports
// how many rows changed.
func (r *scoreRepository) UpdateSemesterScore(ctx context.Context, courseID, studentID uint, score int) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.ScoreRecord{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Update("semester_score", score)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// ApplyReportScores persists a whole batch of aggregated report scores in one
// transaction. Students without a score row get one created; existing rows
// keep every column except report_score.
func (r *scoreRepository) ApplyReportScores(ctx context.Context, courseID uint, updates []ReportScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			score := update.ReportScore
			record := models.ScoreRecord{
				CourseID:    courseID,
				StudentID:   update.StudentID,
				ReportScore: &score,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "course_id"}, {Name: "student_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"report_score", "updated_at"}),
			}).Create(&record).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplySemesterScores persists a whole recalculation batch in one
// transaction: either every student's score lands or none does.
func (r *scoreRepository) ApplySemesterScores(ctx context.Context, courseID uint, updates []SemesterScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			result := tx.Model(&models.ScoreRecord{}).
				Where("course_id = ? AND student_id = ?", courseID, update.StudentID).
				Update("semester_score", update.SemesterScore)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}
