package models

import "time"

// PeerReview is one student's evaluation of another student's report within a
// course. A reviewer gets one review per reviewee per course, upserted on
// resubmission.
type PeerReview struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CourseID   uint      `gorm:"uniqueIndex:idx_review_course_pair;not null" json:"course_id"`
	ReviewerID uint      `gorm:"uniqueIndex:idx_review_course_pair;not null" json:"reviewer_id"`
	RevieweeID uint      `gorm:"uniqueIndex:idx_review_course_pair;not null" json:"reviewee_id"`
	Score      float64   `gorm:"not null" json:"score"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
