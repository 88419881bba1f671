package models

import "time"

// GradingCriteria holds the five weighting percentages for a course. The five
// weights must sum to 100; that invariant is enforced before any write, never
// clamped afterwards. One record per course, upserted on course_id.
type GradingCriteria struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	CourseID            uint      `gorm:"uniqueIndex;not null" json:"course_id"`
	AttendanceWeight    float64   `gorm:"not null" json:"attendance_weight"`
	ParticipationWeight float64   `gorm:"not null" json:"participation_weight"`
	MidtermWeight       float64   `gorm:"not null" json:"midterm_weight"`
	FinalWeight         float64   `gorm:"not null" json:"final_weight"`
	ReportWeight        float64   `gorm:"not null" json:"report_weight"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ScoreRecord stores one student's raw sub-scores for a course plus the derived
// semester score. Rows are created lazily on first write and upserted after
// that. Midterm/final/report stay nil until entered; SemesterScore stays nil
// until the first recalculation.
type ScoreRecord struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	CourseID           uint      `gorm:"uniqueIndex:idx_score_course_student;not null" json:"course_id"`
	StudentID          uint      `gorm:"uniqueIndex:idx_score_course_student;not null" json:"student_id"`
	AbsenceCount       int       `gorm:"not null;default:0" json:"absence_count"`
	ParticipationCount int       `gorm:"not null;default:0" json:"participation_count"`
	MidtermScore       *float64  `json:"midterm_score"`
	FinalScore         *float64  `json:"final_score"`
	ReportScore        *float64  `json:"report_score"`
	SemesterScore      *int      `json:"semester_score"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
