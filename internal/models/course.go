package models

import "time"

// Course is the enrollment and grading unit. Each course carries at most one
// GradingCriteria record and one ScoreRecord per enrolled student.
type Course struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Semester  string    `gorm:"size:32" json:"semester"`
	TeacherID uint      `gorm:"index;not null" json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enrollment links a student to a course.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"uniqueIndex:idx_enrollment_course_student;not null" json:"course_id"`
	StudentID uint      `gorm:"uniqueIndex:idx_enrollment_course_student;not null" json:"student_id"`
	Student   User      `gorm:"foreignKey:StudentID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
