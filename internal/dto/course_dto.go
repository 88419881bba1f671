package dto

import (
	"time"

	"github.com/joseph0711/grading-system-sub000/internal/models"
)

// CourseCreateRequest describes the payload for creating a course.
type CourseCreateRequest struct {
	Code     string `json:"code" validate:"required,min=2,max=32"`
	Name     string `json:"name" validate:"required,min=3"`
	Semester string `json:"semester" validate:"omitempty,max=32"`
}

// EnrollRequest enrolls one student into a course.
type EnrollRequest struct {
	StudentID uint `json:"student_id" validate:"required,min=1"`
}

// CourseResponse is the serialized course representation.
type CourseResponse struct {
	ID        uint      `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Semester  string    `json:"semester"`
	TeacherID uint      `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:        model.ID,
		Code:      model.Code,
		Name:      model.Name,
		Semester:  model.Semester,
		TeacherID: model.TeacherID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewCourseResponseSlice converts a slice of models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}
