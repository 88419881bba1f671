package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/joseph0711/grading-system-sub000/internal/dto"
	"github.com/joseph0711/grading-system-sub000/internal/models"
	"github.com/joseph0711/grading-system-sub000/internal/repository"
)

// ErrCourseNotFound indicates the requested course does not exist.
var ErrCourseNotFound = errors.New("course not found")

// ErrCourseAccessDenied indicates the caller neither teaches the course nor
// is enrolled in it.
var ErrCourseAccessDenied = errors.New("course access denied")

// Actor identifies the authenticated caller for access checks.
type Actor struct {
	ID   uint
	Role string
}

// CourseService exposes course and enrollment use cases.
type CourseService interface {
	ListForActor(ctx context.Context, actor Actor) ([]dto.CourseResponse, error)
	Get(ctx context.Context, courseID uint, actor Actor) (dto.CourseResponse, error)
	Create(ctx context.Context, payload dto.CourseCreateRequest, teacherID uint) (dto.CourseResponse, error)
	Delete(ctx context.Context, courseID uint, actor Actor) error
	Enroll(ctx context.Context, courseID uint, payload dto.EnrollRequest, actor Actor) error
	Roster(ctx context.Context, courseID uint, actor Actor) ([]dto.UserResponse, error)
	// Authorize resolves the course and checks the actor may touch it:
	// teachers must own it, students must be enrolled.
	Authorize(ctx context.Context, courseID uint, actor Actor) (models.Course, error)
}

type courseService struct {
	courses   repository.CourseRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCourseService builds the course service.
func NewCourseService(courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		validator: validate,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) ListForActor(ctx context.Context, actor Actor) ([]dto.CourseResponse, error) {
	var (
		courses []models.Course
		err     error
	)

	if actor.Role == models.RoleTeacher {
		courses, err = s.courses.ListByTeacher(ctx, actor.ID)
	} else {
		courses, err = s.courses.ListByStudent(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) Get(ctx context.Context, courseID uint, actor Actor) (dto.CourseResponse, error) {
	course, err := s.Authorize(ctx, courseID, actor)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Create(ctx context.Context, payload dto.CourseCreateRequest, teacherID uint) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Code:      payload.Code,
		Name:      payload.Name,
		Semester:  payload.Semester,
		TeacherID: teacherID,
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Str("code", course.Code).Msg("course created")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Delete(ctx context.Context, courseID uint, actor Actor) error {
	if _, err := s.Authorize(ctx, courseID, actor); err != nil {
		return err
	}

	if err := s.courses.Delete(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	s.logger.Info().Uint("course_id", courseID).Msg("course deleted")

	return nil
}

func (s *courseService) Enroll(ctx context.Context, courseID uint, payload dto.EnrollRequest, actor Actor) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if _, err := s.Authorize(ctx, courseID, actor); err != nil {
		return err
	}

	enrollment := models.Enrollment{CourseID: courseID, StudentID: payload.StudentID}
	return s.courses.Enroll(ctx, &enrollment)
}

func (s *courseService) Roster(ctx context.Context, courseID uint, actor Actor) ([]dto.UserResponse, error) {
	if _, err := s.Authorize(ctx, courseID, actor); err != nil {
		return nil, err
	}

	students, err := s.courses.Roster(ctx, courseID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, dto.NewUserResponse(student))
	}

	return responses, nil
}

func (s *courseService) Authorize(ctx context.Context, courseID uint, actor Actor) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}

	if actor.Role == models.RoleTeacher {
		if course.TeacherID != actor.ID {
			return models.Course{}, ErrCourseAccessDenied
		}
		return course, nil
	}

	enrolled, err := s.courses.IsEnrolled(ctx, courseID, actor.ID)
	if err != nil {
		return models.Course{}, err
	}
	if !enrolled {
		return models.Course{}, ErrCourseAccessDenied
	}

	return course, nil
}
