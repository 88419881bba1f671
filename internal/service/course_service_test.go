package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/joseph0711/grading-system-sub000/internal/dto"
	"github.com/joseph0711/grading-system-sub000/internal/models"
)

func newCourseServiceForTest(courses *fakeCourseRepo) CourseService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewCourseService(courses, validate, testLogger())
}

func TestCourseServiceAuthorizeTeacherOwnership(t *testing.T) {
	courses := newFakeCourseRepo()
	courses.courses[1] = models.Course{ID: 1, Code: "CS101", TeacherID: 3}
	svc := newCourseServiceForTest(courses)

	_, err := svc.Authorize(context.Background(), 1, Actor{ID: 3, Role: models.RoleTeacher})
	require.NoError(t, err)

	_, err = svc.Authorize(context.Background(), 1, Actor{ID: 4, Role: models.RoleTeacher})
	require.ErrorIs(t, err, ErrCourseAccessDenied)

	_, err = svc.Authorize(context.Background(), 99, Actor{ID: 3, Role: models.RoleTeacher})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseServiceAuthorizeStudentEnrollment(t *testing.T) {
	courses := newFakeCourseRepo()
	courses.courses[1] = models.Course{ID: 1, Code: "CS101", TeacherID: 3}
	courses.addStudent(1, models.User{ID: 7, Role: models.RoleStudent})
	svc := newCourseServiceForTest(courses)

	_, err := svc.Authorize(context.Background(), 1, Actor{ID: 7, Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = svc.Authorize(context.Background(), 1, Actor{ID: 8, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrCourseAccessDenied)
}

func TestCourseServiceListForActorSplitsByRole(t *testing.T) {
	courses := newFakeCourseRepo()
	courses.courses[1] = models.Course{ID: 1, Code: "CS101", TeacherID: 3}
	courses.courses[2] = models.Course{ID: 2, Code: "CS202", TeacherID: 4}
	courses.addStudent(2, models.User{ID: 7, Role: models.RoleStudent})
	svc := newCourseServiceForTest(courses)

	taught, err := svc.ListForActor(context.Background(), Actor{ID: 3, Role: models.RoleTeacher})
	require.NoError(t, err)
	require.Len(t, taught, 1)
	require.Equal(t, "CS101", taught[0].Code)

	enrolled, err := svc.ListForActor(context.Background(), Actor{ID: 7, Role: models.RoleStudent})
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	require.Equal(t, "CS202", enrolled[0].Code)
}

func TestCourseServiceCreateValidatesPayload(t *testing.T) {
	courses := newFakeCourseRepo()
	svc := newCourseServiceForTest(courses)

	_, err := svc.Create(context.Background(), dto.CourseCreateRequest{Code: "C", Name: "x"}, 3)
	require.Error(t, err)
	require.Empty(t, courses.courses)

	course, err := svc.Create(context.Background(), dto.CourseCreateRequest{Code: "CS101", Name: "Systems Programming"}, 3)
	require.NoError(t, err)
	require.Equal(t, uint(3), course.TeacherID)
}
