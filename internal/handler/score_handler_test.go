package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/joseph0711/grading-system-sub000/internal/config"
	"github.com/joseph0711/grading-system-sub000/internal/handler"
	"github.com/joseph0711/grading-system-sub000/internal/models"
	"github.com/joseph0711/grading-system-sub000/internal/repository"
	"github.com/joseph0711/grading-system-sub000/internal/router"
	"github.com/joseph0711/grading-system-sub000/internal/service"
	"github.com/joseph0711/grading-system-sub000/internal/utils"
)

var courseSeq atomic.Int64

type testIdentity struct {
	userID uint
	role   string
}

func setupGradingApp(t *testing.T, identity *testIdentity) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Course{}, &models.Enrollment{}, &models.GradingCriteria{}, &models.ScoreRecord{}, &models.PeerReview{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	courseRepo := repository.NewCourseRepository(db)
	criteriaRepo := repository.NewCriteriaRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	peerReviewRepo := repository.NewPeerReviewRepository(db)

	courseService := service.NewCourseService(courseRepo, validate, logger)
	scoreService := service.NewScoreService(scoreRepo, criteriaRepo, courseRepo, nil, 0, validate, logger)
	criteriaService := service.NewCriteriaService(criteriaRepo, scoreService, validate, logger)
	peerReviewService := service.NewPeerReviewService(peerReviewRepo, scoreService, courseRepo, validate, logger)
	exportService := service.NewExportService(scoreService, logger)

	app := fiber.New()

	router.Register(app, config.Config{AppName: "Test", SessionSecret: "secret"}, router.Dependencies{
		CourseHandler:     handler.NewCourseHandler(courseService, logger),
		CriteriaHandler:   handler.NewCriteriaHandler(criteriaService, courseService, logger),
		ScoreHandler:      handler.NewScoreHandler(scoreService, exportService, courseService, logger),
		PeerReviewHandler: handler.NewPeerReviewHandler(peerReviewService, courseService, logger),
		SessionMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", identity.userID)
			c.Locals("user_role", identity.role)
			return c.Next()
		},
	})

	return app, db
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeResponse(t *testing.T, resp *http.Response) utils.APIResponse {
	t.Helper()

	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func seedCourse(t *testing.T, db *gorm.DB, teacherID uint, studentIDs ...uint) models.Course {
	t.Helper()

	course := models.Course{Code: fmt.Sprintf("T%d", courseSeq.Add(1)), Name: "Test Course", TeacherID: teacherID}
	require.NoError(t, db.Create(&course).Error)
	for _, studentID := range studentIDs {
		student := models.User{Name: fmt.Sprintf("Student %d", studentID), Email: fmt.Sprintf("s%d-%d@example.com", studentID, course.ID), PasswordHash: "x", Role: models.RoleStudent}
		student.ID = studentID
		require.NoError(t, db.Create(&student).Error)
		require.NoError(t, db.Create(&models.Enrollment{CourseID: course.ID, StudentID: studentID}).Error)
	}
	return course
}

func TestCriteriaEndpointRejectsBadWeightSum(t *testing.T) {
	identity := &testIdentity{userID: 1, role: models.RoleTeacher}
	app, db := setupGradingApp(t, identity)
	course := seedCourse(t, db, 1)

	req := jsonRequest(t, http.MethodPut, fmt.Sprintf("/api/v1/courses/%d/criteria", course.ID), map[string]float64{
		"attendance_weight":    20,
		"participation_weight": 20,
		"midterm_weight":       20,
		"final_weight":         20,
		"report_weight":        19,
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	envelope := decodeResponse(t, resp)
	require.False(t, envelope.Success)
	require.Contains(t, envelope.Message, "sum to 100")
}

func TestRecalculateEndpointEndToEnd(t *testing.T) {
	identity := &testIdentity{userID: 1, role: models.RoleTeacher}
	app, db := setupGradingApp(t, identity)
	course := seedCourse(t, db, 1, 11, 12)

	criteriaReq := jsonRequest(t, http.MethodPut, fmt.Sprintf("/api/v1/courses/%d/criteria", course.ID), map[string]float64{
		"attendance_weight":    20,
		"participation_weight": 10,
		"midterm_weight":       20,
		"final_weight":         30,
		"report_weight":        20,
	})
	resp, err := app.Test(criteriaReq)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rawReq := jsonRequest(t, http.MethodPut, fmt.Sprintf("/api/v1/courses/%d/scores/11", course.ID), map[string]interface{}{
		"absence_count":       2,
		"participation_count": 8,
		"midterm_score":       80,
		"final_score":         90,
		"report_score":        70,
	})
	resp, err = app.Test(rawReq)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/scores/recalculate", course.ID), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var record models.ScoreRecord
	require.NoError(t, db.Where("course_id = ? AND student_id = ?", course.ID, 11).First(&record).Error)
	require.NotNil(t, record.SemesterScore)
	require.Equal(t, 83, *record.SemesterScore)

	// Student 12 had no raw scores; the backfilled row scores attendance only.
	record = models.ScoreRecord{}
	require.NoError(t, db.Where("course_id = ? AND student_id = ?", course.ID, 12).First(&record).Error)
	require.NotNil(t, record.SemesterScore)
	require.Equal(t, 20, *record.SemesterScore)
}

func TestRecalculateEndpointWithoutCriteria(t *testing.T) {
	identity := &testIdentity{userID: 1, role: models.RoleTeacher}
	app, db := setupGradingApp(t, identity)
	course := seedCourse(t, db, 1, 21)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/scores/recalculate", course.ID), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	envelope := decodeResponse(t, resp)
	require.Contains(t, envelope.Message, "not configured")
}

func TestScoreEndpointsEnforceRoles(t *testing.T) {
	identity := &testIdentity{userID: 31, role: models.RoleStudent}
	app, db := setupGradingApp(t, identity)
	course := seedCourse(t, db, 1, 31)

	// Students cannot read the whole course table.
	resp, err := app.Test(jsonRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/courses/%d/scores", course.ID), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// But they can read their own row once it exists.
	require.NoError(t, db.Create(&models.ScoreRecord{CourseID: course.ID, StudentID: 31, AbsenceCount: 1}).Error)
	resp, err = app.Test(jsonRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/courses/%d/scores/me", course.ID), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPeerReviewEndpointRejectsSelfReview(t *testing.T) {
	identity := &testIdentity{userID: 41, role: models.RoleStudent}
	app, db := setupGradingApp(t, identity)
	course := seedCourse(t, db, 1, 41, 42)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/peer-reviews", course.ID), map[string]interface{}{
		"reviewee_id": 41,
		"score":       80,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/peer-reviews", course.ID), map[string]interface{}{
		"reviewee_id": 42,
		"score":       80,
		"comment":     "clear structure",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExportEndpointReturnsCSV(t *testing.T) {
	identity := &testIdentity{userID: 1, role: models.RoleTeacher}
	app, db := setupGradingApp(t, identity)
	course := seedCourse(t, db, 1, 51)
	require.NoError(t, db.Create(&models.ScoreRecord{CourseID: course.ID, StudentID: 51, AbsenceCount: 2}).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/courses/%d/scores/export", course.ID), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "student_id,absence_count")
	require.Contains(t, string(body), "51,2,0")
}
