package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/joseph0711/grading-system-sub000/internal/dto"
	"github.com/joseph0711/grading-system-sub000/internal/middleware"
	"github.com/joseph0711/grading-system-sub000/internal/models"
	"github.com/joseph0711/grading-system-sub000/internal/service"
	"github.com/joseph0711/grading-system-sub000/internal/utils"
)

// ScoreHandler wires score entry, score views, recalculation and export.
type ScoreHandler struct {
	scores  service.ScoreService
	export  service.ExportService
	courses service.CourseService
	logger  zerolog.Logger
}

// NewScoreHandler constructs the handler.
func NewScoreHandler(scores service.ScoreService, export service.ExportService, courses service.CourseService, logger zerolog.Logger) *ScoreHandler {
	return &ScoreHandler{
		scores:  scores,
		export:  export,
		courses: courses,
		logger:  logger.With().Str("component", "score_handler").Logger(),
	}
}

// Register attaches score endpoints to the course router group.
func (h *ScoreHandler) Register(router fiber.Router) {
	teacherOnly := middleware.RequireRole(models.RoleTeacher)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	router.Get("/:id/scores", teacherOnly, h.list)
	router.Get("/:id/scores/me", studentOnly, h.ownScore)
	router.Get("/:id/scores/export", teacherOnly, h.exportCSV)
	router.Put("/:id/scores/:studentID", teacherOnly, h.upsertRaw)
	router.Put("/:id/scores/:studentID/semester", teacherOnly, h.override)
	router.Post("/:id/scores/recalculate", teacherOnly, h.recalculate)
}

func (h *ScoreHandler) list(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := h.courses.Authorize(c.Context(), courseID, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	scores, err := h.scores.ListCourseScores(c.Context(), courseID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "scores retrieved", scores)
}

func (h *ScoreHandler) ownScore(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := actorFromContext(c)
	if _, err := h.courses.Authorize(c.Context(), courseID, actor); err != nil {
		return h.handleError(c, err)
	}

	score, err := h.scores.ScoreForStudent(c.Context(), courseID, actor.ID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "score retrieved", score)
}

func (h *ScoreHandler) upsertRaw(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseUintParam(c, "studentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := h.courses.Authorize(c.Context(), courseID, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	var payload dto.RawScoreUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.scores.UpsertRawScore(c.Context(), courseID, studentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "raw scores saved", record)
}

func (h *ScoreHandler) override(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseUintParam(c, "studentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := h.courses.Authorize(c.Context(), courseID, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	var payload dto.SemesterOverrideRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	affected, err := h.scores.OverrideSemesterScore(c.Context(), courseID, studentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "semester score updated", fiber.Map{"affected": affected})
}

func (h *ScoreHandler) recalculate(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := h.courses.Authorize(c.Context(), courseID, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	results, err := h.scores.Recalculate(c.Context(), courseID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "semester scores recalculated", results)
}

func (h *ScoreHandler) exportCSV(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := h.courses.Authorize(c.Context(), courseID, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	payload, err := h.export.CourseScoresCSV(c.Context(), courseID)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="scores.csv"`)
	return c.Send(payload)
}

func (h *ScoreHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrCourseAccessDenied):
		return utils.SendError(c, fiber.StatusForbidden, "course access denied")
	case errors.Is(err, service.ErrCriteriaNotConfigured):
		return utils.SendError(c, fiber.StatusNotFound, "grading criteria not configured")
	case errors.Is(err, service.ErrInvalidWeights):
		return utils.SendError(c, fiber.StatusBadRequest, "grading weights must sum to 100")
	case errors.Is(err, service.ErrScoreRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "score record not found")
	case errors.Is(err, service.ErrStudentNotEnrolled):
		return utils.SendError(c, fiber.StatusNotFound, "student not enrolled in course")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
