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

// CriteriaHandler wires grading-criteria HTTP routes.
type CriteriaHandler struct {
	criteria service.CriteriaService
	courses  service.CourseService
	logger   zerolog.Logger
}

// NewCriteriaHandler constructs the handler.
func NewCriteriaHandler(criteria service.CriteriaService, courses service.CourseService, logger zerolog.Logger) *CriteriaHandler {
	return &CriteriaHandler{
		criteria: criteria,
		courses:  courses,
		logger:   logger.With().Str("component", "criteria_handler").Logger(),
	}
}

// Register attaches criteria endpoints to the course router group.
func (h *CriteriaHandler) Register(router fiber.Router) {
	teacherOnly := middleware.RequireRole(models.RoleTeacher)

	router.Get("/:id/criteria", h.get)
	router.Put("/:id/criteria", teacherOnly, h.save)
}

func (h *CriteriaHandler) get(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := h.courses.Authorize(c.Context(), courseID, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	criteria, err := h.criteria.Get(c.Context(), courseID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "criteria retrieved", criteria)
}

func (h *CriteriaHandler) save(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := h.courses.Authorize(c.Context(), courseID, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	var payload dto.CriteriaRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	criteria, err := h.criteria.Save(c.Context(), courseID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "criteria saved", criteria)
}

func (h *CriteriaHandler) handleError(c *fiber.Ctx, err error) error {
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
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
