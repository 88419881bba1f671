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

// PeerReviewHandler wires peer-evaluation HTTP routes.
type PeerReviewHandler struct {
	reviews service.PeerReviewService
	courses service.CourseService
	logger  zerolog.Logger
}

// NewPeerReviewHandler constructs the handler.
func NewPeerReviewHandler(reviews service.PeerReviewService, courses service.CourseService, logger zerolog.Logger) *PeerReviewHandler {
	return &PeerReviewHandler{
		reviews: reviews,
		courses: courses,
		logger:  logger.With().Str("component", "peer_review_handler").Logger(),
	}
}

// Register attaches peer-review endpoints to the course router group.
func (h *PeerReviewHandler) Register(router fiber.Router) {
	teacherOnly := middleware.RequireRole(models.RoleTeacher)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	router.Post("/:id/peer-reviews", studentOnly, h.submit)
	router.Get("/:id/peer-reviews", teacherOnly, h.list)
	router.Post("/:id/peer-reviews/aggregate", teacherOnly, h.aggregate)
}

func (h *PeerReviewHandler) submit(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := actorFromContext(c)
	if _, err := h.courses.Authorize(c.Context(), courseID, actor); err != nil {
		return h.handleError(c, err)
	}

	var payload dto.PeerReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	review, err := h.reviews.Submit(c.Context(), courseID, actor.ID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "peer review submitted", review)
}

func (h *PeerReviewHandler) list(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := h.courses.Authorize(c.Context(), courseID, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	reviews, err := h.reviews.ListByCourse(c.Context(), courseID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "peer reviews retrieved", reviews)
}

func (h *PeerReviewHandler) aggregate(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := h.courses.Authorize(c.Context(), courseID, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	aggregates, err := h.reviews.AggregateReportScores(c.Context(), courseID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "report scores aggregated", aggregates)
}

func (h *PeerReviewHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrCourseAccessDenied):
		return utils.SendError(c, fiber.StatusForbidden, "course access denied")
	case errors.Is(err, service.ErrSelfReview):
		return utils.SendError(c, fiber.StatusBadRequest, "cannot review your own report")
	case errors.Is(err, service.ErrRevieweeNotEnrolled):
		return utils.SendError(c, fiber.StatusNotFound, "reviewee not enrolled in course")
	case errors.Is(err, service.ErrStudentNotEnrolled):
		return utils.SendError(c, fiber.StatusNotFound, "student not enrolled in course")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
