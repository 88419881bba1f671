package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/joseph0711/grading-system-sub000/internal/config"
	"github.com/joseph0711/grading-system-sub000/internal/handler"
	"github.com/joseph0711/grading-system-sub000/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	CourseHandler     *handler.CourseHandler
	CriteriaHandler   *handler.CriteriaHandler
	ScoreHandler      *handler.ScoreHandler
	PeerReviewHandler *handler.PeerReviewHandler
	SessionMiddleware fiber.Handler
	LoginRateLimit    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	sessionMiddleware := deps.SessionMiddleware
	if sessionMiddleware == nil {
		sessionMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		if deps.LoginRateLimit != nil {
			auth.Use(deps.LoginRateLimit)
		}
		deps.AuthHandler.RegisterPublic(auth)

		protected := api.Group("/auth", sessionMiddleware)
		deps.AuthHandler.RegisterProtected(protected)
	}

	courses := api.Group("/courses", sessionMiddleware)
	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(courses)
	}
	if deps.CriteriaHandler != nil {
		deps.CriteriaHandler.Register(courses)
	}
	if deps.ScoreHandler != nil {
		deps.ScoreHandler.Register(courses)
	}
	if deps.PeerReviewHandler != nil {
		deps.PeerReviewHandler.Register(courses)
	}
}
