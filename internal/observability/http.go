package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the Prometheus scrape endpoint for the grading API,
// bridging the net/http promhttp handler into the Fiber app.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()

	handler := promhttp.Handler()
	return adaptor.HTTPHandler(handler)
}
