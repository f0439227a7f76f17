package observability

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpOnce    sync.Once
	httpMetrics *fiberprometheus.FiberPrometheus
)

// InstrumentHTTP records request metrics for every route and serves the scrape endpoint
// at /metrics. Collectors live in the default registry so domain metrics are served too.
func InstrumentHTTP(app *fiber.App, serviceName string) {
	RegisterMetrics()
	httpOnce.Do(func() {
		httpMetrics = fiberprometheus.NewWithRegistry(prometheus.DefaultRegisterer, serviceName, "http", "", nil)
	})

	httpMetrics.RegisterAt(app, "/metrics")
	app.Use(httpMetrics.Middleware)
}
