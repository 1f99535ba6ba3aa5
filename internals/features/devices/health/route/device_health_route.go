// file: internals/features/devices/health/route/device_health_route.go
package route

import (
	"context"

	"faceattend_backend/internals/features/devices/health/controller"
	"faceattend_backend/internals/features/devices/health/service"

	"github.com/gofiber/fiber/v2"
)

// base: context umur aplikasi; dibatalkan saat shutdown.
func DeviceHealthRoutes(r fiber.Router, base context.Context, p *service.Poller, journal service.Journal) {
	ctrl := controller.NewDeviceHealthController(base, p, journal)

	g := r.Group("/devices")
	g.Get("/", ctrl.List)
	g.Get("/summary", ctrl.Summary)
	g.Post("/refresh", ctrl.Refresh)
	g.Get("/auto-refresh", ctrl.GetAutoRefresh)
	g.Put("/auto-refresh", ctrl.UpdateAutoRefresh)

	g.Get("/:id", ctrl.GetByID)
	g.Get("/:id/actions", ctrl.Actions)
	g.Post("/:id/ping", ctrl.Ping)
	g.Post("/:id/restart", ctrl.Restart)
	g.Post("/:id/power-cycle", ctrl.PowerCycle)
	g.Post("/:id/acknowledge", ctrl.Acknowledge)
}
