// file: internals/features/access/logs/route/access_logs_route.go
package route

import (
	"faceattend_backend/internals/features/access/logs/controller"
	"faceattend_backend/internals/features/access/logs/service"

	"github.com/gofiber/fiber/v2"
)

// append-only: tidak ada PUT/DELETE
func AccessLogRoutes(r fiber.Router, l *service.Log) {
	ctrl := controller.NewAccessLogController(l)

	g := r.Group("/access-logs")
	g.Get("/", ctrl.List)
	g.Get("/summary", ctrl.Summary)
	g.Post("/", ctrl.Create)
}
