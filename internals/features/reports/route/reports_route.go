// file: internals/features/reports/route/reports_route.go
package route

import (
	"faceattend_backend/internals/features/reports/controller"

	"github.com/gofiber/fiber/v2"
)

func ReportRoutes(r fiber.Router, ctrl *controller.ReportController) {
	g := r.Group("/reports")
	g.Get("/attendance.xlsx", ctrl.Attendance)
	g.Get("/access-logs.xlsx", ctrl.AccessLogs)
}
