package route

import (
	"faceattend_backend/internals/features/attendance/records/controller"
	"faceattend_backend/internals/features/attendance/records/service"

	"github.com/gofiber/fiber/v2"
)

func AttendanceRecordRoutes(r fiber.Router, l *service.Ledger) {
	ctrl := controller.NewAttendanceRecordController(l)

	g := r.Group("/attendance-records")
	g.Get("/", ctrl.List)
	g.Get("/summary", ctrl.Summary)
}
