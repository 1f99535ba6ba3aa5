// file: internals/features/attendance/students/route/students_route.go
package route

import (
	"faceattend_backend/internals/features/attendance/students/controller"
	"faceattend_backend/internals/features/attendance/students/service"

	"github.com/gofiber/fiber/v2"
)

// read-only: pool subjek untuk verifikasi manual
func StudentRoutes(r fiber.Router, dir *service.Directory) {
	ctrl := controller.NewStudentController(dir)

	g := r.Group("/students")
	g.Get("/", ctrl.List) // GET /api/students?q=&course=
	g.Get("/:id", ctrl.GetByID)
}
