// file: internals/features/attendance/verification/route/verification_route.go
package route

import (
	"faceattend_backend/internals/features/attendance/verification/controller"
	"faceattend_backend/internals/features/attendance/verification/service"

	"github.com/gofiber/fiber/v2"
)

/*
Alur operator:
  POST /verifications → PUT /:id/context → POST /:id/search → GET /:id/subjects?q=
  → POST /:id/subject → POST /:id/decision → POST /:id/commit (atau /:id/cancel)
*/
func VerificationRoutes(r fiber.Router, reg *service.Registry) {
	ctrl := controller.NewVerificationController(reg)

	g := r.Group("/verifications")
	g.Post("/", ctrl.Open)
	g.Post("/commit", ctrl.CommitOneShot) // one-shot, sebelum /:id

	g.Get("/:id", ctrl.Get)
	g.Delete("/:id", ctrl.Close)
	g.Put("/:id/context", ctrl.SetContext)
	g.Post("/:id/search", ctrl.BeginSearch)
	g.Get("/:id/subjects", ctrl.Subjects)
	g.Post("/:id/subject", ctrl.SelectSubject)
	g.Post("/:id/decision", ctrl.Decision)
	g.Post("/:id/cancel", ctrl.Cancel)
	g.Post("/:id/commit", ctrl.Commit)
	g.Post("/:id/reset", ctrl.Reset)
}
