// file: internals/features/attendance/sessions/route/class_sessions_route.go
package route

import (
	"time"

	recordService "faceattend_backend/internals/features/attendance/records/service"
	"faceattend_backend/internals/features/attendance/sessions/controller"
	"faceattend_backend/internals/features/attendance/sessions/service"

	"github.com/gofiber/fiber/v2"
)

/*
Mount contoh: ClassSessionRoutes(app.Group("/api"), sessions, ledger, grace)
*/
func ClassSessionRoutes(r fiber.Router, sessions *service.Service, ledger *recordService.Ledger, lateGrace time.Duration) {
	ctrl := controller.NewClassSessionController(sessions, ledger, lateGrace)

	g := r.Group("/sessions")
	g.Get("/", ctrl.List)            // GET  /api/sessions?q=&status=&course=...
	g.Get("/summary", ctrl.Summary)  // GET  /api/sessions/summary
	g.Post("/", ctrl.Create)         // POST /api/sessions
	g.Post("/advance", ctrl.Advance) // POST /api/sessions/advance

	g.Get("/:id", ctrl.GetByID)
	g.Delete("/:id", ctrl.Delete)
	g.Post("/:id/start", ctrl.Start)
	g.Post("/:id/complete", ctrl.Complete) // body: {"no_show_ack": true}
	g.Post("/:id/cancel", ctrl.Cancel)     // body: {"reason": "..."}

	g.Get("/:id/records", ctrl.Records) // ?effective=true
	g.Get("/:id/stats", ctrl.Stats)
	g.Post("/:id/records/automatic", ctrl.RecordAutomatic)
}
