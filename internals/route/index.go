// file: internals/route/index.go
package routes

import (
	"context"
	"log"
	"time"

	accessRoute "faceattend_backend/internals/features/access/logs/route"
	accessService "faceattend_backend/internals/features/access/logs/service"
	recordRoute "faceattend_backend/internals/features/attendance/records/route"
	recordService "faceattend_backend/internals/features/attendance/records/service"
	sessionRoute "faceattend_backend/internals/features/attendance/sessions/route"
	sessionService "faceattend_backend/internals/features/attendance/sessions/service"
	studentRoute "faceattend_backend/internals/features/attendance/students/route"
	studentService "faceattend_backend/internals/features/attendance/students/service"
	verificationRoute "faceattend_backend/internals/features/attendance/verification/route"
	verificationService "faceattend_backend/internals/features/attendance/verification/service"
	deviceRoute "faceattend_backend/internals/features/devices/health/route"
	deviceService "faceattend_backend/internals/features/devices/health/service"
	reportController "faceattend_backend/internals/features/reports/controller"
	reportRoute "faceattend_backend/internals/features/reports/route"
	"faceattend_backend/internals/middlewares"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var startTime time.Time

// Deps: semua service yang di-mount ke /api. DB boleh nil (mode memori).
type Deps struct {
	Base context.Context // umur aplikasi; dibatalkan saat shutdown

	DB       *gorm.DB
	Sessions *sessionService.Service
	Students *studentService.Directory
	Ledger   *recordService.Ledger
	Registry *verificationService.Registry
	Access   *accessService.Log
	Poller   *deviceService.Poller
	Journal  deviceService.Journal

	LateGrace time.Duration
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	BaseRoutes(app, d)

	api := app.Group("/api")

	// ===================== ATTENDANCE =====================
	log.Println("[INFO] Mounting attendance routes...")
	sessionRoute.ClassSessionRoutes(api, d.Sessions, d.Ledger, d.LateGrace)
	recordRoute.AttendanceRecordRoutes(api, d.Ledger)
	studentRoute.StudentRoutes(api, d.Students)
	verificationRoute.VerificationRoutes(api, d.Registry)

	// ===================== ACCESS =====================
	log.Println("[INFO] Mounting access log routes...")
	accessRoute.AccessLogRoutes(api, d.Access)

	// ===================== DEVICES =====================
	log.Println("[INFO] Mounting device health routes...")
	api.Use("/devices", middlewares.DeviceCommandRateLimiter())
	deviceRoute.DeviceHealthRoutes(api, d.Base, d.Poller, d.Journal)

	// ===================== REPORTS =====================
	log.Println("[INFO] Mounting report routes...")
	reportRoute.ReportRoutes(api, &reportController.ReportController{
		Sessions: d.Sessions,
		Ledger:   d.Ledger,
		Students: d.Students,
		Access:   d.Access,
	})
}
