package routes

import (
	"os"
	"time"

	database "faceattend_backend/internals/databases"

	"github.com/gofiber/fiber/v2"
)

func BaseRoutes(app *fiber.App, d Deps) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Face attendance console API 🚀")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		dbStatus := "Not configured"
		if d.DB != nil {
			dbStatus = "Connected"
			if err := database.Ping(d.DB); err != nil {
				dbStatus = "Database connection error"
				serverStatus = "DOWN"
				httpStatus = fiber.StatusServiceUnavailable
			}
		}

		poller := fiber.Map{"auto_refresh": false}
		if d.Poller != nil {
			poller["auto_refresh"] = d.Poller.AutoRefresh()
			poller["interval_seconds"] = int(d.Poller.Interval().Seconds())
			if last := d.Poller.LastTickAt(); !last.IsZero() {
				poller["last_tick_at"] = last.Format(time.RFC3339)
			}
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"poller":         poller,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    os.Getenv("CONSOLE_ENVIRONMENT"),
		})
	})
}
