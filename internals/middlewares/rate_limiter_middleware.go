package middlewares

import (
	"time"

	helper "faceattend_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Global limiter: untuk semua endpoint /api. max <= 0 = limiter mati.
func GlobalRateLimiter(max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, "Terlalu banyak permintaan. Silakan coba lagi nanti.")
		},
	})
}

// Limiter khusus command perangkat (restart/power-cycle/refresh), lebih ketat.
func DeviceCommandRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + c.Path()
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodGet
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, "Terlalu banyak perintah ke perangkat. Tunggu sebentar.")
		},
	})
}
