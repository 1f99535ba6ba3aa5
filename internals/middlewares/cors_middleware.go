// middlewares/cors.go

package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CorsMiddleware: origin dashboard konsol dari CORS_ALLOW_ORIGINS.
func CorsMiddleware(origins []string) fiber.Handler {
	allow := strings.Join(origins, ", ")
	if allow == "" {
		allow = "http://localhost:5173"
	}
	return cors.New(cors.Config{
		AllowOrigins:     allow,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, X-Request-ID",
		ExposeHeaders:    "Content-Disposition, X-Request-ID",
		AllowCredentials: allow != "*",
	})
}
