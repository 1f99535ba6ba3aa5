package middlewares

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/utils"
)

// RequestContext: Request-ID + timing + batas waktu ctx request.
func RequestContext(timeout time.Duration) fiber.Handler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// read perangkat & query GORM mengikuti deadline ini
		ctx, cancel := context.WithTimeout(c.Context(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		if dur := time.Since(start); dur > timeout/2 {
			log.Printf("[REQ] slow id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), dur)
		}
		return err
	}
}
