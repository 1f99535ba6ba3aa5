package middlewares

import (
	"log"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const panickedKey = "panicked"

// RecoveryMiddleware menangkap panic, mencatatnya bersama request id,
// lalu meneruskan 500 ke ErrorHandler supaya bentuk JSON tetap sama.
func RecoveryMiddleware() fiber.Handler {
	rec := recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			reqID, _ := c.Locals("reqid").(string)
			log.Printf("[PANIC] id=%s %s %s: %v\n%s", reqID, c.Method(), c.OriginalURL(), e, debug.Stack())
			c.Locals(panickedKey, true)
		},
	})
	return func(c *fiber.Ctx) error {
		err := rec(c)
		if p, _ := c.Locals(panickedKey).(bool); p {
			// pesan panic tidak dikirim ke client
			return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
		}
		return err
	}
}
