package helper

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// FiberErrorHandler: error yang lolos dari handler (404 route, 405, panic yang
// sudah di-recover) tetap keluar dengan envelope JSON yang sama.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	if _, ok := err.(*fiber.Error); !ok {
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	}
	return FromError(c, err)
}
