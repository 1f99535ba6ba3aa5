package middlewares

import (
	"faceattend_backend/internals/configs"
	"faceattend_backend/internals/middlewares/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
)

// SetupMiddlewares memasang middleware global sesuai urutan: recover paling luar.
func SetupMiddlewares(app *fiber.App, cfg configs.ConsoleConfig) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware(cfg.CORSOrigins))
	app.Use(RequestContext(cfg.RequestTimeout))
	app.Use(logger.LoggerMiddleware(cfg.Timezone))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching
	app.Use("/api", GlobalRateLimiter(cfg.RateLimitPerMinute))
}
