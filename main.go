package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"faceattend_backend/internals/configs"
	database "faceattend_backend/internals/databases"
	accessService "faceattend_backend/internals/features/access/logs/service"
	recordService "faceattend_backend/internals/features/attendance/records/service"
	sessionService "faceattend_backend/internals/features/attendance/sessions/service"
	studentService "faceattend_backend/internals/features/attendance/students/service"
	verificationService "faceattend_backend/internals/features/attendance/verification/service"
	deviceModel "faceattend_backend/internals/features/devices/health/model"
	deviceService "faceattend_backend/internals/features/devices/health/service"
	helper "faceattend_backend/internals/helpers"
	"faceattend_backend/internals/helpers/dbtime"
	middlewares "faceattend_backend/internals/middlewares"
	routes "faceattend_backend/internals/route"
	"faceattend_backend/internals/seeds"
	deviceSeeds "faceattend_backend/internals/seeds/devices"

	"gorm.io/gorm"
)

func main() {
	configs.LoadEnv()
	cfg := configs.LoadConsoleConfig()
	dbtime.SetLocation(cfg.Timezone)

	// dibatalkan saat shutdown: loop auto-refresh & simulasi perangkat
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	// 🔌 DB (opsional) → device store
	db, err := database.ConnectDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	source, journal := deviceSource(baseCtx, cfg, db)

	// 🧩 services
	sessions := sessionService.NewService()
	students := studentService.NewDirectory()
	ledger := recordService.NewLedger(sessions, students)
	sessions.UseAttendance(ledger)
	access := accessService.NewLog()
	registry := verificationService.NewRegistry(verificationService.Deps{
		Sessions: sessions,
		Students: students,
		Records:  ledger,
	})

	if cfg.SeedDemo {
		if err := seeds.RunAllSeeds(seeds.Targets{
			Sessions: sessions, Students: students, Ledger: ledger, Access: access,
		}, dbtime.NowInConsole()); err != nil {
			log.Fatalf("❌ seed: %v", err)
		}
	}

	// 🩺 poller
	poller, err := deviceService.NewPoller(source, deviceService.Config{
		Thresholds:  thresholds(cfg.Devices),
		Interval:    cfg.Devices.RefreshInterval,
		ReadTimeout: cfg.Devices.ReadTimeout,
	})
	if err != nil {
		log.Fatalf("❌ poller: %v", err)
	}
	if _, err := poller.Refresh(baseCtx); err != nil {
		log.Printf("[POLLER] initial refresh: %v", err)
	}
	if cfg.Devices.AutoRefresh {
		poller.Start(baseCtx)
	}

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		ErrorHandler:          helper.FiberErrorHandler,
	})

	middlewares.SetupMiddlewares(app, cfg)

	// ✅ Routes
	routes.SetupRoutes(app, routes.Deps{
		Base:      baseCtx,
		DB:        db,
		Sessions:  sessions,
		Students:  students,
		Ledger:    ledger,
		Registry:  registry,
		Access:    access,
		Poller:    poller,
		Journal:   journal,
		LateGrace: cfg.LateGrace,
	})

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop poller dulu, lalu HTTP, lalu pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")
	cancelBase()
	poller.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	database.Close(db)
}

// deviceSource: GormSource bila DB dikonfigurasi, selain itu MemorySource tersimulasi.
func deviceSource(ctx context.Context, cfg configs.ConsoleConfig, db *gorm.DB) (deviceService.Source, deviceService.Journal) {
	if db != nil {
		database.TunePool(db)
		gs := deviceService.NewGormSource(db)
		if err := gs.Migrate(ctx); err != nil {
			log.Fatalf("❌ migrate device store: %v", err)
		}
		if cfg.SeedDemo {
			if err := deviceSeeds.SeedDevices(ctx, gs, time.Now()); err != nil {
				log.Fatalf("❌ seed devices: %v", err)
			}
		}
		return gs, gs
	}

	var readings []deviceModel.Reading
	if cfg.SeedDemo {
		r, err := deviceSeeds.Readings(time.Now())
		if err != nil {
			log.Fatalf("❌ seed devices: %v", err)
		}
		readings = r
	}
	ms := deviceService.NewMemorySource(readings...)
	if cfg.Devices.SimulateEvery > 0 {
		go ms.Simulate(ctx, cfg.Devices.SimulateEvery, cfg.Devices.SimulateSilent...)
	}
	return ms, ms
}

func thresholds(d configs.DeviceConfig) deviceModel.Thresholds {
	return deviceModel.Thresholds{
		CPUPct:       d.WarnCPUPct,
		MemoryPct:    d.WarnMemoryPct,
		LoadPct:      d.WarnLoadPct,
		TemperatureC: d.WarnTemperatureC,
		StaleAfter:   d.StaleAfter,
	}
}
