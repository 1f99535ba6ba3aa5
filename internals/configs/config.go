package configs

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" && os.Getenv("CONSOLE_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in managed environment, menggunakan ENV dari sistem")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func GetEnvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return v
}

func GetEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️ %s=%q bukan durasi valid, pakai default %s", key, raw, def)
		return def
	}
	return d
}

func GetEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

// =======================
// CONSOLE CONFIG
// =======================
type DeviceConfig struct {
	WarnCPUPct       float64
	WarnMemoryPct    float64
	WarnLoadPct      float64
	WarnTemperatureC float64
	StaleAfter       time.Duration
	RefreshInterval  time.Duration
	ReadTimeout      time.Duration
	AutoRefresh      bool

	// simulasi MemorySource (tanpa DB)
	SimulateEvery  time.Duration
	SimulateSilent []string
}

type ConsoleConfig struct {
	Port     string
	Timezone string

	DBDriver string // postgres | sqlite | "" (tanpa DB)
	DBDSN    string

	Devices DeviceConfig

	LateGrace time.Duration
	SeedDemo  bool

	CORSOrigins        []string
	RateLimitPerMinute int
	RequestTimeout     time.Duration
}

func LoadConsoleConfig() ConsoleConfig {
	cfg := ConsoleConfig{
		Port:     GetEnv("PORT", "3000"),
		Timezone: GetEnv("CONSOLE_TIMEZONE", "Asia/Jakarta"),
		DBDriver: strings.ToLower(GetEnv("DB_DRIVER")),
		DBDSN:    GetEnv("DB_DSN"),
		Devices: DeviceConfig{
			WarnCPUPct:       GetEnvFloat("DEVICE_WARN_CPU_PCT", 85),
			WarnMemoryPct:    GetEnvFloat("DEVICE_WARN_MEMORY_PCT", 85),
			WarnLoadPct:      GetEnvFloat("DEVICE_WARN_LOAD_PCT", 90),
			WarnTemperatureC: GetEnvFloat("DEVICE_WARN_TEMPERATURE_C", 55),
			StaleAfter:       GetEnvDuration("DEVICE_STALE_AFTER", 2*time.Minute),
			RefreshInterval:  GetEnvDuration("DEVICE_REFRESH_INTERVAL", 30*time.Second),
			ReadTimeout:      GetEnvDuration("DEVICE_READ_TIMEOUT", 3*time.Second),
			AutoRefresh:      GetEnvBool("DEVICE_AUTO_REFRESH", true),
			SimulateEvery:    GetEnvDuration("DEVICE_SIMULATE_EVERY", 15*time.Second),
			SimulateSilent:   splitList(GetEnv("DEVICE_SIMULATE_SILENT", "cam-lab3")),
		},
		LateGrace: GetEnvDuration("ATTENDANCE_LATE_GRACE", 15*time.Minute),
		SeedDemo:  GetEnvBool("SEED_DEMO_DATA", true),

		CORSOrigins:        splitList(GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		RateLimitPerMinute: GetEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		RequestTimeout:     GetEnvDuration("REQUEST_TIMEOUT", 5*time.Second),
	}

	if cfg.DBDriver == "" {
		log.Println("ℹ️ DB_DRIVER kosong, device store memakai memori")
	} else {
		log.Printf("✅ DB_DRIVER=%s", cfg.DBDriver)
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	level := gormLogger.Warn
	if GetEnvBool("DB_LOG_QUERIES", false) {
		level = gormLogger.Info
	}
	return &GormLogger{
		SlowThreshold: GetEnvDuration("DB_SLOW_THRESHOLD", 200*time.Millisecond),
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error:
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
