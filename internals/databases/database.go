package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"faceattend_backend/internals/configs"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDB membuka koneksi sesuai driver. Driver kosong = tanpa DB (nil, nil).
func ConnectDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "":
		return nil, nil
	case "postgres":
		if dsn == "" {
			dsn = postgresDSN()
		}
		log.Println("🔌 Koneksi ke PostgreSQL...")
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true, // 👍 cocok untuk PgBouncer (transaction pooling)
		})
	case "sqlite":
		if dsn == "" {
			dsn = "console.db"
		}
		log.Printf("🔌 Koneksi ke SQLite (%s)...", dsn)
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q (postgres|sqlite)", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: configs.NewGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	DB = db
	log.Println("✅ DB connected.")
	return db, nil
}

func postgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=faceattend&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		getenv("DB_SSLMODE", "require"),
	)
}

func TunePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	// ⚖️ poller hanya butuh sedikit koneksi
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
