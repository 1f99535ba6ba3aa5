package service

import (
	"context"
	"testing"
	"time"

	"faceattend_backend/internals/features/devices/health/model"
	"faceattend_backend/internals/helpers/apperror"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormSource(t *testing.T) *GormSource {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	src := NewGormSource(db)
	src.now = func() time.Time { return base }
	if err := src.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return src
}

func TestGormSourceRoundTrip(t *testing.T) {
	src := newGormSource(t)
	ctx := context.Background()

	for _, r := range []model.Reading{
		reading("pc-lab1", "Lab 1", model.DeviceTypeComputer, model.Metrics{CPUPct: 40, MemoryPct: 70}),
		reading("door-a101", "A-101", model.DeviceTypeDoor, model.Metrics{TemperatureC: 38}),
	} {
		if err := src.Upsert(ctx, r); err != nil {
			t.Fatalf("upsert %s: %v", r.DeviceID, err)
		}
	}
	// upsert kedua menimpa metrik
	if err := src.Upsert(ctx, reading("pc-lab1", "Lab 1", model.DeviceTypeComputer, model.Metrics{CPUPct: 91})); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	ids, err := src.List(ctx)
	if err != nil || len(ids) != 2 || ids[0] != "door-a101" {
		t.Fatalf("list = %v %v", ids, err)
	}
	r, err := src.Read(ctx, "pc-lab1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if r.Metrics.CPUPct != 91 || r.Type != model.DeviceTypeComputer || !r.LastSeenAt.Equal(base) {
		t.Fatalf("reading = %+v", r)
	}
	if _, err := src.Read(ctx, "ghost"); !apperror.IsNotFound(err) {
		t.Fatalf("read unknown: %v", err)
	}
	if err := src.Upsert(ctx, model.Reading{DeviceID: "x", Type: "toaster"}); !apperror.IsValidation(err) {
		t.Fatalf("bad type: %v", err)
	}
}

func TestGormSourceJournalsActions(t *testing.T) {
	src := newGormSource(t)
	ctx := context.Background()
	_ = src.Upsert(ctx, reading("cam-b201", "B-201", model.DeviceTypeCamera, model.Metrics{}))

	if err := src.Execute(ctx, "cam-b201", model.ActionRestart); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if err := src.Execute(ctx, "ghost", model.ActionRestart); !apperror.IsNotFound(err) {
		t.Fatalf("execute unknown: %v", err)
	}
	rows, err := src.Actions(ctx, "cam-b201")
	if err != nil || len(rows) != 1 {
		t.Fatalf("actions = %v %v", rows, err)
	}
	if rows[0].ConsoleDeviceActionAction != "restart" || rows[0].ConsoleDeviceActionPayload["origin"] != "console" {
		t.Fatalf("action row = %+v", rows[0])
	}
}

func TestPollerOverGormSource(t *testing.T) {
	src := newGormSource(t)
	ctx := context.Background()
	_ = src.Upsert(ctx, reading("cam-b201", "B-201", model.DeviceTypeCamera, model.Metrics{TemperatureC: 58}))

	p, err := NewPoller(src, Config{Thresholds: model.DefaultThresholds(), Interval: 30 * time.Second, ReadTimeout: time.Second})
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	p.SetClock(func() time.Time { return base.Add(5 * time.Second) })

	if _, err := p.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	d, _ := p.Device("cam-b201")
	if d.DeviceStatus != model.DeviceStatusWarning || d.DeviceIssueCount != 1 {
		t.Fatalf("device = %+v", d)
	}

	_, _ = p.PowerCycle("cam-b201")
	rep, err := p.Tick(ctx)
	if err != nil || len(rep.Dispatched) != 1 || rep.Dispatched[0].Error != "" {
		t.Fatalf("dispatch: %+v %v", rep.Dispatched, err)
	}
	rows, _ := src.Actions(ctx, "cam-b201")
	if len(rows) != 1 || rows[0].ConsoleDeviceActionAction != string(model.ActionPowerCycle) {
		t.Fatalf("journal = %+v", rows)
	}
}
