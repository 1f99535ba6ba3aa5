package seeds

import (
	"context"
	"testing"
	"time"

	accessService "faceattend_backend/internals/features/access/logs/service"
	recordService "faceattend_backend/internals/features/attendance/records/service"
	sessionModel "faceattend_backend/internals/features/attendance/sessions/model"
	sessionService "faceattend_backend/internals/features/attendance/sessions/service"
	studentService "faceattend_backend/internals/features/attendance/students/service"
	"faceattend_backend/internals/features/devices/health/model"
	"faceattend_backend/internals/features/devices/health/service"
	"faceattend_backend/internals/helpers/dbtime"
	"faceattend_backend/internals/seeds/devices"
)

func TestRunAllSeeds(t *testing.T) {
	dbtime.SetLocation("UTC")
	ss := sessionService.NewService()
	dir := studentService.NewDirectory()
	ledger := recordService.NewLedger(ss, dir)
	ss.UseAttendance(ledger)
	log := accessService.NewLog()

	anchor := time.Date(2026, 3, 9, 7, 30, 0, 0, time.UTC)
	if err := RunAllSeeds(Targets{Sessions: ss, Students: dir, Ledger: ledger, Access: log}, anchor); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if n := len(dir.All()); n != 8 {
		t.Errorf("students = %d", n)
	}
	all := ss.All()
	if len(all) != 6 {
		t.Fatalf("sessions = %d", len(all))
	}
	var cancelled int
	for _, s := range all {
		if s.ClassSessionStatus == sessionModel.SessionStatusCancelled {
			cancelled++
			if s.ClassSessionCancelReason == nil {
				t.Errorf("cancelled session %s has no reason", s.ClassSessionID)
			}
		}
	}
	if cancelled != 1 {
		t.Errorf("cancelled = %d", cancelled)
	}
	if n := len(ledger.All()); n != 10 {
		t.Errorf("records = %d", n)
	}
	if n := len(log.All()); n != 9 {
		t.Errorf("access events = %d", n)
	}
}

func TestDeviceReadingsDriveStatuses(t *testing.T) {
	now := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	readings, err := devices.Readings(now)
	if err != nil {
		t.Fatalf("readings: %v", err)
	}
	src := service.NewMemorySource(readings...)
	src.SetClock(func() time.Time { return now })
	p, err := service.NewPoller(src, service.Config{Thresholds: model.DefaultThresholds(), Interval: 30 * time.Second, ReadTimeout: time.Second})
	if err != nil {
		t.Fatalf("poller: %v", err)
	}
	p.SetClock(func() time.Time { return now })
	if _, err := p.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	want := map[string]model.DeviceStatus{
		"door-b201": model.DeviceStatusOnline,
		"cam-b201":  model.DeviceStatusWarning,
		"cam-lab3":  model.DeviceStatusOffline,
		"pc-c105":   model.DeviceStatusWarning,
	}
	for id, st := range want {
		d, err := p.Device(id)
		if err != nil {
			t.Fatalf("device %s: %v", id, err)
		}
		if d.DeviceStatus != st {
			t.Errorf("%s = %s, want %s", id, d.DeviceStatus, st)
		}
	}
}
