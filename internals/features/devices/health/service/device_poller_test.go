package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"faceattend_backend/internals/features/devices/health/model"
	"faceattend_backend/internals/helpers/apperror"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func reading(id, room string, typ model.DeviceType, m model.Metrics) model.Reading {
	return model.Reading{DeviceID: id, Name: strings.ToUpper(id), Room: room, Type: typ, LastSeenAt: base, Metrics: m}
}

func newTestPoller(t *testing.T, readings ...model.Reading) (*Poller, *MemorySource, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: base}
	src := NewMemorySource(readings...)
	src.SetClock(clock.Now)
	p, err := NewPoller(src, Config{Thresholds: model.DefaultThresholds(), Interval: 30 * time.Second, ReadTimeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	p.SetClock(clock.Now)
	return p, src, clock
}

func mustTick(t *testing.T, p *Poller) TickReport {
	t.Helper()
	rep, err := p.Tick(context.Background())
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	return rep
}

func mustDevice(t *testing.T, p *Poller, id string) model.DeviceModel {
	t.Helper()
	d, err := p.Device(id)
	if err != nil {
		t.Fatalf("device %s: %v", id, err)
	}
	return d
}

func TestTemperatureExcursionCountsOnce(t *testing.T) {
	p, src, clock := newTestPoller(t, reading("cam-b201", "B-201", model.DeviceTypeCamera, model.Metrics{CPUPct: 30, TemperatureC: 58}))

	mustTick(t, p)
	d := mustDevice(t, p, "cam-b201")
	if d.DeviceStatus != model.DeviceStatusWarning || d.DeviceIssueCount != 1 {
		t.Fatalf("58C: status=%s issues=%d", d.DeviceStatus, d.DeviceIssueCount)
	}
	if len(d.DeviceExceeded) != 1 || d.DeviceExceeded[0] != model.MetricTemperature {
		t.Fatalf("exceeded = %v", d.DeviceExceeded)
	}

	// level tetap tinggi: bukan excursion baru
	clock.Advance(30 * time.Second)
	_ = src.Report("cam-b201", model.Metrics{CPUPct: 30, TemperatureC: 59})
	mustTick(t, p)
	if d := mustDevice(t, p, "cam-b201"); d.DeviceIssueCount != 1 {
		t.Fatalf("sustained excursion counted twice: %d", d.DeviceIssueCount)
	}

	clock.Advance(30 * time.Second)
	_ = src.Report("cam-b201", model.Metrics{CPUPct: 30, TemperatureC: 50})
	mustTick(t, p)
	d = mustDevice(t, p, "cam-b201")
	if d.DeviceStatus != model.DeviceStatusOnline || d.DeviceIssueCount != 1 {
		t.Fatalf("50C: status=%s issues=%d", d.DeviceStatus, d.DeviceIssueCount)
	}

	clock.Advance(30 * time.Second)
	_ = src.Report("cam-b201", model.Metrics{CPUPct: 30, TemperatureC: 57})
	mustTick(t, p)
	if d := mustDevice(t, p, "cam-b201"); d.DeviceIssueCount != 2 {
		t.Fatalf("second excursion: issues=%d", d.DeviceIssueCount)
	}

	if _, err := p.Acknowledge("cam-b201"); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if d := mustDevice(t, p, "cam-b201"); d.DeviceIssueCount != 0 {
		t.Fatalf("after ack: issues=%d", d.DeviceIssueCount)
	}
	if _, err := p.Acknowledge("nope"); !apperror.IsNotFound(err) {
		t.Fatalf("ack unknown: %v", err)
	}
}

func TestTickContinuesPastFailures(t *testing.T) {
	p, src, clock := newTestPoller(t,
		reading("door-b201", "B-201", model.DeviceTypeDoor, model.Metrics{CPUPct: 10}),
		reading("pc-lab1", "Lab 1", model.DeviceTypeComputer, model.Metrics{CPUPct: 20}),
		reading("cam-lab1", "Lab 1", model.DeviceTypeCamera, model.Metrics{CPUPct: 20}),
	)
	mustTick(t, p)

	clock.Advance(10 * time.Second)
	src.Fail("door-b201", errors.New("connection refused"))
	src.Delay("pc-lab1", time.Second)
	_ = src.Report("cam-lab1", model.Metrics{CPUPct: 95})

	started := time.Now()
	rep := mustTick(t, p)
	if time.Since(started) > 500*time.Millisecond {
		t.Fatalf("tick not bounded by read timeout: %s", time.Since(started))
	}
	if len(rep.Failures) != 2 {
		t.Fatalf("failures = %+v", rep.Failures)
	}
	timedOut := false
	for _, f := range rep.Failures {
		if f.DeviceID == "pc-lab1" && strings.Contains(f.Error, "timeout") {
			timedOut = true
		}
	}
	if !timedOut {
		t.Fatalf("timeout not reported: %+v", rep.Failures)
	}
	if d := mustDevice(t, p, "cam-lab1"); d.DeviceStatus != model.DeviceStatusWarning {
		t.Fatalf("healthy read after failures: %s", d.DeviceStatus)
	}
	d := mustDevice(t, p, "door-b201")
	if d.DeviceLastError == "" || d.DeviceStatus != model.DeviceStatusOnline {
		t.Fatalf("failed device keeps last reading: %+v", d)
	}

	// tanpa read baru, perangkat jadi offline setelah melewati batas stale
	clock.Advance(3 * time.Minute)
	mustTick(t, p)
	if d := mustDevice(t, p, "door-b201"); d.DeviceStatus != model.DeviceStatusOffline {
		t.Fatalf("unreachable device = %s", d.DeviceStatus)
	}
}

func TestStaleReadMarksOffline(t *testing.T) {
	r := reading("door-a101", "A-101", model.DeviceTypeDoor, model.Metrics{TemperatureC: 70})
	r.LastSeenAt = base.Add(-5 * time.Minute)
	p, _, _ := newTestPoller(t, r, reading("door-a102", "A-102", model.DeviceTypeDoor, model.Metrics{}))

	rep := mustTick(t, p)
	if len(rep.Stale) != 1 || rep.Stale[0] != "door-a101" {
		t.Fatalf("stale = %v", rep.Stale)
	}
	d := mustDevice(t, p, "door-a101")
	if d.DeviceStatus != model.DeviceStatusOffline || !strings.Contains(d.DeviceLastError, "stale") {
		t.Fatalf("stale device = %+v", d)
	}
	if d.DeviceIssueCount != 0 {
		t.Fatalf("stale metrics must not raise issues: %d", d.DeviceIssueCount)
	}

	sum := p.Summary()
	if sum[0].Count != 1 || sum[1].Count != 0 || sum[2].Count != 1 || sum[2].Percent != 50 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestRemovedDeviceDropsFromSnapshot(t *testing.T) {
	p, src, _ := newTestPoller(t, reading("door-a101", "A-101", model.DeviceTypeDoor, model.Metrics{}))
	mustTick(t, p)
	src.mu.Lock()
	delete(src.readings, "door-a101")
	src.mu.Unlock()

	rep := mustTick(t, p)
	if len(rep.Devices) != 0 || len(rep.Failures) != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if _, err := p.Device("door-a101"); !apperror.IsNotFound(err) {
		t.Fatalf("device after removal: %v", err)
	}
}

func TestActionsCoalesce(t *testing.T) {
	p, src, _ := newTestPoller(t,
		reading("pc-lab1", "Lab 1", model.DeviceTypeComputer, model.Metrics{CPUPct: 96, LoadPct: 95}),
		reading("pc-lab2", "Lab 2", model.DeviceTypeComputer, model.Metrics{CPUPct: 10}),
	)
	mustTick(t, p)

	r1, _ := p.Restart("pc-lab1")
	r2, _ := p.Restart("pc-lab1")
	if r1.Coalesced || !r2.Coalesced || r2.Pending != model.ActionRestart {
		t.Fatalf("restart twice: %+v %+v", r1, r2)
	}
	r3, _ := p.PowerCycle("pc-lab1")
	if r3.Coalesced || r3.Pending != model.ActionPowerCycle {
		t.Fatalf("power-cycle over restart: %+v", r3)
	}
	r4, _ := p.Restart("pc-lab1")
	if !r4.Coalesced || r4.Pending != model.ActionPowerCycle {
		t.Fatalf("restart during power-cycle: %+v", r4)
	}
	if _, err := p.Restart("ghost"); !apperror.IsNotFound(err) {
		t.Fatalf("unknown device: %v", err)
	}
	if len(src.Executed()) != 0 {
		t.Fatal("actions must wait for the next tick")
	}

	rep := mustTick(t, p)
	ex := src.Executed()
	if len(ex) != 1 || ex[0].Action != model.ActionPowerCycle || len(rep.Dispatched) != 1 {
		t.Fatalf("executed = %+v dispatched = %+v", ex, rep.Dispatched)
	}
	d := mustDevice(t, p, "pc-lab1")
	if d.DevicePendingAction != nil || d.DeviceLastAction == nil || *d.DeviceLastAction != model.ActionPowerCycle {
		t.Fatalf("after dispatch: %+v", d)
	}
	if d.DeviceStatus != model.DeviceStatusOnline {
		t.Fatalf("power-cycled device = %s", d.DeviceStatus)
	}

	mustTick(t, p)
	if len(src.Executed()) != 1 {
		t.Fatal("action dispatched twice")
	}
}

func TestPingDoesNotTouchSnapshot(t *testing.T) {
	p, src, _ := newTestPoller(t, reading("cam-b201", "B-201", model.DeviceTypeCamera, model.Metrics{TemperatureC: 40}))
	mustTick(t, p)
	_ = src.Report("cam-b201", model.Metrics{TemperatureC: 60})

	res, err := p.Ping(context.Background(), "cam-b201")
	if err != nil || !res.Reachable || res.Status != model.DeviceStatusWarning {
		t.Fatalf("ping: %+v %v", res, err)
	}
	if d := mustDevice(t, p, "cam-b201"); d.DeviceStatus != model.DeviceStatusOnline || d.DeviceIssueCount != 0 {
		t.Fatalf("ping mutated snapshot: %+v", d)
	}

	src.Fail("cam-b201", errors.New("no route to host"))
	res, err = p.Ping(context.Background(), "cam-b201")
	if err != nil || res.Reachable || res.Status != model.DeviceStatusOffline || res.Error == "" {
		t.Fatalf("ping failing device: %+v %v", res, err)
	}
	if _, err := p.Ping(context.Background(), "ghost"); !apperror.IsNotFound(err) {
		t.Fatalf("ping unknown: %v", err)
	}
}

func TestIntervals(t *testing.T) {
	p, _, _ := newTestPoller(t)
	if err := p.SetInterval(15 * time.Second); !apperror.IsValidation(err) {
		t.Fatalf("15s: %v", err)
	}
	if err := p.SetInterval(time.Minute); err != nil || p.Interval() != time.Minute {
		t.Fatalf("1m: %v %s", err, p.Interval())
	}
	for in, want := range map[string]time.Duration{"10s": 10 * time.Second, "300": 5 * time.Minute, "1m": time.Minute} {
		if got, err := ParseInterval(in); err != nil || got != want {
			t.Errorf("ParseInterval(%q) = %s %v", in, got, err)
		}
	}
	if _, err := ParseInterval("45s"); !apperror.IsValidation(err) {
		t.Fatalf("45s: %v", err)
	}
	if _, err := NewPoller(NewMemorySource(), Config{Thresholds: model.DefaultThresholds(), Interval: time.Second}); err == nil {
		t.Fatal("1s interval accepted")
	}
}

type countingSource struct {
	*MemorySource
	lists atomic.Int32
}

func (c *countingSource) List(ctx context.Context) ([]string, error) {
	c.lists.Add(1)
	return c.MemorySource.List(ctx)
}

func TestAutoRefreshStopsImmediately(t *testing.T) {
	src := &countingSource{MemorySource: NewMemorySource(reading("door-a101", "A-101", model.DeviceTypeDoor, model.Metrics{}))}
	p, err := NewPoller(src, Config{Thresholds: model.DefaultThresholds(), Interval: 10 * time.Second, ReadTimeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	p.wait = func(d time.Duration) time.Duration { return d / 1000 } // 10s -> 10ms

	h := p.Start(context.Background())
	if again := p.Start(context.Background()); again != h {
		t.Fatal("second Start should return the running handle")
	}
	if p.NextTickAt() == nil || !p.AutoRefresh() {
		t.Fatal("countdown not armed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for src.lists.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("auto-refresh did not tick")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.Stop()
	n := src.lists.Load()
	time.Sleep(60 * time.Millisecond)
	if got := src.lists.Load(); got != n {
		t.Fatalf("trailing tick after Stop: %d -> %d", n, got)
	}
	if p.AutoRefresh() || p.NextTickAt() != nil {
		t.Fatal("poller still reports auto-refresh")
	}
	h.Stop()
	select {
	case <-h.Done():
	default:
		t.Fatal("handle not done")
	}
}

func TestManualRefreshResetsCountdown(t *testing.T) {
	p, _, clock := newTestPoller(t, reading("door-a101", "A-101", model.DeviceTypeDoor, model.Metrics{}))
	p.wait = func(d time.Duration) time.Duration { return time.Hour }
	h := p.Start(context.Background())
	defer h.Stop()

	first := *p.NextTickAt()
	clock.Advance(20 * time.Second)
	rep, err := p.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rep.NextTickAt == nil || !rep.NextTickAt.Equal(clock.Now().Add(30*time.Second)) || !rep.NextTickAt.After(first) {
		t.Fatalf("countdown not reset: first=%s next=%v", first, rep.NextTickAt)
	}
}
