// file: internals/features/devices/health/service/device_source.go
package service

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"faceattend_backend/internals/features/devices/health/model"
	"faceattend_backend/internals/helpers/apperror"
)

// Source: asal snapshot perangkat. Setiap panggilan harus menghormati deadline ctx.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, id string) (model.Reading, error)
	Execute(ctx context.Context, id string, action model.Action) error
}

/* =========================
   MemorySource (mock/simulasi)
========================= */

type Execution struct {
	DeviceID string       `json:"device_id"`
	Action   model.Action `json:"action"`
	At       time.Time    `json:"at"`
}

// Journal: riwayat tindakan per perangkat, terbaru dulu.
type Journal interface {
	History(ctx context.Context, id string) ([]Execution, error)
}

// MemorySource menyimulasikan perangkat di memori, dengan injeksi kegagalan & latensi.
type MemorySource struct {
	mu       sync.Mutex
	order    []string
	readings map[string]model.Reading
	failures map[string]error
	delays   map[string]time.Duration
	log      []Execution
	now      func() time.Time
}

func NewMemorySource(readings ...model.Reading) *MemorySource {
	s := &MemorySource{
		readings: map[string]model.Reading{},
		failures: map[string]error{},
		delays:   map[string]time.Duration{},
		now:      time.Now,
	}
	for _, r := range readings {
		s.Put(r)
	}
	return s
}

func (s *MemorySource) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Put mengganti reading perangkat (device baru ditambahkan di akhir urutan).
func (s *MemorySource) Put(r model.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.readings[r.DeviceID]; !ok {
		s.order = append(s.order, r.DeviceID)
	}
	s.readings[r.DeviceID] = r
}

// Report: perangkat mengirim metrik baru sekarang.
func (s *MemorySource) Report(id string, m model.Metrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.readings[id]
	if !ok {
		return apperror.NotFound("device", id)
	}
	r.Metrics = m
	r.LastSeenAt = s.now()
	s.readings[id] = r
	return nil
}

// Fail membuat Read berikutnya gagal dengan err (nil = pulih).
func (s *MemorySource) Fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, id)
		return
	}
	s.failures[id] = err
}

// Delay menahan Read perangkat selama d (untuk uji timeout).
func (s *MemorySource) Delay(id string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[id] = d
}

func (s *MemorySource) Executed() []Execution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Execution(nil), s.log...)
}

func (s *MemorySource) History(ctx context.Context, id string) ([]Execution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.readings[id]; !ok {
		return nil, apperror.NotFound("device", id)
	}
	var out []Execution
	for i := len(s.log) - 1; i >= 0; i-- {
		if s.log[i].DeviceID == id {
			out = append(out, s.log[i])
		}
	}
	return out, nil
}

func (s *MemorySource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...), nil
}

func (s *MemorySource) Read(ctx context.Context, id string) (model.Reading, error) {
	s.mu.Lock()
	r, ok := s.readings[id]
	fail := s.failures[id]
	delay := s.delays[id]
	s.mu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return model.Reading{}, apperror.Timeout("read " + id)
		case <-t.C:
		}
	}
	if !ok {
		return model.Reading{}, apperror.NotFound("device", id)
	}
	if fail != nil {
		return model.Reading{}, fail
	}
	return r, nil
}

// Execute: restart menurunkan beban, power-cycle juga mendinginkan perangkat.
func (s *MemorySource) Execute(ctx context.Context, id string, action model.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.readings[id]
	if !ok {
		return apperror.NotFound("device", id)
	}
	now := s.now()
	switch action {
	case model.ActionRestart:
		r.Metrics.CPUPct /= 2
		r.Metrics.LoadPct /= 2
	case model.ActionPowerCycle:
		r.Metrics = model.Metrics{CPUPct: 5, MemoryPct: 20, LoadPct: 5, TemperatureC: 35}
		delete(s.failures, id)
	default:
		return apperror.ValidationField("device", "action", "must be restart or power_cycle")
	}
	r.LastSeenAt = now
	s.readings[id] = r
	s.log = append(s.log, Execution{DeviceID: id, Action: action, At: now})
	return nil
}

// Pulse: satu denyut simulasi. Perangkat di `silent` tidak melapor (tetap stale).
func (s *MemorySource) Pulse(rnd *rand.Rand, silent map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, id := range s.order {
		if silent[id] {
			continue
		}
		r := s.readings[id]
		r.Metrics = model.Metrics{
			CPUPct:       jitter(rnd, r.Metrics.CPUPct, 6, 0, 100),
			MemoryPct:    jitter(rnd, r.Metrics.MemoryPct, 3, 0, 100),
			LoadPct:      jitter(rnd, r.Metrics.LoadPct, 6, 0, 100),
			TemperatureC: jitter(rnd, r.Metrics.TemperatureC, 1.5, 20, 95),
		}
		r.LastSeenAt = now
		s.readings[id] = r
	}
}

// Simulate menjalankan Pulse tiap `every` sampai ctx selesai.
func (s *MemorySource) Simulate(ctx context.Context, every time.Duration, silent ...string) {
	skip := make(map[string]bool, len(silent))
	for _, id := range silent {
		skip[id] = true
	}
	rnd := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Pulse(rnd, skip)
		}
	}
}

func jitter(rnd *rand.Rand, v, spread, lo, hi float64) float64 {
	v += (rnd.Float64()*2 - 1) * spread
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
