// file: internals/features/devices/health/service/device_poller.go
package service

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"faceattend_backend/internals/features/devices/health/model"
	"faceattend_backend/internals/helpers/aggregate"
	"faceattend_backend/internals/helpers/apperror"
	"faceattend_backend/internals/helpers/query"
)

// AllowedIntervals: pilihan interval auto-refresh di konsol.
var AllowedIntervals = []time.Duration{10 * time.Second, 30 * time.Second, time.Minute, 5 * time.Minute}

func IntervalAllowed(d time.Duration) bool {
	for _, a := range AllowedIntervals {
		if a == d {
			return true
		}
	}
	return false
}

// ParseInterval menerima "30s"/"1m" atau angka detik ("30").
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	d, err := time.ParseDuration(s)
	if err != nil {
		n, aerr := strconv.Atoi(s)
		if aerr != nil {
			return 0, apperror.ValidationField("poller", "interval", "invalid duration")
		}
		d = time.Duration(n) * time.Second
	}
	if !IntervalAllowed(d) {
		return 0, apperror.ValidationField("poller", "interval", "must be one of 10s, 30s, 1m, 5m")
	}
	return d, nil
}

type Config struct {
	Thresholds  model.Thresholds
	Interval    time.Duration
	ReadTimeout time.Duration
}

/* =========================
   Reports
========================= */

type Failure struct {
	DeviceID string `json:"device_id,omitempty"`
	Error    string `json:"error"`
}

type Dispatch struct {
	DeviceID string       `json:"device_id"`
	Action   model.Action `json:"action"`
	Error    string       `json:"error,omitempty"`
}

type TickReport struct {
	At         time.Time           `json:"at"`
	Devices    []model.DeviceModel `json:"devices"`
	Failures   []Failure           `json:"failures,omitempty"`
	Stale      []string            `json:"stale,omitempty"`
	Dispatched []Dispatch          `json:"dispatched,omitempty"`
	NextTickAt *time.Time          `json:"next_tick_at,omitempty"`
}

type ActionResult struct {
	DeviceID  string       `json:"device_id"`
	Requested model.Action `json:"requested"`
	Pending   model.Action `json:"pending"`
	Coalesced bool         `json:"coalesced"`
}

type PingResult struct {
	DeviceID   string             `json:"device_id"`
	Reachable  bool               `json:"reachable"`
	Status     model.DeviceStatus `json:"status"`
	LastSeenAt time.Time          `json:"last_seen_at,omitempty"`
	Latency    time.Duration      `json:"latency"`
	Error      string             `json:"error,omitempty"`
}

/* =========================
   Poller
========================= */

type deviceState struct {
	reading    model.Reading
	hasReading bool
	status     model.DeviceStatus
	exceeded   map[model.Metric]bool
	issues     int
	pending    *model.Action
	lastAction *model.Action
	lastReadAt time.Time
	lastErr    string
}

// Poller memegang snapshot perangkat. Tick diserialkan; hanya Tick yang
// mengganti snapshot, command operator hanya menyentuh pending/issue.
type Poller struct {
	source Source
	now    func() time.Time
	wait   func(time.Duration) time.Duration

	tickMu sync.Mutex

	mu       sync.RWMutex
	cfg      Config
	order    []string
	devices  map[string]*deviceState
	lastTick time.Time
	nextTick time.Time
	handle   *Handle
	reset    chan struct{}
}

func NewPoller(source Source, cfg Config) (*Poller, error) {
	if cfg.Interval == 0 {
		cfg.Interval = 30 * time.Second
	}
	if !IntervalAllowed(cfg.Interval) {
		return nil, apperror.ValidationField("poller", "interval", "must be one of 10s, 30s, 1m, 5m")
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.Thresholds.StaleAfter <= 0 {
		return nil, apperror.ValidationField("poller", "stale_after", "must be positive")
	}
	return &Poller{
		source:  source,
		now:     time.Now,
		wait:    func(d time.Duration) time.Duration { return d },
		cfg:     cfg,
		devices: map[string]*deviceState{},
		reset:   make(chan struct{}, 1),
	}, nil
}

func (p *Poller) SetClock(now func() time.Time) { p.now = now }

func (p *Poller) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

func (p *Poller) Interval() time.Duration { return p.Config().Interval }

// Tick membaca ulang seluruh perangkat. Satu perangkat gagal tidak menghentikan siklus.
func (p *Poller) Tick(ctx context.Context) (TickReport, error) {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	cfg := p.Config()
	rep := TickReport{At: p.now()}

	ids, err := p.list(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		log.Printf("[POLLER] list failed, re-reading known devices: %v", err)
		rep.Failures = append(rep.Failures, Failure{Error: err.Error()})
		p.mu.RLock()
		ids = append([]string(nil), p.order...)
		p.mu.RUnlock()
	}

	// tindakan yang tertunda dikirim dulu supaya read berikutnya melihat efeknya
	for _, d := range p.takePending(ids) {
		ectx, cancel := context.WithTimeout(ctx, cfg.ReadTimeout)
		if err := p.source.Execute(ectx, d.DeviceID, d.Action); err != nil {
			d.Error = err.Error()
			log.Printf("[POLLER] %s %s failed: %v", d.Action, d.DeviceID, err)
		} else {
			log.Printf("[POLLER] %s dispatched to %s", d.Action, d.DeviceID)
		}
		cancel()
		rep.Dispatched = append(rep.Dispatched, d)
	}

	type result struct {
		r   model.Reading
		err error
	}
	results := make([]result, len(ids))
	for i, id := range ids {
		r, err := p.read(ctx, cfg, id)
		results[i] = result{r, err}
	}
	if err := ctx.Err(); err != nil {
		// dibatalkan (mis. auto-refresh dihentikan): snapshot tidak diganti
		return rep, err
	}

	now := p.now()
	p.mu.Lock()
	next := make(map[string]*deviceState, len(ids))
	order := make([]string, 0, len(ids))
	for i, id := range ids {
		res := results[i]
		st := p.devices[id]
		if st == nil {
			st = &deviceState{exceeded: map[model.Metric]bool{}}
		}
		st.lastReadAt = now

		switch {
		case apperror.IsNotFound(res.err):
			rep.Failures = append(rep.Failures, Failure{DeviceID: id, Error: res.err.Error()})
			continue
		case res.err != nil:
			st.lastErr = res.err.Error()
			rep.Failures = append(rep.Failures, Failure{DeviceID: id, Error: st.lastErr})
		default:
			st.reading = res.r
			st.hasReading = true
			st.lastErr = ""
			if res.r.Stale(cfg.Thresholds, now) {
				stale := &apperror.StaleReadError{DeviceID: id, LastSeenAt: res.r.LastSeenAt, Age: res.r.Age(now)}
				st.lastErr = stale.Error()
				rep.Stale = append(rep.Stale, id)
			} else {
				cur := res.r.Metrics.Exceeded(cfg.Thresholds)
				st.issues += edges(st.exceeded, cur)
				st.exceeded = toSet(cur)
			}
		}

		if st.hasReading {
			st.status = model.Evaluate(st.reading, cfg.Thresholds, now)
		} else {
			st.status = model.DeviceStatusOffline
		}
		next[id] = st
		order = append(order, id)
	}
	p.devices = next
	p.order = order
	p.lastTick = now
	p.nextTick = now.Add(cfg.Interval)
	p.mu.Unlock()
	p.signalReset()

	rep.Devices = p.Devices()
	rep.NextTickAt = p.NextTickAt()
	for _, id := range rep.Stale {
		log.Printf("[POLLER] %s stale, marked offline", id)
	}
	log.Printf("[POLLER] tick: %d devices, %d failures, %d stale, %d dispatched",
		len(rep.Devices), len(rep.Failures), len(rep.Stale), len(rep.Dispatched))
	return rep, nil
}

// Refresh: tick manual dari operator (countdown ikut di-reset).
func (p *Poller) Refresh(ctx context.Context) (TickReport, error) { return p.Tick(ctx) }

// edges menghitung metrik yang baru naik di atas batas sejak read sebelumnya.
func edges(prev map[model.Metric]bool, cur []model.Metric) int {
	n := 0
	for _, m := range cur {
		if !prev[m] {
			n++
		}
	}
	return n
}

func toSet(ms []model.Metric) map[model.Metric]bool {
	out := make(map[model.Metric]bool, len(ms))
	for _, m := range ms {
		out[m] = true
	}
	return out
}

func (p *Poller) list(ctx context.Context, cfg Config) ([]string, error) {
	lctx, cancel := context.WithTimeout(ctx, cfg.ReadTimeout)
	defer cancel()
	type res struct {
		ids []string
		err error
	}
	ch := make(chan res, 1)
	go func() {
		ids, err := p.source.List(lctx)
		ch <- res{ids, err}
	}()
	select {
	case r := <-ch:
		return r.ids, r.err
	case <-lctx.Done():
		return nil, apperror.Timeout("list devices")
	}
}

// read dibatasi ReadTimeout walau source mengabaikan ctx.
func (p *Poller) read(ctx context.Context, cfg Config, id string) (model.Reading, error) {
	rctx, cancel := context.WithTimeout(ctx, cfg.ReadTimeout)
	defer cancel()
	type res struct {
		r   model.Reading
		err error
	}
	ch := make(chan res, 1)
	go func() {
		r, err := p.source.Read(rctx, id)
		ch <- res{r, err}
	}()
	select {
	case r := <-ch:
		return r.r, r.err
	case <-rctx.Done():
		return model.Reading{}, apperror.Timeout("read " + id)
	}
}

func (p *Poller) takePending(ids []string) []Dispatch {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Dispatch
	for _, id := range ids {
		st := p.devices[id]
		if st == nil || st.pending == nil {
			continue
		}
		a := *st.pending
		out = append(out, Dispatch{DeviceID: id, Action: a})
		st.lastAction = &a
		st.pending = nil
	}
	return out
}

func (p *Poller) signalReset() {
	select {
	case p.reset <- struct{}{}:
	default:
	}
}

/* =========================
   Operator commands
========================= */

// Ping: cek liveness tanpa mengubah snapshot.
func (p *Poller) Ping(ctx context.Context, id string) (PingResult, error) {
	if _, err := p.Device(id); err != nil {
		return PingResult{}, err
	}
	cfg := p.Config()
	started := time.Now()
	r, err := p.read(ctx, cfg, id)
	res := PingResult{DeviceID: id, Latency: time.Since(started)}
	if err != nil {
		if apperror.IsNotFound(err) {
			return PingResult{}, err
		}
		res.Status = model.DeviceStatusOffline
		res.Error = err.Error()
		return res, nil
	}
	now := p.now()
	res.LastSeenAt = r.LastSeenAt
	res.Status = model.Evaluate(r, cfg.Thresholds, now)
	res.Reachable = !r.Stale(cfg.Thresholds, now)
	return res, nil
}

func (p *Poller) Restart(id string) (ActionResult, error) {
	return p.request(id, model.ActionRestart)
}

func (p *Poller) PowerCycle(id string) (ActionResult, error) {
	return p.request(id, model.ActionPowerCycle)
}

// request: satu pending action per perangkat. Power-cycle menggantikan restart
// yang tertunda; permintaan yang sama atau lebih ringan digabung.
func (p *Poller) request(id string, a model.Action) (ActionResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.devices[id]
	if !ok {
		return ActionResult{}, apperror.NotFound("device", id)
	}
	res := ActionResult{DeviceID: id, Requested: a}
	switch {
	case st.pending == nil:
		st.pending = &a
	case a.Supersedes(*st.pending):
		log.Printf("[POLLER] %s: %s supersedes pending %s", id, a, *st.pending)
		st.pending = &a
	default:
		res.Coalesced = true
	}
	res.Pending = *st.pending
	return res, nil
}

// Acknowledge: satu-satunya cara mereset issue count.
func (p *Poller) Acknowledge(id string) (model.DeviceModel, error) {
	p.mu.Lock()
	st, ok := p.devices[id]
	if ok {
		st.issues = 0
	}
	p.mu.Unlock()
	if !ok {
		return model.DeviceModel{}, apperror.NotFound("device", id)
	}
	log.Printf("[POLLER] issues acknowledged for %s", id)
	return p.Device(id)
}

// SetInterval mengganti interval dan me-reset countdown.
func (p *Poller) SetInterval(d time.Duration) error {
	if !IntervalAllowed(d) {
		return apperror.ValidationField("poller", "interval", "must be one of 10s, 30s, 1m, 5m")
	}
	p.mu.Lock()
	p.cfg.Interval = d
	if p.handle != nil {
		p.nextTick = p.now().Add(d)
	}
	p.mu.Unlock()
	p.signalReset()
	return nil
}

/* =========================
   Auto-refresh
========================= */

// Handle mengontrol loop auto-refresh. Stop menghentikan timer seketika.
type Handle struct {
	p      *Poller
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (h *Handle) Stop() {
	h.once.Do(func() {
		h.cancel()
		<-h.done
		h.p.mu.Lock()
		if h.p.handle == h {
			h.p.handle = nil
			h.p.nextTick = time.Time{}
		}
		h.p.mu.Unlock()
		log.Println("[POLLER] auto-refresh stopped")
	})
}

func (h *Handle) Done() <-chan struct{} { return h.done }

// Start menjalankan loop auto-refresh; bila sudah berjalan, handle lama dikembalikan.
func (p *Poller) Start(ctx context.Context) *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle != nil {
		return p.handle
	}
	// buang sinyal reset lama
	select {
	case <-p.reset:
	default:
	}
	lctx, cancel := context.WithCancel(ctx)
	h := &Handle{p: p, cancel: cancel, done: make(chan struct{})}
	p.handle = h
	p.nextTick = p.now().Add(p.cfg.Interval)
	go p.loop(lctx, h.done, p.cfg.Interval)
	log.Printf("[POLLER] auto-refresh every %s", p.cfg.Interval)
	return h
}

// Stop menghentikan auto-refresh bila berjalan.
func (p *Poller) Stop() {
	p.mu.RLock()
	h := p.handle
	p.mu.RUnlock()
	if h != nil {
		h.Stop()
	}
}

func (p *Poller) AutoRefresh() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.handle != nil
}

func (p *Poller) loop(ctx context.Context, done chan struct{}, interval time.Duration) {
	defer close(done)
	timer := time.NewTimer(p.wait(interval))
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.reset:
			timer.Stop()
			timer.Reset(p.wait(p.Interval()))
		case <-timer.C:
			if ctx.Err() != nil {
				return
			}
			if _, err := p.Tick(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[POLLER] tick failed: %v", err)
			}
			timer.Reset(p.wait(p.Interval()))
		}
	}
}

/* =========================
   Read views
========================= */

func (st *deviceState) view(id string) model.DeviceModel {
	d := model.DeviceModel{
		DeviceID:         id,
		DeviceName:       st.reading.Name,
		DeviceRoom:       st.reading.Room,
		DeviceType:       st.reading.Type,
		DeviceStatus:     st.status,
		DeviceLastSeenAt: st.reading.LastSeenAt,
		DeviceMetrics:    st.reading.Metrics,
		DeviceIssueCount: st.issues,
		DeviceLastReadAt: st.lastReadAt,
		DeviceLastError:  st.lastErr,
	}
	for _, m := range []model.Metric{model.MetricCPU, model.MetricMemory, model.MetricLoad, model.MetricTemperature} {
		if st.exceeded[m] && st.status == model.DeviceStatusWarning {
			d.DeviceExceeded = append(d.DeviceExceeded, m)
		}
	}
	if st.pending != nil {
		a := *st.pending
		d.DevicePendingAction = &a
	}
	if st.lastAction != nil {
		a := *st.lastAction
		d.DeviceLastAction = &a
	}
	return d
}

func (p *Poller) Devices() []model.DeviceModel {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.DeviceModel, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.devices[id].view(id))
	}
	return out
}

func (p *Poller) Device(id string) (model.DeviceModel, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	st, ok := p.devices[id]
	if !ok {
		return model.DeviceModel{}, apperror.NotFound("device", id)
	}
	return st.view(id), nil
}

var Schema = query.NewSchema[model.DeviceModel]("device").
	Text("id", func(m model.DeviceModel) string { return m.DeviceID }).
	Text("name", func(m model.DeviceModel) string { return m.DeviceName }).
	Category("room", func(m model.DeviceModel) string { return m.DeviceRoom }).
	Category("type", func(m model.DeviceModel) string { return string(m.DeviceType) }).
	Category("status", func(m model.DeviceModel) string { return string(m.DeviceStatus) }).
	Time("last_seen_at", func(m model.DeviceModel) time.Time { return m.DeviceLastSeenAt }).
	Number("cpu_pct", func(m model.DeviceModel) float64 { return m.DeviceMetrics.CPUPct }).
	Number("memory_pct", func(m model.DeviceModel) float64 { return m.DeviceMetrics.MemoryPct }).
	Number("load_pct", func(m model.DeviceModel) float64 { return m.DeviceMetrics.LoadPct }).
	Number("temperature_c", func(m model.DeviceModel) float64 { return m.DeviceMetrics.TemperatureC }).
	Number("issue_count", func(m model.DeviceModel) float64 { return float64(m.DeviceIssueCount) }).
	Search("id", "name", "room")

func (p *Poller) List(filter query.FilterSpec, order query.SortSpec) ([]model.DeviceModel, error) {
	return query.Run(p.Devices(), Schema, filter, order)
}

func (p *Poller) Summary() []aggregate.Bucket[model.DeviceStatus] {
	sum := aggregate.Summarize(p.Devices(), func(d model.DeviceModel) model.DeviceStatus { return d.DeviceStatus })
	return sum.Ordered(model.DeviceStatuses...)
}

// NextTickAt: nil bila auto-refresh mati.
func (p *Poller) NextTickAt() *time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.handle == nil || p.nextTick.IsZero() {
		return nil
	}
	t := p.nextTick
	return &t
}

func (p *Poller) LastTickAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastTick
}
