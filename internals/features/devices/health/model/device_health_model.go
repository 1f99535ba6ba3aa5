// file: internals/features/devices/health/model/device_health_model.go
package model

import (
	"strings"
	"time"

	"faceattend_backend/internals/helpers/apperror"
)

/* =========================
   Enums
========================= */

type DeviceType string

const (
	DeviceTypeDoor     DeviceType = "door"
	DeviceTypeCamera   DeviceType = "camera"
	DeviceTypeComputer DeviceType = "computer"
)

func (t DeviceType) Valid() bool {
	return t == DeviceTypeDoor || t == DeviceTypeCamera || t == DeviceTypeComputer
}

type DeviceStatus string

const (
	DeviceStatusOnline  DeviceStatus = "online"
	DeviceStatusWarning DeviceStatus = "warning"
	DeviceStatusOffline DeviceStatus = "offline"
)

var DeviceStatuses = []DeviceStatus{DeviceStatusOnline, DeviceStatusWarning, DeviceStatusOffline}

// Action: tindakan remedial ke perangkat.
type Action string

const (
	ActionRestart    Action = "restart"
	ActionPowerCycle Action = "power_cycle"
)

func (a Action) Valid() bool { return a == ActionRestart || a == ActionPowerCycle }

// weight: power-cycle > restart (dipakai saat coalescing).
func (a Action) weight() int {
	switch a {
	case ActionPowerCycle:
		return 2
	case ActionRestart:
		return 1
	}
	return 0
}

// Supersedes true bila a lebih berat dari pending.
func (a Action) Supersedes(pending Action) bool { return a.weight() > pending.weight() }

func ParseAction(s string) (Action, error) {
	a := Action(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !a.Valid() {
		return "", apperror.ValidationField("device", "action", "must be restart or power_cycle")
	}
	return a, nil
}

/* =========================
   Metrics & thresholds
========================= */

type Metric string

const (
	MetricCPU         Metric = "cpu_pct"
	MetricMemory      Metric = "memory_pct"
	MetricLoad        Metric = "load_pct"
	MetricTemperature Metric = "temperature_c"
)

type Metrics struct {
	CPUPct       float64 `json:"cpu_pct"`
	MemoryPct    float64 `json:"memory_pct"`
	LoadPct      float64 `json:"load_pct"`
	TemperatureC float64 `json:"temperature_c"`
}

type Thresholds struct {
	CPUPct       float64       `json:"cpu_pct"`
	MemoryPct    float64       `json:"memory_pct"`
	LoadPct      float64       `json:"load_pct"`
	TemperatureC float64       `json:"temperature_c"`
	StaleAfter   time.Duration `json:"stale_after"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{CPUPct: 85, MemoryPct: 85, LoadPct: 90, TemperatureC: 55, StaleAfter: 2 * time.Minute}
}

// Exceeded: metrik yang melewati batas (strictly greater), urutan tetap.
func (m Metrics) Exceeded(th Thresholds) []Metric {
	var out []Metric
	if m.CPUPct > th.CPUPct {
		out = append(out, MetricCPU)
	}
	if m.MemoryPct > th.MemoryPct {
		out = append(out, MetricMemory)
	}
	if m.LoadPct > th.LoadPct {
		out = append(out, MetricLoad)
	}
	if m.TemperatureC > th.TemperatureC {
		out = append(out, MetricTemperature)
	}
	return out
}

/* =========================
   Reading & status
========================= */

// Reading: satu snapshot dari source.
type Reading struct {
	DeviceID   string     `json:"device_id"`
	Name       string     `json:"name"`
	Room       string     `json:"room"`
	Type       DeviceType `json:"type"`
	LastSeenAt time.Time  `json:"last_seen_at"`
	Metrics    Metrics    `json:"metrics"`
}

func (r Reading) Age(now time.Time) time.Duration { return now.Sub(r.LastSeenAt) }

func (r Reading) Stale(th Thresholds, now time.Time) bool { return r.Age(now) > th.StaleAfter }

// Evaluate: offline bila stale (apa pun metriknya), warning bila ada metrik di atas batas.
func Evaluate(r Reading, th Thresholds, now time.Time) DeviceStatus {
	if r.Stale(th, now) {
		return DeviceStatusOffline
	}
	if len(r.Metrics.Exceeded(th)) > 0 {
		return DeviceStatusWarning
	}
	return DeviceStatusOnline
}

/* =========================
   View
========================= */

// DeviceModel: state per perangkat yang ditampilkan konsol.
type DeviceModel struct {
	DeviceID            string       `json:"device_id"`
	DeviceName          string       `json:"device_name"`
	DeviceRoom          string       `json:"device_room"`
	DeviceType          DeviceType   `json:"device_type"`
	DeviceStatus        DeviceStatus `json:"device_status"`
	DeviceLastSeenAt    time.Time    `json:"device_last_seen_at"`
	DeviceMetrics       Metrics      `json:"device_metrics"`
	DeviceExceeded      []Metric     `json:"device_exceeded,omitempty"`
	DeviceIssueCount    int          `json:"device_issue_count"`
	DevicePendingAction *Action      `json:"device_pending_action,omitempty"`
	DeviceLastAction    *Action      `json:"device_last_action,omitempty"`
	DeviceLastReadAt    time.Time    `json:"device_last_read_at"`
	DeviceLastError     string       `json:"device_last_error,omitempty"`
}
