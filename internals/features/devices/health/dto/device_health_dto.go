// file: internals/features/devices/health/dto/device_health_dto.go
package dto

import (
	"time"

	"faceattend_backend/internals/features/devices/health/model"
	"faceattend_backend/internals/features/devices/health/service"
	"faceattend_backend/internals/helpers/aggregate"
)

// PUT /api/devices/auto-refresh: field kosong = tidak diubah.
type AutoRefreshRequest struct {
	Enabled  *bool   `json:"enabled"`
	Interval *string `json:"interval"` // "30s" | "1m" | "300"
}

type AutoRefreshResponse struct {
	Enabled          bool       `json:"enabled"`
	Interval         string     `json:"interval"`
	IntervalSeconds  int        `json:"interval_seconds"`
	AllowedIntervals []string   `json:"allowed_intervals"`
	NextTickAt       *time.Time `json:"next_tick_at,omitempty"`
	LastTickAt       *time.Time `json:"last_tick_at,omitempty"`
}

func FromPoller(p *service.Poller) AutoRefreshResponse {
	iv := p.Interval()
	allowed := make([]string, 0, len(service.AllowedIntervals))
	for _, d := range service.AllowedIntervals {
		allowed = append(allowed, d.String())
	}
	out := AutoRefreshResponse{
		Enabled:          p.AutoRefresh(),
		Interval:         iv.String(),
		IntervalSeconds:  int(iv / time.Second),
		AllowedIntervals: allowed,
		NextTickAt:       p.NextTickAt(),
	}
	if t := p.LastTickAt(); !t.IsZero() {
		out.LastTickAt = &t
	}
	return out
}

type DeviceSummaryResponse struct {
	Total      int                                     `json:"total"`
	Statuses   []aggregate.Bucket[model.DeviceStatus] `json:"statuses"`
	Thresholds model.Thresholds                        `json:"thresholds"`
	Refresh    AutoRefreshResponse                     `json:"refresh"`
}
