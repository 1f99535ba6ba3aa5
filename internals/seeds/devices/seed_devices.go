package devices

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"time"

	"faceattend_backend/internals/features/devices/health/model"

	"github.com/bytedance/sonic"
)

//go:embed data_devices.json
var devicesJSON []byte

type DeviceSeed struct {
	DeviceID       string           `json:"device_id"`
	Name           string           `json:"name"`
	Room           string           `json:"room"`
	Type           model.DeviceType `json:"type"`
	SeenSecondsAgo int              `json:"seen_seconds_ago"`
	Metrics        model.Metrics    `json:"metrics"`
}

// Readings: snapshot awal perangkat, last_seen relatif terhadap now.
func Readings(now time.Time) ([]model.Reading, error) {
	var seeds []DeviceSeed
	if err := sonic.Unmarshal(devicesJSON, &seeds); err != nil {
		return nil, fmt.Errorf("decode devices: %w", err)
	}
	out := make([]model.Reading, 0, len(seeds))
	for _, s := range seeds {
		if !s.Type.Valid() {
			return nil, fmt.Errorf("device %s: unknown type %q", s.DeviceID, s.Type)
		}
		out = append(out, model.Reading{
			DeviceID:   s.DeviceID,
			Name:       s.Name,
			Room:       s.Room,
			Type:       s.Type,
			LastSeenAt: now.Add(-time.Duration(s.SeenSecondsAgo) * time.Second),
			Metrics:    s.Metrics,
		})
	}
	return out, nil
}

// Upserter: store perangkat yang persisten (GormSource).
type Upserter interface {
	Upsert(ctx context.Context, r model.Reading) error
}

// SeedDevices menulis snapshot awal ke store.
func SeedDevices(ctx context.Context, store Upserter, now time.Time) error {
	readings, err := Readings(now)
	if err != nil {
		return err
	}
	for _, r := range readings {
		if err := store.Upsert(ctx, r); err != nil {
			return fmt.Errorf("device %s: %w", r.DeviceID, err)
		}
	}
	log.Printf("[SEED] %d devices", len(readings))
	return nil
}
