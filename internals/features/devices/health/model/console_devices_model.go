// file: internals/features/devices/health/model/console_devices_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConsoleDeviceModel: baris snapshot perangkat (diisi agent/seed, dibaca poller).
type ConsoleDeviceModel struct {
	ConsoleDeviceID         string         `gorm:"column:console_device_id;type:varchar(64);primaryKey" json:"console_device_id"`
	ConsoleDeviceName       string         `gorm:"column:console_device_name;type:varchar(120);not null" json:"console_device_name"`
	ConsoleDeviceRoom       string         `gorm:"column:console_device_room;type:varchar(40);not null;index" json:"console_device_room"`
	ConsoleDeviceType       string         `gorm:"column:console_device_type;type:varchar(16);not null" json:"console_device_type"`
	ConsoleDeviceLastSeenAt time.Time      `gorm:"column:console_device_last_seen_at;not null" json:"console_device_last_seen_at"`
	ConsoleDeviceMetrics    datatypes.JSON `gorm:"column:console_device_metrics" json:"console_device_metrics"`

	ConsoleDeviceCreatedAt time.Time `gorm:"column:console_device_created_at;autoCreateTime" json:"console_device_created_at"`
	ConsoleDeviceUpdatedAt time.Time `gorm:"column:console_device_updated_at;autoUpdateTime" json:"console_device_updated_at"`
}

func (ConsoleDeviceModel) TableName() string { return "console_devices" }

// ConsoleDeviceActionModel: jurnal tindakan remedial yang dikirim poller.
type ConsoleDeviceActionModel struct {
	ConsoleDeviceActionID          uuid.UUID         `gorm:"column:console_device_action_id;type:uuid;primaryKey" json:"console_device_action_id"`
	ConsoleDeviceActionDeviceID    string            `gorm:"column:console_device_action_device_id;type:varchar(64);not null;index" json:"console_device_action_device_id"`
	ConsoleDeviceActionAction      string            `gorm:"column:console_device_action_action;type:varchar(16);not null" json:"console_device_action_action"`
	ConsoleDeviceActionPayload     datatypes.JSONMap `gorm:"column:console_device_action_payload" json:"console_device_action_payload,omitempty"`
	ConsoleDeviceActionRequestedAt time.Time         `gorm:"column:console_device_action_requested_at;not null" json:"console_device_action_requested_at"`
}

func (ConsoleDeviceActionModel) TableName() string { return "console_device_actions" }

func (m *ConsoleDeviceActionModel) BeforeCreate(*gorm.DB) error {
	if m.ConsoleDeviceActionID == uuid.Nil {
		m.ConsoleDeviceActionID = uuid.New()
	}
	return nil
}
