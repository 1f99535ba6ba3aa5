// file: internals/features/devices/health/service/device_gorm_source.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"faceattend_backend/internals/features/devices/health/model"
	"faceattend_backend/internals/helpers/apperror"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSource membaca snapshot dari tabel console_devices dan menjurnal
// tindakan ke console_device_actions. Agent di perangkat yang mengeksekusi.
type GormSource struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{DB: db, now: time.Now}
}

func (s *GormSource) Migrate(ctx context.Context) error {
	return s.DB.WithContext(ctx).AutoMigrate(&model.ConsoleDeviceModel{}, &model.ConsoleDeviceActionModel{})
}

func dbErr(what string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.Timeout(what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *GormSource) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).
		Model(&model.ConsoleDeviceModel{}).
		Order("console_device_room ASC, console_device_id ASC").
		Pluck("console_device_id", &ids).Error
	if err != nil {
		return nil, dbErr("list devices", err)
	}
	return ids, nil
}

func (s *GormSource) Read(ctx context.Context, id string) (model.Reading, error) {
	var row model.ConsoleDeviceModel
	err := s.DB.WithContext(ctx).
		Where("console_device_id = ?", id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Reading{}, apperror.NotFound("device", id)
	}
	if err != nil {
		return model.Reading{}, dbErr("read "+id, err)
	}
	return rowToReading(row)
}

func (s *GormSource) Execute(ctx context.Context, id string, action model.Action) error {
	if !action.Valid() {
		return apperror.ValidationField("device", "action", "must be restart or power_cycle")
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.ConsoleDeviceModel{}).Where("console_device_id = ?", id).Count(&n).Error; err != nil {
			return dbErr("execute "+id, err)
		}
		if n == 0 {
			return apperror.NotFound("device", id)
		}
		row := model.ConsoleDeviceActionModel{
			ConsoleDeviceActionDeviceID:    id,
			ConsoleDeviceActionAction:      string(action),
			ConsoleDeviceActionPayload:     datatypes.JSONMap{"origin": "console"},
			ConsoleDeviceActionRequestedAt: s.now(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return dbErr("execute "+id, err)
		}
		return nil
	})
}

// Upsert menulis reading (dipakai seed dan agent simulasi).
func (s *GormSource) Upsert(ctx context.Context, r model.Reading) error {
	row, err := readingToRow(r)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "console_device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"console_device_name", "console_device_room", "console_device_type",
			"console_device_last_seen_at", "console_device_metrics", "console_device_updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return dbErr("upsert "+r.DeviceID, err)
	}
	return nil
}

// Actions: jurnal tindakan untuk satu perangkat, terbaru dulu.
func (s *GormSource) Actions(ctx context.Context, id string) ([]model.ConsoleDeviceActionModel, error) {
	var rows []model.ConsoleDeviceActionModel
	err := s.DB.WithContext(ctx).
		Where("console_device_action_device_id = ?", id).
		Order("console_device_action_requested_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, dbErr("actions "+id, err)
	}
	return rows, nil
}

func (s *GormSource) History(ctx context.Context, id string) ([]Execution, error) {
	rows, err := s.Actions(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]Execution, 0, len(rows))
	for _, r := range rows {
		a, err := model.ParseAction(r.ConsoleDeviceActionAction)
		if err != nil {
			return nil, err
		}
		out = append(out, Execution{DeviceID: r.ConsoleDeviceActionDeviceID, Action: a, At: r.ConsoleDeviceActionRequestedAt})
	}
	return out, nil
}

func rowToReading(row model.ConsoleDeviceModel) (model.Reading, error) {
	var m model.Metrics
	if len(row.ConsoleDeviceMetrics) > 0 {
		if err := sonic.Unmarshal(row.ConsoleDeviceMetrics, &m); err != nil {
			return model.Reading{}, fmt.Errorf("decode metrics %s: %w", row.ConsoleDeviceID, err)
		}
	}
	return model.Reading{
		DeviceID:   row.ConsoleDeviceID,
		Name:       row.ConsoleDeviceName,
		Room:       row.ConsoleDeviceRoom,
		Type:       model.DeviceType(row.ConsoleDeviceType),
		LastSeenAt: row.ConsoleDeviceLastSeenAt,
		Metrics:    m,
	}, nil
}

func readingToRow(r model.Reading) (model.ConsoleDeviceModel, error) {
	if r.DeviceID == "" {
		return model.ConsoleDeviceModel{}, apperror.ValidationField("device", "device_id", "required")
	}
	if !r.Type.Valid() {
		return model.ConsoleDeviceModel{}, apperror.ValidationField("device", "type", "must be door, camera or computer")
	}
	raw, err := sonic.Marshal(r.Metrics)
	if err != nil {
		return model.ConsoleDeviceModel{}, err
	}
	return model.ConsoleDeviceModel{
		ConsoleDeviceID:         r.DeviceID,
		ConsoleDeviceName:       r.Name,
		ConsoleDeviceRoom:       r.Room,
		ConsoleDeviceType:       string(r.Type),
		ConsoleDeviceLastSeenAt: r.LastSeenAt,
		ConsoleDeviceMetrics:    datatypes.JSON(raw),
	}, nil
}
