// file: internals/features/access/logs/dto/access_events_dto.go
package dto

import (
	"time"

	"faceattend_backend/internals/features/access/logs/model"

	"github.com/google/uuid"
)

// CreateAccessEventRequest: dikirim oleh controller pintu / kiosk.
type CreateAccessEventRequest struct {
	AccessEventTimestamp    *time.Time `json:"access_event_timestamp"`
	AccessEventSubjectID    *uuid.UUID `json:"access_event_subject_id"`
	AccessEventSubjectName  string     `json:"access_event_subject_name" validate:"omitempty,max=120"`
	AccessEventRoom         string     `json:"access_event_room" validate:"required,max=40"`
	AccessEventMethod       string     `json:"access_event_method" validate:"required,oneof=face rfid manual system"`
	AccessEventDecision     string     `json:"access_event_decision" validate:"required,oneof=granted denied warning"`
	AccessEventDurationOpen *float64   `json:"access_event_duration_open_seconds" validate:"omitempty,gte=0"`
	AccessEventNotes        string     `json:"access_event_notes" validate:"omitempty,max=500"`
}

func (r CreateAccessEventRequest) ToModel() model.AccessEventModel {
	m := model.AccessEventModel{
		AccessEventSubject:  model.AccessSubject{ID: r.AccessEventSubjectID, Name: r.AccessEventSubjectName},
		AccessEventRoom:     r.AccessEventRoom,
		AccessEventMethod:   model.AccessMethod(r.AccessEventMethod),
		AccessEventDecision: model.AccessDecision(r.AccessEventDecision),
		AccessEventNotes:    r.AccessEventNotes,
	}
	if r.AccessEventTimestamp != nil {
		m.AccessEventTimestamp = *r.AccessEventTimestamp
	}
	if r.AccessEventDurationOpen != nil {
		d := time.Duration(*r.AccessEventDurationOpen * float64(time.Second))
		m.AccessEventDurationOpen = &d
	}
	return m
}

type AccessEventResponse struct {
	AccessEventID           uuid.UUID            `json:"access_event_id"`
	AccessEventTimestamp    time.Time            `json:"access_event_timestamp"`
	AccessEventSubject      model.AccessSubject  `json:"access_event_subject"`
	AccessEventRoom         string               `json:"access_event_room"`
	AccessEventMethod       model.AccessMethod   `json:"access_event_method"`
	AccessEventDecision     model.AccessDecision `json:"access_event_decision"`
	AccessEventDurationOpen *float64             `json:"access_event_duration_open_seconds,omitempty"`
	AccessEventNotes        string               `json:"access_event_notes,omitempty"`
}

func FromModel(m model.AccessEventModel) AccessEventResponse {
	out := AccessEventResponse{
		AccessEventID:        m.AccessEventID,
		AccessEventTimestamp: m.AccessEventTimestamp,
		AccessEventSubject:   m.AccessEventSubject,
		AccessEventRoom:      m.AccessEventRoom,
		AccessEventMethod:    m.AccessEventMethod,
		AccessEventDecision:  m.AccessEventDecision,
		AccessEventNotes:     m.AccessEventNotes,
	}
	if d := m.AccessEventDurationOpen; d != nil {
		s := d.Seconds()
		out.AccessEventDurationOpen = &s
	}
	return out
}

func FromModels(list []model.AccessEventModel) []AccessEventResponse {
	out := make([]AccessEventResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromModel(m))
	}
	return out
}
