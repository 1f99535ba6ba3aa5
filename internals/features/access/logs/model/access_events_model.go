// file: internals/features/access/logs/model/access_events_model.go
package model

import (
	"strings"
	"time"

	"faceattend_backend/internals/helpers/apperror"

	"github.com/google/uuid"
)

type AccessMethod string

const (
	AccessMethodFace   AccessMethod = "face"
	AccessMethodRFID   AccessMethod = "rfid"
	AccessMethodManual AccessMethod = "manual"
	AccessMethodSystem AccessMethod = "system"
)

var AccessMethods = []AccessMethod{AccessMethodFace, AccessMethodRFID, AccessMethodManual, AccessMethodSystem}

func (m AccessMethod) Valid() bool {
	switch m {
	case AccessMethodFace, AccessMethodRFID, AccessMethodManual, AccessMethodSystem:
		return true
	}
	return false
}

type AccessDecision string

const (
	AccessDecisionGranted AccessDecision = "granted"
	AccessDecisionDenied  AccessDecision = "denied"
	AccessDecisionWarning AccessDecision = "warning"
)

var AccessDecisions = []AccessDecision{AccessDecisionGranted, AccessDecisionDenied, AccessDecisionWarning}

func (d AccessDecision) Valid() bool {
	switch d {
	case AccessDecisionGranted, AccessDecisionDenied, AccessDecisionWarning:
		return true
	}
	return false
}

func ParseAccessMethod(s string) (AccessMethod, error) {
	m := AccessMethod(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", apperror.ValidationField("access_event", "method", "must be one of face, rfid, manual, system")
	}
	return m, nil
}

func ParseAccessDecision(s string) (AccessDecision, error) {
	d := AccessDecision(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", apperror.ValidationField("access_event", "decision", "must be one of granted, denied, warning")
	}
	return d, nil
}

// UnknownSubject ditampilkan bila wajah/kartu tidak dikenali.
const UnknownSubject = "unknown"

type AccessSubject struct {
	ID   *uuid.UUID `json:"id,omitempty"`
	Name string     `json:"name"`
}

func (s AccessSubject) Resolved() bool {
	return s.ID != nil || (s.Name != "" && s.Name != UnknownSubject)
}

// AccessEventModel: entri audit, append-only.
type AccessEventModel struct {
	AccessEventID           uuid.UUID      `json:"access_event_id"`
	AccessEventTimestamp    time.Time      `json:"access_event_timestamp"`
	AccessEventSubject      AccessSubject  `json:"access_event_subject"`
	AccessEventRoom         string         `json:"access_event_room"`
	AccessEventMethod       AccessMethod   `json:"access_event_method"`
	AccessEventDecision     AccessDecision `json:"access_event_decision"`
	AccessEventDurationOpen *time.Duration `json:"access_event_duration_open,omitempty"`
	AccessEventNotes        string         `json:"access_event_notes,omitempty"`
}

// Check memeriksa enum dan aturan identitas: granted butuh identitas atau method=system.
func (e AccessEventModel) Check() error {
	if !e.AccessEventMethod.Valid() {
		return apperror.ValidationField("access_event", "method", "must be one of face, rfid, manual, system")
	}
	if !e.AccessEventDecision.Valid() {
		return apperror.ValidationField("access_event", "decision", "must be one of granted, denied, warning")
	}
	if strings.TrimSpace(e.AccessEventRoom) == "" {
		return apperror.ValidationField("access_event", "room", "required")
	}
	if e.AccessEventDecision == AccessDecisionGranted &&
		!e.AccessEventSubject.Resolved() &&
		e.AccessEventMethod != AccessMethodSystem {
		return apperror.ValidationField("access_event", "subject", "granted access requires an identified subject unless method is system")
	}
	if d := e.AccessEventDurationOpen; d != nil && *d < 0 {
		return apperror.ValidationField("access_event", "duration_open", "must not be negative")
	}
	return nil
}
