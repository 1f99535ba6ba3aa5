// file: internals/features/attendance/sessions/model/class_sessions_model.go
package model

import (
	"strings"
	"time"

	"faceattend_backend/internals/helpers/apperror"

	"github.com/google/uuid"
)

/* =========================
   Enums
========================= */

type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusOngoing   SessionStatus = "ongoing"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

var SessionStatuses = []SessionStatus{
	SessionStatusScheduled,
	SessionStatusOngoing,
	SessionStatusCompleted,
	SessionStatusCancelled,
}

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusScheduled, SessionStatusOngoing, SessionStatusCompleted, SessionStatusCancelled:
		return true
	}
	return false
}

// Terminal: completed / cancelled tidak bisa dilanjutkan.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

func ParseSessionStatus(s string) (SessionStatus, error) {
	st := SessionStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", apperror.ValidationField("session", "status", "must be one of scheduled, ongoing, completed, cancelled")
	}
	return st, nil
}

// transitions: scheduled → ongoing → completed, scheduled → cancelled.
var transitions = map[SessionStatus][]SessionStatus{
	SessionStatusScheduled: {SessionStatusOngoing, SessionStatusCancelled},
	SessionStatusOngoing:   {SessionStatusCompleted},
}

func CanTransition(from, to SessionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

/* =========================
   Model
========================= */

type ClassSessionModel struct {
	ClassSessionID               uuid.UUID     `json:"class_session_id"`
	ClassSessionCourse           string        `json:"class_session_course"`
	ClassSessionTopic            string        `json:"class_session_topic"`
	ClassSessionLecturer         string        `json:"class_session_lecturer,omitempty"`
	ClassSessionDate             time.Time     `json:"class_session_date"`
	ClassSessionStartsAt         time.Time     `json:"class_session_starts_at"`
	ClassSessionEndsAt           time.Time     `json:"class_session_ends_at"`
	ClassSessionRoom             string        `json:"class_session_room"`
	ClassSessionExpectedStudents int           `json:"class_session_expected_students"`
	ClassSessionStatus           SessionStatus `json:"class_session_status"`
	ClassSessionCancelReason     *string       `json:"class_session_cancel_reason,omitempty"`
	ClassSessionNoShowAck        bool          `json:"class_session_no_show_ack"`

	ClassSessionCreatedAt time.Time `json:"class_session_created_at"`
	ClassSessionUpdatedAt time.Time `json:"class_session_updated_at"`
}

// TimeRange untuk tampilan, mis. "08:00-09:40".
func (m ClassSessionModel) TimeRange() string {
	return m.ClassSessionStartsAt.Format("15:04") + "-" + m.ClassSessionEndsAt.Format("15:04")
}

func (m ClassSessionModel) DateKey() string {
	return m.ClassSessionDate.Format("2006-01-02")
}

// TransitionInput membawa syarat side-effect transisi.
type TransitionInput struct {
	Reason          string // wajib untuk cancelled
	AttendanceCount int    // completed butuh >0 ...
	NoShowAck       bool   // ... atau pengakuan no-show
	At              time.Time
}

// Transition mengubah status bila legal. Bila gagal, model tidak berubah.
func (m *ClassSessionModel) Transition(to SessionStatus, in TransitionInput) error {
	id := m.ClassSessionID.String()
	if !to.Valid() {
		return apperror.ValidationField("session", "status", "unknown status "+string(to))
	}
	if !CanTransition(m.ClassSessionStatus, to) {
		return apperror.InvalidTransition("session", id, string(m.ClassSessionStatus), string(to))
	}

	switch to {
	case SessionStatusCancelled:
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			return apperror.ValidationField("session", "reason", "required to cancel a session")
		}
		m.ClassSessionCancelReason = &reason
	case SessionStatusCompleted:
		if in.AttendanceCount <= 0 && !in.NoShowAck {
			return apperror.ValidationField("session", "no_show_ack", "session has no attendance records; acknowledge no-show to complete")
		}
		m.ClassSessionNoShowAck = in.AttendanceCount <= 0 && in.NoShowAck
	}

	m.ClassSessionStatus = to
	if !in.At.IsZero() {
		m.ClassSessionUpdatedAt = in.At
	}
	return nil
}
