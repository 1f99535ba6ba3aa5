// file: internals/features/attendance/sessions/dto/class_sessions_dto.go
package dto

import (
	"time"

	"faceattend_backend/internals/features/attendance/sessions/model"
	"faceattend_backend/internals/features/attendance/sessions/service"
	"faceattend_backend/internals/helpers/apperror"
	"faceattend_backend/internals/helpers/dbtime"

	"github.com/google/uuid"
)

/* =========================================================
   REQUEST
========================================================= */

// Jam mulai/selesai dikirim terpisah dari tanggal ("08:00" + "2026-03-02").
type CreateClassSessionRequest struct {
	ClassSessionCourse           string     `json:"class_session_course" validate:"required,max=120"`
	ClassSessionTopic            string     `json:"class_session_topic" validate:"omitempty,max=200"`
	ClassSessionLecturer         string     `json:"class_session_lecturer" validate:"omitempty,max=120"`
	ClassSessionDate             string     `json:"class_session_date" validate:"required,datetime=2006-01-02"`
	ClassSessionStartTime        dbtime.Tod `json:"class_session_start_time"`
	ClassSessionEndTime          dbtime.Tod `json:"class_session_end_time"`
	ClassSessionRoom             string     `json:"class_session_room" validate:"required,max=40"`
	ClassSessionExpectedStudents int        `json:"class_session_expected_students" validate:"gte=0"`
}

func (r CreateClassSessionRequest) ToInput() (service.CreateInput, error) {
	if r.ClassSessionStartTime.IsZero() {
		return service.CreateInput{}, apperror.ValidationField("session", "class_session_start_time", "required")
	}
	if r.ClassSessionEndTime.IsZero() {
		return service.CreateInput{}, apperror.ValidationField("session", "class_session_end_time", "required")
	}
	start, err := dbtime.Combine(r.ClassSessionDate, r.ClassSessionStartTime)
	if err != nil {
		return service.CreateInput{}, apperror.ValidationField("session", "class_session_date", "must be YYYY-MM-DD")
	}
	end, _ := dbtime.Combine(r.ClassSessionDate, r.ClassSessionEndTime)
	return service.CreateInput{
		Course:           r.ClassSessionCourse,
		Topic:            r.ClassSessionTopic,
		Lecturer:         r.ClassSessionLecturer,
		StartsAt:         start,
		EndsAt:           end,
		Room:             r.ClassSessionRoom,
		ExpectedStudents: r.ClassSessionExpectedStudents,
	}, nil
}

type CompleteClassSessionRequest struct {
	NoShowAck bool `json:"no_show_ack"`
}

type CancelClassSessionRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// AdvanceRequest: At kosong = jam server.
type AdvanceRequest struct {
	At *time.Time `json:"at"`
}

// AutomaticRecordRequest: hasil face-match dari kiosk.
type AutomaticRecordRequest struct {
	StudentID uuid.UUID  `json:"student_id" validate:"required"`
	At        *time.Time `json:"at"`
}

/* =========================================================
   RESPONSE
========================================================= */

type ClassSessionResponse struct {
	ClassSessionID               uuid.UUID           `json:"class_session_id"`
	ClassSessionCourse           string              `json:"class_session_course"`
	ClassSessionTopic            string              `json:"class_session_topic"`
	ClassSessionLecturer         string              `json:"class_session_lecturer,omitempty"`
	ClassSessionDate             string              `json:"class_session_date"`
	ClassSessionTimeRange        string              `json:"class_session_time_range"`
	ClassSessionStartsAt         time.Time           `json:"class_session_starts_at"`
	ClassSessionEndsAt           time.Time           `json:"class_session_ends_at"`
	ClassSessionRoom             string              `json:"class_session_room"`
	ClassSessionExpectedStudents int                 `json:"class_session_expected_students"`
	ClassSessionStatus           model.SessionStatus `json:"class_session_status"`
	ClassSessionCancelReason     *string             `json:"class_session_cancel_reason,omitempty"`
	ClassSessionNoShowAck        bool                `json:"class_session_no_show_ack"`
	ClassSessionUpdatedAt        time.Time           `json:"class_session_updated_at"`
}

func FromModel(m model.ClassSessionModel) ClassSessionResponse {
	starts := dbtime.InConsole(m.ClassSessionStartsAt)
	ends := dbtime.InConsole(m.ClassSessionEndsAt)
	return ClassSessionResponse{
		ClassSessionID:               m.ClassSessionID,
		ClassSessionCourse:           m.ClassSessionCourse,
		ClassSessionTopic:            m.ClassSessionTopic,
		ClassSessionLecturer:         m.ClassSessionLecturer,
		ClassSessionDate:             m.DateKey(),
		ClassSessionTimeRange:        starts.Format("15:04") + "-" + ends.Format("15:04"),
		ClassSessionStartsAt:         starts,
		ClassSessionEndsAt:           ends,
		ClassSessionRoom:             m.ClassSessionRoom,
		ClassSessionExpectedStudents: m.ClassSessionExpectedStudents,
		ClassSessionStatus:           m.ClassSessionStatus,
		ClassSessionCancelReason:     m.ClassSessionCancelReason,
		ClassSessionNoShowAck:        m.ClassSessionNoShowAck,
		ClassSessionUpdatedAt:        m.ClassSessionUpdatedAt,
	}
}

func FromModels(list []model.ClassSessionModel) []ClassSessionResponse {
	out := make([]ClassSessionResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromModel(m))
	}
	return out
}
