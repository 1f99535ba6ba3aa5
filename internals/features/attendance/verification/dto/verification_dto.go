// file: internals/features/attendance/verification/dto/verification_dto.go
package dto

import (
	"time"

	recordModel "faceattend_backend/internals/features/attendance/records/model"
	"faceattend_backend/internals/features/attendance/verification/service"

	"github.com/google/uuid"
)

// PUT /api/verifications/:id/context (semua field opsional saat mengisi bertahap)
type ContextRequest struct {
	Date      string `json:"date"`
	Course    string `json:"course"`
	SessionID string `json:"session_id"`
}

func (r ContextRequest) ToContext() service.Context {
	return service.Context{Date: r.Date, Course: r.Course, SessionID: r.SessionID}
}

type SelectSubjectRequest struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
}

// Decision: outcome wajib dipilih, tidak ada default.
type DecisionRequest struct {
	Outcome string  `json:"outcome" validate:"required,oneof=present late excused absent"`
	Note    *string `json:"note" validate:"omitempty,max=500"`
}

type CommitRequest struct {
	At *time.Time `json:"at"`
}

// POST /api/verifications/commit
type OneShotCommitRequest struct {
	SessionID uuid.UUID  `json:"session_id" validate:"required"`
	StudentID uuid.UUID  `json:"student_id" validate:"required"`
	Outcome   string     `json:"outcome" validate:"required,oneof=present late excused absent"`
	Note      string     `json:"note" validate:"omitempty,max=500"`
	At        *time.Time `json:"at"`
}

func (r OneShotCommitRequest) ToInput() service.CommitInput {
	in := service.CommitInput{
		SessionID: r.SessionID,
		StudentID: r.StudentID,
		Outcome:   recordModel.Outcome(r.Outcome),
		Note:      r.Note,
	}
	if r.At != nil {
		in.At = *r.At
	}
	return in
}

type VerificationResponse struct {
	VerificationID uuid.UUID `json:"verification_id"`
	service.View
}

func FromView(id uuid.UUID, v service.View) VerificationResponse {
	return VerificationResponse{VerificationID: id, View: v}
}
