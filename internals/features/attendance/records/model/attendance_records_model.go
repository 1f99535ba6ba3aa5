// file: internals/features/attendance/records/model/attendance_records_model.go
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

type Outcome string

const (
	OutcomePresent Outcome = "present"
	OutcomeLate    Outcome = "late"
	OutcomeExcused Outcome = "excused"
	OutcomeAbsent  Outcome = "absent"
)

var Outcomes = []Outcome{OutcomePresent, OutcomeLate, OutcomeExcused, OutcomeAbsent}

func (o Outcome) Valid() bool {
	switch o {
	case OutcomePresent, OutcomeLate, OutcomeExcused, OutcomeAbsent:
		return true
	}
	return false
}

// Attended: present & late dihitung hadir.
func (o Outcome) Attended() bool { return o == OutcomePresent || o == OutcomeLate }

func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(strings.ToLower(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", apperror.ValidationField("attendance", "outcome", "must be one of present, late, excused, absent")
	}
	return o, nil
}

type VerifiedBy string

const (
	VerifiedByAutomatic VerifiedBy = "automatic"
	VerifiedByManual    VerifiedBy = "manual"
)

func (v VerifiedBy) Valid() bool { return v == VerifiedByAutomatic || v == VerifiedByManual }

/* =========================
   Model (immutable setelah commit)
========================= */

type AttendanceRecordModel struct {
	AttendanceRecordID           uuid.UUID  `json:"attendance_record_id"`
	AttendanceRecordSessionID    uuid.UUID  `json:"attendance_record_session_id"`
	AttendanceRecordStudentID    uuid.UUID  `json:"attendance_record_student_id"`
	AttendanceRecordOutcome      Outcome    `json:"attendance_record_outcome"`
	AttendanceRecordVerifiedBy   VerifiedBy `json:"attendance_record_verified_by"`
	AttendanceRecordNote         string     `json:"attendance_record_note"`
	AttendanceRecordTimestamp    time.Time  `json:"attendance_record_timestamp"`
	AttendanceRecordSupersedesID *uuid.UUID `json:"attendance_record_supersedes_id,omitempty"`
}
