// file: internals/features/attendance/records/service/attendance_ledger_service.go
package service

import (
	"log"
	"strings"
	"sync"
	"time"

	"faceattend_backend/internals/features/attendance/records/model"
	sessionModel "faceattend_backend/internals/features/attendance/sessions/model"
	studentModel "faceattend_backend/internals/features/attendance/students/model"
	"faceattend_backend/internals/helpers/aggregate"
	"faceattend_backend/internals/helpers/apperror"
	"faceattend_backend/internals/helpers/query"

	"github.com/google/uuid"
)

type SessionLookup interface {
	Get(id uuid.UUID) (sessionModel.ClassSessionModel, error)
}

type StudentLookup interface {
	Get(id uuid.UUID) (studentModel.StudentModel, error)
}

type pairKey struct{ session, student uuid.UUID }

// Ledger: append-only. Koreksi = record baru yang menggantikan record lama
// untuk pasangan (session, student) yang sama.
type Ledger struct {
	sessions SessionLookup
	students StudentLookup
	now      func() time.Time

	mu        sync.RWMutex
	records   []model.AttendanceRecordModel
	bySession map[uuid.UUID][]int
	latest    map[pairKey]int
}

func NewLedger(sessions SessionLookup, students StudentLookup) *Ledger {
	return &Ledger{
		sessions:  sessions,
		students:  students,
		now:       time.Now,
		bySession: map[uuid.UUID][]int{},
		latest:    map[pairKey]int{},
	}
}

func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

var Schema = query.NewSchema[model.AttendanceRecordModel]("attendance").
	Text("id", func(m model.AttendanceRecordModel) string { return m.AttendanceRecordID.String() }).
	Category("session_id", func(m model.AttendanceRecordModel) string { return m.AttendanceRecordSessionID.String() }).
	Category("student_id", func(m model.AttendanceRecordModel) string { return m.AttendanceRecordStudentID.String() }).
	Category("outcome", func(m model.AttendanceRecordModel) string { return string(m.AttendanceRecordOutcome) }).
	Category("verified_by", func(m model.AttendanceRecordModel) string { return string(m.AttendanceRecordVerifiedBy) }).
	Text("note", func(m model.AttendanceRecordModel) string { return m.AttendanceRecordNote }).
	Time("timestamp", func(m model.AttendanceRecordModel) time.Time { return m.AttendanceRecordTimestamp }).
	Search("note")

/* =========================
   Append
========================= */

type AppendInput struct {
	SessionID  uuid.UUID
	StudentID  uuid.UUID
	Outcome    model.Outcome
	VerifiedBy model.VerifiedBy
	Note       string
	At         time.Time
}

// Append menambahkan satu record. Gagal = tidak ada yang ditambahkan.
func (l *Ledger) Append(in AppendInput) (model.AttendanceRecordModel, error) {
	if !in.Outcome.Valid() {
		return model.AttendanceRecordModel{}, apperror.ValidationField("attendance", "outcome", "must be one of present, late, excused, absent")
	}
	if !in.VerifiedBy.Valid() {
		return model.AttendanceRecordModel{}, apperror.ValidationField("attendance", "verified_by", "must be automatic or manual")
	}

	// lookup di luar lock ledger (urutan lock: sessions tidak pernah menunggu ledger)
	sess, err := l.sessions.Get(in.SessionID)
	if err != nil {
		return model.AttendanceRecordModel{}, err
	}
	if sess.ClassSessionStatus == sessionModel.SessionStatusCancelled {
		return model.AttendanceRecordModel{}, apperror.ValidationField("attendance", "session_id", "session is cancelled")
	}
	if _, err := l.students.Get(in.StudentID); err != nil {
		return model.AttendanceRecordModel{}, err
	}

	at := in.At
	if at.IsZero() {
		at = l.now()
	}
	rec := model.AttendanceRecordModel{
		AttendanceRecordID:         uuid.New(),
		AttendanceRecordSessionID:  in.SessionID,
		AttendanceRecordStudentID:  in.StudentID,
		AttendanceRecordOutcome:    in.Outcome,
		AttendanceRecordVerifiedBy: in.VerifiedBy,
		AttendanceRecordNote:       strings.TrimSpace(in.Note),
		AttendanceRecordTimestamp:  at,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	key := pairKey{in.SessionID, in.StudentID}
	if prev, ok := l.latest[key]; ok {
		id := l.records[prev].AttendanceRecordID
		rec.AttendanceRecordSupersedesID = &id
	}
	idx := len(l.records)
	l.records = append(l.records, rec)
	l.bySession[in.SessionID] = append(l.bySession[in.SessionID], idx)
	l.latest[key] = idx

	log.Printf("[ATTENDANCE] %s session=%s student=%s outcome=%s by=%s",
		rec.AttendanceRecordID, in.SessionID, in.StudentID, in.Outcome, in.VerifiedBy)
	return rec, nil
}

// RecordAutomatic: jalur face-match. Lewat masa toleransi dari jam mulai = late.
func (l *Ledger) RecordAutomatic(sessionID, studentID uuid.UUID, at time.Time, grace time.Duration) (model.AttendanceRecordModel, error) {
	sess, err := l.sessions.Get(sessionID)
	if err != nil {
		return model.AttendanceRecordModel{}, err
	}
	outcome := model.OutcomePresent
	if at.After(sess.ClassSessionStartsAt.Add(grace)) {
		outcome = model.OutcomeLate
	}
	return l.Append(AppendInput{
		SessionID:  sessionID,
		StudentID:  studentID,
		Outcome:    outcome,
		VerifiedBy: model.VerifiedByAutomatic,
		At:         at,
	})
}

/* =========================
   Read
========================= */

func (l *Ledger) All() []model.AttendanceRecordModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.AttendanceRecordModel(nil), l.records...)
}

func (l *Ledger) ForSession(sessionID uuid.UUID) []model.AttendanceRecordModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idxs := l.bySession[sessionID]
	out := make([]model.AttendanceRecordModel, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, l.records[i])
	}
	return out
}

func (l *Ledger) CountForSession(sessionID uuid.UUID) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.bySession[sessionID])
}

func (l *Ledger) HasRecord(sessionID, studentID uuid.UUID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.latest[pairKey{sessionID, studentID}]
	return ok
}

// Effective: record terbaru per mahasiswa (urut sesuai commit).
func (l *Ledger) Effective(sessionID uuid.UUID) []model.AttendanceRecordModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idxs := l.bySession[sessionID]
	out := make([]model.AttendanceRecordModel, 0, len(idxs))
	for _, i := range idxs {
		r := l.records[i]
		if l.latest[pairKey{sessionID, r.AttendanceRecordStudentID}] == i {
			out = append(out, r)
		}
	}
	return out
}

func (l *Ledger) List(filter query.FilterSpec, order query.SortSpec) ([]model.AttendanceRecordModel, error) {
	return query.Run(l.All(), Schema, filter, order)
}

/* =========================
   Stats
========================= */

type SessionStats struct {
	SessionID      uuid.UUID                         `json:"session_id"`
	Expected       int                               `json:"expected"`
	Recorded       int                               `json:"recorded"`
	Attended       int                               `json:"attended"`
	Outcomes       []aggregate.Bucket[model.Outcome] `json:"outcomes"`
	AttendanceRate float64                           `json:"attendance_rate"`
	AttendancePct  int                               `json:"attendance_pct"`
}

// Stats dihitung dari record efektif. Basis rate = max(expected, tercatat) supaya rate <= 1.
func (l *Ledger) Stats(sessionID uuid.UUID) (SessionStats, error) {
	sess, err := l.sessions.Get(sessionID)
	if err != nil {
		return SessionStats{}, err
	}
	eff := l.Effective(sessionID)
	sum := aggregate.Summarize(eff, func(r model.AttendanceRecordModel) model.Outcome { return r.AttendanceRecordOutcome })

	base := max(sess.ClassSessionExpectedStudents, sum.Total)
	attended := sum.CountOf(model.OutcomePresent, model.OutcomeLate)
	return SessionStats{
		SessionID:      sessionID,
		Expected:       sess.ClassSessionExpectedStudents,
		Recorded:       sum.Total,
		Attended:       attended,
		Outcomes:       sum.Ordered(model.Outcomes...),
		AttendanceRate: aggregate.Rate(attended, base),
		AttendancePct:  aggregate.Percent(attended, base),
	}, nil
}

// VerificationStats: manual vs automatic atas seluruh ledger.
func (l *Ledger) VerificationStats() []aggregate.Bucket[model.VerifiedBy] {
	sum := aggregate.Summarize(l.All(), func(r model.AttendanceRecordModel) model.VerifiedBy { return r.AttendanceRecordVerifiedBy })
	return sum.Ordered(model.VerifiedByAutomatic, model.VerifiedByManual)
}
