// file: internals/features/attendance/verification/service/verification_workflow.go
package service

import (
	"log"
	"strings"
	"time"

	recordModel "faceattend_backend/internals/features/attendance/records/model"
	recordService "faceattend_backend/internals/features/attendance/records/service"
	sessionModel "faceattend_backend/internals/features/attendance/sessions/model"
	studentModel "faceattend_backend/internals/features/attendance/students/model"
	"faceattend_backend/internals/helpers/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

/* =========================
   States
========================= */

type State string

const (
	StateContextSelection State = "context_selection"
	StateSubjectSearch    State = "subject_search"
	StateDecisionPending  State = "decision_pending"
	StateCommitted        State = "committed"
)

/* =========================
   Dependencies
========================= */

type SessionLookup interface {
	Get(id uuid.UUID) (sessionModel.ClassSessionModel, error)
}

type StudentDirectory interface {
	Get(id uuid.UUID) (studentModel.StudentModel, error)
	Search(text, course string) ([]studentModel.StudentModel, error)
}

type Recorder interface {
	Append(in recordService.AppendInput) (recordModel.AttendanceRecordModel, error)
}

type Deps struct {
	Sessions SessionLookup
	Students StudentDirectory
	Records  Recorder
	Now      func() time.Time
}

// Context: tanggal, course, dan sesi yang dipilih operator.
type Context struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Course    string `json:"course" validate:"required"`
	SessionID string `json:"session_id" validate:"required,uuid"`
}

func (c Context) normalized() Context {
	return Context{
		Date:      strings.TrimSpace(c.Date),
		Course:    strings.TrimSpace(c.Course),
		SessionID: strings.TrimSpace(c.SessionID),
	}
}

var validate = validator.New()

/* =========================
   Workflow
========================= */

// Workflow adalah state machine verifikasi manual. Tidak aman dipakai
// bersamaan dari beberapa goroutine; Registry yang menyerialkan akses.
type Workflow struct {
	id   uuid.UUID
	deps Deps

	state     State
	ctx       Context
	sessionID uuid.UUID
	subject   *studentModel.StudentModel
	outcome   *recordModel.Outcome
	note      string
	last      *recordModel.AttendanceRecordModel
	committed int
}

func New(deps Deps) *Workflow {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Workflow{id: uuid.New(), deps: deps, state: StateContextSelection}
}

func (w *Workflow) ID() uuid.UUID { return w.id }

func (w *Workflow) State() State { return w.state }

func (w *Workflow) Context() Context { return w.ctx }

func (w *Workflow) require(cmd string, allowed ...State) error {
	for _, s := range allowed {
		if w.state == s {
			return nil
		}
	}
	// To = command yang ditolak; state yang diizinkan ada di log
	log.Printf("[VERIFY] %s: %s rejected in %s (allowed: %v)", w.id, cmd, w.state, allowed)
	return apperror.InvalidTransition("verification", w.id.String(), string(w.state), cmd)
}

// SetContext mengisi/merubah konteks. Hanya di ContextSelection.
func (w *Workflow) SetContext(c Context) error {
	if err := w.require("set_context", StateContextSelection); err != nil {
		return err
	}
	w.ctx = c.normalized()
	return nil
}

// CanSearch: tombol "search subjects" aktif hanya bila konteks lengkap.
func (w *Workflow) CanSearch() bool {
	return w.state == StateContextSelection && validate.Struct(w.ctx) == nil
}

// BeginSearch: ContextSelection → SubjectSearch.
func (w *Workflow) BeginSearch() error {
	if err := w.require("begin_search", StateContextSelection); err != nil {
		return err
	}
	if err := validate.Struct(w.ctx); err != nil {
		return apperror.FromValidator("verification", err)
	}

	id, _ := uuid.Parse(w.ctx.SessionID)
	sess, err := w.deps.Sessions.Get(id)
	if err != nil {
		return err
	}
	switch {
	case sess.ClassSessionCourse != w.ctx.Course:
		return apperror.ValidationField("verification", "course", "does not match the selected session")
	case sess.DateKey() != w.ctx.Date:
		return apperror.ValidationField("verification", "date", "does not match the selected session")
	case sess.ClassSessionStatus == sessionModel.SessionStatusCancelled:
		return apperror.ValidationField("verification", "session_id", "session is cancelled")
	}

	w.sessionID = id
	w.state = StateSubjectSearch
	return nil
}

// Search: free-text pada nama/NIM, dibatasi mahasiswa course konteks.
func (w *Workflow) Search(text string) ([]studentModel.StudentModel, error) {
	if err := w.require("search", StateSubjectSearch); err != nil {
		return nil, err
	}
	return w.deps.Students.Search(text, w.ctx.Course)
}

// SelectSubject: SubjectSearch → DecisionPending.
func (w *Workflow) SelectSubject(studentID uuid.UUID) error {
	if err := w.require("select_subject", StateSubjectSearch); err != nil {
		return err
	}
	st, err := w.deps.Students.Get(studentID)
	if err != nil {
		return err
	}
	// sama dengan Search: hanya mahasiswa course konteks
	if !st.EnrolledIn(w.ctx.Course) {
		return apperror.ValidationField("verification", "student_id", "not enrolled in "+w.ctx.Course)
	}
	w.subject = &st
	w.outcome = nil
	w.note = ""
	w.state = StateDecisionPending
	return nil
}

func (w *Workflow) Subject() *studentModel.StudentModel { return w.subject }

// ChooseOutcome: tidak ada default, operator wajib memilih.
func (w *Workflow) ChooseOutcome(o recordModel.Outcome) error {
	if err := w.require("choose_outcome", StateDecisionPending); err != nil {
		return err
	}
	if !o.Valid() {
		return apperror.ValidationField("verification", "outcome", "must be one of present, late, excused, absent")
	}
	w.outcome = &o
	return nil
}

func (w *Workflow) Outcome() *recordModel.Outcome { return w.outcome }

func (w *Workflow) SetNote(note string) error {
	if err := w.require("set_note", StateDecisionPending); err != nil {
		return err
	}
	w.note = strings.TrimSpace(note)
	return nil
}

// Cancel: DecisionPending → SubjectSearch tanpa membuat record.
func (w *Workflow) Cancel() error {
	if err := w.require("cancel", StateDecisionPending); err != nil {
		return err
	}
	w.clearDecision()
	w.state = StateSubjectSearch
	return nil
}

// Commit membuat satu record manual lalu kembali ke SubjectSearch; konteks dipertahankan.
// now kosong = jam dari Deps.
func (w *Workflow) Commit(now time.Time) (recordModel.AttendanceRecordModel, error) {
	if err := w.require("commit", StateDecisionPending); err != nil {
		return recordModel.AttendanceRecordModel{}, err
	}
	if w.outcome == nil {
		return recordModel.AttendanceRecordModel{}, apperror.ValidationField("verification", "outcome", "required")
	}

	if now.IsZero() {
		now = w.deps.Now()
	}
	rec, err := w.deps.Records.Append(recordService.AppendInput{
		SessionID:  w.sessionID,
		StudentID:  w.subject.StudentID,
		Outcome:    *w.outcome,
		VerifiedBy: recordModel.VerifiedByManual,
		Note:       w.note,
		At:         now,
	})
	if err != nil {
		// gagal commit: tetap DecisionPending, tidak ada append
		return recordModel.AttendanceRecordModel{}, err
	}

	w.state = StateCommitted
	w.last = &rec
	w.committed++
	log.Printf("[VERIFY] committed %s session=%s student=%s outcome=%s",
		rec.AttendanceRecordID, w.sessionID, w.subject.StudentID, rec.AttendanceRecordOutcome)

	w.clearDecision()
	w.state = StateSubjectSearch
	return rec, nil
}

func (w *Workflow) LastCommitted() *recordModel.AttendanceRecordModel { return w.last }

func (w *Workflow) CommittedCount() int { return w.committed }

// ResetContext kembali ke ContextSelection (konteks lama tetap terisi untuk diedit).
func (w *Workflow) ResetContext() error {
	if err := w.require("reset_context", StateSubjectSearch, StateDecisionPending); err != nil {
		return err
	}
	w.clearDecision()
	w.sessionID = uuid.Nil
	w.state = StateContextSelection
	return nil
}

func (w *Workflow) clearDecision() {
	w.subject = nil
	w.outcome = nil
	w.note = ""
}

/* =========================
   View
========================= */

type View struct {
	State          State                              `json:"state"`
	Context        Context                            `json:"context"`
	CanSearch      bool                               `json:"can_search"`
	Subject        *studentModel.StudentModel         `json:"subject,omitempty"`
	Outcome        *recordModel.Outcome               `json:"outcome,omitempty"`
	Note           string                             `json:"note,omitempty"`
	LastCommitted  *recordModel.AttendanceRecordModel `json:"last_committed,omitempty"`
	CommittedCount int                                `json:"committed_count"`
}

func (w *Workflow) View() View {
	return View{
		State:          w.state,
		Context:        w.ctx,
		CanSearch:      w.CanSearch(),
		Subject:        w.subject,
		Outcome:        w.outcome,
		Note:           w.note,
		LastCommitted:  w.last,
		CommittedCount: w.committed,
	}
}
