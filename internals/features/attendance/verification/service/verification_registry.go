// file: internals/features/attendance/verification/service/verification_registry.go
package service

import (
	"log"
	"sync"
	"time"

	recordModel "faceattend_backend/internals/features/attendance/records/model"
	"faceattend_backend/internals/helpers/apperror"

	"github.com/google/uuid"
)

// Registry menyimpan workflow yang sedang dibuka operator (satu per tab/konsol).
type Registry struct {
	deps Deps

	mu    sync.Mutex
	flows map[uuid.UUID]*entry
}

type entry struct {
	mu sync.Mutex
	wf *Workflow
}

func NewRegistry(deps Deps) *Registry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Registry{deps: deps, flows: map[uuid.UUID]*entry{}}
}

func (r *Registry) Open() (uuid.UUID, View) {
	e := &entry{wf: New(r.deps)}
	id := e.wf.ID()
	r.mu.Lock()
	r.flows[id] = e
	r.mu.Unlock()
	log.Printf("[VERIFY] workflow %s opened", id)
	return id, e.wf.View()
}

// With menjalankan fn terhadap workflow id secara eksklusif.
func (r *Registry) With(id uuid.UUID, fn func(w *Workflow) error) (View, error) {
	r.mu.Lock()
	e, ok := r.flows[id]
	r.mu.Unlock()
	if !ok {
		return View{}, apperror.NotFound("verification", id.String())
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	err := fn(e.wf)
	return e.wf.View(), err
}

func (r *Registry) Get(id uuid.UUID) (View, error) {
	return r.With(id, func(*Workflow) error { return nil })
}

func (r *Registry) Close(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flows[id]; !ok {
		return apperror.NotFound("verification", id.String())
	}
	delete(r.flows, id)
	log.Printf("[VERIFY] workflow %s closed", id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

/* =========================
   One-shot
========================= */

type CommitInput struct {
	SessionID uuid.UUID
	StudentID uuid.UUID
	Outcome   recordModel.Outcome
	Note      string
	At        time.Time
}

// CommitVerification menjalankan seluruh alur (context → search → decision → commit)
// dalam satu panggilan. Konteks diturunkan dari sesi itu sendiri.
func CommitVerification(deps Deps, in CommitInput) (recordModel.AttendanceRecordModel, error) {
	sess, err := deps.Sessions.Get(in.SessionID)
	if err != nil {
		return recordModel.AttendanceRecordModel{}, err
	}
	st, err := deps.Students.Get(in.StudentID)
	if err != nil {
		return recordModel.AttendanceRecordModel{}, err
	}
	if !st.EnrolledIn(sess.ClassSessionCourse) {
		return recordModel.AttendanceRecordModel{}, apperror.ValidationField("verification", "student_id", "not enrolled in "+sess.ClassSessionCourse)
	}

	w := New(deps)
	steps := []func() error{
		func() error {
			return w.SetContext(Context{Date: sess.DateKey(), Course: sess.ClassSessionCourse, SessionID: sess.ClassSessionID.String()})
		},
		w.BeginSearch,
		func() error { return w.SelectSubject(st.StudentID) },
		func() error { return w.ChooseOutcome(in.Outcome) },
		func() error { return w.SetNote(in.Note) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return recordModel.AttendanceRecordModel{}, err
		}
	}
	return w.Commit(in.At)
}

// Commit: one-shot memakai dependency registry.
func (r *Registry) Commit(in CommitInput) (recordModel.AttendanceRecordModel, error) {
	return CommitVerification(r.deps, in)
}
