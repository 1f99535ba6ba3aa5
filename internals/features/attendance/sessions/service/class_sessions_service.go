// file: internals/features/attendance/sessions/service/class_sessions_service.go
package service

import (
	"log"
	"strings"
	"sync"
	"time"

	"faceattend_backend/internals/features/attendance/sessions/model"
	"faceattend_backend/internals/helpers/aggregate"
	"faceattend_backend/internals/helpers/apperror"
	"faceattend_backend/internals/helpers/query"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AttendanceCounter dipakai untuk syarat transisi ke completed.
type AttendanceCounter interface {
	CountForSession(sessionID uuid.UUID) int
}

type Service struct {
	mu         sync.RWMutex
	order      []uuid.UUID
	byID       map[uuid.UUID]*model.ClassSessionModel
	attendance AttendanceCounter
	validate   *validator.Validate
	now        func() time.Time
}

func NewService() *Service {
	return &Service{
		byID:     map[uuid.UUID]*model.ClassSessionModel{},
		validate: validator.New(),
		now:      time.Now,
	}
}

// UseAttendance menyambungkan ledger setelah keduanya dibuat.
func (s *Service) UseAttendance(a AttendanceCounter) {
	s.mu.Lock()
	s.attendance = a
	s.mu.Unlock()
}

// SetClock untuk test.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

/* =========================
   Query schema
========================= */

var Schema = query.NewSchema[model.ClassSessionModel]("session").
	Text("id", func(m model.ClassSessionModel) string { return m.ClassSessionID.String() }).
	Category("course", func(m model.ClassSessionModel) string { return m.ClassSessionCourse }).
	Category("room", func(m model.ClassSessionModel) string { return m.ClassSessionRoom }).
	Category("status", func(m model.ClassSessionModel) string { return string(m.ClassSessionStatus) }).
	Category("date", func(m model.ClassSessionModel) string { return m.DateKey() }).
	Text("topic", func(m model.ClassSessionModel) string { return m.ClassSessionTopic }).
	Text("lecturer", func(m model.ClassSessionModel) string { return m.ClassSessionLecturer }).
	Time("starts_at", func(m model.ClassSessionModel) time.Time { return m.ClassSessionStartsAt }).
	Time("ends_at", func(m model.ClassSessionModel) time.Time { return m.ClassSessionEndsAt }).
	Number("expected_students", func(m model.ClassSessionModel) float64 { return float64(m.ClassSessionExpectedStudents) }).
	Search("course", "topic", "room", "lecturer")

/* =========================
   Create / read
========================= */

type CreateInput struct {
	ID               uuid.UUID
	Course           string    `validate:"required,max=120"`
	Topic            string    `validate:"max=200"`
	Lecturer         string    `validate:"max=120"`
	StartsAt         time.Time `validate:"required"`
	EndsAt           time.Time `validate:"required,gtfield=StartsAt"`
	Room             string    `validate:"required,max=40"`
	ExpectedStudents int       `validate:"gte=0"`
	// Status awal; kosong = scheduled. Dipakai seed untuk data historis.
	Status model.SessionStatus
	Reason string
}

func (s *Service) Create(in CreateInput) (model.ClassSessionModel, error) {
	in.Course = strings.TrimSpace(in.Course)
	in.Topic = strings.TrimSpace(in.Topic)
	in.Room = strings.TrimSpace(in.Room)
	in.Lecturer = strings.TrimSpace(in.Lecturer)
	if err := s.validate.Struct(in); err != nil {
		return model.ClassSessionModel{}, apperror.FromValidator("session", err)
	}

	status := in.Status
	if status == "" {
		status = model.SessionStatusScheduled
	}
	if !status.Valid() {
		return model.ClassSessionModel{}, apperror.ValidationField("session", "status", "unknown status")
	}
	if status == model.SessionStatusCancelled && strings.TrimSpace(in.Reason) == "" {
		return model.ClassSessionModel{}, apperror.ValidationField("session", "reason", "required for a cancelled session")
	}

	id := in.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := s.now()
	start := in.StartsAt
	m := &model.ClassSessionModel{
		ClassSessionID:               id,
		ClassSessionCourse:           in.Course,
		ClassSessionTopic:            in.Topic,
		ClassSessionLecturer:         in.Lecturer,
		ClassSessionDate:             time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()),
		ClassSessionStartsAt:         in.StartsAt,
		ClassSessionEndsAt:           in.EndsAt,
		ClassSessionRoom:             in.Room,
		ClassSessionExpectedStudents: in.ExpectedStudents,
		ClassSessionStatus:           status,
		ClassSessionCreatedAt:        now,
		ClassSessionUpdatedAt:        now,
	}
	if status == model.SessionStatusCancelled {
		r := strings.TrimSpace(in.Reason)
		m.ClassSessionCancelReason = &r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byID[id]; dup {
		return model.ClassSessionModel{}, apperror.ValidationField("session", "id", "already exists")
	}
	s.byID[id] = m
	s.order = append(s.order, id)
	return *m, nil
}

func (s *Service) Get(id uuid.UUID) (model.ClassSessionModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return model.ClassSessionModel{}, apperror.NotFound("session", id.String())
	}
	return *m, nil
}

// All: snapshot sesuai urutan pembuatan.
func (s *Service) All() []model.ClassSessionModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ClassSessionModel, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

func (s *Service) List(filter query.FilterSpec, order query.SortSpec) ([]model.ClassSessionModel, error) {
	return query.Run(s.All(), Schema, filter, order)
}

// Courses: daftar course unik untuk dropdown.
func (s *Service) Courses() []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range s.All() {
		if !seen[m.ClassSessionCourse] {
			seen[m.ClassSessionCourse] = true
			out = append(out, m.ClassSessionCourse)
		}
	}
	return out
}

func (s *Service) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return apperror.NotFound("session", id.String())
	}
	// sesi yang sudah punya catatan kehadiran tidak boleh hilang dari ledger
	if s.attendance != nil {
		if n := s.attendance.CountForSession(id); n > 0 {
			log.Printf("[SESSION] delete %s rejected: %d attendance records", id, n)
			return apperror.ValidationField("session", "session_id", "session has attendance records")
		}
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

/* =========================
   Lifecycle
========================= */

func (s *Service) Start(id uuid.UUID) (model.ClassSessionModel, error) {
	return s.transition(id, model.SessionStatusOngoing, model.TransitionInput{})
}

func (s *Service) Complete(id uuid.UUID, noShowAck bool) (model.ClassSessionModel, error) {
	return s.transition(id, model.SessionStatusCompleted, model.TransitionInput{NoShowAck: noShowAck})
}

func (s *Service) Cancel(id uuid.UUID, reason string) (model.ClassSessionModel, error) {
	return s.transition(id, model.SessionStatusCancelled, model.TransitionInput{Reason: reason})
}

func (s *Service) transition(id uuid.UUID, to model.SessionStatus, in model.TransitionInput) (model.ClassSessionModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[id]
	if !ok {
		return model.ClassSessionModel{}, apperror.NotFound("session", id.String())
	}
	if to == model.SessionStatusCompleted && s.attendance != nil {
		in.AttendanceCount = s.attendance.CountForSession(id)
	}
	in.At = s.now()

	// kerjakan di salinan supaya gagal = tanpa perubahan
	next := *m
	if err := next.Transition(to, in); err != nil {
		return *m, err
	}
	*m = next
	log.Printf("[SESSIONS] %s %s -> %s", id, in.At.Format(time.RFC3339), to)
	return next, nil
}

// AdvanceReport hasil transisi berbasis jam.
type AdvanceReport struct {
	Started     []uuid.UUID `json:"started"`
	Completed   []uuid.UUID `json:"completed"`
	AwaitingAck []uuid.UUID `json:"awaiting_ack"`
}

// AdvanceByClock: scheduled yang sudah mulai → ongoing; ongoing yang sudah
// selesai → completed bila ada record, selain itu dilaporkan menunggu ack.
func (s *Service) AdvanceByClock(now time.Time) AdvanceReport {
	var rep AdvanceReport
	for _, m := range s.All() {
		id := m.ClassSessionID
		status := m.ClassSessionStatus

		if status == model.SessionStatusScheduled && !now.Before(m.ClassSessionStartsAt) {
			if _, err := s.transition(id, model.SessionStatusOngoing, model.TransitionInput{}); err != nil {
				log.Printf("[SESSIONS] auto-start %s: %v", id, err)
				continue
			}
			rep.Started = append(rep.Started, id)
			status = model.SessionStatusOngoing
		}

		if status == model.SessionStatusOngoing && !now.Before(m.ClassSessionEndsAt) {
			if _, err := s.transition(id, model.SessionStatusCompleted, model.TransitionInput{}); err != nil {
				if apperror.IsValidation(err) {
					rep.AwaitingAck = append(rep.AwaitingAck, id)
					continue
				}
				log.Printf("[SESSIONS] auto-complete %s: %v", id, err)
				continue
			}
			rep.Completed = append(rep.Completed, id)
		}
	}
	return rep
}

/* =========================
   Aggregation
========================= */

func (s *Service) StatusSummary(list []model.ClassSessionModel) []aggregate.Bucket[model.SessionStatus] {
	sum := aggregate.Summarize(list, func(m model.ClassSessionModel) model.SessionStatus { return m.ClassSessionStatus })
	return sum.Ordered(model.SessionStatuses...)
}
