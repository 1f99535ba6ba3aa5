// file: internals/features/access/logs/service/access_log_service.go
package service

import (
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"faceattend_backend/internals/features/access/logs/model"
	"faceattend_backend/internals/helpers/aggregate"
	"faceattend_backend/internals/helpers/query"

	"github.com/google/uuid"
)

var Schema = query.NewSchema[model.AccessEventModel]("access_event").
	Text("id", func(m model.AccessEventModel) string { return m.AccessEventID.String() }).
	Time("timestamp", func(m model.AccessEventModel) time.Time { return m.AccessEventTimestamp }).
	Text("subject", func(m model.AccessEventModel) string { return m.AccessEventSubject.Name }).
	Category("room", func(m model.AccessEventModel) string { return m.AccessEventRoom }).
	Category("method", func(m model.AccessEventModel) string { return string(m.AccessEventMethod) }).
	Category("decision", func(m model.AccessEventModel) string { return string(m.AccessEventDecision) }).
	Text("notes", func(m model.AccessEventModel) string { return m.AccessEventNotes }).
	Number("duration_open", func(m model.AccessEventModel) float64 {
		if m.AccessEventDurationOpen == nil {
			return 0
		}
		return m.AccessEventDurationOpen.Seconds()
	}).
	Search("subject", "room", "notes")

// Log: audit trail akses ruangan. Entri tidak pernah diubah/dihapus.
type Log struct {
	mu     sync.RWMutex
	events []model.AccessEventModel
	now    func() time.Time
}

func NewLog() *Log { return &Log{now: time.Now} }

func (l *Log) SetClock(now func() time.Time) { l.now = now }

func (l *Log) Append(e model.AccessEventModel) (model.AccessEventModel, error) {
	e.AccessEventRoom = strings.TrimSpace(e.AccessEventRoom)
	e.AccessEventNotes = strings.TrimSpace(e.AccessEventNotes)
	e.AccessEventSubject.Name = strings.TrimSpace(e.AccessEventSubject.Name)
	if e.AccessEventSubject.Name == "" && e.AccessEventSubject.ID == nil {
		e.AccessEventSubject.Name = model.UnknownSubject
	}
	if err := e.Check(); err != nil {
		return model.AccessEventModel{}, err
	}
	if e.AccessEventID == uuid.Nil {
		e.AccessEventID = uuid.New()
	}
	if e.AccessEventTimestamp.IsZero() {
		e.AccessEventTimestamp = l.now()
	}

	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()

	if e.AccessEventDecision != model.AccessDecisionGranted {
		log.Printf("[ACCESS] %s room=%s subject=%s method=%s",
			e.AccessEventDecision, e.AccessEventRoom, e.AccessEventSubject.Name, e.AccessEventMethod)
	}
	return e, nil
}

func (l *Log) All() []model.AccessEventModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.AccessEventModel(nil), l.events...)
}

// List: default terbaru dulu bila sort kosong.
func (l *Log) List(filter query.FilterSpec, order query.SortSpec) ([]model.AccessEventModel, error) {
	if order.Field == "" {
		order = query.SortSpec{Field: "timestamp", Direction: query.Desc}
	}
	return query.Run(l.All(), Schema, filter, order)
}

func (l *Log) Summary(events []model.AccessEventModel) []aggregate.Bucket[model.AccessDecision] {
	sum := aggregate.Summarize(events, func(e model.AccessEventModel) model.AccessDecision { return e.AccessEventDecision })
	return sum.Ordered(model.AccessDecisions...)
}

func (l *Log) Rooms() []string {
	seen := map[string]struct{}{}
	for _, e := range l.All() {
		seen[e.AccessEventRoom] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
