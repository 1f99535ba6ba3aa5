package access

import (
	_ "embed"
	"fmt"
	"log"
	"time"

	"faceattend_backend/internals/features/access/logs/model"
	"faceattend_backend/internals/features/access/logs/service"
	studentModel "faceattend_backend/internals/features/attendance/students/model"
	"faceattend_backend/internals/helpers/dbtime"

	"github.com/bytedance/sonic"
)

//go:embed data_access_events.json
var eventsJSON []byte

type AccessEventSeed struct {
	DayOffset           int      `json:"day_offset"`
	Time                string   `json:"time"`
	Subject             string   `json:"subject"` // NIM; kosong = unknown
	Room                string   `json:"room"`
	Method              string   `json:"method"`
	Decision            string   `json:"decision"`
	DurationOpenSeconds *float64 `json:"duration_open_seconds"`
	Notes               string   `json:"notes"`
}

func SeedAccessEvents(l *service.Log, students map[string]studentModel.StudentModel, anchor time.Time) error {
	var seeds []AccessEventSeed
	if err := sonic.Unmarshal(eventsJSON, &seeds); err != nil {
		return fmt.Errorf("decode access events: %w", err)
	}
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, dbtime.Location())
	for i, s := range seeds {
		tod, err := dbtime.ParseTod(s.Time)
		if err != nil {
			return fmt.Errorf("access event #%d: %w", i, err)
		}
		e := model.AccessEventModel{
			AccessEventTimestamp: tod.On(day.AddDate(0, 0, s.DayOffset)),
			AccessEventRoom:      s.Room,
			AccessEventMethod:    model.AccessMethod(s.Method),
			AccessEventDecision:  model.AccessDecision(s.Decision),
			AccessEventNotes:     s.Notes,
		}
		if s.Subject != "" {
			st, ok := students[s.Subject]
			if !ok {
				return fmt.Errorf("access event #%d: unknown student %q", i, s.Subject)
			}
			id := st.StudentID
			e.AccessEventSubject = model.AccessSubject{ID: &id, Name: st.StudentName}
		}
		if s.DurationOpenSeconds != nil {
			d := time.Duration(*s.DurationOpenSeconds * float64(time.Second))
			e.AccessEventDurationOpen = &d
		}
		if _, err := l.Append(e); err != nil {
			return fmt.Errorf("access event #%d: %w", i, err)
		}
	}
	log.Printf("[SEED] %d access events", len(seeds))
	return nil
}
