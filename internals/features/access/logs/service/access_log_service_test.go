package service

import (
	"testing"
	"time"

	"faceattend_backend/internals/features/access/logs/model"
	"faceattend_backend/internals/helpers/apperror"
	"faceattend_backend/internals/helpers/query"

	"github.com/google/uuid"
)

var t0 = time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)

func ev(min int, room, name string, m model.AccessMethod, d model.AccessDecision) model.AccessEventModel {
	return model.AccessEventModel{
		AccessEventTimestamp: t0.Add(time.Duration(min) * time.Minute),
		AccessEventSubject:   model.AccessSubject{Name: name},
		AccessEventRoom:      room,
		AccessEventMethod:    m,
		AccessEventDecision:  d,
	}
}

func TestAppendGrantedRequiresIdentity(t *testing.T) {
	l := NewLog()
	cases := []struct {
		name string
		in   model.AccessEventModel
		ok   bool
	}{
		{"granted face known", ev(1, "B-201", "Alice Tan", model.AccessMethodFace, model.AccessDecisionGranted), true},
		{"granted unknown", ev(2, "B-201", "", model.AccessMethodFace, model.AccessDecisionGranted), false},
		{"granted literal unknown", ev(2, "B-201", "unknown", model.AccessMethodRFID, model.AccessDecisionGranted), false},
		{"granted system", ev(3, "Server", "", model.AccessMethodSystem, model.AccessDecisionGranted), true},
		{"denied unknown", ev(4, "B-201", "", model.AccessMethodFace, model.AccessDecisionDenied), true},
		{"warning unknown", ev(5, "Lab 1", "", model.AccessMethodRFID, model.AccessDecisionWarning), true},
		{"bad method", ev(6, "Lab 1", "Alice", "retina", model.AccessDecisionGranted), false},
		{"bad decision", ev(6, "Lab 1", "Alice", model.AccessMethodFace, "maybe"), false},
		{"no room", ev(6, " ", "Alice", model.AccessMethodFace, model.AccessDecisionDenied), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			before := len(l.All())
			got, err := l.Append(c.in)
			if c.ok {
				if err != nil {
					t.Fatalf("append: %v", err)
				}
				if got.AccessEventID == uuid.Nil {
					t.Fatal("id not assigned")
				}
				return
			}
			if !apperror.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(l.All()) != before {
				t.Fatal("rejected event was stored")
			}
		})
	}
}

func TestUnknownSubjectName(t *testing.T) {
	l := NewLog()
	got, err := l.Append(ev(1, "B-201", "", model.AccessMethodFace, model.AccessDecisionDenied))
	if err != nil || got.AccessEventSubject.Name != model.UnknownSubject {
		t.Fatalf("got %+v %v", got.AccessEventSubject, err)
	}
	id := uuid.New()
	got, err = l.Append(model.AccessEventModel{
		AccessEventSubject: model.AccessSubject{ID: &id}, AccessEventRoom: "B-201",
		AccessEventMethod: model.AccessMethodRFID, AccessEventDecision: model.AccessDecisionGranted,
	})
	if err != nil {
		t.Fatalf("granted with id only: %v", err)
	}
	if got.AccessEventTimestamp.IsZero() {
		t.Fatal("timestamp not stamped")
	}
}

func TestListSummaryRooms(t *testing.T) {
	l := NewLog()
	for _, e := range []model.AccessEventModel{
		ev(1, "B-201", "Alice Tan", model.AccessMethodFace, model.AccessDecisionGranted),
		ev(2, "Lab 1", "", model.AccessMethodFace, model.AccessDecisionDenied),
		ev(3, "B-201", "Budi", model.AccessMethodRFID, model.AccessDecisionGranted),
		ev(4, "Lab 1", "Budi", model.AccessMethodRFID, model.AccessDecisionWarning),
	} {
		if _, err := l.Append(e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := l.List(query.FilterSpec{}, query.SortSpec{})
	if err != nil || got[0].AccessEventSubject.Name != "Budi" || got[0].AccessEventDecision != model.AccessDecisionWarning {
		t.Fatalf("default order newest first: %+v %v", got, err)
	}
	got, _ = l.List(query.FilterSpec{Text: "budi", Equals: map[string]string{"room": "B-201"}}, query.SortSpec{})
	if len(got) != 1 {
		t.Fatalf("filtered = %d", len(got))
	}
	if _, err := l.List(query.FilterSpec{Equals: map[string]string{"subject": "Budi"}}, query.SortSpec{}); !apperror.IsValidation(err) {
		t.Fatalf("non-categorical equals: %v", err)
	}

	b := l.Summary(l.All())
	if b[0].Key != model.AccessDecisionGranted || b[0].Count != 2 || b[0].Percent != 50 || b[1].Count != 1 || b[2].Count != 1 {
		t.Fatalf("summary = %+v", b)
	}
	if rooms := l.Rooms(); len(rooms) != 2 || rooms[0] != "B-201" {
		t.Fatalf("rooms = %v", rooms)
	}
}
