package model

import (
	"testing"

	"faceattend_backend/internals/helpers/apperror"

	"github.com/google/uuid"
)

func newSession(st SessionStatus) *ClassSessionModel {
	return &ClassSessionModel{ClassSessionID: uuid.New(), ClassSessionCourse: "DB", ClassSessionStatus: st}
}

func TestTransitionTable(t *testing.T) {
	for _, from := range SessionStatuses {
		for _, to := range SessionStatuses {
			want := (from == SessionStatusScheduled && (to == SessionStatusOngoing || to == SessionStatusCancelled)) ||
				(from == SessionStatusOngoing && to == SessionStatusCompleted)
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s,%s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatusesNeverAdvance(t *testing.T) {
	for _, from := range []SessionStatus{SessionStatusCompleted, SessionStatusCancelled} {
		for _, to := range SessionStatuses {
			s := newSession(from)
			err := s.Transition(to, TransitionInput{Reason: "x", AttendanceCount: 5, NoShowAck: true})
			if !apperror.IsInvalidTransition(err) {
				t.Fatalf("%s -> %s: expected InvalidTransition, got %v", from, to, err)
			}
			if s.ClassSessionStatus != from {
				t.Fatalf("status changed to %s", s.ClassSessionStatus)
			}
		}
	}
}

func TestInvalidTransitionIdentifiesSession(t *testing.T) {
	s := newSession(SessionStatusCompleted)
	err := s.Transition(SessionStatusScheduled, TransitionInput{})
	it, ok := err.(*apperror.InvalidTransitionError)
	if !ok {
		t.Fatalf("expected *InvalidTransitionError, got %T", err)
	}
	if it.ID != s.ClassSessionID.String() || it.From != "completed" || it.To != "scheduled" {
		t.Fatalf("unexpected error fields: %+v", it)
	}
}

func TestCancelRequiresReason(t *testing.T) {
	s := newSession(SessionStatusScheduled)
	if err := s.Transition(SessionStatusCancelled, TransitionInput{Reason: "   "}); !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.ClassSessionStatus != SessionStatusScheduled {
		t.Fatal("status changed on failed cancel")
	}
	if err := s.Transition(SessionStatusCancelled, TransitionInput{Reason: " lecturer sick "}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if s.ClassSessionCancelReason == nil || *s.ClassSessionCancelReason != "lecturer sick" {
		t.Fatalf("reason = %v", s.ClassSessionCancelReason)
	}
}

func TestCompleteRequiresRecordsOrAck(t *testing.T) {
	s := newSession(SessionStatusOngoing)
	if err := s.Transition(SessionStatusCompleted, TransitionInput{}); !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := s.Transition(SessionStatusCompleted, TransitionInput{NoShowAck: true}); err != nil {
		t.Fatalf("complete with ack: %v", err)
	}
	if !s.ClassSessionNoShowAck {
		t.Fatal("no-show ack not recorded")
	}

	s2 := newSession(SessionStatusOngoing)
	if err := s2.Transition(SessionStatusCompleted, TransitionInput{AttendanceCount: 3}); err != nil {
		t.Fatalf("complete with records: %v", err)
	}
	if s2.ClassSessionNoShowAck {
		t.Fatal("no-show ack set although records exist")
	}
}

func TestParseSessionStatus(t *testing.T) {
	if st, err := ParseSessionStatus(" Ongoing "); err != nil || st != SessionStatusOngoing {
		t.Fatalf("got %v %v", st, err)
	}
	if _, err := ParseSessionStatus("paused"); !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
