package service

import (
	"testing"
	"time"

	"faceattend_backend/internals/features/attendance/records/model"
	sessionModel "faceattend_backend/internals/features/attendance/sessions/model"
	sessionService "faceattend_backend/internals/features/attendance/sessions/service"
	studentModel "faceattend_backend/internals/features/attendance/students/model"
	studentService "faceattend_backend/internals/features/attendance/students/service"
	"faceattend_backend/internals/helpers/apperror"

	"github.com/google/uuid"
)

type fixture struct {
	sessions *sessionService.Service
	students *studentService.Directory
	ledger   *Ledger
	session  sessionModel.ClassSessionModel
	alice    studentModel.StudentModel
	bob      studentModel.StudentModel
}

func newFixture(t *testing.T, expected int) fixture {
	t.Helper()
	ss := sessionService.NewService()
	dir := studentService.NewDirectory()
	l := NewLedger(ss, dir)
	ss.UseAttendance(l)

	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sess, err := ss.Create(sessionService.CreateInput{
		Course: "DB", Topic: "Normal forms", Room: "B-201",
		StartsAt: start, EndsAt: start.Add(100 * time.Minute), ExpectedStudents: expected,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	alice, _ := dir.Add(studentModel.StudentModel{StudentIdentifier: "2101001", StudentName: "Alice", StudentCourses: []string{"DB"}})
	bob, _ := dir.Add(studentModel.StudentModel{StudentIdentifier: "2101002", StudentName: "Bob", StudentCourses: []string{"DB"}})
	return fixture{ss, dir, l, sess, alice, bob}
}

func TestAppendIncrementsByOne(t *testing.T) {
	f := newFixture(t, 2)
	before := f.ledger.CountForSession(f.session.ClassSessionID)
	rec, err := f.ledger.Append(AppendInput{
		SessionID: f.session.ClassSessionID, StudentID: f.alice.StudentID,
		Outcome: model.OutcomeLate, VerifiedBy: model.VerifiedByManual, Note: " traffic ",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if got := f.ledger.CountForSession(f.session.ClassSessionID); got != before+1 {
		t.Fatalf("count = %d, want %d", got, before+1)
	}
	if rec.AttendanceRecordNote != "traffic" || rec.AttendanceRecordOutcome != model.OutcomeLate {
		t.Fatalf("record = %+v", rec)
	}
	if rec.AttendanceRecordSupersedesID != nil {
		t.Fatal("first record must not supersede anything")
	}
}

func TestAppendRejectsInvalidInput(t *testing.T) {
	f := newFixture(t, 2)
	cases := []struct {
		name  string
		in    AppendInput
		check func(error) bool
	}{
		{"no outcome", AppendInput{SessionID: f.session.ClassSessionID, StudentID: f.alice.StudentID, VerifiedBy: model.VerifiedByManual}, apperror.IsValidation},
		{"bad verifier", AppendInput{SessionID: f.session.ClassSessionID, StudentID: f.alice.StudentID, Outcome: model.OutcomePresent}, apperror.IsValidation},
		{"unknown session", AppendInput{SessionID: uuid.New(), StudentID: f.alice.StudentID, Outcome: model.OutcomePresent, VerifiedBy: model.VerifiedByManual}, apperror.IsNotFound},
		{"unknown student", AppendInput{SessionID: f.session.ClassSessionID, StudentID: uuid.New(), Outcome: model.OutcomePresent, VerifiedBy: model.VerifiedByManual}, apperror.IsNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := f.ledger.Append(c.in); !c.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if n := len(f.ledger.All()); n != 0 {
				t.Fatalf("failed append stored %d records", n)
			}
		})
	}
}

func TestAppendRejectsCancelledSession(t *testing.T) {
	f := newFixture(t, 2)
	if _, err := f.sessions.Cancel(f.session.ClassSessionID, "holiday"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := f.ledger.Append(AppendInput{
		SessionID: f.session.ClassSessionID, StudentID: f.alice.StudentID,
		Outcome: model.OutcomePresent, VerifiedBy: model.VerifiedByManual,
	})
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCorrectionSupersedesAndEffectiveUsesLatest(t *testing.T) {
	f := newFixture(t, 2)
	sid := f.session.ClassSessionID
	first, _ := f.ledger.Append(AppendInput{SessionID: sid, StudentID: f.alice.StudentID, Outcome: model.OutcomeAbsent, VerifiedBy: model.VerifiedByAutomatic})
	_, _ = f.ledger.Append(AppendInput{SessionID: sid, StudentID: f.bob.StudentID, Outcome: model.OutcomePresent, VerifiedBy: model.VerifiedByAutomatic})
	second, _ := f.ledger.Append(AppendInput{SessionID: sid, StudentID: f.alice.StudentID, Outcome: model.OutcomeExcused, VerifiedBy: model.VerifiedByManual, Note: "medical letter"})

	if second.AttendanceRecordSupersedesID == nil || *second.AttendanceRecordSupersedesID != first.AttendanceRecordID {
		t.Fatalf("supersedes = %v, want %s", second.AttendanceRecordSupersedesID, first.AttendanceRecordID)
	}
	if n := f.ledger.CountForSession(sid); n != 3 {
		t.Fatalf("append-only count = %d, want 3", n)
	}
	eff := f.ledger.Effective(sid)
	if len(eff) != 2 {
		t.Fatalf("effective = %d records", len(eff))
	}
	for _, r := range eff {
		if r.AttendanceRecordStudentID == f.alice.StudentID && r.AttendanceRecordOutcome != model.OutcomeExcused {
			t.Fatalf("alice effective outcome = %s", r.AttendanceRecordOutcome)
		}
	}

	st, err := f.ledger.Stats(sid)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Recorded != 2 || st.Attended != 1 || st.AttendancePct != 50 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestRecordAutomaticGrace(t *testing.T) {
	f := newFixture(t, 2)
	start := f.session.ClassSessionStartsAt
	r1, err := f.ledger.RecordAutomatic(f.session.ClassSessionID, f.alice.StudentID, start.Add(5*time.Minute), 10*time.Minute)
	if err != nil || r1.AttendanceRecordOutcome != model.OutcomePresent {
		t.Fatalf("on time: %+v %v", r1, err)
	}
	r2, err := f.ledger.RecordAutomatic(f.session.ClassSessionID, f.bob.StudentID, start.Add(25*time.Minute), 10*time.Minute)
	if err != nil || r2.AttendanceRecordOutcome != model.OutcomeLate {
		t.Fatalf("late: %+v %v", r2, err)
	}
	if r2.AttendanceRecordVerifiedBy != model.VerifiedByAutomatic {
		t.Fatalf("verified_by = %s", r2.AttendanceRecordVerifiedBy)
	}
}

func TestSessionCompletionUsesLedgerCount(t *testing.T) {
	f := newFixture(t, 2)
	sid := f.session.ClassSessionID
	if _, err := f.sessions.Start(sid); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.sessions.Complete(sid, false); !apperror.IsValidation(err) {
		t.Fatalf("expected validation error without records, got %v", err)
	}
	if _, err := f.ledger.Append(AppendInput{SessionID: sid, StudentID: f.bob.StudentID, Outcome: model.OutcomePresent, VerifiedBy: model.VerifiedByAutomatic}); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := f.sessions.Complete(sid, false)
	if err != nil || got.ClassSessionStatus != sessionModel.SessionStatusCompleted {
		t.Fatalf("complete: %+v %v", got, err)
	}
}

func TestVerificationStats(t *testing.T) {
	f := newFixture(t, 2)
	sid := f.session.ClassSessionID
	_, _ = f.ledger.Append(AppendInput{SessionID: sid, StudentID: f.alice.StudentID, Outcome: model.OutcomePresent, VerifiedBy: model.VerifiedByAutomatic})
	_, _ = f.ledger.Append(AppendInput{SessionID: sid, StudentID: f.bob.StudentID, Outcome: model.OutcomeLate, VerifiedBy: model.VerifiedByManual})
	_, _ = f.ledger.Append(AppendInput{SessionID: sid, StudentID: f.bob.StudentID, Outcome: model.OutcomePresent, VerifiedBy: model.VerifiedByManual})

	b := f.ledger.VerificationStats()
	if b[0].Count != 1 || b[1].Count != 2 || b[1].Percent != 67 {
		t.Fatalf("buckets = %+v", b)
	}
}
