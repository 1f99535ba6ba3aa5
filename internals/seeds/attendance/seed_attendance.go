package attendance

import (
	_ "embed"
	"fmt"
	"log"
	"time"

	recordModel "faceattend_backend/internals/features/attendance/records/model"
	recordService "faceattend_backend/internals/features/attendance/records/service"
	sessionModel "faceattend_backend/internals/features/attendance/sessions/model"
	sessionService "faceattend_backend/internals/features/attendance/sessions/service"
	studentModel "faceattend_backend/internals/features/attendance/students/model"
	studentService "faceattend_backend/internals/features/attendance/students/service"
	"faceattend_backend/internals/helpers/dbtime"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

//go:embed data_students.json
var studentsJSON []byte

//go:embed data_sessions.json
var sessionsJSON []byte

//go:embed data_attendance.json
var attendanceJSON []byte

type SessionSeed struct {
	Key              string `json:"key"`
	Course           string `json:"course"`
	Topic            string `json:"topic"`
	Lecturer         string `json:"lecturer"`
	DayOffset        int    `json:"day_offset"`
	Start            string `json:"start"`
	End              string `json:"end"`
	Room             string `json:"room"`
	ExpectedStudents int    `json:"expected_students"`
	Status           string `json:"status"`
	Reason           string `json:"reason"`
}

type RecordSeed struct {
	Session    string `json:"session"`
	Student    string `json:"student"` // NIM
	Outcome    string `json:"outcome"`
	VerifiedBy string `json:"verified_by"`
	Minute     int    `json:"minute"` // menit setelah sesi mulai
	Note       string `json:"note"`
}

// Result: id hasil seed, dipakai seeder lain (access log).
type Result struct {
	Sessions map[string]uuid.UUID
	Students map[string]studentModel.StudentModel // by NIM
}

// SeedStudents memuat pool mahasiswa dari JSON.
func SeedStudents(dir *studentService.Directory) (map[string]studentModel.StudentModel, error) {
	var seeds []studentModel.StudentModel
	if err := sonic.Unmarshal(studentsJSON, &seeds); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	out := make(map[string]studentModel.StudentModel, len(seeds))
	for _, s := range seeds {
		m, err := dir.Add(s)
		if err != nil {
			return nil, fmt.Errorf("student %s: %w", s.StudentIdentifier, err)
		}
		out[m.StudentIdentifier] = m
	}
	log.Printf("[SEED] %d students", len(out))
	return out, nil
}

// SeedSessions: tanggal relatif terhadap anchor (hari ini di zona konsol).
func SeedSessions(ss *sessionService.Service, anchor time.Time) (map[string]uuid.UUID, error) {
	var seeds []SessionSeed
	if err := sonic.Unmarshal(sessionsJSON, &seeds); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, dbtime.Location())
	out := make(map[string]uuid.UUID, len(seeds))
	for _, s := range seeds {
		start, err := dbtime.ParseTod(s.Start)
		if err != nil {
			return nil, fmt.Errorf("session %s start: %w", s.Key, err)
		}
		end, err := dbtime.ParseTod(s.End)
		if err != nil {
			return nil, fmt.Errorf("session %s end: %w", s.Key, err)
		}
		date := day.AddDate(0, 0, s.DayOffset)
		m, err := ss.Create(sessionService.CreateInput{
			Course:           s.Course,
			Topic:            s.Topic,
			Lecturer:         s.Lecturer,
			StartsAt:         start.On(date),
			EndsAt:           end.On(date),
			Room:             s.Room,
			ExpectedStudents: s.ExpectedStudents,
			Status:           sessionModel.SessionStatus(s.Status),
			Reason:           s.Reason,
		})
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", s.Key, err)
		}
		out[s.Key] = m.ClassSessionID
	}
	log.Printf("[SEED] %d class sessions", len(out))
	return out, nil
}

// SeedRecords: record lewat ledger, jadi aturan append tetap berlaku.
func SeedRecords(ss *sessionService.Service, ledger *recordService.Ledger, res Result) error {
	var seeds []RecordSeed
	if err := sonic.Unmarshal(attendanceJSON, &seeds); err != nil {
		return fmt.Errorf("decode attendance: %w", err)
	}
	for i, r := range seeds {
		sid, ok := res.Sessions[r.Session]
		if !ok {
			return fmt.Errorf("attendance #%d: unknown session %q", i, r.Session)
		}
		st, ok := res.Students[r.Student]
		if !ok {
			return fmt.Errorf("attendance #%d: unknown student %q", i, r.Student)
		}
		sess, err := ss.Get(sid)
		if err != nil {
			return err
		}
		if _, err := ledger.Append(recordService.AppendInput{
			SessionID:  sid,
			StudentID:  st.StudentID,
			Outcome:    recordModel.Outcome(r.Outcome),
			VerifiedBy: recordModel.VerifiedBy(r.VerifiedBy),
			Note:       r.Note,
			At:         sess.ClassSessionStartsAt.Add(time.Duration(r.Minute) * time.Minute),
		}); err != nil {
			return fmt.Errorf("attendance #%d: %w", i, err)
		}
	}
	log.Printf("[SEED] %d attendance records", len(seeds))
	return nil
}

// Seed menjalankan ketiga seeder berurutan.
func Seed(ss *sessionService.Service, dir *studentService.Directory, ledger *recordService.Ledger, anchor time.Time) (Result, error) {
	students, err := SeedStudents(dir)
	if err != nil {
		return Result{}, err
	}
	sessions, err := SeedSessions(ss, anchor)
	if err != nil {
		return Result{}, err
	}
	res := Result{Sessions: sessions, Students: students}
	return res, SeedRecords(ss, ledger, res)
}
