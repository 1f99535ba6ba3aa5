// file: internals/features/reports/service/reports_service.go
package service

import (
	"fmt"

	accessModel "faceattend_backend/internals/features/access/logs/model"
	recordModel "faceattend_backend/internals/features/attendance/records/model"
	recordService "faceattend_backend/internals/features/attendance/records/service"
	sessionModel "faceattend_backend/internals/features/attendance/sessions/model"
	studentModel "faceattend_backend/internals/features/attendance/students/model"
	"faceattend_backend/internals/helpers/dbtime"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSessions = "Sessions"
	SheetRecords  = "Records"
	SheetAccess   = "Access Log"
)

// ContentType untuk response .xlsx
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StatsLookup interface {
	Stats(sessionID uuid.UUID) (recordService.SessionStats, error)
	ForSession(sessionID uuid.UUID) []recordModel.AttendanceRecordModel
}

type StudentLookup interface {
	Get(id uuid.UUID) (studentModel.StudentModel, error)
}

/* =========================
   Attendance
========================= */

// AttendanceWorkbook: sheet rekap per sesi + seluruh record (termasuk yang sudah digantikan).
func AttendanceWorkbook(sessions []sessionModel.ClassSessionModel, ledger StatsLookup, students StudentLookup) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSessions); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetRecords); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Time", "Course", "Topic", "Room", "Status", "Expected", "Recorded", "Attended", "Attendance %"}
	if err := writeHeader(f, SheetSessions, headers); err != nil {
		return nil, err
	}
	recHeaders := []string{"Timestamp", "Course", "Session Date", "Student ID", "Student Name", "Outcome", "Verified By", "Note", "Superseded"}
	if err := writeHeader(f, SheetRecords, recHeaders); err != nil {
		return nil, err
	}

	recRow := 2
	for i, s := range sessions {
		st, err := ledger.Stats(s.ClassSessionID)
		if err != nil {
			return nil, err
		}
		row := i + 2
		if err := setRow(f, SheetSessions, row,
			s.DateKey(),
			dbtime.InConsole(s.ClassSessionStartsAt).Format("15:04")+"-"+dbtime.InConsole(s.ClassSessionEndsAt).Format("15:04"),
			s.ClassSessionCourse,
			s.ClassSessionTopic,
			s.ClassSessionRoom,
			string(s.ClassSessionStatus),
			st.Expected,
			st.Recorded,
			st.Attended,
			st.AttendancePct,
		); err != nil {
			return nil, err
		}

		records := ledger.ForSession(s.ClassSessionID)
		superseded := map[uuid.UUID]bool{}
		for _, r := range records {
			if r.AttendanceRecordSupersedesID != nil {
				superseded[*r.AttendanceRecordSupersedesID] = true
			}
		}
		for _, r := range records {
			identifier, name := r.AttendanceRecordStudentID.String(), ""
			if stu, err := students.Get(r.AttendanceRecordStudentID); err == nil {
				identifier, name = stu.StudentIdentifier, stu.StudentName
			}
			if err := setRow(f, SheetRecords, recRow,
				dbtime.InConsole(r.AttendanceRecordTimestamp).Format("2006-01-02 15:04:05"),
				s.ClassSessionCourse,
				s.DateKey(),
				identifier,
				name,
				string(r.AttendanceRecordOutcome),
				string(r.AttendanceRecordVerifiedBy),
				r.AttendanceRecordNote,
				yesNo(superseded[r.AttendanceRecordID]),
			); err != nil {
				return nil, err
			}
			recRow++
		}
	}

	if err := setColWidths(f,
		colWidth{SheetSessions, "C", "D", 28},
		colWidth{SheetRecords, "A", "A", 20},
		colWidth{SheetRecords, "E", "E", 24},
		colWidth{SheetRecords, "H", "H", 32},
	); err != nil {
		return nil, err
	}
	return f, nil
}

/* =========================
   Access log
========================= */

func AccessLogWorkbook(events []accessModel.AccessEventModel) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetAccess); err != nil {
		return nil, err
	}
	headers := []string{"Timestamp", "Subject", "Room", "Method", "Decision", "Door Open (s)", "Notes"}
	if err := writeHeader(f, SheetAccess, headers); err != nil {
		return nil, err
	}
	for i, e := range events {
		var open any = ""
		if d := e.AccessEventDurationOpen; d != nil {
			open = d.Seconds()
		}
		if err := setRow(f, SheetAccess, i+2,
			dbtime.InConsole(e.AccessEventTimestamp).Format("2006-01-02 15:04:05"),
			e.AccessEventSubject.Name,
			e.AccessEventRoom,
			string(e.AccessEventMethod),
			string(e.AccessEventDecision),
			open,
			e.AccessEventNotes,
		); err != nil {
			return nil, err
		}
	}
	if err := setColWidths(f,
		colWidth{SheetAccess, "A", "B", 22},
		colWidth{SheetAccess, "G", "G", 36},
	); err != nil {
		return nil, err
	}
	return f, nil
}

/* =========================
   Helpers
========================= */

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return err
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}

type colWidth struct {
	sheet    string
	from, to string
	width    float64
}

func setColWidths(f *excelize.File, cols ...colWidth) error {
	for _, c := range cols {
		if err := f.SetColWidth(c.sheet, c.from, c.to, c.width); err != nil {
			return fmt.Errorf("%s columns %s:%s: %w", c.sheet, c.from, c.to, err)
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
