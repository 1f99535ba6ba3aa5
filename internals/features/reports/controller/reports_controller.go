// file: internals/features/reports/controller/reports_controller.go
package controller

import (
	"fmt"
	"log"
	"time"

	accessService "faceattend_backend/internals/features/access/logs/service"
	recordService "faceattend_backend/internals/features/attendance/records/service"
	sessionService "faceattend_backend/internals/features/attendance/sessions/service"
	studentService "faceattend_backend/internals/features/attendance/students/service"
	"faceattend_backend/internals/features/reports/service"
	helper "faceattend_backend/internals/helpers"
	"faceattend_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

type ReportController struct {
	Sessions *sessionService.Service
	Ledger   *recordService.Ledger
	Students *studentService.Directory
	Access   *accessService.Log
}

// GET /api/reports/attendance.xlsx?course=&date=&status=&room=
func (h *ReportController) Attendance(c *fiber.Ctx) error {
	filter, order := helper.ListQuery(c, "status", "course", "room", "date")
	if order.Field == "" {
		order.Field = "starts_at"
	}
	sessions, err := h.Sessions.List(filter, order)
	if err != nil {
		return helper.FromError(c, err)
	}
	f, err := service.AttendanceWorkbook(sessions, h.Ledger, h.Students)
	if err != nil {
		log.Println("[ERROR] build attendance workbook:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to build Excel file")
	}
	return sendWorkbook(c, f, "attendance")
}

// GET /api/reports/access-logs.xlsx?room=&decision=&method=&q=
func (h *ReportController) AccessLogs(c *fiber.Ctx) error {
	filter, order := helper.ListQuery(c, "room", "method", "decision")
	events, err := h.Access.List(filter, order)
	if err != nil {
		return helper.FromError(c, err)
	}
	f, err := service.AccessLogWorkbook(events)
	if err != nil {
		log.Println("[ERROR] build access workbook:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to build Excel file")
	}
	return sendWorkbook(c, f, "access_logs")
}

func sendWorkbook(c *fiber.Ctx, f *excelize.File, prefix string) error {
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		log.Println("[ERROR] write workbook:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to write Excel file")
	}
	name := fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().In(dbtime.Location()).Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, service.ContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+name)
	return c.Send(buf.Bytes())
}
