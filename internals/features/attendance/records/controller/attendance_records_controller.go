package controller

import (
	"faceattend_backend/internals/features/attendance/records/service"
	helper "faceattend_backend/internals/helpers"
	"faceattend_backend/internals/helpers/query"

	"github.com/gofiber/fiber/v2"
)

type AttendanceRecordController struct {
	Ledger *service.Ledger
}

func NewAttendanceRecordController(l *service.Ledger) *AttendanceRecordController {
	return &AttendanceRecordController{Ledger: l}
}

// GET /api/attendance-records?session_id=&student_id=&outcome=&verified_by=&q=&sort_by=&order=
func (h *AttendanceRecordController) List(c *fiber.Ctx) error {
	filter, order := helper.ListQuery(c, "session_id", "student_id", "outcome", "verified_by")
	if order.Field == "" {
		order = query.SortSpec{Field: "timestamp", Direction: query.Desc}
	}
	list, err := h.Ledger.List(filter, order)
	if err != nil {
		return helper.FromError(c, err)
	}
	page, pg := helper.Paginate(list, helper.ResolvePaging(c, 50, 500))
	return helper.JsonList(c, "ok", page, &pg)
}

// GET /api/attendance-records/summary: manual vs automatic.
func (h *AttendanceRecordController) Summary(c *fiber.Ctx) error {
	return helper.JsonOK(c, "ok", fiber.Map{
		"total":       len(h.Ledger.All()),
		"verified_by": h.Ledger.VerificationStats(),
	})
}
