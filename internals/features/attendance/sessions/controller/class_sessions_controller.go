// file: internals/features/attendance/sessions/controller/class_sessions_controller.go
package controller

import (
	"time"

	recordService "faceattend_backend/internals/features/attendance/records/service"
	"faceattend_backend/internals/features/attendance/sessions/dto"
	"faceattend_backend/internals/features/attendance/sessions/model"
	"faceattend_backend/internals/features/attendance/sessions/service"
	helper "faceattend_backend/internals/helpers"
	"faceattend_backend/internals/helpers/query"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ClassSessionController struct {
	Sessions  *service.Service
	Ledger    *recordService.Ledger
	LateGrace time.Duration
	Validator *validator.Validate
	Now       func() time.Time
}

func NewClassSessionController(sessions *service.Service, ledger *recordService.Ledger, lateGrace time.Duration) *ClassSessionController {
	return &ClassSessionController{
		Sessions:  sessions,
		Ledger:    ledger,
		LateGrace: lateGrace,
		Validator: helper.NewValidator(),
		Now:       time.Now,
	}
}

/* =========================================================
   LIST
   GET /api/sessions?q=&status=&course=&room=&date=&sort_by=&order=&page=&per_page=
========================================================= */
func (h *ClassSessionController) List(c *fiber.Ctx) error {
	filter, order := helper.ListQuery(c, "status", "course", "room", "date")
	if order.Field == "" {
		order.Field = "starts_at"
	}
	list, err := h.Sessions.List(filter, order)
	if err != nil {
		return helper.FromError(c, err)
	}
	page, pg := helper.Paginate(list, helper.ResolvePaging(c, 20, 100))
	return helper.JsonList(c, "ok", dto.FromModels(page), &pg)
}

// GET /api/sessions/summary (filter sama dengan list)
func (h *ClassSessionController) Summary(c *fiber.Ctx) error {
	filter, _ := helper.ListQuery(c, "status", "course", "room", "date")
	list, err := h.Sessions.List(filter, query.SortSpec{})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{
		"total":    len(list),
		"statuses": h.Sessions.StatusSummary(list),
		"courses":  h.Sessions.Courses(),
	})
}

func (h *ClassSessionController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id", "session")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Sessions.Get(id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(m))
}

/* =========================================================
   CREATE / DELETE
========================================================= */

func (h *ClassSessionController) Create(c *fiber.Ctx) error {
	var req dto.CreateClassSessionRequest
	if err := helper.ParseBody(c, h.Validator, "session", &req); err != nil {
		return helper.FromError(c, err)
	}
	in, err := req.ToInput()
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Sessions.Create(in)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Session created", dto.FromModel(m))
}

func (h *ClassSessionController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id", "session")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.Sessions.Delete(id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "Session deleted", fiber.Map{"class_session_id": id})
}

/* =========================================================
   TRANSITIONS
========================================================= */

func (h *ClassSessionController) Start(c *fiber.Ctx) error {
	return h.transition(c, func(id uuid.UUID) (model.ClassSessionModel, error) {
		return h.Sessions.Start(id)
	})
}

// body: {"no_show_ack": true} bila sesi tanpa record
func (h *ClassSessionController) Complete(c *fiber.Ctx) error {
	var req dto.CompleteClassSessionRequest
	if err := helper.ParseBody(c, nil, "session", &req); err != nil {
		return helper.FromError(c, err)
	}
	return h.transition(c, func(id uuid.UUID) (model.ClassSessionModel, error) {
		return h.Sessions.Complete(id, req.NoShowAck)
	})
}

func (h *ClassSessionController) Cancel(c *fiber.Ctx) error {
	var req dto.CancelClassSessionRequest
	if err := helper.ParseBody(c, h.Validator, "session", &req); err != nil {
		return helper.FromError(c, err)
	}
	return h.transition(c, func(id uuid.UUID) (model.ClassSessionModel, error) {
		return h.Sessions.Cancel(id, req.Reason)
	})
}

func (h *ClassSessionController) transition(c *fiber.Ctx, fn func(uuid.UUID) (model.ClassSessionModel, error)) error {
	id, err := helper.ParamUUID(c, "id", "session")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := fn(id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Session is "+string(m.ClassSessionStatus), dto.FromModel(m))
}

// POST /api/sessions/advance: transisi berbasis jam untuk semua sesi.
func (h *ClassSessionController) Advance(c *fiber.Ctx) error {
	var req dto.AdvanceRequest
	if err := helper.ParseBody(c, nil, "session", &req); err != nil {
		return helper.FromError(c, err)
	}
	at := h.Now()
	if req.At != nil {
		at = *req.At
	}
	return helper.JsonOK(c, "ok", h.Sessions.AdvanceByClock(at))
}

/* =========================================================
   ATTENDANCE PER SESSION
========================================================= */

// GET /api/sessions/:id/records?effective=true
func (h *ClassSessionController) Records(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id", "session")
	if err != nil {
		return helper.FromError(c, err)
	}
	if _, err := h.Sessions.Get(id); err != nil {
		return helper.FromError(c, err)
	}
	records := h.Ledger.ForSession(id)
	if c.QueryBool("effective", false) {
		records = h.Ledger.Effective(id)
	}
	return helper.JsonOK(c, "ok", records)
}

func (h *ClassSessionController) Stats(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id", "session")
	if err != nil {
		return helper.FromError(c, err)
	}
	st, err := h.Ledger.Stats(id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", st)
}

// POST /api/sessions/:id/records/automatic
func (h *ClassSessionController) RecordAutomatic(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id", "session")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.AutomaticRecordRequest
	if err := helper.ParseBody(c, h.Validator, "attendance", &req); err != nil {
		return helper.FromError(c, err)
	}
	at := h.Now()
	if req.At != nil {
		at = *req.At
	}
	rec, err := h.Ledger.RecordAutomatic(id, req.StudentID, at, h.LateGrace)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Attendance recorded", rec)
}
