// file: internals/features/attendance/verification/controller/verification_controller.go
package controller

import (
	"time"

	recordModel "faceattend_backend/internals/features/attendance/records/model"
	studentModel "faceattend_backend/internals/features/attendance/students/model"
	"faceattend_backend/internals/features/attendance/verification/dto"
	"faceattend_backend/internals/features/attendance/verification/service"
	helper "faceattend_backend/internals/helpers"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type VerificationController struct {
	Registry  *service.Registry
	Validator *validator.Validate
}

func NewVerificationController(reg *service.Registry) *VerificationController {
	return &VerificationController{Registry: reg, Validator: helper.NewValidator()}
}

// POST /api/verifications → workflow baru (ContextSelection)
func (h *VerificationController) Open(c *fiber.Ctx) error {
	id, v := h.Registry.Open()
	return helper.JsonCreated(c, "Verification opened", dto.FromView(id, v))
}

func (h *VerificationController) Get(c *fiber.Ctx) error {
	return h.with(c, "ok", nil)
}

func (h *VerificationController) Close(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id", "verification")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.Registry.Close(id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "Verification closed", fiber.Map{"verification_id": id})
}

/* =========================================================
   STEPS
========================================================= */

func (h *VerificationController) SetContext(c *fiber.Ctx) error {
	var req dto.ContextRequest
	if err := helper.ParseBody(c, nil, "verification", &req); err != nil {
		return helper.FromError(c, err)
	}
	return h.with(c, "Context updated", func(w *service.Workflow) error {
		return w.SetContext(req.ToContext())
	})
}

func (h *VerificationController) BeginSearch(c *fiber.Ctx) error {
	return h.with(c, "Searching subjects", func(w *service.Workflow) error {
		return w.BeginSearch()
	})
}

// GET /api/verifications/:id/subjects?q=
func (h *VerificationController) Subjects(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id", "verification")
	if err != nil {
		return helper.FromError(c, err)
	}
	var found []studentModel.StudentModel
	if _, err := h.Registry.With(id, func(w *service.Workflow) error {
		var err error
		found, err = w.Search(c.Query("q"))
		return err
	}); err != nil {
		return helper.FromError(c, err)
	}
	page, pg := helper.Paginate(found, helper.ResolvePaging(c, 20, 100))
	return helper.JsonList(c, "ok", page, &pg)
}

func (h *VerificationController) SelectSubject(c *fiber.Ctx) error {
	var req dto.SelectSubjectRequest
	if err := helper.ParseBody(c, h.Validator, "verification", &req); err != nil {
		return helper.FromError(c, err)
	}
	return h.with(c, "Subject selected", func(w *service.Workflow) error {
		return w.SelectSubject(req.StudentID)
	})
}

func (h *VerificationController) Decision(c *fiber.Ctx) error {
	var req dto.DecisionRequest
	if err := helper.ParseBody(c, h.Validator, "verification", &req); err != nil {
		return helper.FromError(c, err)
	}
	return h.with(c, "Decision updated", func(w *service.Workflow) error {
		if err := w.ChooseOutcome(recordModel.Outcome(req.Outcome)); err != nil {
			return err
		}
		if req.Note != nil {
			return w.SetNote(*req.Note)
		}
		return nil
	})
}

func (h *VerificationController) Cancel(c *fiber.Ctx) error {
	return h.with(c, "Decision cancelled", func(w *service.Workflow) error {
		return w.Cancel()
	})
}

func (h *VerificationController) Commit(c *fiber.Ctx) error {
	var req dto.CommitRequest
	if err := helper.ParseBody(c, nil, "verification", &req); err != nil {
		return helper.FromError(c, err)
	}
	var at time.Time
	if req.At != nil {
		at = *req.At
	}
	id, err := helper.ParamUUID(c, "id", "verification")
	if err != nil {
		return helper.FromError(c, err)
	}
	v, err := h.Registry.With(id, func(w *service.Workflow) error {
		_, err := w.Commit(at)
		return err
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Attendance committed", dto.FromView(id, v))
}

func (h *VerificationController) Reset(c *fiber.Ctx) error {
	return h.with(c, "Context reset", func(w *service.Workflow) error {
		return w.ResetContext()
	})
}

// POST /api/verifications/commit: seluruh alur dalam satu request.
func (h *VerificationController) CommitOneShot(c *fiber.Ctx) error {
	var req dto.OneShotCommitRequest
	if err := helper.ParseBody(c, h.Validator, "verification", &req); err != nil {
		return helper.FromError(c, err)
	}
	rec, err := h.Registry.Commit(req.ToInput())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Attendance committed", rec)
}

func (h *VerificationController) with(c *fiber.Ctx, msg string, fn func(*service.Workflow) error) error {
	id, err := helper.ParamUUID(c, "id", "verification")
	if err != nil {
		return helper.FromError(c, err)
	}
	if fn == nil {
		fn = func(*service.Workflow) error { return nil }
	}
	v, err := h.Registry.With(id, fn)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, msg, dto.FromView(id, v))
}
