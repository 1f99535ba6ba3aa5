// file: internals/features/access/logs/controller/access_logs_controller.go
package controller

import (
	"faceattend_backend/internals/features/access/logs/dto"
	"faceattend_backend/internals/features/access/logs/service"
	helper "faceattend_backend/internals/helpers"
	"faceattend_backend/internals/helpers/query"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type AccessLogController struct {
	Log       *service.Log
	Validator *validator.Validate
}

func NewAccessLogController(l *service.Log) *AccessLogController {
	return &AccessLogController{Log: l, Validator: helper.NewValidator()}
}

// GET /api/access-logs?q=&room=&method=&decision=&sort_by=&order=&page=&per_page=
func (h *AccessLogController) List(c *fiber.Ctx) error {
	filter, order := helper.ListQuery(c, "room", "method", "decision")
	list, err := h.Log.List(filter, order)
	if err != nil {
		return helper.FromError(c, err)
	}
	page, pg := helper.Paginate(list, helper.ResolvePaging(c, 20, 200))
	return helper.JsonList(c, "ok", dto.FromModels(page), &pg)
}

// GET /api/access-logs/summary: breakdown decision atas hasil filter.
func (h *AccessLogController) Summary(c *fiber.Ctx) error {
	filter, _ := helper.ListQuery(c, "room", "method", "decision")
	list, err := h.Log.List(filter, query.SortSpec{})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{
		"total":     len(list),
		"decisions": h.Log.Summary(list),
		"rooms":     h.Log.Rooms(),
	})
}

func (h *AccessLogController) Create(c *fiber.Ctx) error {
	var req dto.CreateAccessEventRequest
	if err := helper.ParseBody(c, h.Validator, "access_event", &req); err != nil {
		return helper.FromError(c, err)
	}
	e, err := h.Log.Append(req.ToModel())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Access event recorded", dto.FromModel(e))
}
