// file: internals/features/devices/health/controller/device_health_controller.go
package controller

import (
	"context"
	"strings"

	"faceattend_backend/internals/features/devices/health/dto"
	"faceattend_backend/internals/features/devices/health/service"
	helper "faceattend_backend/internals/helpers"
	"faceattend_backend/internals/helpers/apperror"

	"github.com/gofiber/fiber/v2"
)

type DeviceHealthController struct {
	Poller  *service.Poller
	Journal service.Journal // opsional
	// Base: context umur aplikasi untuk loop auto-refresh (bukan ctx request).
	Base context.Context
}

func NewDeviceHealthController(base context.Context, p *service.Poller, journal service.Journal) *DeviceHealthController {
	if base == nil {
		base = context.Background()
	}
	return &DeviceHealthController{Poller: p, Journal: journal, Base: base}
}

/* =========================================================
   READ
========================================================= */

// GET /api/devices?q=&room=&type=&status=&sort_by=&order=
func (h *DeviceHealthController) List(c *fiber.Ctx) error {
	filter, order := helper.ListQuery(c, "room", "type", "status")
	list, err := h.Poller.List(filter, order)
	if err != nil {
		return helper.FromError(c, err)
	}
	page, pg := helper.Paginate(list, helper.ResolvePaging(c, 50, 200))
	return helper.JsonList(c, "ok", page, &pg)
}

func (h *DeviceHealthController) Summary(c *fiber.Ctx) error {
	return helper.JsonOK(c, "ok", dto.DeviceSummaryResponse{
		Total:      len(h.Poller.Devices()),
		Statuses:   h.Poller.Summary(),
		Thresholds: h.Poller.Config().Thresholds,
		Refresh:    dto.FromPoller(h.Poller),
	})
}

func (h *DeviceHealthController) GetByID(c *fiber.Ctx) error {
	d, err := h.Poller.Device(deviceID(c))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", d)
}

// GET /api/devices/:id/actions
func (h *DeviceHealthController) Actions(c *fiber.Ctx) error {
	id := deviceID(c)
	if _, err := h.Poller.Device(id); err != nil {
		return helper.FromError(c, err)
	}
	if h.Journal == nil {
		return helper.JsonOK(c, "ok", []service.Execution{})
	}
	list, err := h.Journal.History(c.UserContext(), id)
	if err != nil {
		return helper.FromError(c, err)
	}
	if list == nil {
		list = []service.Execution{}
	}
	return helper.JsonOK(c, "ok", list)
}

/* =========================================================
   COMMANDS
========================================================= */

// POST /api/devices/refresh: tick manual, countdown auto-refresh di-reset.
func (h *DeviceHealthController) Refresh(c *fiber.Ctx) error {
	rep, err := h.Poller.Refresh(c.UserContext())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Refreshed", rep)
}

func (h *DeviceHealthController) Ping(c *fiber.Ctx) error {
	res, err := h.Poller.Ping(c.UserContext(), deviceID(c))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

func (h *DeviceHealthController) Restart(c *fiber.Ctx) error {
	res, err := h.Poller.Restart(deviceID(c))
	if err != nil {
		return helper.FromError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"message": "Restart queued for next refresh",
		"data":    res,
	})
}

func (h *DeviceHealthController) PowerCycle(c *fiber.Ctx) error {
	res, err := h.Poller.PowerCycle(deviceID(c))
	if err != nil {
		return helper.FromError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"message": "Power-cycle queued for next refresh",
		"data":    res,
	})
}

func (h *DeviceHealthController) Acknowledge(c *fiber.Ctx) error {
	d, err := h.Poller.Acknowledge(deviceID(c))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Issues acknowledged", d)
}

/* =========================================================
   AUTO-REFRESH
========================================================= */

func (h *DeviceHealthController) GetAutoRefresh(c *fiber.Ctx) error {
	return helper.JsonOK(c, "ok", dto.FromPoller(h.Poller))
}

func (h *DeviceHealthController) UpdateAutoRefresh(c *fiber.Ctx) error {
	var req dto.AutoRefreshRequest
	if err := helper.ParseBody(c, nil, "poller", &req); err != nil {
		return helper.FromError(c, err)
	}
	if req.Enabled == nil && req.Interval == nil {
		return helper.FromError(c, apperror.Validation("poller", "enabled or interval is required"))
	}
	if req.Interval != nil {
		d, err := service.ParseInterval(*req.Interval)
		if err != nil {
			return helper.FromError(c, err)
		}
		if err := h.Poller.SetInterval(d); err != nil {
			return helper.FromError(c, err)
		}
	}
	if req.Enabled != nil {
		if *req.Enabled {
			h.Poller.Start(h.Base)
		} else {
			h.Poller.Stop()
		}
	}
	return helper.JsonOK(c, "Auto-refresh updated", dto.FromPoller(h.Poller))
}

func deviceID(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Params("id"))
}
