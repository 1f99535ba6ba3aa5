// file: internals/features/attendance/students/controller/students_controller.go
package controller

import (
	"strings"

	"faceattend_backend/internals/features/attendance/students/service"
	helper "faceattend_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

type StudentController struct {
	Directory *service.Directory
}

func NewStudentController(dir *service.Directory) *StudentController {
	return &StudentController{Directory: dir}
}

// GET /api/students?q=&course=&page=&per_page=
func (h *StudentController) List(c *fiber.Ctx) error {
	list, err := h.Directory.Search(c.Query("q"), strings.TrimSpace(c.Query("course")))
	if err != nil {
		return helper.FromError(c, err)
	}
	page, pg := helper.Paginate(list, helper.ResolvePaging(c, 50, 200))
	return helper.JsonList(c, "ok", page, &pg)
}

func (h *StudentController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id", "student")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Directory.Get(id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", m)
}
