// file: internals/helpers/params.go
package helper

import (
	"reflect"
	"strings"

	"faceattend_backend/internals/helpers/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// NewValidator: nama field di error mengikuti tag json.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ParamUUID membaca path param sebagai UUID.
func ParamUUID(c *fiber.Ctx, name, entity string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.ValidationField(entity, name, "must be a valid uuid")
	}
	return id, nil
}

// ParseBody: BodyParser + validator. Body kosong diperlakukan sebagai {}.
func ParseBody(c *fiber.Ctx, v *validator.Validate, entity string, out any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(out); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if v == nil {
		return nil
	}
	return apperror.FromValidator(entity, v.Struct(out))
}
