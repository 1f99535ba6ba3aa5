// file: internals/helpers/json_response.go
package helper

import (
	"errors"
	"strconv"
	"strings"

	"faceattend_backend/internals/helpers/apperror"
	"faceattend_backend/internals/helpers/query"

	"github.com/gofiber/fiber/v2"
)

/* ===============================
   Pagination
=================================*/

type Pagination struct {
	Page           int   `json:"page"`
	PerPage        int   `json:"per_page"`
	Total          int64 `json:"total"`
	TotalPages     int   `json:"total_pages"`
	HasNext        bool  `json:"has_next"`
	HasPrev        bool  `json:"has_prev"`
	Count          int   `json:"count"`
	PerPageOptions []int `json:"per_page_options,omitempty"`
}

var defaultPerPageOptions = []int{10, 20, 30, 50, 100}

type Paging struct {
	Page    int
	PerPage int
}

// ResolvePaging membaca ?page= & ?per_page= (alias ?limit=) dan normalisasi.
func ResolvePaging(c *fiber.Ctx, defaultPerPage, maxPerPage int) Paging {
	perPageStr := strings.TrimSpace(c.Query("per_page"))
	if perPageStr == "" {
		perPageStr = strings.TrimSpace(c.Query("limit", strconv.Itoa(defaultPerPage)))
	}
	page, _ := strconv.Atoi(strings.TrimSpace(c.Query("page", "1")))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(perPageStr)
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Paging{Page: page, PerPage: perPage}
}

func BuildPaginationFromPage(total int64, page, perPage, count int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage)) // ceil
	if totalPages == 0 {
		totalPages = 1
	}
	return Pagination{
		Page:           page,
		PerPage:        perPage,
		Total:          total,
		TotalPages:     totalPages,
		HasNext:        page < totalPages,
		HasPrev:        page > 1,
		Count:          count,
		PerPageOptions: append([]int(nil), defaultPerPageOptions...),
	}
}

// Paginate memotong hasil query in-memory dan membangun metadata.
func Paginate[T any](items []T, p Paging) ([]T, Pagination) {
	page := query.Page(items, p.Page, p.PerPage)
	return page, BuildPaginationFromPage(int64(len(items)), p.Page, p.PerPage, len(page))
}

/* ===============================
   List query (?q= & filter & sort)
=================================*/

// ListQuery menerjemahkan query string ke FilterSpec/SortSpec.
// equals: nama parameter yang dipetakan ke filter kategori.
func ListQuery(c *fiber.Ctx, equals ...string) (query.FilterSpec, query.SortSpec) {
	f := query.FilterSpec{Text: strings.TrimSpace(c.Query("q"))}
	for _, name := range equals {
		if v := strings.TrimSpace(c.Query(name)); v != "" {
			if f.Equals == nil {
				f.Equals = map[string]string{}
			}
			f.Equals[name] = v
		}
	}
	s := query.SortSpec{
		Field:     strings.TrimSpace(c.Query("sort_by")),
		Direction: query.ParseDirection(c.Query("order")),
	}
	return f, s
}

/* ===============================
   Error helpers (standard shape)
=================================*/

type ErrorResponse struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
}

func statusToErrorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	case fiber.StatusConflict:
		return "INVALID_TRANSITION"
	case fiber.StatusServiceUnavailable:
		return "STALE_READ"
	case fiber.StatusGatewayTimeout:
		return "TIMEOUT"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		if status >= 500 {
			return "INTERNAL_ERROR"
		}
		return "ERROR"
	}
}

// JsonError: error generic (bukan validasi)
func JsonError(c *fiber.Ctx, status int, message string) error {
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	if strings.TrimSpace(message) == "" {
		message = fiber.ErrInternalServerError.Message
	}
	return c.Status(status).JSON(ErrorResponse{
		Success:   false,
		Message:   message,
		ErrorCode: statusToErrorCode(status),
	})
}

// JsonValidationError: khusus error validasi (422)
func JsonValidationError(c *fiber.Ctx, message string, fieldErrors map[string][]string) error {
	if fieldErrors == nil {
		fieldErrors = map[string][]string{}
	}
	if strings.TrimSpace(message) == "" {
		message = "validation failed"
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
		Success:   false,
		Message:   message,
		ErrorCode: "VALIDATION_ERROR",
		Errors:    fieldErrors,
	})
}

// FromError memetakan error domain / *fiber.Error ke response JSON.
func FromError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}
	var ve *apperror.ValidationError
	if errors.As(err, &ve) {
		fields := make(map[string][]string, len(ve.Fields))
		for k, v := range ve.Fields {
			fields[k] = []string{v}
		}
		return JsonValidationError(c, ve.Error(), fields)
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	return JsonError(c, apperror.HTTPStatus(err), err.Error())
}

/* ===============================
   JSON responses (standard success)
=================================*/

// JsonList: list dengan pagination
func JsonList(c *fiber.Ctx, message string, data any, pagination *Pagination) error {
	if strings.TrimSpace(message) == "" {
		message = "ok"
	}
	body := fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	}
	if pagination != nil {
		body["pagination"] = pagination
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// JsonOK: response sukses generic (GET detail, dsb)
func JsonOK(c *fiber.Ctx, message string, data any) error {
	if strings.TrimSpace(message) == "" {
		message = "ok"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// JsonCreated: response sukses create (POST)
func JsonCreated(c *fiber.Ctx, message string, data any) error {
	if strings.TrimSpace(message) == "" {
		message = "created"
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// JsonDeleted: response sukses delete (DELETE)
func JsonDeleted(c *fiber.Ctx, message string, data any) error {
	if strings.TrimSpace(message) == "" {
		message = "deleted"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}
