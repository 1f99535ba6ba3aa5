// file: internals/helpers/apperror/errors.go
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

/* =========================
   Validation
========================= */

// ValidationError: input kurang/invalid sebelum transisi. Tidak ada perubahan state.
type ValidationError struct {
	Entity  string
	Message string
	Fields  map[string]string // field -> alasan
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", e.Entity, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s (%s)", e.Entity, e.Message, strings.Join(parts, ", "))
}

func Validation(entity, message string) *ValidationError {
	return &ValidationError{Entity: entity, Message: message}
}

func ValidationField(entity, field, reason string) *ValidationError {
	return &ValidationError{
		Entity:  entity,
		Message: "validation failed",
		Fields:  map[string]string{field: reason},
	}
}

// FromValidator mengubah validator.ValidationErrors menjadi ValidationError.
// Error lain dikembalikan apa adanya.
func FromValidator(entity string, err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return &ValidationError{Entity: entity, Message: "validation failed", Fields: fields}
}

/* =========================
   Transition
========================= */

// InvalidTransitionError: perubahan status yang tidak diizinkan.
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition for %s: %s -> %s", e.Entity, e.ID, e.From, e.To)
}

func InvalidTransition(entity, id, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, ID: id, From: from, To: to}
}

/* =========================
   Not found
========================= */

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

/* =========================
   Stale read (poller)
========================= */

type StaleReadError struct {
	DeviceID   string
	LastSeenAt time.Time
	Age        time.Duration
}

func (e *StaleReadError) Error() string {
	return fmt.Sprintf("stale read for device %s: last seen %s ago", e.DeviceID, e.Age.Truncate(time.Second))
}

/* =========================
   Matchers
========================= */

func IsValidation(err error) bool {
	var t *ValidationError
	return errors.As(err, &t)
}

func IsInvalidTransition(err error) bool {
	var t *InvalidTransitionError
	return errors.As(err, &t)
}

func IsNotFound(err error) bool {
	var t *NotFoundError
	return errors.As(err, &t)
}

func IsStaleRead(err error) bool {
	var t *StaleReadError
	return errors.As(err, &t)
}

// HTTPStatus memetakan taxonomy ke status HTTP.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusUnprocessableEntity
	case IsInvalidTransition(err):
		return http.StatusConflict
	case IsNotFound(err):
		return http.StatusNotFound
	case IsStaleRead(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, errTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

var errTimeout = errors.New("timeout")

// Timeout menandai error yang berasal dari batas waktu baca.
func Timeout(what string) error {
	return fmt.Errorf("%s: %w", what, errTimeout)
}

func IsTimeout(err error) bool { return errors.Is(err, errTimeout) }
