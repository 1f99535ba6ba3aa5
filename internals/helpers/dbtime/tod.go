// file: internals/helpers/dbtime/tod.go
package dbtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Tod: jam dalam sehari ("HH:MM[:SS]"), tanpa tanggal & zona.
type Tod struct{ time.Time }

func From(t time.Time) Tod {
	return Tod{Time: time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

func ParseTod(s string) (Tod, error) {
	var t Tod
	return t, t.parse(s)
}

func (t *Tod) parse(s string) error {
	s = strings.TrimSpace(s)
	if len(s) == 5 { // "HH:MM"
		s += ":00"
	}
	tt, err := time.Parse("15:04:05", s)
	if err != nil {
		return fmt.Errorf("tod: %q bukan HH:MM", s)
	}
	t.Time = tt
	return nil
}

// On menggabungkan tanggal (di zona date) dengan jam ini.
func (t Tod) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, date.Location())
}

func (t Tod) String() string { return t.Format("15:04") }

func (t Tod) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(t.String())
}

func (t *Tod) UnmarshalJSON(b []byte) error {
	var s string
	if err := sonic.Unmarshal(b, &s); err != nil {
		return err
	}
	return t.parse(s)
}

// Combine: "2026-03-02" + "08:00" di timezone konsol.
func Combine(date string, tod Tod) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return tod.On(d), nil
}
