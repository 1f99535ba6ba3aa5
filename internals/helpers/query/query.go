// file: internals/helpers/query/query.go
package query

import (
	"sort"
	"strings"
	"time"

	"faceattend_backend/internals/helpers/apperror"
)

/* =========================
   Field kinds & schema
========================= */

type Kind int

const (
	Text Kind = iota
	Number
	Time
	Category
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	case Time:
		return "time"
	case Category:
		return "category"
	default:
		return "unknown"
	}
}

type field[T any] struct {
	kind   Kind
	text   func(T) string
	number func(T) float64
	at     func(T) time.Time
}

// Schema mendeskripsikan field yang bisa difilter / disort untuk tipe T.
type Schema[T any] struct {
	entity string
	fields map[string]field[T]
	search []string
}

func NewSchema[T any](entity string) *Schema[T] {
	return &Schema[T]{entity: entity, fields: map[string]field[T]{}}
}

func (s *Schema[T]) Text(name string, get func(T) string) *Schema[T] {
	s.fields[name] = field[T]{kind: Text, text: get}
	return s
}

func (s *Schema[T]) Category(name string, get func(T) string) *Schema[T] {
	s.fields[name] = field[T]{kind: Category, text: get}
	return s
}

func (s *Schema[T]) Number(name string, get func(T) float64) *Schema[T] {
	s.fields[name] = field[T]{kind: Number, number: get}
	return s
}

func (s *Schema[T]) Time(name string, get func(T) time.Time) *Schema[T] {
	s.fields[name] = field[T]{kind: Time, at: get}
	return s
}

// Search menentukan field teks/kategori yang dipakai free-text match.
func (s *Schema[T]) Search(names ...string) *Schema[T] {
	s.search = append([]string(nil), names...)
	return s
}

func (s *Schema[T]) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

/* =========================
   Specs
========================= */

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection: kosong = asc, asc/desc case-insensitive.
// Nilai lain dikembalikan apa adanya supaya Run menolaknya.
func ParseDirection(s string) Direction {
	raw := strings.TrimSpace(s)
	switch {
	case raw == "", strings.EqualFold(raw, string(Asc)):
		return Asc
	case strings.EqualFold(raw, string(Desc)):
		return Desc
	}
	return Direction(raw)
}

// FilterSpec adalah konjungsi predikat. Nilai kosong = match all.
type FilterSpec struct {
	Text   string
	Equals map[string]string
}

type SortSpec struct {
	Field     string
	Direction Direction
}

/* =========================
   Run
========================= */

// Run memfilter lalu mengurutkan records tanpa memodifikasi input.
func Run[T any](records []T, schema *Schema[T], filter FilterSpec, order SortSpec) ([]T, error) {
	if err := schema.check(filter, order); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		if schema.matches(r, filter) {
			out = append(out, r)
		}
	}

	if strings.TrimSpace(order.Field) == "" {
		return out, nil
	}
	f := schema.fields[order.Field]
	desc := order.Direction == Desc
	sort.SliceStable(out, func(i, j int) bool {
		c := f.compare(out[i], out[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out, nil
}

// Filter adalah Run tanpa sorting.
func Filter[T any](records []T, schema *Schema[T], filter FilterSpec) ([]T, error) {
	return Run(records, schema, filter, SortSpec{})
}

func (s *Schema[T]) check(filter FilterSpec, order SortSpec) error {
	for name, want := range filter.Equals {
		if strings.TrimSpace(want) == "" {
			continue
		}
		f, ok := s.fields[name]
		if !ok {
			return apperror.ValidationField(s.entity, name, "unknown filter field")
		}
		if f.kind != Category {
			return apperror.ValidationField(s.entity, name, "not a categorical field")
		}
	}
	if name := strings.TrimSpace(order.Field); name != "" {
		if _, ok := s.fields[name]; !ok {
			return apperror.ValidationField(s.entity, name, "unknown sort field")
		}
	}
	if order.Direction != "" && order.Direction != Asc && order.Direction != Desc {
		return apperror.ValidationField(s.entity, "order", "must be asc or desc")
	}
	return nil
}

func (s *Schema[T]) matches(r T, filter FilterSpec) bool {
	for name, want := range filter.Equals {
		want = strings.TrimSpace(want)
		if want == "" {
			continue
		}
		if s.fields[name].text(r) != want {
			return false
		}
	}

	needle := strings.ToLower(strings.TrimSpace(filter.Text))
	if needle == "" {
		return true
	}
	for _, name := range s.search {
		f, ok := s.fields[name]
		if !ok || f.text == nil {
			continue
		}
		if strings.Contains(strings.ToLower(f.text(r)), needle) {
			return true
		}
	}
	return false
}

func (f field[T]) compare(a, b T) int {
	switch f.kind {
	case Number:
		x, y := f.number(a), f.number(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case Time:
		return f.at(a).Compare(f.at(b))
	default:
		return strings.Compare(strings.ToLower(f.text(a)), strings.ToLower(f.text(b)))
	}
}
