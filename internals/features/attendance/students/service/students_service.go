// file: internals/features/attendance/students/service/students_service.go
package service

import (
	"strings"
	"sync"

	"faceattend_backend/internals/features/attendance/students/model"
	"faceattend_backend/internals/helpers/apperror"
	"faceattend_backend/internals/helpers/query"

	"github.com/google/uuid"
)

var Schema = query.NewSchema[model.StudentModel]("student").
	Text("id", func(m model.StudentModel) string { return m.StudentID.String() }).
	Text("identifier", func(m model.StudentModel) string { return m.StudentIdentifier }).
	Text("name", func(m model.StudentModel) string { return m.StudentName }).
	Text("email", func(m model.StudentModel) string { return m.StudentEmail }).
	Search("name", "identifier")

// Directory menyimpan pool mahasiswa in-memory.
type Directory struct {
	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]model.StudentModel
}

func NewDirectory() *Directory {
	return &Directory{byID: map[uuid.UUID]model.StudentModel{}}
}

func (d *Directory) Add(m model.StudentModel) (model.StudentModel, error) {
	m.StudentName = strings.TrimSpace(m.StudentName)
	m.StudentIdentifier = strings.TrimSpace(m.StudentIdentifier)
	if m.StudentName == "" {
		return m, apperror.ValidationField("student", "name", "required")
	}
	if m.StudentIdentifier == "" {
		return m, apperror.ValidationField("student", "identifier", "required")
	}
	if m.StudentID == uuid.Nil {
		m.StudentID = uuid.New()
	}
	m.StudentCourses = append([]string(nil), m.StudentCourses...)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.byID[m.StudentID]; dup {
		return m, apperror.ValidationField("student", "id", "already exists")
	}
	d.byID[m.StudentID] = m
	d.order = append(d.order, m.StudentID)
	return m, nil
}

func (d *Directory) Get(id uuid.UUID) (model.StudentModel, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.byID[id]
	if !ok {
		return model.StudentModel{}, apperror.NotFound("student", id.String())
	}
	return m, nil
}

func (d *Directory) All() []model.StudentModel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.StudentModel, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.byID[id])
	}
	return out
}

// Enrolled: mahasiswa yang mengambil course tsb. course kosong = semua.
func (d *Directory) Enrolled(course string) []model.StudentModel {
	all := d.All()
	if strings.TrimSpace(course) == "" {
		return all
	}
	out := make([]model.StudentModel, 0, len(all))
	for _, m := range all {
		if m.EnrolledIn(course) {
			out = append(out, m)
		}
	}
	return out
}

// Search: free-text pada nama & NIM, urut nama.
func (d *Directory) Search(text, course string) ([]model.StudentModel, error) {
	return query.Run(d.Enrolled(course), Schema,
		query.FilterSpec{Text: text},
		query.SortSpec{Field: "name", Direction: query.Asc},
	)
}
