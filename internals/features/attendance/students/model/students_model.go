package model

import "github.com/google/uuid"

// StudentModel: subjek verifikasi (pool mahasiswa).
type StudentModel struct {
	StudentID           uuid.UUID `json:"student_id"`
	StudentIdentifier   string    `json:"student_identifier"` // NIM
	StudentName         string    `json:"student_name"`
	StudentEmail        string    `json:"student_email,omitempty"`
	StudentCourses      []string  `json:"student_courses"`
	StudentFaceEnrolled bool      `json:"student_face_enrolled"`
}

func (m StudentModel) EnrolledIn(course string) bool {
	for _, c := range m.StudentCourses {
		if c == course {
			return true
		}
	}
	return false
}
