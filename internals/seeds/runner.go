package seeds

import (
	"fmt"
	"time"

	accessService "faceattend_backend/internals/features/access/logs/service"
	recordService "faceattend_backend/internals/features/attendance/records/service"
	sessionService "faceattend_backend/internals/features/attendance/sessions/service"
	studentService "faceattend_backend/internals/features/attendance/students/service"
	"faceattend_backend/internals/seeds/access"
	"faceattend_backend/internals/seeds/attendance"
)

type Targets struct {
	Sessions *sessionService.Service
	Students *studentService.Directory
	Ledger   *recordService.Ledger
	Access   *accessService.Log
}

// RunAllSeeds memuat data demo ke service in-memory. Perangkat di-seed terpisah
// (lihat seeds/devices) karena bergantung pada source yang dipilih.
func RunAllSeeds(t Targets, anchor time.Time) error {
	res, err := attendance.Seed(t.Sessions, t.Students, t.Ledger, anchor)
	if err != nil {
		return fmt.Errorf("seed attendance: %w", err)
	}

	//* Access log
	if err := access.SeedAccessEvents(t.Access, res.Students, anchor); err != nil {
		return fmt.Errorf("seed access: %w", err)
	}
	return nil
}
