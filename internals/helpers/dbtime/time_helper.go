// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"log"
	"strings"
	"sync"
	"time"
)

var (
	locMu sync.RWMutex
	loc   = time.UTC
)

// SetLocation memasang timezone konsol (mis. "Asia/Jakarta"). Gagal → tetap UTC.
func SetLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	l, err := time.LoadLocation(name)
	if err != nil || name == "" {
		log.Printf("⚠️ timezone %q tidak dikenal, pakai UTC", name)
		l = time.UTC
	}
	locMu.Lock()
	loc = l
	locMu.Unlock()
	return l
}

func Location() *time.Location {
	locMu.RLock()
	defer locMu.RUnlock()
	return loc
}

// InConsole mengonversi waktu ke timezone konsol. Zero time dikembalikan apa adanya.
func InConsole(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(Location())
}

func NowInConsole() time.Time { return time.Now().In(Location()) }

// ParseDate membaca "YYYY-MM-DD" sebagai tengah malam di timezone konsol.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), Location())
}
