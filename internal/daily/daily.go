// internal/daily/daily.go
//
// Daily challenge seeding.
// Every player who starts the daily challenge on the same UTC date gets the
// same deal: the session seed is derived from HMAC-SHA256(salt, YYYY-MM-DD).

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"
)

const layout = "2006-01-02"

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(layout)
}

// ParseKey validates a YYYY-MM-DD key.
func ParseKey(s string) (time.Time, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("daily: bad date %q: %w", s, err)
	}
	return t, nil
}

// Seed returns the deterministic seed for the date of t.
func Seed(t time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	sum := h.Sum(nil)
	// first 8 bytes, sign bit cleared so seeds print as positive numbers
	return int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
}
