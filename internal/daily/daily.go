// internal/daily/daily.go
//
// Deterministic daily secret: everybody playing on the same UTC date at the
// same level gets the same combination.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/digitmind/internal/digits"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Index returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func Index(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Secret returns the day's combination at level along with its index in
// the lexicographic universe. The caller validates level.
func Secret(date time.Time, salt string, level int) (digits.Combination, int) {
	all := digits.Generate(level)
	idx := Index(date, salt, len(all))
	return all[idx], idx
}
