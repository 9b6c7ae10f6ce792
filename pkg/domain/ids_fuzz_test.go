//go:build go1.18

package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// FuzzSanitizeID tests that sanitizing never panics on arbitrary input and
// that accepted values always satisfy the charset and length invariants.
func FuzzSanitizeID(f *testing.F) {
	f.Add("")
	f.Add("S-123")
	f.Add("course_GO101")
	f.Add(strings.Repeat("x", 121))
	f.Add("'; DROP TABLE enrollments;--")
	f.Add("../auth/validate")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("S-123\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		v, err := SanitizeID(input, "id")
		if err != nil {
			return
		}

		// Accepted values must round-trip unchanged.
		again, err2 := SanitizeID(v, "id")
		if err2 != nil {
			t.Errorf("accepted value failed round-trip: %v", err2)
		}
		if again != v {
			t.Error("round-trip changed value")
		}

		if len(v) == 0 || len(v) > MaxIDLength {
			t.Errorf("accepted value has invalid length %d", len(v))
		}
		if !utf8.ValidString(v) {
			t.Error("accepted value is not valid UTF-8")
		}
		for _, r := range v {
			if !isIDRune(r) {
				t.Errorf("accepted value contains invalid rune %q", r)
			}
		}
	})
}
