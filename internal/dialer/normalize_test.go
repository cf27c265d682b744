package dialer

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		countryCode string
		want        string
	}{
		{"spaces and prefix", "+91 98765 43210", "+91", "9876543210"},
		{"tabs and newlines", "\t98765\n43210 ", "+91", "9876543210"},
		{"no prefix", "9876543210", "+91", "9876543210"},
		{"prefix only stripped at start", "98765+9143210", "+91", "98765+9143210"},
		{"empty country code", "+1 555 0100", "", "+15550100"},
		{"other country code", "+44 20 7946 0958", "+44", "2079460958"},
		{"blank", "   ", "+91", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhoneNumber(tt.raw, tt.countryCode))
		})
	}
}

func TestNormalizePhoneNumber_NeverContainsWhitespace(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.String().Draw(t, "raw")
		out := NormalizePhoneNumber(raw, "+91")

		if strings.IndexFunc(out, unicode.IsSpace) >= 0 {
			t.Fatalf("normalized %q still contains whitespace: %q", raw, out)
		}
	})
}

func TestNormalizePhoneNumber_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		digits := rapid.StringMatching(`[0-9 ]{0,16}`).Draw(t, "digits")
		once := NormalizePhoneNumber("+91"+digits, "+91")
		assert.Equal(t, once, NormalizePhoneNumber(once, "+91"))
	})
}
