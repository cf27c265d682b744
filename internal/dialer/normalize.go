package dialer

import (
	"strings"
	"unicode"
)

// NormalizePhoneNumber 去除空白并剥离国家码前缀。
// "+91 98765 43210" → "9876543210"
func NormalizePhoneNumber(raw, countryCode string) string {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	if countryCode == "" {
		return compact
	}
	return strings.TrimPrefix(compact, countryCode)
}
