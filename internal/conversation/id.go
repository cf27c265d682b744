package conversation

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const (
	idPrefix     = "conv_"
	idSuffixLen  = 9
	base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewID 生成 conv_<unix-ms>_<9 base36> 形式的会话 ID
func NewID(now time.Time) string {
	suffix := make([]byte, idSuffixLen)
	for i := range suffix {
		suffix[i] = base36Digits[rand.IntN(len(base36Digits))]
	}
	return idPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}
