package iso8583

import (
	"fmt"
	"strings"
)

// hexReader walks the hex text of a message one nibble at a time.
type hexReader struct {
	src string
	pos int
}

func newHexReader(s string) *hexReader {
	return &hexReader{src: s}
}

// next consumes n hex digits.
func (r *hexReader) next(n int) (string, error) {
	if n < 0 || r.pos+n > len(r.src) {
		return "", fmt.Errorf("%w: need %d hex digits at offset %d, %d left",
			ErrTruncated, n, r.pos, r.remaining())
	}
	s := r.src[r.pos : r.pos+n]
	r.pos += n
	return s, nil
}

func (r *hexReader) remaining() int {
	return len(r.src) - r.pos
}

func (r *hexReader) rest() string {
	return r.src[r.pos:]
}

// normalizeHex upper cases s and rejects anything that is not a hex digit.
func normalizeHex(s string) (string, error) {
	s = strings.ToUpper(s)
	if i := strings.IndexFunc(s, func(r rune) bool {
		return !isHexDigit(r)
	}); i >= 0 {
		return "", fmt.Errorf("%w: %q is not a hex digit (offset %d)", ErrInvalidValue, s[i], i)
	}
	return s, nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') || (r >= 'a' && r <= 'f')
}
