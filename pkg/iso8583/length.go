package iso8583

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gregLibert/iso8583/pkg/tlv"
)

// Length prefixes.
//
// FIXED fields carry no prefix. The variable classes carry the logical length
// of the value as decimal digits:
//
//	LLVAR         1 byte packed decimal    "27"       max 99
//	LLLVAR        2 bytes packed decimal   "0145"     max 9999
//	LLLLVAR       3 bytes packed decimal   "000145"   max 999999
//	LLVAR_ASCII   2 ASCII digits           "3237"     max 99
//	LLLVAR_ASCII  3 ASCII digits           "313435"   max 999

// LengthEncoding renders and parses the length prefix of a field.
// The set of implementations is closed.
type LengthEncoding interface {
	String() string

	// Width is the number of prefix bytes, 0 for fixed fields.
	Width() int
	// Max is the largest length the prefix can carry.
	Max() int
	// Encode renders n as the prefix hex text.
	Encode(n int) (string, error)
	// Decode parses Width()*2 hex digits back into a length.
	Decode(h string) (int, error)

	lengthEncoding()
}

var (
	LengthFixed       LengthEncoding = fixedLength{}
	LengthLLVAR       LengthEncoding = bcdLength{name: "LLVAR", width: 1}
	LengthLLLVAR      LengthEncoding = bcdLength{name: "LLLVAR", width: 2}
	LengthLLLLVAR     LengthEncoding = bcdLength{name: "LLLLVAR", width: 3}
	LengthLLVARASCII  LengthEncoding = asciiLength{name: "LLVAR_ASCII", width: 2}
	LengthLLLVARASCII LengthEncoding = asciiLength{name: "LLLVAR_ASCII", width: 3}
)

var lengthEncodings = []LengthEncoding{
	LengthFixed, LengthLLVAR, LengthLLLVAR, LengthLLLLVAR, LengthLLVARASCII, LengthLLLVARASCII,
}

// ParseLengthEncoding reads a length class by name ("FIXED", "LLVAR", "lllvar_ascii").
func ParseLengthEncoding(s string) (LengthEncoding, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, le := range lengthEncodings {
		if le.String() == name {
			return le, nil
		}
	}
	return nil, fmt.Errorf("%w: length encoding %q", ErrUnsupported, s)
}

type fixedLength struct{}

func (fixedLength) String() string  { return "FIXED" }
func (fixedLength) Width() int      { return 0 }
func (fixedLength) Max() int        { return 0 }
func (fixedLength) lengthEncoding() {}

func (fixedLength) Encode(int) (string, error) {
	return "", nil
}

func (fixedLength) Decode(string) (int, error) {
	return 0, fmt.Errorf("%w: fixed fields have no length prefix", ErrUnsupported)
}

type bcdLength struct {
	name  string
	width int
}

func (l bcdLength) String() string { return l.name }
func (l bcdLength) Width() int     { return l.width }
func (l bcdLength) Max() int       { return pow10(2*l.width) - 1 }
func (bcdLength) lengthEncoding()  {}

func (l bcdLength) Encode(n int) (string, error) {
	if n < 0 || n > l.Max() {
		return "", fmt.Errorf("%w: length %d exceeds %s capacity %d", ErrOverflow, n, l.name, l.Max())
	}
	return fmt.Sprintf("%0*d", 2*l.width, n), nil
}

func (l bcdLength) Decode(h string) (int, error) {
	if len(h) != 2*l.width {
		return 0, fmt.Errorf("%w: %s prefix needs %d hex digits, got %d", ErrTruncated, l.name, 2*l.width, len(h))
	}
	return parseDecimal(l.name, h)
}

type asciiLength struct {
	name  string
	width int
}

func (l asciiLength) String() string { return l.name }
func (l asciiLength) Width() int     { return l.width }
func (l asciiLength) Max() int       { return pow10(l.width) - 1 }
func (asciiLength) lengthEncoding()  {}

func (l asciiLength) Encode(n int) (string, error) {
	if n < 0 || n > l.Max() {
		return "", fmt.Errorf("%w: length %d exceeds %s capacity %d", ErrOverflow, n, l.name, l.Max())
	}
	return tlv.EncodeHex([]byte(fmt.Sprintf("%0*d", l.width, n))), nil
}

func (l asciiLength) Decode(h string) (int, error) {
	b, err := tlv.DecodeHex(h)
	if err != nil || len(b) != l.width {
		return 0, fmt.Errorf("%w: %s prefix needs %d bytes, got %q", ErrTruncated, l.name, l.width, h)
	}
	return parseDecimal(l.name, string(b))
}

func parseDecimal(name, digits string) (int, error) {
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %s prefix %q is not decimal", ErrInvalidValue, name, digits)
		}
	}
	return strconv.Atoi(digits)
}

func pow10(n int) int {
	p := 1
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
