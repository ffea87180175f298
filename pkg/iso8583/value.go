package iso8583

import (
	"fmt"
	"strings"

	"github.com/gregLibert/iso8583/pkg/tlv"
)

// Value encodings.
//
// Every encoding maps a logical value (what the caller reads and writes) to
// its wire form, written as upper case hex text:
//
//   - BCD: packed decimal. The hex text is the value itself, one digit per
//     nibble. An odd digit count is padded to a whole byte unless the field
//     is aligned NONE, which allows half byte sub-elements.
//   - HEX: raw binary. The logical value is already its hex text; the
//     logical length is a byte count.
//   - ASCII: text in the field charset. The logical length is the number of
//     encoded bytes, not the number of characters.

// Align places a short value inside its field and says which side the
// padding is stripped from when decoding.
type Align int

const (
	// AlignLeft keeps data in the leading positions and pads on the right.
	AlignLeft Align = iota
	// AlignRight keeps data in the trailing positions and pads on the left.
	AlignRight
	// AlignNone refuses to pad: the value must fill its field exactly.
	AlignNone
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "LEFT"
	case AlignRight:
		return "RIGHT"
	case AlignNone:
		return "NONE"
	default:
		return fmt.Sprintf("Align(%d)", int(a))
	}
}

// ParseAlign reads LEFT, RIGHT or NONE, in any case.
func ParseAlign(s string) (Align, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "LEFT":
		return AlignLeft, nil
	case "RIGHT":
		return AlignRight, nil
	case "NONE":
		return AlignNone, nil
	}
	return 0, fmt.Errorf("%w: alignment %q", ErrUnsupported, s)
}

// Padding groups the rules a value encoding needs to fit a value to its width.
type Padding struct {
	Align   Align
	Pad     rune
	Charset Charset
}

// ValueEncoding converts between a logical value and its hex wire form.
// The set of implementations is closed: BCD, HEX and ASCII.
type ValueEncoding interface {
	String() string

	// Length returns the logical length of v as a length prefix counts it.
	Length(v string, cs Charset) (int, error)
	// HexCount returns the number of hex digits a value of logical length n occupies.
	HexCount(n int, align Align) int
	// LengthFromHex returns the logical length carried by a wire value.
	LengthFromHex(h string) int
	// Encode renders v as exactly HexCount(n) hex digits, padding when short.
	Encode(v string, n int, p Padding) (string, error)
	// Decode turns HexCount(n) hex digits back into the logical value.
	Decode(h string, n int, p Padding) (string, error)

	normalize(v string) (string, error)
}

var (
	BCD   ValueEncoding = bcdValue{}
	HEX   ValueEncoding = hexValue{}
	ASCII ValueEncoding = asciiValue{}
)

// ParseValueEncoding reads BCD, HEX or ASCII, in any case.
func ParseValueEncoding(s string) (ValueEncoding, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BCD":
		return BCD, nil
	case "HEX", "BINARY":
		return HEX, nil
	case "ASCII":
		return ASCII, nil
	}
	return nil, fmt.Errorf("%w: value encoding %q", ErrUnsupported, s)
}

type bcdValue struct{}

func (bcdValue) String() string { return "BCD" }

func (bcdValue) Length(v string, _ Charset) (int, error) {
	return len(v), nil
}

func (bcdValue) HexCount(n int, align Align) int {
	if align == AlignNone || n%2 == 0 {
		return n
	}
	return n + 1
}

func (bcdValue) LengthFromHex(h string) int {
	return len(h)
}

func (e bcdValue) Encode(v string, n int, p Padding) (string, error) {
	h, err := e.normalize(v)
	if err != nil {
		return "", err
	}
	return pad(h, e.HexCount(n, p.Align), p.Align, string(p.Pad))
}

func (e bcdValue) Decode(h string, n int, p Padding) (string, error) {
	switch {
	case len(h) == n:
		return h, nil
	case len(h) < n:
		return "", fmt.Errorf("%w: %d digits expected, %d on the wire", ErrTruncated, n, len(h))
	}

	switch p.Align {
	case AlignLeft:
		return h[:n], nil
	case AlignRight:
		return h[len(h)-n:], nil
	default:
		return "", fmt.Errorf("%w: %d digits expected in %q and no alignment to strip from",
			ErrPadding, n, h)
	}
}

func (bcdValue) normalize(v string) (string, error) {
	return normalizeHex(v)
}

type hexValue struct{}

func (hexValue) String() string { return "HEX" }

func (e hexValue) Length(v string, _ Charset) (int, error) {
	if len(v)%2 != 0 {
		return 0, fmt.Errorf("%w: %d hex digits do not make whole bytes", ErrInvalidValue, len(v))
	}
	return len(v) / 2, nil
}

func (hexValue) HexCount(n int, _ Align) int {
	return 2 * n
}

func (hexValue) LengthFromHex(h string) int {
	return len(h) / 2
}

func (e hexValue) Encode(v string, n int, p Padding) (string, error) {
	h, err := e.normalize(v)
	if err != nil {
		return "", err
	}
	return pad(h, e.HexCount(n, p.Align), p.Align, string(p.Pad))
}

func (hexValue) Decode(h string, _ int, _ Padding) (string, error) {
	return h, nil
}

func (hexValue) normalize(v string) (string, error) {
	return normalizeHex(v)
}

type asciiValue struct{}

func (asciiValue) String() string { return "ASCII" }

func (asciiValue) Length(v string, cs Charset) (int, error) {
	b, err := cs.encode(v)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

func (asciiValue) HexCount(n int, _ Align) int {
	return 2 * n
}

func (asciiValue) LengthFromHex(h string) int {
	return len(h) / 2
}

func (e asciiValue) Encode(v string, n int, p Padding) (string, error) {
	b, err := p.Charset.encode(v)
	if err != nil {
		return "", err
	}
	unit, err := p.Charset.encode(string(p.Pad))
	if err != nil {
		return "", err
	}
	return pad(tlv.EncodeHex(b), e.HexCount(n, p.Align), p.Align, tlv.EncodeHex(unit))
}

func (asciiValue) Decode(h string, _ int, p Padding) (string, error) {
	b, err := tlv.DecodeHex(h)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return p.Charset.decode(b)
}

func (asciiValue) normalize(v string) (string, error) {
	return v, nil
}

// pad fits h to target hex digits. A longer value is never truncated.
func pad(h string, target int, align Align, unit string) (string, error) {
	switch {
	case len(h) > target:
		return "", fmt.Errorf("%w: %d hex digits do not fit in %d", ErrOverflow, len(h), target)
	case len(h) == target:
		return h, nil
	}

	if align == AlignNone {
		return "", fmt.Errorf("%w: %d hex digits short of %d with alignment NONE",
			ErrPadding, target-len(h), target)
	}
	if unit == "" {
		return "", fmt.Errorf("%w: empty pad character", ErrPadding)
	}

	fill := strings.Repeat(unit, (target-len(h)+len(unit)-1)/len(unit))
	var padded string
	if align == AlignRight {
		padded = fill + h
	} else {
		padded = h + fill
	}

	if len(padded) != target {
		return "", fmt.Errorf("%w: pad %q gives %d hex digits instead of %d",
			ErrPadding, unit, len(padded), target)
	}
	return padded, nil
}
