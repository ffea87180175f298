// Package tlv handles the tag-length-value structures carried inside ISO 8583
// data elements, typically the EMV chip data of field 55.
//
// Two layers are provided:
//   - a strict flat codec (Parse, Encode) that reproduces the wire bytes exactly:
//     tags of one or two bytes, lengths in short form or in the 0x81 / 0x82 long forms;
//   - a struct mapping layer (Unmarshal, Marshal) built on github.com/moov-io/bertlv
//     for templates that need constructed tags.
package tlv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gregLibert/iso8583/pkg/bits"
)

var (
	// ErrTruncated is returned when the input ends inside a tag, a length or a value.
	ErrTruncated = errors.New("tlv: truncated data")
	// ErrLengthForm is returned for a length byte other than 0x00-0x7F, 0x81 or 0x82,
	// and for a long form that a shorter form could have carried.
	ErrLengthForm = errors.New("tlv: unsupported length form")
	// ErrValueTooLong is returned when a value does not fit in the 0x82 form.
	ErrValueTooLong = errors.New("tlv: value too long")
	// ErrInvalidTag is returned when a tag cannot be serialised as one or two bytes.
	ErrInvalidTag = errors.New("tlv: invalid tag")
)

// MaxValueLength is the largest value the 0x82 length form can describe.
const MaxValueLength = 0xFFFF

// Object is one tag-length-value entry. Its length is always len(Value).
type Object struct {
	Tag   string // upper case hex, "95" or "9F26"
	Value []byte
}

// New builds an Object, normalising the tag to upper case.
func New(tag string, value []byte) Object {
	return Object{Tag: strings.ToUpper(tag), Value: value}
}

// Len returns the decoded length of the value.
func (o Object) Len() int {
	return len(o.Value)
}

// HexValue returns the value as upper case hex.
func (o Object) HexValue() string {
	return EncodeHex(o.Value)
}

func (o Object) String() string {
	return fmt.Sprintf("[%s][%d][%s]", o.Tag, o.Len(), o.HexValue())
}

// Parse splits data into its TLV objects, preserving their order.
func Parse(data []byte) ([]Object, error) {
	var objs []Object
	pos := 0

	for pos < len(data) {
		start := pos

		tagLen := 1
		if bits.GetRange(data[pos], 5, 1) == 0x1F {
			tagLen = 2
		}
		if pos+tagLen > len(data) {
			return nil, fmt.Errorf("tag at offset %d: %w", start, ErrTruncated)
		}
		tag := EncodeHex(data[pos : pos+tagLen])
		pos += tagLen

		length, n, err := readLength(data[pos:])
		if err != nil {
			return nil, fmt.Errorf("tag %s at offset %d: %w", tag, start, err)
		}
		pos += n

		if pos+length > len(data) {
			return nil, fmt.Errorf("tag %s at offset %d: value needs %d bytes, %d left: %w",
				tag, start, length, len(data)-pos, ErrTruncated)
		}
		value := make([]byte, length)
		copy(value, data[pos:pos+length])
		pos += length

		objs = append(objs, Object{Tag: tag, Value: value})
	}

	return objs, nil
}

// ParseHex is Parse over a hex string.
func ParseHex(s string) ([]Object, error) {
	data, err := DecodeHex(s)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func readLength(data []byte) (length, consumed int, err error) {
	if len(data) == 0 {
		return 0, 0, ErrTruncated
	}

	first := data[0]
	switch {
	case !bits.IsSet(first, 8):
		return int(first), 1, nil
	case first == 0x81:
		if len(data) < 2 {
			return 0, 0, ErrTruncated
		}
		if data[1] < 0x80 {
			return 0, 0, fmt.Errorf("0x81 0x%02X is not minimal: %w", data[1], ErrLengthForm)
		}
		return int(data[1]), 2, nil
	case first == 0x82:
		if len(data) < 3 {
			return 0, 0, ErrTruncated
		}
		if data[1] == 0 {
			return 0, 0, fmt.Errorf("0x82 0x00 0x%02X is not minimal: %w", data[2], ErrLengthForm)
		}
		return int(data[1])<<8 | int(data[2]), 3, nil
	default:
		return 0, 0, fmt.Errorf("0x%02X: %w", first, ErrLengthForm)
	}
}

// Encode serialises objs in order, using the shortest length form for every value.
func Encode(objs []Object) ([]byte, error) {
	var out []byte

	for _, o := range objs {
		tag, err := encodeTag(o.Tag)
		if err != nil {
			return nil, err
		}
		length, err := encodeLength(len(o.Value))
		if err != nil {
			return nil, fmt.Errorf("tag %s: %w", o.Tag, err)
		}

		out = append(out, tag...)
		out = append(out, length...)
		out = append(out, o.Value...)
	}

	return out, nil
}

// EncodeToHex is Encode rendered as upper case hex.
func EncodeToHex(objs []Object) (string, error) {
	data, err := Encode(objs)
	if err != nil {
		return "", err
	}
	return EncodeHex(data), nil
}

func encodeTag(tag string) ([]byte, error) {
	raw, err := DecodeHex(tag)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidTag, tag, err)
	}

	switch len(raw) {
	case 1:
		if bits.GetRange(raw[0], 5, 1) == 0x1F {
			return nil, fmt.Errorf("%w %q: first byte announces a second one", ErrInvalidTag, tag)
		}
	case 2:
		if bits.GetRange(raw[0], 5, 1) != 0x1F {
			return nil, fmt.Errorf("%w %q: first byte does not announce a second one", ErrInvalidTag, tag)
		}
	default:
		return nil, fmt.Errorf("%w %q: must be one or two bytes", ErrInvalidTag, tag)
	}

	return raw, nil
}

func encodeLength(n int) ([]byte, error) {
	switch {
	case n < 0x80:
		return []byte{byte(n)}, nil
	case n <= 0xFF:
		return []byte{0x81, byte(n)}, nil
	case n <= MaxValueLength:
		return []byte{0x82, byte(n >> 8), byte(n)}, nil
	default:
		return nil, fmt.Errorf("%d bytes: %w", n, ErrValueTooLong)
	}
}

// Find returns the first object carrying tag.
func Find(objs []Object, tag string) (Object, bool) {
	for _, o := range objs {
		if strings.EqualFold(o.Tag, tag) {
			return o, true
		}
	}
	return Object{}, false
}
