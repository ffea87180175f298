package iso8583

import (
	"strings"

	"github.com/gregLibert/iso8583/pkg/tlv"
)

// Field is one encoded or decoded element. It is immutable: every accessor
// returns a copy and Message replaces Fields rather than changing them.
type Field struct {
	ftype     FieldType
	index     Index
	tag       string // TLV children only
	path      string
	length    int
	value     string
	lengthHex string
	valueHex  string
	children  []Field
}

// Index returns the element index. TLV children report their parent's index.
func (f Field) Index() Index { return f.index }

// Tag returns the TLV tag of a TLV child, "" otherwise.
func (f Field) Tag() string { return f.tag }

// Path returns the dotted address of the element: "4", "MTI", "60.2", "55.9F26".
func (f Field) Path() string { return f.path }

// Type returns the FieldType that produced the field.
func (f Field) Type() FieldType { return f.ftype }

// Value returns the logical value, padding included for fixed fields.
func (f Field) Value() string { return f.value }

// Length returns the logical length: digits for BCD, bytes otherwise.
func (f Field) Length() int { return f.length }

// LengthHex returns the wire length prefix, "" for fixed fields.
func (f Field) LengthHex() string { return f.lengthHex }

// ValueHex returns the wire value, padding included.
func (f Field) ValueHex() string { return f.valueHex }

// Hex returns the length prefix followed by the value.
func (f Field) Hex() string {
	return f.lengthHex + f.valueHex
}

// Bytes returns Hex as bytes. Half byte sub-elements are padded with a trailing zero nibble.
func (f Field) Bytes() []byte {
	h := f.Hex()
	if len(h)%2 != 0 {
		h += "0"
	}
	b, _ := tlv.DecodeHex(h)
	return b
}

// Children returns the sub-elements of a positional or TLV field, in wire order.
func (f Field) Children() []Field {
	if len(f.children) == 0 {
		return nil
	}
	out := make([]Field, len(f.children))
	copy(out, f.children)
	return out
}

// Child finds a direct sub-element by key: "2" for positional children, a tag for TLV ones.
func (f Field) Child(key string) (Field, bool) {
	for _, c := range f.children {
		if c.key() == key || (c.tag != "" && strings.EqualFold(c.tag, key)) {
			return c, true
		}
	}
	return Field{}, false
}

func (f Field) key() string {
	if f.tag != "" {
		return f.tag
	}
	return f.index.key()
}

// TLV returns the children of a TLV field as objects.
func (f Field) TLV() []tlv.Object {
	if !f.ftype.tlv {
		return nil
	}
	objs := make([]tlv.Object, 0, len(f.children))
	for _, c := range f.children {
		v, _ := tlv.DecodeHex(c.valueHex)
		objs = append(objs, tlv.New(c.tag, v))
	}
	return objs
}

// Equal reports whether both fields have the same index, value and type.
func (f Field) Equal(o Field) bool {
	return f.index == o.index && f.tag == o.tag && f.value == o.value && f.ftype.Equal(o.ftype)
}
