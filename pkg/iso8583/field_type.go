package iso8583

import (
	"fmt"
	"strings"

	"github.com/gregLibert/iso8583/pkg/tlv"
	"go.uber.org/zap"
)

// FieldType binds one index to a length prefix and a value encoding, with the
// alignment, pad character and charset used to fit values to the wire.
// A FieldType is a value: options return modified copies and nothing mutates
// it once it is registered in a Layout.
type FieldType struct {
	index   Index
	length  LengthEncoding
	value   ValueEncoding
	size    int // declared logical length, fixed fields only
	align   Align
	pad     rune
	charset Charset
	sub     *Layout
	tlv     bool
}

// TypeOption customises a FieldType.
type TypeOption func(*FieldType)

// WithAlign sets the alignment. The default is AlignLeft.
func WithAlign(a Align) TypeOption {
	return func(t *FieldType) { t.align = a }
}

// WithPad sets the pad character. The default is '0'.
func WithPad(r rune) TypeOption {
	return func(t *FieldType) { t.pad = r }
}

// WithCharset sets the charset of an ASCII field. The default is GBK.
func WithCharset(cs Charset) TypeOption {
	return func(t *FieldType) { t.charset = cs }
}

// WithSubLayout declares positional sub-elements, addressed as "60.1", "60.2"...
func WithSubLayout(l *Layout) TypeOption {
	return func(t *FieldType) { t.sub = l }
}

// WithTLV declares that the value is a list of TLV objects, addressed as "55.9F26".
func WithTLV() TypeOption {
	return func(t *FieldType) { t.tlv = true }
}

// FixedField declares a field without length prefix whose logical length is size:
// digits for BCD, bytes for HEX and ASCII.
func FixedField(index Index, size int, value ValueEncoding, opts ...TypeOption) FieldType {
	return newFieldType(index, LengthFixed, value, size, opts)
}

// VariableField declares a field with a length prefix.
func VariableField(index Index, length LengthEncoding, value ValueEncoding, opts ...TypeOption) FieldType {
	return newFieldType(index, length, value, 0, opts)
}

func newFieldType(index Index, length LengthEncoding, value ValueEncoding, size int, opts []TypeOption) FieldType {
	t := FieldType{
		index:   index,
		length:  length,
		value:   value,
		size:    size,
		align:   AlignLeft,
		pad:     '0',
		charset: GBK,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func (t FieldType) Index() Index                   { return t.index }
func (t FieldType) LengthEncoding() LengthEncoding { return t.length }
func (t FieldType) ValueEncoding() ValueEncoding   { return t.value }
func (t FieldType) Align() Align                   { return t.align }
func (t FieldType) Pad() rune                      { return t.pad }
func (t FieldType) Charset() Charset               { return t.charset }
func (t FieldType) SubLayout() *Layout             { return t.sub }
func (t FieldType) IsTLV() bool                    { return t.tlv }

// Size returns the declared length of a fixed field, 0 for variable ones.
func (t FieldType) Size() int {
	return t.size
}

// IsFixed reports whether the field has no length prefix.
func (t FieldType) IsFixed() bool {
	return t.length == LengthFixed
}

func (t FieldType) String() string {
	if t.IsFixed() {
		return fmt.Sprintf("%s[FIXED %d][%s]", t.index, t.size, t.value)
	}
	return fmt.Sprintf("%s[%s][%s]", t.index, t.length, t.value)
}

// Equal compares every attribute, nested layouts included.
func (t FieldType) Equal(o FieldType) bool {
	if t.index != o.index || t.length != o.length || t.value != o.value ||
		t.size != o.size || t.align != o.align || t.pad != o.pad ||
		t.tlv != o.tlv || !t.charset.equal(o.charset) {
		return false
	}
	if t.sub == nil || o.sub == nil {
		return t.sub == o.sub
	}
	return t.sub.Equal(o.sub)
}

func (t FieldType) padding() Padding {
	return Padding{Align: t.align, Pad: t.pad, Charset: t.charset}
}

func (t FieldType) validate() error {
	switch {
	case t.length == nil:
		return fmt.Errorf("%w: no length encoding", ErrConfig)
	case t.value == nil:
		return fmt.Errorf("%w: no value encoding", ErrConfig)
	case t.IsFixed() && t.size <= 0:
		return fmt.Errorf("%w: fixed field needs a positive size, got %d", ErrConfig, t.size)
	case !t.IsFixed() && t.size != 0:
		return fmt.Errorf("%w: variable field cannot declare a size", ErrConfig)
	case t.align < AlignLeft || t.align > AlignNone:
		return fmt.Errorf("%w: alignment %d", ErrConfig, t.align)
	case t.value != ASCII && !isHexDigit(t.pad):
		return fmt.Errorf("%w: pad %q is not a hex digit", ErrConfig, t.pad)
	case t.tlv && t.sub != nil:
		return fmt.Errorf("%w: a field is either TLV or positional, not both", ErrConfig)
	case t.tlv && t.value != HEX:
		return fmt.Errorf("%w: TLV fields must be HEX, got %s", ErrConfig, t.value)
	case t.sub != nil && !t.sub.positional:
		return fmt.Errorf("%w: nested layout must come from NewSubLayout", ErrConfig)
	}
	return nil
}

// EncodeField renders a logical value into a Field.
//
// A short value is padded according to the alignment. An empty value on a
// variable field gives a zero length prefix and no value digits; on a fixed
// field it gives a field full of padding.
func (t FieldType) EncodeField(value string) (Field, error) {
	return t.encode(value, "")
}

func (t FieldType) encode(value, prefix string) (Field, error) {
	path := joinPath(prefix, t.index.key())
	if err := t.validate(); err != nil {
		return Field{}, fieldError(path, err)
	}

	value, err := t.value.normalize(value)
	if err != nil {
		return Field{}, fieldError(path, err)
	}

	n, err := t.value.Length(value, t.charset)
	if err != nil {
		return Field{}, fieldError(path, err)
	}

	var lengthHex, valueHex string
	if t.IsFixed() {
		if n > t.size {
			return Field{}, fieldError(path, fmt.Errorf("%w: length %d exceeds fixed size %d", ErrOverflow, n, t.size))
		}
		n = t.size
	} else {
		if lengthHex, err = t.length.Encode(n); err != nil {
			return Field{}, fieldError(path, err)
		}
	}

	if n > 0 {
		if valueHex, err = t.value.Encode(value, n, t.padding()); err != nil {
			return Field{}, fieldError(path, err)
		}
		// Keep the value a decoder would see, padding included.
		if value, err = t.value.Decode(valueHex, n, t.padding()); err != nil {
			return Field{}, fieldError(path, err)
		}
	}

	f := Field{
		ftype:     t,
		index:     t.index,
		path:      path,
		length:    n,
		value:     value,
		lengthHex: lengthHex,
		valueHex:  valueHex,
	}
	if f.children, err = t.expand(f, zap.NewNop()); err != nil {
		return Field{}, fieldError(path, err)
	}
	return f, nil
}

// DecodeFieldHex reads one field from the start of s and returns it with the
// unread remainder.
func (t FieldType) DecodeFieldHex(s string) (Field, string, error) {
	s, err := normalizeHex(s)
	if err != nil {
		return Field{}, "", fieldError(t.index.key(), err)
	}
	r := newHexReader(s)
	f, err := t.decode(r, "", zap.NewNop())
	if err != nil {
		return Field{}, "", err
	}
	return f, r.rest(), nil
}

// DecodeField is DecodeFieldHex over bytes. The field must end on a byte boundary.
func (t FieldType) DecodeField(data []byte) (Field, []byte, error) {
	f, rest, err := t.DecodeFieldHex(tlv.EncodeHex(data))
	if err != nil {
		return Field{}, nil, err
	}
	if len(rest)%2 != 0 {
		return Field{}, nil, fieldError(f.path, fmt.Errorf("%w: field ends on a half byte", ErrInvalidValue))
	}
	b, _ := tlv.DecodeHex(rest)
	return f, b, nil
}

func (t FieldType) decode(r *hexReader, prefix string, logger *zap.Logger) (Field, error) {
	path := joinPath(prefix, t.index.key())
	if err := t.validate(); err != nil {
		return Field{}, fieldError(path, err)
	}

	n := t.size
	var lengthHex string
	if !t.IsFixed() {
		var err error
		if lengthHex, err = r.next(2 * t.length.Width()); err != nil {
			return Field{}, fieldError(path, fmt.Errorf("length prefix: %w", err))
		}
		if n, err = t.length.Decode(lengthHex); err != nil {
			return Field{}, fieldError(path, err)
		}
	}

	valueHex, err := r.next(t.value.HexCount(n, t.align))
	if err != nil {
		return Field{}, fieldError(path, err)
	}
	value, err := t.value.Decode(valueHex, n, t.padding())
	if err != nil {
		return Field{}, fieldError(path, err)
	}

	f := Field{
		ftype:     t,
		index:     t.index,
		path:      path,
		length:    n,
		value:     value,
		lengthHex: lengthHex,
		valueHex:  valueHex,
	}
	if f.children, err = t.expand(f, logger); err != nil {
		return Field{}, fieldError(path, err)
	}
	return f, nil
}

// expand decodes the children of a field declared TLV or positional.
func (t FieldType) expand(f Field, logger *zap.Logger) ([]Field, error) {
	switch {
	case t.tlv:
		objs, err := tlv.ParseHex(f.value)
		if err != nil {
			return nil, tlvError(err)
		}
		logger.Debug("expanded TLV field", zap.String("path", f.path), zap.Int("objects", len(objs)))
		return tlvChildren(f, objs), nil

	case t.sub != nil:
		src := f.valueHex
		if t.value == BCD {
			src = f.value
		}
		children, err := t.sub.decodePositional(src, f.path, logger)
		if err != nil {
			return nil, err
		}
		logger.Debug("expanded sub-elements", zap.String("path", f.path), zap.Int("children", len(children)))
		return children, nil
	}
	return nil, nil
}

func tlvChildren(parent Field, objs []tlv.Object) []Field {
	children := make([]Field, 0, len(objs))
	for _, o := range objs {
		valueHex := o.HexValue()
		encoded, _ := tlv.EncodeToHex([]tlv.Object{o})
		tagAndLength := strings.TrimSuffix(encoded, valueHex)
		children = append(children, Field{
			ftype:     tlvObjectType,
			index:     parent.index,
			tag:       o.Tag,
			path:      joinPath(parent.path, o.Tag),
			length:    o.Len(),
			value:     valueHex,
			lengthHex: tagAndLength,
			valueHex:  valueHex,
		})
	}
	return children
}

// tlvObjectType describes the children of a TLV field.
var tlvObjectType = FieldType{length: tlvLength{}, value: HEX, align: AlignLeft, pad: '0', charset: GBK}

// tlvLength labels TLV children in reports; their prefix is the tag and BER length.
type tlvLength struct{}

func (tlvLength) String() string  { return "TLV" }
func (tlvLength) Width() int      { return 0 }
func (tlvLength) Max() int        { return tlv.MaxValueLength }
func (tlvLength) lengthEncoding() {}

func (tlvLength) Encode(int) (string, error) {
	return "", fmt.Errorf("%w: TLV lengths are written with their tag", ErrUnsupported)
}

func (tlvLength) Decode(string) (int, error) {
	return 0, fmt.Errorf("%w: TLV lengths are read with their tag", ErrUnsupported)
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
