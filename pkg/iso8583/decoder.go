package iso8583

import (
	"fmt"

	"github.com/gregLibert/iso8583/pkg/bits"
	"github.com/gregLibert/iso8583/pkg/tlv"
	"go.uber.org/zap"
)

// Decoding algorithm:
//
//  1. Read every header element in wire order. An envelope length is only
//     read by DecodeWithLength.
//  2. Read the primary bitmap, then the secondary one when bit 1 flags it.
//  3. For each data element from 1 up, read it when its bit is set.
//  4. Anything left after the last element is an error.
//
// The resulting Message recomputes its bitmap and length; both must match
// what was read, so that re-encoding gives back the same bytes.

// Decoder turns wire data into Messages. It is safe for concurrent use.
type Decoder struct {
	layout *Layout
	logger *zap.Logger
}

// NewDecoder returns a decoder for layout.
func NewDecoder(layout *Layout, opts ...Option) *Decoder {
	o := newOptions(opts)
	return &Decoder{layout: layout, logger: o.logger}
}

// Decode reads a message without its envelope.
func (d *Decoder) Decode(data []byte) (*Message, error) {
	return d.DecodeHex(tlv.EncodeHex(data))
}

// DecodeHex reads the hex text of a message without its envelope.
func (d *Decoder) DecodeHex(s string) (*Message, error) {
	s, err := normalizeHex(s)
	if err != nil {
		return nil, fmt.Errorf("message: %w", err)
	}
	return d.decodeBody(newHexReader(s))
}

// DecodeWithLength reads a message preceded by its envelope and checks the
// declared length against the data. For layouts with an inline length it is
// the same as Decode, which always checks inline lengths.
func (d *Decoder) DecodeWithLength(data []byte) (*Message, error) {
	return d.DecodeWithLengthHex(tlv.EncodeHex(data))
}

// DecodeWithLengthHex is DecodeWithLength over hex text.
func (d *Decoder) DecodeWithLengthHex(s string) (*Message, error) {
	if !d.layout.Has(IndexLength) {
		return nil, fieldError(IndexLength.key(), fmt.Errorf("%w: layout has no length element", ErrConfig))
	}
	if d.layout.inline {
		return d.DecodeHex(s)
	}

	s, err := normalizeHex(s)
	if err != nil {
		return nil, fmt.Errorf("message: %w", err)
	}
	r := newHexReader(s)

	t := d.layout.types[IndexLength]
	lf, err := t.decode(r, "", d.logger)
	if err != nil {
		return nil, err
	}
	n, err := parseLength(t, lf.value)
	if err != nil {
		return nil, err
	}

	switch left := r.remaining() / 2; {
	case left < n:
		return nil, fieldError(lf.path, fmt.Errorf("%w: envelope announces %d bytes, %d available", ErrTruncated, n, left))
	case left > n || r.remaining()%2 != 0:
		return nil, fieldError(lf.path, fmt.Errorf("%w: envelope announces %d bytes, %d available", ErrTrailingData, n, left))
	}

	return d.decodeBody(r)
}

func (d *Decoder) decodeBody(r *hexReader) (*Message, error) {
	l := d.layout
	fields := make(map[Index]Field)

	var declaredLength string
	for _, idx := range l.headerIndices() {
		if idx == IndexLength && !l.inline {
			continue
		}
		f, err := l.types[idx].decode(r, "", d.logger)
		if err != nil {
			return nil, err
		}
		if idx == IndexLength {
			declaredLength = f.value
			continue
		}
		fields[idx] = f
	}

	bitmapHex, err := r.next(2 * l.bitmapSize(false))
	if err != nil {
		return nil, fieldError(IndexBitmap.key(), err)
	}
	bm, _ := tlv.DecodeHex(bitmapHex)
	if l.secondary && bits.IsSetAt(bm, 1) {
		more, err := r.next(2 * (l.bitmapSize(true) - l.bitmapSize(false)))
		if err != nil {
			return nil, fieldError(IndexBitmap.key(), fmt.Errorf("secondary bitmap: %w", err))
		}
		bitmapHex += more
		bm, _ = tlv.DecodeHex(bitmapHex)
	}

	for _, idx := range l.announced(bm) {
		t, err := l.FieldType(idx)
		if err != nil {
			return nil, err
		}
		f, err := t.decode(r, "", d.logger)
		if err != nil {
			return nil, err
		}
		fields[idx] = f
	}

	if r.remaining() > 0 {
		return nil, fmt.Errorf("%w: %d hex digits after the last element", ErrTrailingData, r.remaining())
	}

	m := &Message{layout: l, fields: fields}
	for _, f := range fields {
		if err := checkWholeBytes(f); err != nil {
			return nil, err
		}
	}
	if err := m.refresh(); err != nil {
		return nil, err
	}

	if m.BitmapHex() != bitmapHex {
		return nil, fieldError(IndexBitmap.key(),
			fmt.Errorf("%w: bitmap %s should read %s", ErrInvalidValue, bitmapHex, m.BitmapHex()))
	}
	if l.inline && m.Value(IndexLength) != declaredLength {
		return nil, fieldError(IndexLength.key(),
			fmt.Errorf("%w: message declares %q, actual length is %q", ErrInvalidValue, declaredLength, m.Value(IndexLength)))
	}

	d.logger.Debug("decoded message",
		zap.String("layout", l.name),
		zap.String("mti", m.Value(IndexMTI)),
		zap.Int("elements", len(m.fields)),
		zap.Int("bytes", len(m.Hex())/2),
	)
	return m, nil
}
