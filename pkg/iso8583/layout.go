package iso8583

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"
)

// Layout is the description of a dialect: the field domain (64 or 128 data
// elements), the FieldType of every index in use, and how the total length
// is carried. A Layout is immutable once built; With derives a new one.
type Layout struct {
	name       string
	fields     int
	types      map[Index]FieldType
	inline     bool
	secondary  bool
	positional bool
}

// LayoutOption customises a Layout.
type LayoutOption func(*Layout)

// WithName labels the layout in logs and reports.
func WithName(name string) LayoutOption {
	return func(l *Layout) { l.name = name }
}

// WithInlineLength makes IndexLength a regular header element that counts
// the whole message, itself included. Without it, IndexLength is an envelope
// in front of the message that counts what follows it.
func WithInlineLength() LayoutOption {
	return func(l *Layout) { l.inline = true }
}

// WithSecondaryBitmap gives bit 1 of a 128 field layout its "secondary bitmap
// follows" meaning. The primary bitmap is then 8 bytes, the secondary one is
// only sent when an element above 64 is present, and element 1 cannot be used.
func WithSecondaryBitmap() LayoutOption {
	return func(l *Layout) { l.secondary = true }
}

// NewLayout builds a layout over 64 or 128 data elements. A later type for an
// index already listed replaces the earlier one.
func NewLayout(fields int, types []FieldType, opts ...LayoutOption) (*Layout, error) {
	l := &Layout{fields: fields, types: make(map[Index]FieldType, len(types))}
	for _, opt := range opts {
		opt(l)
	}

	if fields != 64 && fields != 128 {
		return nil, fmt.Errorf("%w: layouts cover 64 or 128 fields, not %d", ErrConfig, fields)
	}
	if l.secondary && fields != 128 {
		return nil, fmt.Errorf("%w: a secondary bitmap needs 128 fields", ErrConfig)
	}

	for _, t := range types {
		if err := l.register(t); err != nil {
			return nil, err
		}
	}

	if l.inline && !l.Has(IndexLength) {
		return nil, fmt.Errorf("%w: inline length without a %s element", ErrConfig, IndexLength)
	}
	return l, nil
}

// MustNewLayout is NewLayout for static tables; it panics on error.
func MustNewLayout(fields int, types []FieldType, opts ...LayoutOption) *Layout {
	l, err := NewLayout(fields, types, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// NewSubLayout builds the layout of positional sub-elements, numbered from 1.
// Sub-elements have no bitmap: they follow each other in index order.
func NewSubLayout(types ...FieldType) (*Layout, error) {
	l := &Layout{positional: true, types: make(map[Index]FieldType, len(types))}
	for _, t := range types {
		if err := l.register(t); err != nil {
			return nil, err
		}
	}
	if len(l.types) == 0 {
		return nil, fmt.Errorf("%w: empty sub-layout", ErrConfig)
	}
	return l, nil
}

// With returns a copy of the layout where types replace or add registrations.
func (l *Layout) With(types ...FieldType) (*Layout, error) {
	c := *l
	c.types = maps.Clone(l.types)
	for _, t := range types {
		if err := c.register(t); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (l *Layout) register(t FieldType) error {
	path := t.index.key()
	idx := t.index

	switch {
	case l.positional && idx < 1:
		return fieldError(path, fmt.Errorf("%w: sub-elements are numbered from 1", ErrConfig))
	case l.positional:
	case idx == IndexBitmap:
		return fieldError(path, fmt.Errorf("%w: the bitmap is derived, not registered", ErrConfig))
	case idx < 0 && !idx.IsHeader():
		return fieldError(path, fmt.Errorf("%w: unknown header index %d", ErrConfig, int(idx)))
	case int(idx) > l.fields:
		return fieldError(path, fmt.Errorf("%w: index beyond the %d field domain", ErrConfig, l.fields))
	case l.secondary && idx == 1:
		return fieldError(path, fmt.Errorf("%w: bit 1 flags the secondary bitmap", ErrConfig))
	case idx == IndexLength && !t.IsFixed():
		return fieldError(path, fmt.Errorf("%w: the length element must be fixed", ErrConfig))
	}

	if err := t.validate(); err != nil {
		return fieldError(path, err)
	}
	l.types[idx] = t
	return nil
}

// Name returns the label given with WithName.
func (l *Layout) Name() string { return l.name }

// Fields returns the data element domain, 64 or 128. Sub-layouts return 0.
func (l *Layout) Fields() int { return l.fields }

// HasSecondaryBitmap reports whether bit 1 flags a secondary bitmap.
func (l *Layout) HasSecondaryBitmap() bool { return l.secondary }

// HasEnvelope reports whether IndexLength is carried in front of the message.
func (l *Layout) HasEnvelope() bool {
	return !l.inline && l.Has(IndexLength)
}

// HasInlineLength reports whether IndexLength is a header element counting itself.
func (l *Layout) HasInlineLength() bool {
	return l.inline
}

// Has reports whether index is registered.
func (l *Layout) Has(index Index) bool {
	_, ok := l.types[index]
	return ok
}

// FieldType returns the type registered for index.
func (l *Layout) FieldType(index Index) (FieldType, error) {
	if index == IndexBitmap && !l.positional {
		return l.bitmapType(l.bitmapSize(false)), nil
	}
	t, ok := l.types[index]
	if !ok {
		return FieldType{}, fieldError(index.key(), fmt.Errorf("%w: no type registered", ErrConfig))
	}
	return t, nil
}

// Indices returns every registered index in wire order. The bitmap is not listed.
func (l *Layout) Indices() []Index {
	return slices.Sorted(maps.Keys(l.types))
}

// Equal compares two layouts, ignoring their names.
func (l *Layout) Equal(o *Layout) bool {
	if l == o {
		return true
	}
	if l == nil || o == nil {
		return false
	}
	if l.fields != o.fields || l.inline != o.inline || l.secondary != o.secondary ||
		l.positional != o.positional || len(l.types) != len(o.types) {
		return false
	}
	for idx, t := range l.types {
		ot, ok := o.types[idx]
		if !ok || !t.Equal(ot) {
			return false
		}
	}
	return true
}

// bitmapSize is the byte width of the bitmap, with or without its secondary part.
func (l *Layout) bitmapSize(withSecondary bool) int {
	if !l.secondary {
		return l.fields / 8
	}
	if withSecondary {
		return 16
	}
	return 8
}

func (l *Layout) bitmapType(size int) FieldType {
	return FixedField(IndexBitmap, size, HEX)
}

// headerIndices lists the header elements in wire order.
func (l *Layout) headerIndices() []Index {
	var out []Index
	for _, idx := range l.Indices() {
		if idx < IndexBitmap {
			out = append(out, idx)
		}
	}
	return out
}

// decodePositional reads sub-elements in index order. When the data runs out
// before the next element is complete, the remaining elements are absent.
func (l *Layout) decodePositional(src, prefix string, logger *zap.Logger) ([]Field, error) {
	r := newHexReader(src)
	var children []Field

	for _, idx := range l.Indices() {
		if r.remaining() == 0 {
			break
		}
		mark := r.pos
		f, err := l.types[idx].decode(r, prefix, logger)
		if errors.Is(err, ErrTruncated) {
			r.pos = mark
			logger.Debug("sub-elements end early",
				zap.String("path", joinPath(prefix, idx.key())), zap.Int("left", r.remaining()))
			break
		}
		if err != nil {
			return nil, err
		}
		children = append(children, f)
	}
	return children, nil
}

// composePositional encodes sub-element values in index order into the hex
// text of their parent. Elements must be contiguous from the first one.
func (l *Layout) composePositional(values map[Index]string, prefix string) (string, error) {
	var hex string
	missing := Index(0)

	for _, idx := range l.Indices() {
		v, ok := values[idx]
		if !ok {
			if missing == 0 {
				missing = idx
			}
			continue
		}
		if missing != 0 {
			return "", fieldError(joinPath(prefix, idx.key()),
				fmt.Errorf("%w: sub-element %s must be set first", ErrConfig, joinPath(prefix, missing.key())))
		}
		f, err := l.types[idx].encode(v, prefix)
		if err != nil {
			return "", err
		}
		hex += f.Hex()
	}

	for idx := range values {
		if !l.Has(idx) {
			return "", fieldError(joinPath(prefix, idx.key()), fmt.Errorf("%w: no sub-element registered", ErrConfig))
		}
	}
	return hex, nil
}
