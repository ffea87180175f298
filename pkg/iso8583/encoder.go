package iso8583

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/gregLibert/iso8583/pkg/tlv"
	"go.uber.org/zap"
)

// Encoder assembles a Message from logical values.
//
// Setters chain and remember the first error; Build reports it. The last
// value set for an index wins. Build can be called repeatedly and returns a
// new Message each time. An Encoder is not safe for concurrent use.
type Encoder struct {
	layout *Layout
	logger *zap.Logger
	fields map[Index]Field
	subs   map[Index]map[Index]string
	err    error
}

// NewEncoder returns an empty encoder for layout.
func NewEncoder(layout *Layout, opts ...Option) *Encoder {
	o := newOptions(opts)
	return &Encoder{
		layout: layout,
		logger: o.logger,
		fields: make(map[Index]Field),
		subs:   make(map[Index]map[Index]string),
	}
}

// From copies every element of m except the derived ones, typically to
// answer a request with the same header and data elements.
func (e *Encoder) From(m *Message) *Encoder {
	for _, f := range m.Fields() {
		if f.index == IndexBitmap || f.index == IndexLength {
			continue
		}
		e.SetField(f)
	}
	return e
}

// Set encodes value for index.
func (e *Encoder) Set(index Index, value string) *Encoder {
	if e.err != nil {
		return e
	}
	if err := checkSettable(index); err != nil {
		e.err = err
		return e
	}
	t, err := e.layout.FieldType(index)
	if err != nil {
		e.err = err
		return e
	}
	f, err := t.EncodeField(value)
	if err != nil {
		e.err = err
		return e
	}

	if !t.IsFixed() && f.length == 0 {
		e.logger.Warn("variable field set with an empty value", zap.String("path", f.path))
	}
	e.fields[index] = f
	delete(e.subs, index)
	return e
}

// SetField stores a Field built with this layout's type for its index.
func (e *Encoder) SetField(f Field) *Encoder {
	if e.err != nil {
		return e
	}
	m := Message{layout: e.layout}
	if err := m.checkField(f); err != nil {
		e.err = err
		return e
	}
	e.fields[f.index] = f
	delete(e.subs, f.index)
	return e
}

// SetSub sets one positional sub-element, addressed as "60.2". The parent
// value is composed at Build time from its sub-elements in index order;
// they must be set contiguously from the first.
func (e *Encoder) SetSub(path, value string) *Encoder {
	if e.err != nil {
		return e
	}
	parent, child, err := e.subPath(path)
	if err != nil {
		e.err = fieldError(path, err)
		return e
	}
	if e.subs[parent] == nil {
		e.subs[parent] = make(map[Index]string)
	}
	e.subs[parent][child] = value
	delete(e.fields, parent)
	return e
}

func (e *Encoder) subPath(path string) (Index, Index, error) {
	head, tail, ok := strings.Cut(path, ".")
	if !ok || strings.Contains(tail, ".") {
		return 0, 0, fmt.Errorf("%w: %q is not a parent.child path", ErrConfig, path)
	}
	parent, err := ParseIndex(head)
	if err != nil {
		return 0, 0, err
	}
	n, err := strconv.Atoi(tail)
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("%w: sub-element %q is not a positive number", ErrConfig, tail)
	}
	t, err := e.layout.FieldType(parent)
	if err != nil {
		return 0, 0, err
	}
	if t.sub == nil {
		return 0, 0, fmt.Errorf("%w: %s has no sub-elements", ErrConfig, parent)
	}
	if !t.sub.Has(Index(n)) {
		return 0, 0, fmt.Errorf("%w: %s has no sub-element %d", ErrConfig, parent, n)
	}
	return parent, Index(n), nil
}

// SetTLV serialises objs, in order, as the value of a TLV field.
func (e *Encoder) SetTLV(index Index, objs ...tlv.Object) *Encoder {
	if e.err != nil {
		return e
	}
	t, err := e.layout.FieldType(index)
	if err != nil {
		e.err = err
		return e
	}
	if !t.tlv {
		e.err = fieldError(index.key(), fmt.Errorf("%w: not a TLV field", ErrConfig))
		return e
	}
	h, err := tlv.EncodeToHex(objs)
	if err != nil {
		e.err = fieldError(index.key(), tlvError(err))
		return e
	}
	return e.Set(index, h)
}

// Err returns the first error recorded by a setter.
func (e *Encoder) Err() error {
	return e.err
}

// Build assembles the message. Every header element of the layout must have
// been set; the bitmap and the length are computed.
func (e *Encoder) Build() (*Message, error) {
	if e.err != nil {
		return nil, e.err
	}

	fields := maps.Clone(e.fields)
	for parent, values := range e.subs {
		f, err := e.compose(parent, values)
		if err != nil {
			return nil, err
		}
		fields[parent] = f
	}

	for _, idx := range e.layout.headerIndices() {
		if idx == IndexLength {
			continue
		}
		if _, ok := fields[idx]; !ok {
			return nil, fieldError(idx.key(), fmt.Errorf("%w: header element not set", ErrConfig))
		}
	}

	for _, f := range fields {
		if err := checkWholeBytes(f); err != nil {
			return nil, err
		}
	}

	m := &Message{layout: e.layout, fields: fields}
	if err := m.refresh(); err != nil {
		return nil, err
	}

	e.logger.Debug("built message",
		zap.String("layout", e.layout.name),
		zap.String("mti", m.Value(IndexMTI)),
		zap.Int("elements", len(m.fields)),
		zap.Int("bytes", len(m.Hex())/2),
	)
	return m, nil
}

// MustBuild is Build for callers that treat an error as a bug; it panics.
func (e *Encoder) MustBuild() *Message {
	m, err := e.Build()
	if err != nil {
		panic(err)
	}
	return m
}

func (e *Encoder) compose(parent Index, values map[Index]string) (Field, error) {
	t := e.layout.types[parent]
	h, err := t.sub.composePositional(values, parent.key())
	if err != nil {
		return Field{}, err
	}

	value := h
	if t.value == ASCII {
		b, err := tlv.DecodeHex(h)
		if err != nil {
			return Field{}, fieldError(parent.key(), fmt.Errorf("%w: sub-elements end on a half byte", ErrInvalidValue))
		}
		if value, err = t.charset.decode(b); err != nil {
			return Field{}, fieldError(parent.key(), err)
		}
	}
	return t.EncodeField(value)
}
