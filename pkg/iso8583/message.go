package iso8583

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/gregLibert/iso8583/pkg/bits"
	"github.com/gregLibert/iso8583/pkg/tlv"
)

// Message is a set of Fields laid out by a Layout.
//
// The bitmap and the total length are derived: every mutation recomputes them
// before returning, so a Message never shows a stale bitmap. A failed
// mutation leaves the Message as it was.
type Message struct {
	layout *Layout
	fields map[Index]Field
}

// NewMessage returns a message with no data element.
func NewMessage(layout *Layout) (*Message, error) {
	m := &Message{layout: layout, fields: make(map[Index]Field)}
	if err := m.refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// Layout returns the layout the message follows.
func (m *Message) Layout() *Layout {
	return m.layout
}

// Update encodes value with the type registered for index and stores it,
// replacing any previous value.
func (m *Message) Update(index Index, value string) error {
	if err := checkSettable(index); err != nil {
		return err
	}
	t, err := m.layout.FieldType(index)
	if err != nil {
		return err
	}
	f, err := t.EncodeField(value)
	if err != nil {
		return err
	}
	return m.put(f)
}

// UpdateField stores a Field built with this layout's type for its index.
func (m *Message) UpdateField(f Field) error {
	if err := m.checkField(f); err != nil {
		return err
	}
	return m.put(f)
}

// Remove deletes a data or header element. Removing an absent element is a no-op.
func (m *Message) Remove(index Index) error {
	if err := checkSettable(index); err != nil {
		return err
	}
	prev, ok := m.fields[index]
	if !ok {
		return nil
	}
	delete(m.fields, index)
	if err := m.refresh(); err != nil {
		m.fields[index] = prev
		_ = m.refresh()
		return err
	}
	return nil
}

func checkSettable(index Index) error {
	if index == IndexBitmap || index == IndexLength {
		return fieldError(index.key(), fmt.Errorf("%w: derived element cannot be set", ErrConfig))
	}
	return nil
}

func (m *Message) checkField(f Field) error {
	if f.tag != "" || strings.Contains(f.path, ".") {
		return fieldError(f.path, fmt.Errorf("%w: a sub-element is not a message element", ErrConfig))
	}
	if err := checkSettable(f.index); err != nil {
		return err
	}
	t, err := m.layout.FieldType(f.index)
	if err != nil {
		return err
	}
	if !t.Equal(f.ftype) {
		return fieldError(f.path, fmt.Errorf("%w: field built with %s, layout expects %s", ErrConfig, f.ftype, t))
	}
	return nil
}

func (m *Message) put(f Field) error {
	if err := checkWholeBytes(f); err != nil {
		return err
	}
	prev, had := m.fields[f.index]
	m.fields[f.index] = f
	if err := m.refresh(); err != nil {
		if had {
			m.fields[f.index] = prev
		} else {
			delete(m.fields, f.index)
		}
		_ = m.refresh()
		return err
	}
	return nil
}

func checkWholeBytes(f Field) error {
	if len(f.Hex())%2 != 0 {
		return fieldError(f.path, fmt.Errorf("%w: %d hex digits do not make whole bytes", ErrInvalidValue, len(f.Hex())))
	}
	return nil
}

// refresh recomputes the bitmap, then the total length.
func (m *Message) refresh() error {
	var present []Index
	for idx := range m.fields {
		if idx.IsData() {
			present = append(present, idx)
		}
	}
	bm := m.layout.buildBitmap(present)
	bf, err := m.layout.bitmapType(len(bm)).EncodeField(tlv.EncodeHex(bm))
	if err != nil {
		return err
	}
	m.fields[IndexBitmap] = bf

	if !m.layout.Has(IndexLength) {
		return nil
	}
	t := m.layout.types[IndexLength]

	total := 0
	for idx, f := range m.fields {
		if idx != IndexLength {
			total += len(f.Hex()) / 2
		}
	}
	if m.layout.inline {
		total += t.value.HexCount(t.size, t.align) / 2
	}

	lf, err := t.EncodeField(formatLength(t, total))
	if err != nil {
		return err
	}
	m.fields[IndexLength] = lf
	return nil
}

// formatLength renders a byte count in the value encoding of the length element:
// big endian binary for HEX, zero padded decimal otherwise.
func formatLength(t FieldType, n int) string {
	if t.value == HEX {
		return fmt.Sprintf("%0*X", t.value.HexCount(t.size, t.align), n)
	}
	return fmt.Sprintf("%0*d", t.size, n)
}

func parseLength(t FieldType, v string) (int, error) {
	base := 10
	if t.value == HEX {
		base = 16
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), base, 32)
	if err != nil {
		return 0, fieldError(IndexLength.key(), fmt.Errorf("%w: %q is not a length", ErrInvalidValue, v))
	}
	return int(n), nil
}

// Field returns the element stored at index.
func (m *Message) Field(index Index) (Field, bool) {
	f, ok := m.fields[index]
	return f, ok
}

// Value returns the logical value at index, "" when absent.
func (m *Message) Value(index Index) string {
	return m.fields[index].value
}

// Has reports whether index is present.
func (m *Message) Has(index Index) bool {
	_, ok := m.fields[index]
	return ok
}

// Lookup finds an element by dotted path: "MTI", "4", "60.2", "55.9F26".
func (m *Message) Lookup(path string) (Field, bool) {
	parts := strings.Split(path, ".")
	idx, err := ParseIndex(parts[0])
	if err != nil {
		return Field{}, false
	}
	f, ok := m.fields[idx]
	for _, key := range parts[1:] {
		if !ok {
			break
		}
		f, ok = f.Child(key)
	}
	return f, ok
}

// Indices returns the indices present, in wire order.
func (m *Message) Indices() []Index {
	return slices.Sorted(maps.Keys(m.fields))
}

// Fields returns every element, header, bitmap and length included, in wire order.
func (m *Message) Fields() []Field {
	out := make([]Field, 0, len(m.fields))
	for _, idx := range m.Indices() {
		out = append(out, m.fields[idx])
	}
	return out
}

// Bitmap returns the bitmap bytes, secondary part included when sent.
func (m *Message) Bitmap() []byte {
	b, _ := tlv.DecodeHex(m.BitmapHex())
	return b
}

// BitmapHex returns the bitmap as hex.
func (m *Message) BitmapHex() string {
	return m.fields[IndexBitmap].valueHex
}

// BitmapBits renders the bitmap as '0' and '1', element 1 first.
func (m *Message) BitmapBits() string {
	return bits.String(m.Bitmap())
}

// Length returns the total length the message declares, 0 without a length element.
func (m *Message) Length() int {
	f, ok := m.fields[IndexLength]
	if !ok {
		return 0
	}
	n, _ := parseLength(f.ftype, f.value)
	return n
}

// Hex renders the whole message, envelope included.
func (m *Message) Hex() string {
	return m.concat(func(Index) bool { return true })
}

// Bytes renders the whole message, envelope included.
func (m *Message) Bytes() []byte {
	b, _ := tlv.DecodeHex(m.Hex())
	return b
}

// BodyHex renders the message without its envelope.
func (m *Message) BodyHex() string {
	envelope := m.layout.HasEnvelope()
	return m.concat(func(idx Index) bool { return !envelope || idx != IndexLength })
}

// Body renders the message without its envelope.
func (m *Message) Body() []byte {
	b, _ := tlv.DecodeHex(m.BodyHex())
	return b
}

// MacBlockHex returns the span a MAC is computed over: every element from
// the MTI up to the last data element before the MAC field, in wire order.
func (m *Message) MacBlockHex() string {
	last := Index(m.layout.fields - 1)
	return m.concat(func(idx Index) bool { return idx >= IndexMTI && idx <= last })
}

// MacBlock returns MacBlockHex as bytes.
func (m *Message) MacBlock() []byte {
	b, _ := tlv.DecodeHex(m.MacBlockHex())
	return b
}

// MacHex returns the value of the last data element (64 or 128), "" when absent.
func (m *Message) MacHex() string {
	return m.fields[Index(m.layout.fields)].valueHex
}

// Mac returns MacHex as bytes.
func (m *Message) Mac() []byte {
	b, _ := tlv.DecodeHex(m.MacHex())
	return b
}

func (m *Message) concat(keep func(Index) bool) string {
	var sb strings.Builder
	for _, idx := range m.Indices() {
		if keep(idx) {
			sb.WriteString(m.fields[idx].Hex())
		}
	}
	return sb.String()
}

// MTI parses the message type indicator.
func (m *Message) MTI() (MTI, error) {
	f, ok := m.fields[IndexMTI]
	if !ok {
		return MTI{}, fieldError(IndexMTI.key(), fmt.Errorf("%w: no MTI in message", ErrConfig))
	}
	mti, err := ParseMTI(f.value)
	if err != nil {
		return MTI{}, fieldError(IndexMTI.key(), err)
	}
	return mti, nil
}

// Equal reports whether both messages hold equal elements under equal layouts.
func (m *Message) Equal(o *Message) bool {
	if m == o {
		return true
	}
	if m == nil || o == nil || len(m.fields) != len(o.fields) || !m.layout.Equal(o.layout) {
		return false
	}
	for idx, f := range m.fields {
		of, ok := o.fields[idx]
		if !ok || !f.Equal(of) {
			return false
		}
	}
	return true
}

// Format renders one line per element, sub-elements indented under their parent:
//
//	[F4][FIXED][BCD][12][000000001111]
func (m *Message) Format() string {
	var lines []string
	for _, f := range m.Fields() {
		lines = appendFormat(lines, f, "")
	}
	return strings.Join(lines, "\n")
}

func appendFormat(lines []string, f Field, indent string) []string {
	label := f.path
	if f.index.IsData() {
		label = "F" + label
	}
	lines = append(lines, fmt.Sprintf("%s[%s][%s][%s][%d][%s]",
		indent, label, f.ftype.length, f.ftype.value, f.length, f.value))
	for _, c := range f.children {
		lines = appendFormat(lines, c, indent+"  ")
	}
	return lines
}
