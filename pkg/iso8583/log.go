package iso8583

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// sensitive lists the data elements masked in log output: PAN, expiry date,
// track 2, track 3, track 1 and PIN data.
var sensitive = map[Index]bool{
	2:  true,
	14: true,
	35: true,
	36: true,
	45: true,
	52: true,
}

// mask keeps the first 6 and last 4 characters of long values, as a PAN is
// usually displayed, and hides shorter ones entirely.
func mask(v string) string {
	if len(v) <= 10 {
		return strings.Repeat("*", len(v))
	}
	return v[:6] + strings.Repeat("*", len(v)-10) + v[len(v)-4:]
}

// MarshalLogObject implements zapcore.ObjectMarshaler. Sensitive elements
// and their sub-elements are masked.
func (f Field) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	return f.marshalLog(enc, sensitive[f.index])
}

func (f Field) marshalLog(enc zapcore.ObjectEncoder, masked bool) error {
	value := f.value
	if masked {
		value = mask(value)
	}

	enc.AddString("path", f.path)
	enc.AddString("type", f.ftype.String())
	enc.AddInt("length", f.length)
	enc.AddString("value", value)

	if len(f.children) == 0 {
		return nil
	}
	return enc.AddArray("children", zapcore.ArrayMarshalerFunc(func(ae zapcore.ArrayEncoder) error {
		for _, c := range f.children {
			if err := ae.AppendObject(zapcore.ObjectMarshalerFunc(func(oe zapcore.ObjectEncoder) error {
				return c.marshalLog(oe, masked)
			})); err != nil {
				return err
			}
		}
		return nil
	}))
}

// MarshalLogObject implements zapcore.ObjectMarshaler:
//
//	logger.Info("received", zap.Object("message", m))
func (m *Message) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if m.layout != nil && m.layout.name != "" {
		enc.AddString("layout", m.layout.name)
	}
	enc.AddString("mti", m.Value(IndexMTI))
	enc.AddString("bitmap", m.BitmapHex())
	enc.AddInt("length", len(m.Hex())/2)

	return enc.AddArray("fields", zapcore.ArrayMarshalerFunc(func(ae zapcore.ArrayEncoder) error {
		for _, f := range m.Fields() {
			if f.index == IndexBitmap {
				continue
			}
			if err := ae.AppendObject(f); err != nil {
				return err
			}
		}
		return nil
	}))
}
