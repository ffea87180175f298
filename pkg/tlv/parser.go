package tlv

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"
)

// Unmarshaler allows custom types to implement their own TLV parsing logic.
type Unmarshaler interface {
	UnmarshalTLV(data []byte) error
}

// Marshaler is the counterpart of Unmarshaler used by Marshal.
type Marshaler interface {
	MarshalTLV() ([]byte, error)
}

// Unmarshal parses raw BER-TLV data and maps it into a target Go struct.
//
// Fields are bound with a `tlv:"9F26"` struct tag. Supported field types are
// []byte (raw value), string (upper case hex), nested structs for constructed
// tags, slices of those for repeated tags, and []bertlv.TLV tagged `tlv:",unknown"`
// which collects whatever was not bound.
func Unmarshal(data []byte, target interface{}) error {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return fmt.Errorf("bertlv decode failed: %w", err)
	}
	return UnmarshalFromPackets(packets, target)
}

// UnmarshalFromPackets maps a slice of pre-decoded bertlv.TLV objects to a target struct.
// It supports multiple occurrences of the same tag if the target field is a slice.
func UnmarshalFromPackets(packets []bertlv.TLV, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer")
	}
	v = v.Elem()
	t := v.Type()

	consumedIndices := make(map[int]bool)

	for i := 0; i < v.NumField(); i++ {
		tagHex, ok := boundTag(t.Field(i))
		if !ok {
			continue
		}

		for idx, packet := range packets {
			if strings.EqualFold(packet.Tag, tagHex) {
				if err := mapPacketToField(packet, v.Field(i)); err != nil {
					return fmt.Errorf("tag %s: %w", tagHex, err)
				}
				consumedIndices[idx] = true
			}
		}
	}

	return handleUnknownFields(v, t, packets, consumedIndices)
}

// Marshal serialises a struct annotated for Unmarshal back into BER-TLV.
// Tags are written in struct field order, unknown packets last. Empty fields are skipped.
func Marshal(source interface{}) ([]byte, error) {
	packets, err := MarshalToPackets(source)
	if err != nil {
		return nil, err
	}
	return bertlv.Encode(packets)
}

// MarshalToPackets is Marshal stopping before the final encoding.
func MarshalToPackets(source interface{}) ([]bertlv.TLV, error) {
	v := reflect.ValueOf(source)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("source must be a struct, got %s", v.Kind())
	}
	t := v.Type()

	var packets []bertlv.TLV
	for i := 0; i < v.NumField(); i++ {
		tagHex, ok := boundTag(t.Field(i))
		if !ok {
			continue
		}

		field := v.Field(i)
		if field.Kind() == reflect.Slice && !isByteSlice(field) {
			for j := 0; j < field.Len(); j++ {
				p, ok, err := encodeValue(tagHex, field.Index(j))
				if err != nil {
					return nil, err
				}
				if ok {
					packets = append(packets, p)
				}
			}
			continue
		}

		p, ok, err := encodeValue(tagHex, field)
		if err != nil {
			return nil, err
		}
		if ok {
			packets = append(packets, p)
		}
	}

	if unknown, found := findUnknownField(v, t); found && !unknown.IsNil() {
		packets = append(packets, unknown.Interface().([]bertlv.TLV)...)
	}

	return packets, nil
}

func encodeValue(tagHex string, field reflect.Value) (bertlv.TLV, bool, error) {
	if field.CanInterface() {
		if m, ok := field.Interface().(Marshaler); ok {
			raw, err := m.MarshalTLV()
			return bertlv.TLV{Tag: tagHex, Value: raw}, len(raw) > 0, err
		}
	}
	if field.CanAddr() {
		if m, ok := field.Addr().Interface().(Marshaler); ok {
			raw, err := m.MarshalTLV()
			return bertlv.TLV{Tag: tagHex, Value: raw}, len(raw) > 0, err
		}
	}

	switch {
	case isByteSlice(field):
		if field.Len() == 0 {
			return bertlv.TLV{}, false, nil
		}
		return bertlv.TLV{Tag: tagHex, Value: field.Bytes()}, true, nil

	case field.Kind() == reflect.String:
		if field.Len() == 0 {
			return bertlv.TLV{}, false, nil
		}
		raw, err := hex.DecodeString(field.String())
		if err != nil {
			return bertlv.TLV{}, false, fmt.Errorf("tag %s: %w", tagHex, err)
		}
		return bertlv.TLV{Tag: tagHex, Value: raw}, true, nil

	case isStructOrPtrToStruct(field):
		children, err := MarshalToPackets(field.Interface())
		if err != nil {
			return bertlv.TLV{}, false, fmt.Errorf("tag %s: %w", tagHex, err)
		}
		if len(children) == 0 {
			return bertlv.TLV{}, false, nil
		}
		return bertlv.TLV{Tag: tagHex, TLVs: children}, true, nil
	}

	return bertlv.TLV{}, false, nil
}

// boundTag returns the upper case tag a struct field is bound to.
func boundTag(f reflect.StructField) (string, bool) {
	tagConfig := f.Tag.Get("tlv")
	if tagConfig == "" || tagConfig == ",unknown" || f.Name == "Unknown" {
		return "", false
	}
	return strings.ToUpper(strings.Split(tagConfig, ",")[0]), true
}

// mapPacketToField dispatches the TLV data to the appropriate reflection logic.
func mapPacketToField(packet bertlv.TLV, field reflect.Value) error {
	// If it's a slice (but not []byte), we grow the slice and decode into the new element
	if field.Kind() == reflect.Slice && !isByteSlice(field) {
		newElem := reflect.New(field.Type().Elem()).Elem()
		if err := decodeToValue(packet, newElem); err != nil {
			return err
		}
		field.Set(reflect.Append(field, newElem))
		return nil
	}

	return decodeToValue(packet, field)
}

// decodeToValue handles the leaf-node decoding logic (Custom Unmarshaler, ByteSlice, Struct, etc.)
func decodeToValue(packet bertlv.TLV, field reflect.Value) error {
	if field.CanAddr() {
		if u, ok := field.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalTLV(getPacketRawData(packet))
		}
	}

	if isByteSlice(field) {
		field.SetBytes(getPacketRawData(packet))
		return nil
	}

	if field.Kind() == reflect.String {
		field.SetString(EncodeHex(getPacketRawData(packet)))
		return nil
	}

	if isStructOrPtrToStruct(field) {
		targetField := getTargetField(field)
		if len(packet.TLVs) > 0 {
			return UnmarshalFromPackets(packet.TLVs, targetField.Interface())
		}
		return Unmarshal(packet.Value, targetField.Interface())
	}

	return nil
}

func handleUnknownFields(v reflect.Value, t reflect.Type, packets []bertlv.TLV, consumed map[int]bool) error {
	unknownField, found := findUnknownField(v, t)
	if !found {
		return nil
	}

	var leftovers []bertlv.TLV
	for idx, packet := range packets {
		if !consumed[idx] {
			leftovers = append(leftovers, packet)
		}
	}

	if len(leftovers) > 0 && unknownField.CanSet() {
		unknownField.Set(reflect.ValueOf(leftovers))
	}
	return nil
}

func findUnknownField(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	for i := 0; i < v.NumField(); i++ {
		tag := t.Field(i).Tag.Get("tlv")
		if tag == ",unknown" || t.Field(i).Name == "Unknown" {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func getPacketRawData(p bertlv.TLV) []byte {
	if len(p.TLVs) > 0 {
		if enc, err := bertlv.Encode(p.TLVs); err == nil {
			return enc
		}
	}
	return p.Value
}

// GetValue scans the raw data for a specific tag and returns its raw payload.
func GetValue(data []byte, tag uint) ([]byte, error) {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return nil, err
	}

	targetTag := fmt.Sprintf("%X", tag)

	for _, p := range packets {
		if strings.EqualFold(p.Tag, targetTag) {
			return getPacketRawData(p), nil
		}
	}
	return nil, fmt.Errorf("tag %s not found", targetTag)
}

func isByteSlice(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}

func isStructOrPtrToStruct(v reflect.Value) bool {
	if v.Kind() == reflect.Struct {
		return true
	}
	if v.Kind() == reflect.Ptr && v.Type().Elem().Kind() == reflect.Struct {
		return true
	}
	return false
}

func getTargetField(field reflect.Value) reflect.Value {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return field
	}
	return field.Addr()
}
