package iso8583

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewLayout_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fields int
		types  []FieldType
		opts   []LayoutOption
	}{
		{"Unsupported domain", 96, nil, nil},
		{"Secondary bitmap on 64 fields", 64, nil, []LayoutOption{WithSecondaryBitmap()}},
		{"Inline length without element", 64, nil, []LayoutOption{WithInlineLength()}},
		{"Index beyond domain", 64, []FieldType{FixedField(65, 2, BCD)}, nil},
		{"Registering the bitmap", 64, []FieldType{FixedField(IndexBitmap, 8, HEX)}, nil},
		{"Unknown header sentinel", 64, []FieldType{FixedField(-50, 2, BCD)}, nil},
		{"Element 1 with secondary bitmap", 128, []FieldType{FixedField(1, 2, BCD)}, []LayoutOption{WithSecondaryBitmap()}},
		{"Variable length element", 64, []FieldType{VariableField(IndexLength, LengthLLVAR, BCD)}, nil},
		{"Invalid type", 64, []FieldType{VariableField(55, LengthLLLVAR, BCD, WithTLV())}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout(tt.fields, tt.types, tt.opts...)
			if !errors.Is(err, ErrConfig) {
				t.Errorf("NewLayout() error = %v, want %v", err, ErrConfig)
			}
		})
	}
}

func TestLayout_FieldType(t *testing.T) {
	layout := MustNewLayout(64, []FieldType{
		FixedField(IndexMTI, 4, BCD),
		FixedField(3, 6, BCD),
		FixedField(3, 6, ASCII),
	})

	f3, err := layout.FieldType(3)
	if err != nil {
		t.Fatalf("FieldType(3) error = %v", err)
	}
	if f3.ValueEncoding() != ASCII {
		t.Errorf("FieldType(3) = %s, the later registration should win", f3)
	}

	_, err = layout.FieldType(5)
	var fe *FieldError
	if !errors.Is(err, ErrConfig) || !errors.As(err, &fe) || fe.Path != "5" {
		t.Errorf("FieldType(5) error = %v, want a configuration error on 5", err)
	}

	bm, err := layout.FieldType(IndexBitmap)
	if err != nil || bm.Size() != 8 || bm.ValueEncoding() != HEX {
		t.Errorf("FieldType(bitmap) = %s, %v; want FIXED 8 HEX", bm, err)
	}
}

func TestLayout_Indices(t *testing.T) {
	got := PosLayout().Indices()
	want := []Index{IndexLength, IndexTPDU, IndexHeader, IndexMTI, 2, 3, 4}
	if diff := cmp.Diff(want, got[:len(want)]); diff != "" {
		t.Errorf("Indices() prefix mismatch (-want +got):\n%s", diff)
	}
	if got[len(got)-1] != 64 {
		t.Errorf("Indices() ends with %s, want F64", got[len(got)-1])
	}
}

func TestLayout_With(t *testing.T) {
	base := PosLayout()
	text, err := base.With(VariableField(59, LengthLLLVAR, ASCII))
	if err != nil {
		t.Fatalf("With() error = %v", err)
	}

	f59, _ := text.FieldType(59)
	if f59.ValueEncoding() != ASCII {
		t.Errorf("With() F59 = %s, want ASCII", f59)
	}
	orig, _ := base.FieldType(59)
	if orig.ValueEncoding() != HEX {
		t.Errorf("With() changed the receiver: F59 = %s", orig)
	}
	if base.Equal(text) {
		t.Error("layouts with different F59 should differ")
	}
	if !base.Equal(PosLayout()) {
		t.Error("two PosLayout() values should be equal")
	}

	if _, err := base.With(FixedField(65, 2, BCD)); !errors.Is(err, ErrConfig) {
		t.Errorf("With(F65) error = %v, want %v", err, ErrConfig)
	}
}

func TestLayout_Dialects(t *testing.T) {
	pos := PosLayout()
	if pos.Fields() != 64 || !pos.HasEnvelope() || pos.HasInlineLength() || pos.HasSecondaryBitmap() {
		t.Errorf("PosLayout() = fields %d, envelope %v, inline %v, secondary %v",
			pos.Fields(), pos.HasEnvelope(), pos.HasInlineLength(), pos.HasSecondaryBitmap())
	}

	union := UnionLayout()
	if union.Fields() != 128 || union.HasEnvelope() || !union.HasInlineLength() || !union.HasSecondaryBitmap() {
		t.Errorf("UnionLayout() = fields %d, envelope %v, inline %v, secondary %v",
			union.Fields(), union.HasEnvelope(), union.HasInlineLength(), union.HasSecondaryBitmap())
	}
	if union.Name() != "union" || pos.Name() != "pos" {
		t.Errorf("Name() = %q, %q", union.Name(), pos.Name())
	}
}

func TestNewSubLayout(t *testing.T) {
	if _, err := NewSubLayout(); !errors.Is(err, ErrConfig) {
		t.Errorf("NewSubLayout() error = %v, want %v", err, ErrConfig)
	}
	if _, err := NewSubLayout(FixedField(0, 2, BCD)); !errors.Is(err, ErrConfig) {
		t.Errorf("NewSubLayout(0) error = %v, want %v", err, ErrConfig)
	}

	plain := MustNewLayout(64, []FieldType{FixedField(1, 2, BCD)})
	_, err := NewLayout(64, []FieldType{VariableField(60, LengthLLLVAR, BCD, WithSubLayout(plain))})
	if !errors.Is(err, ErrConfig) {
		t.Errorf("NewLayout() with a non positional sub-layout error = %v, want %v", err, ErrConfig)
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		input   string
		want    Index
		wantErr bool
	}{
		{"4", 4, false},
		{"F4", 4, false},
		{"mti", IndexMTI, false},
		{"TPDU", IndexTPDU, false},
		{"destination_id", IndexDestinationID, false},
		{"-1", IndexMTI, false},
		{"-50", 0, true},
		{"PAN", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseIndex(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIndex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseIndex() = %s, want %s", got, tt.want)
			}
		})
	}

	if IndexMTI.String() != "MTI" || Index(4).String() != "F4" {
		t.Errorf("String() = %s, %s", IndexMTI, Index(4))
	}
}
