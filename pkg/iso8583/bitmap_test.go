package iso8583

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gregLibert/iso8583/pkg/tlv"
)

func TestLayout_Bitmap(t *testing.T) {
	plain64 := &Layout{fields: 64}
	plain128 := &Layout{fields: 128}
	secondary := &Layout{fields: 128, secondary: true}

	tests := []struct {
		name    string
		layout  *Layout
		present []Index
		want    string
	}{
		{"64: element 1", plain64, []Index{1}, "8000000000000000"},
		{"64: element 64", plain64, []Index{64}, "0000000000000001"},
		{"64: elements 2 3 4 11", plain64, []Index{2, 3, 4, 11}, "7020000000000000"},
		{"64: nothing", plain64, nil, "0000000000000000"},
		{"128: element 1 is data", plain128, []Index{1}, "80000000000000000000000000000000"},
		{"128: element 128", plain128, []Index{128}, "00000000000000000000000000000001"},
		{"Secondary: primary only", secondary, []Index{2, 64}, "4000000000000001"},
		{"Secondary: element 65", secondary, []Index{65}, "8000000000000000" + "8000000000000000"},
		{"Secondary: elements 64 and 65", secondary, []Index{64, 65}, "8000000000000001" + "8000000000000000"},
		{"Secondary: element 128", secondary, []Index{3, 128}, "A000000000000000" + "0000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bm := tt.layout.buildBitmap(tt.present)
			if got := tlv.EncodeHex(bm); got != tt.want {
				t.Errorf("buildBitmap() = %s, want %s", got, tt.want)
			}

			got := tt.layout.announced(bm)
			want := tt.present
			if len(want) == 0 {
				want = nil
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("announced() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMessage_BitmapBoundaries(t *testing.T) {
	types := []FieldType{FixedField(IndexMTI, 4, BCD)}
	for i := 2; i <= 128; i++ {
		types = append(types, FixedField(Index(i), 2, BCD))
	}
	layout := MustNewLayout(128, types, WithSecondaryBitmap())

	tests := []struct {
		name        string
		set         []Index
		wantBitmap  string
		wantIndices []Index
	}{
		{"Lowest usable", []Index{2}, "4000000000000000", []Index{2}},
		{"Last primary", []Index{64}, "0000000000000001", []Index{64}},
		{"First secondary", []Index{65}, "8000000000000000" + "8000000000000000", []Index{65}},
		{"Highest", []Index{128}, "8000000000000000" + "0000000000000001", []Index{128}},
		{"Both halves", []Index{2, 64, 65, 128}, "C000000000000001" + "8000000000000001", []Index{2, 64, 65, 128}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewEncoder(layout).Set(IndexMTI, "0800")
			for _, idx := range tt.set {
				enc.Set(idx, "12")
			}
			m, err := enc.Build()
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if m.BitmapHex() != tt.wantBitmap {
				t.Errorf("BitmapHex() = %s, want %s", m.BitmapHex(), tt.wantBitmap)
			}

			decoded, err := NewDecoder(layout).Decode(m.Bytes())
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			var got []Index
			for _, idx := range decoded.Indices() {
				if idx.IsData() {
					got = append(got, idx)
				}
			}
			if diff := cmp.Diff(tt.wantIndices, got); diff != "" {
				t.Errorf("decoded indices mismatch (-want +got):\n%s", diff)
			}
			if !decoded.Equal(m) {
				t.Errorf("Decode(Build()) differs from the built message")
			}
		})
	}

	// Removing the last secondary element drops the secondary bitmap.
	m := NewEncoder(layout).Set(IndexMTI, "0800").Set(2, "12").Set(100, "34").MustBuild()
	if err := m.Remove(100); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if m.BitmapHex() != "4000000000000000" {
		t.Errorf("BitmapHex() after Remove = %s, want 4000000000000000", m.BitmapHex())
	}
}
