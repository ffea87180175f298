package tlv

import (
	"bytes"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		name      string
		inputs    []string
		want      []byte
		wantPanic bool
	}{
		{
			name:   "Simple Join",
			inputs: []string{"9F", "26"},
			want:   []byte{0x9F, 0x26},
		},
		{
			name:   "With Spaces",
			inputs: []string{"9F26 08", " 46 FD "},
			want:   []byte{0x9F, 0x26, 0x08, 0x46, 0xFD},
		},
		{
			name:   "Mixed Case",
			inputs: []string{"ca", "FE"},
			want:   []byte{0xCA, 0xFE},
		},
		{
			name:      "Invalid Hex",
			inputs:    []string{"ZZ"},
			wantPanic: true,
		},
		{
			name:      "Odd Length",
			inputs:    []string{"123"},
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if (r != nil) != tt.wantPanic {
					t.Errorf("Hex() panic = %v, wantPanic %v", r, tt.wantPanic)
				}
			}()

			got := Hex(tt.inputs...)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Hex() = %X, want %X", got, tt.want)
			}
		})
	}
}

func TestDecodeHex(t *testing.T) {
	if _, err := DecodeHex("9F2"); err == nil {
		t.Error("DecodeHex() with odd digit count should fail")
	}

	got, err := DecodeHex("")
	if err != nil || len(got) != 0 {
		t.Errorf("DecodeHex(\"\") = %X, %v; want empty, nil", got, err)
	}
}

func TestEncodeHex(t *testing.T) {
	if got := EncodeHex([]byte{0x9f, 0x26, 0x0a}); got != "9F260A" {
		t.Errorf("EncodeHex() = %s, want 9F260A", got)
	}
}
