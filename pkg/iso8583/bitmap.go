package iso8583

import (
	"github.com/gregLibert/iso8583/pkg/bits"
)

// Bitmap layout:
//
// Bit 1 is the most significant bit of the first byte and stands for data
// element 1, bit 64 is the least significant bit of byte 8. A 64 field layout
// sends 8 bytes, a 128 field layout 16 bytes.
//
// With a secondary bitmap, bit 1 instead announces that 8 more bytes follow
// for elements 65 to 128. The encoder sets it exactly when one of those
// elements is present.

// buildBitmap returns the bitmap announcing the data elements in present.
func (l *Layout) buildBitmap(present []Index) []byte {
	withSecondary := false
	if l.secondary {
		for _, idx := range present {
			if idx > 64 {
				withSecondary = true
				break
			}
		}
	}

	bm := make([]byte, l.bitmapSize(withSecondary))
	if withSecondary {
		bits.SetAt(bm, 1)
	}
	for _, idx := range present {
		if idx.IsData() {
			bits.SetAt(bm, int(idx))
		}
	}
	return bm
}

// announced lists the data elements a bitmap marks as present, in ascending order.
func (l *Layout) announced(bm []byte) []Index {
	var out []Index
	for pos := 1; pos <= l.fields; pos++ {
		if l.secondary && pos == 1 {
			continue
		}
		if bits.IsSetAt(bm, pos) {
			out = append(out, Index(pos))
		}
	}
	return out
}
