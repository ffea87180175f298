// Package bits holds the bit twiddling shared by the bitmap and TLV codecs.
//
// Two numbering schemes coexist:
//   - within a single byte, bits are numbered 1 to 8 from the least significant
//     bit, as EMV and ISO 7816 documents do (Bit, IsSet, GetRange, Set);
//   - within a byte slice, positions are numbered from 1 starting at the most
//     significant bit of the first byte, as ISO 8583 bitmaps do (IsSetAt, SetAt).
package bits

import "strings"

// Bit returns a byte with only the n-th bit set (1 to 8).
func Bit(n uint) byte {
	if n < 1 || n > 8 {
		return 0
	}
	return 1 << (n - 1)
}

// IsSet checks if the n-th bit is set (1 to 8).
func IsSet(b byte, n uint) bool {
	return b&Bit(n) != 0
}

// GetRange extracts the value from a range of bits (e.g., bits 4 to 3).
// Example: GetRange(0b00001100, 4, 3) returns 3 (0b11)
func GetRange(b byte, high, low uint) byte {
	if high < low || high > 8 || low < 1 {
		return 0
	}

	width := high - low + 1
	mask := byte((1 << width) - 1)

	return (b >> (low - 1)) & mask
}

// Set returns b with the n-th bit set.
func Set(b byte, n uint) byte {
	return b | Bit(n)
}

// IsSetAt reports whether position pos is set in data.
// Position 1 is the most significant bit of data[0]. Out of range positions are never set.
func IsSetAt(data []byte, pos int) bool {
	if pos < 1 || pos > len(data)*8 {
		return false
	}
	return IsSet(data[(pos-1)/8], uint(8-(pos-1)%8))
}

// SetAt sets position pos in data. Out of range positions are silently ignored.
func SetAt(data []byte, pos int) {
	if pos < 1 || pos > len(data)*8 {
		return
	}
	i := (pos - 1) / 8
	data[i] = Set(data[i], uint(8-(pos-1)%8))
}

// String renders data as a string of '0' and '1', most significant bit first.
func String(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data) * 8)
	for pos := 1; pos <= len(data)*8; pos++ {
		if IsSetAt(data, pos) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
