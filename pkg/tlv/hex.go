package tlv

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Hex constructs a byte slice from a series of hex strings.
// It panics on malformed input and is meant for fixtures and tests.
func Hex(parts ...string) []byte {
	data, err := DecodeHex(parts...)
	if err != nil {
		panic(err.Error())
	}
	return data
}

// DecodeHex joins the parts, drops spaces (allowing "9F26 08 ...") and decodes the result.
func DecodeHex(parts ...string) ([]byte, error) {
	clean := strings.ReplaceAll(strings.Join(parts, ""), " ", "")

	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid input '%s': %w", clean, err)
	}
	return data, nil
}

// EncodeHex renders data as upper case hex, the form used on every ISO 8583 trace.
func EncodeHex(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}
