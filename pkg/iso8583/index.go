package iso8583

import (
	"fmt"
	"strconv"
	"strings"
)

// Index identifies an element of a message.
//
// Data elements use their ISO number (1..64 or 1..128). Header elements that
// precede the bitmap use negative sentinels; their numeric order is the order
// they appear on the wire.
type Index int

const (
	IndexHeaderLength    Index = -128 // UnionPay header length
	IndexHeaderFlag      Index = -127 // UnionPay header flag and version
	IndexLength          Index = -99  // total message length
	IndexDestinationID   Index = -29
	IndexSourceID        Index = -28
	IndexReserved        Index = -27
	IndexBatchNumber     Index = -26
	IndexTransactionInfo Index = -25
	IndexUserInfo        Index = -24
	IndexRejectCode      Index = -23
	IndexTPDU            Index = -3 // transport protocol data unit
	IndexHeader          Index = -2 // terminal application header
	IndexMTI             Index = -1 // message type indicator
	IndexBitmap          Index = 0
)

var headerNames = map[Index]string{
	IndexHeaderLength:    "HEADER_LENGTH",
	IndexHeaderFlag:      "HEADER_FLAG",
	IndexLength:          "LENGTH",
	IndexDestinationID:   "DESTINATION_ID",
	IndexSourceID:        "SOURCE_ID",
	IndexReserved:        "RESERVED",
	IndexBatchNumber:     "BATCH_NUMBER",
	IndexTransactionInfo: "TRANSACTION_INFO",
	IndexUserInfo:        "USER_INFO",
	IndexRejectCode:      "REJECT_CODE",
	IndexTPDU:            "TPDU",
	IndexHeader:          "HEADER",
	IndexMTI:             "MTI",
	IndexBitmap:          "BITMAP",
}

// IsHeader reports whether i is one of the known header sentinels (bitmap excluded).
func (i Index) IsHeader() bool {
	_, ok := headerNames[i]
	return ok && i != IndexBitmap
}

// IsData reports whether i is a data element number.
func (i Index) IsData() bool {
	return i > 0
}

// key is the path segment of the element: "MTI" for headers, "4" for data elements.
func (i Index) key() string {
	if name, ok := headerNames[i]; ok {
		return name
	}
	return strconv.Itoa(int(i))
}

// String returns "F4" for data elements and the header name otherwise.
func (i Index) String() string {
	if i.IsData() {
		return "F" + strconv.Itoa(int(i))
	}
	return i.key()
}

// ParseIndex reads an index written as a number ("4", "F4") or a header name
// ("mti", "TPDU", "destination_id").
func ParseIndex(s string) (Index, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for idx, n := range headerNames {
		if n == name {
			return idx, nil
		}
	}

	digits := strings.TrimPrefix(name, "F")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown index %q", ErrConfig, s)
	}
	idx := Index(n)
	if idx < 0 && !idx.IsHeader() {
		return 0, fmt.Errorf("%w: unknown header index %d", ErrConfig, n)
	}
	return idx, nil
}
