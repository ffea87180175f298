package iso8583

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMessage_Update(t *testing.T) {
	m, err := NewMessage(PosLayout())
	require.NoError(t, err)

	if m.Hex() != "0008"+"0000000000000000" {
		t.Errorf("empty message Hex() = %s", m.Hex())
	}

	require.NoError(t, m.Update(IndexMTI, "0800"))
	require.NoError(t, m.Update(4, "1111"))

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Bitmap", m.BitmapHex(), "1000000000000000"},
		{"Bits", m.BitmapBits(), "0001" + strings.Repeat("0", 60)},
		{"Body", m.BodyHex(), "0800" + "1000000000000000" + "000000001111"},
		{"Whole", m.Hex(), "0010" + "0800" + "1000000000000000" + "000000001111"},
		{"Amount", m.Value(4), "000000001111"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, tt.got, tt.want)
		}
	}
	if m.Length() != 16 {
		t.Errorf("Length() = %d, want 16", m.Length())
	}

	// Last write wins.
	require.NoError(t, m.Update(4, "2"))
	if m.Value(4) != "000000000002" {
		t.Errorf("Value(4) after second Update = %s", m.Value(4))
	}

	require.NoError(t, m.Remove(4))
	require.NoError(t, m.Remove(4))
	if m.Has(4) || m.BitmapHex() != "0000000000000000" || m.Length() != 10 {
		t.Errorf("after Remove(4): has %v, bitmap %s, length %d", m.Has(4), m.BitmapHex(), m.Length())
	}
}

func TestMessage_Update_Errors(t *testing.T) {
	m, err := NewMessage(PosLayout())
	require.NoError(t, err)
	require.NoError(t, m.Update(3, "000000"))
	before := m.Hex()

	tests := []struct {
		name    string
		index   Index
		value   string
		wantErr error
	}{
		{"Derived bitmap", IndexBitmap, "FF", ErrConfig},
		{"Derived length", IndexLength, "0010", ErrConfig},
		{"Unregistered element", 5, "12", ErrConfig},
		{"Overflow keeps previous value", 3, "1234567", ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Update(tt.index, tt.value)
			require.ErrorIs(t, err, tt.wantErr)
			if m.Hex() != before {
				t.Errorf("failed Update changed the message: %s", m.Hex())
			}
		})
	}

	foreign, err := FixedField(3, 6, ASCII).EncodeField("000000")
	require.NoError(t, err)
	require.ErrorIs(t, m.UpdateField(foreign), ErrConfig)

	own, err := VariableField(55, LengthLLLVAR, HEX, WithTLV()).EncodeField(chipData)
	require.NoError(t, err)
	require.ErrorIs(t, m.UpdateField(own.Children()[0]), ErrConfig)
	require.NoError(t, m.UpdateField(own))
}

func TestMessage_Lookup(t *testing.T) {
	m, err := NewDecoder(PosLayout()).DecodeHex(payResponse)
	require.NoError(t, err)

	tests := []struct {
		path  string
		want  string
		found bool
	}{
		{"MTI", "0210", true},
		{"tpdu", "6000030000", true},
		{"4", "000000001111", true},
		{"F39", "00", true},
		{"60.2", "000727", true},
		{"60.7", "070", true},
		{"55.9F26", "46FD62985CAAE758", true},
		{"55.9f02", "000000001111", true},
		{"55.DF01", "", false},
		{"5", "", false},
		{"4.1", "", false},
		{"PAN", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, ok := m.Lookup(tt.path)
			if ok != tt.found {
				t.Fatalf("Lookup(%s) found = %v, want %v", tt.path, ok, tt.found)
			}
			if f.Value() != tt.want {
				t.Errorf("Lookup(%s) = %q, want %q", tt.path, f.Value(), tt.want)
			}
		})
	}
}

func TestMessage_Mac(t *testing.T) {
	m, err := NewDecoder(PosLayout()).DecodeHex(payRequest)
	require.NoError(t, err)

	// TPDU (5 bytes) and header (6 bytes) are outside the MAC; F64 is the MAC.
	want := payRequest[22 : len(payRequest)-16]
	if m.MacBlockHex() != want {
		t.Errorf("MacBlockHex() = %s, want %s", m.MacBlockHex(), want)
	}
	if m.MacHex() != "3833353932373435" {
		t.Errorf("MacHex() = %s, want 3833353932373435", m.MacHex())
	}
	if diff := cmp.Diff([]byte("83592745"), m.Mac()); diff != "" {
		t.Errorf("Mac() mismatch (-want +got):\n%s", diff)
	}
	if len(m.MacBlock()) != len(want)/2 {
		t.Errorf("MacBlock() = %d bytes, want %d", len(m.MacBlock()), len(want)/2)
	}
}

func TestMessage_MTI(t *testing.T) {
	m, err := NewDecoder(PosLayout()).DecodeHex(payRequest)
	require.NoError(t, err)

	mti, err := m.MTI()
	require.NoError(t, err)
	if mti.Class != ClassFinancial || !mti.IsRequest() {
		t.Errorf("MTI() = %s, want a financial request", mti)
	}

	empty, err := NewMessage(PosLayout())
	require.NoError(t, err)
	_, err = empty.MTI()
	require.ErrorIs(t, err, ErrConfig)
}

func TestMessage_Format(t *testing.T) {
	m, err := NewDecoder(PosLayout()).DecodeHex(signatureResponse)
	require.NoError(t, err)

	lines := strings.Split(m.Format(), "\n")
	want := []string{
		"[LENGTH][FIXED][HEX][2][0051]",
		"[TPDU][FIXED][BCD][10][6000030000]",
		"[HEADER][FIXED][BCD][12][603100310100]",
		"[MTI][FIXED][BCD][4][0930]",
		"[BITMAP][FIXED][HEX][8][002000000AC00111]",
		"[F11][FIXED][BCD][6][000079]",
		"[F37][FIXED][ASCII][12][X00004002761]",
		"[F39][FIXED][ASCII][2][00]",
		"[F41][FIXED][ASCII][8][10016919]",
		"[F42][FIXED][ASCII][15][84316655812000A]",
		"[F56][LLLVAR][ASCII][4][成功]",
		"[F60][LLLVAR][BCD][8][07000727]",
		"  [F60.1][FIXED][BCD][2][07]",
		"  [F60.2][FIXED][BCD][6][000727]",
		"[F64][FIXED][HEX][8][3839314333323442]",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("Format() mismatch (-want +got):\n%s", diff)
	}
}

func TestMessage_Equal(t *testing.T) {
	d := NewDecoder(PosLayout())
	a, err := d.DecodeHex(payRequest)
	require.NoError(t, err)
	b, err := d.DecodeHex(payRequest)
	require.NoError(t, err)

	if !a.Equal(b) {
		t.Error("two decodes of the same data should be equal")
	}
	require.NoError(t, b.Update(11, "000080"))
	if a.Equal(b) {
		t.Error("messages with different F11 should differ")
	}

	var nilMsg *Message
	if a.Equal(nilMsg) || !nilMsg.Equal(nil) {
		t.Error("nil comparisons are wrong")
	}
}
