package emv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gregLibert/iso8583/pkg/tlv"
)

// DE55 of a UnionPay POS purchase request.
const purchaseICC = "9F260846FD62985CAAE7589F2701809F101307011703A00000010A0100000500001EF41C469F37049536C9B89F36020C66950500000000009A032208249C01009F02060000000011115F2A02015682027C009F1A0201569F03060000000000009F330360E9C89F34030000009F3501229F1E0831323334353637388408A0000003330101029F090200309F410400000001"

func TestParseICCData(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantAmount string
		wantErr    bool
	}{
		{
			name:       "Purchase request",
			input:      purchaseICC,
			wantAmount: "000000001111",
		},
		{
			name:       "Unknown proprietary tag is kept",
			input:      "9F02 06 000000000100 9F7C 02 1234",
			wantAmount: "000000000100",
		},
		{
			name:    "Empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "Truncated value",
			input:   "9F02 06 0000",
			wantErr: true,
		},
		{
			name:    "Non minimal length",
			input:   "95 81 05 0000000000",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseICCDataHex(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseICCDataHex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if amount := tlv.EncodeHex(got.AmountAuthorised); amount != tt.wantAmount {
				t.Errorf("AmountAuthorised = %s, want %s", amount, tt.wantAmount)
			}
		})
	}
}

func TestICCData_RoundTrip(t *testing.T) {
	raw := tlv.Hex(purchaseICC)

	icc, err := ParseICCData(raw)
	if err != nil {
		t.Fatalf("ParseICCData() error = %v", err)
	}
	if len(icc.Unknown) != 0 {
		t.Errorf("Unknown = %v, want none", icc.Unknown)
	}

	again, err := icc.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if !bytes.Equal(again, raw) {
		t.Errorf("Bytes() mismatch\n got: %X\nwant: %X", again, raw)
	}

	h, err := icc.Hex()
	if err != nil {
		t.Fatalf("Hex() error = %v", err)
	}
	if h != purchaseICC {
		t.Errorf("Hex() = %s, want %s", h, purchaseICC)
	}
}

func TestICCData_Describe(t *testing.T) {
	icc, err := ParseICCDataHex(purchaseICC)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	expectedLines := []string{
		"=== EMV ICC DATA ===",
		"    - ICC.ApplicationCryptogram (9F26): 46FD62985CAAE758",
		"    - ICC.CryptogramInformationData (9F27): 80",
		"    - ICC.IssuerApplicationData (9F10): 07011703A00000010A0100000500001EF41C46",
		"    - ICC.UnpredictableNumber (9F37): 9536C9B8",
		"    - ICC.ApplicationTransactionCounter (9F36): 0C66 (Dec: 3174)",
		"    - ICC.TerminalVerificationResults (95): 0000000000",
		"    - ICC.TransactionDate (9A): 220824 (2022-08-24)",
		"    - ICC.TransactionType (9C): 00",
		"    - ICC.AmountAuthorised (9F02): 000000001111 (BCD: 1111)",
		"    - ICC.TransactionCurrencyCode (5F2A): 0156 (BCD: 156)",
		"    - ICC.ApplicationInterchangeProfile (82): 7C00",
		"    - ICC.TerminalCountryCode (9F1A): 0156 (BCD: 156)",
		"    - ICC.AmountOther (9F03): 000000000000 (BCD: 0)",
		"    - ICC.TerminalCapabilities (9F33): 60E9C8",
		"    - ICC.CardholderVerificationResults (9F34): 000000",
		"    - ICC.TerminalType (9F35): 22",
		`    - ICC.InterfaceDeviceSerialNumber (9F1E): 3132333435363738 ("12345678")`,
		"    - ICC.DedicatedFileName (84): A000000333010102",
		"    - ICC.ApplicationVersionNumber (9F09): 0030",
		"    - ICC.TransactionSequenceCounter (9F41): 00000001 (BCD: 1)",
	}

	if diff := cmp.Diff(expectedLines, strings.Split(icc.Describe(), "\n")); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}
}
