package emv

import (
	"fmt"
	"strings"

	"github.com/gregLibert/iso8583/pkg/tlv"
	"github.com/moov-io/bertlv"
)

// ICCData is the chip data a terminal sends in field 55 of an authorisation
// or financial request. Field order follows the order terminals emit the tags in,
// so Bytes reproduces a typical request byte for byte.
type ICCData struct {
	ApplicationCryptogram           []byte `tlv:"9F26"`
	CryptogramInformationData       []byte `tlv:"9F27"`
	IssuerApplicationData           []byte `tlv:"9F10"`
	UnpredictableNumber             []byte `tlv:"9F37"`
	ApplicationTransactionCounter   []byte `tlv:"9F36" fmt:"int"`
	TerminalVerificationResults     []byte `tlv:"95"`
	TransactionDate                 []byte `tlv:"9A" fmt:"date"`
	TransactionType                 []byte `tlv:"9C"`
	AmountAuthorised                []byte `tlv:"9F02" fmt:"bcd"`
	TransactionCurrencyCode         []byte `tlv:"5F2A" fmt:"bcd"`
	ApplicationInterchangeProfile   []byte `tlv:"82"`
	TerminalCountryCode             []byte `tlv:"9F1A" fmt:"bcd"`
	AmountOther                     []byte `tlv:"9F03" fmt:"bcd"`
	TerminalCapabilities            []byte `tlv:"9F33"`
	CardholderVerificationResults   []byte `tlv:"9F34"`
	TerminalType                    []byte `tlv:"9F35"`
	InterfaceDeviceSerialNumber     []byte `tlv:"9F1E" fmt:"ascii"`
	DedicatedFileName               []byte `tlv:"84"`
	ApplicationVersionNumber        []byte `tlv:"9F09"`
	TransactionSequenceCounter      []byte `tlv:"9F41" fmt:"bcd"`
	ApplicationPANSequenceNumber    []byte `tlv:"5F34" fmt:"bcd"`
	ApplicationIdentifierTerminal   []byte `tlv:"9F06"`
	TransactionCategoryCode         []byte `tlv:"9F53" fmt:"ascii"`
	ElectronicCashIssuerAuthorising []byte `tlv:"9F74" fmt:"ascii"`

	Unknown []bertlv.TLV `tlv:",unknown"`
}

// ParseICCData maps the raw value of field 55 onto an ICCData.
// The data is first checked with the strict flat codec, so a value the
// message layer would refuse is refused here too.
func ParseICCData(data []byte) (*ICCData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty ICC data")
	}
	if _, err := tlv.Parse(data); err != nil {
		return nil, fmt.Errorf("ICC data: %w", err)
	}

	icc := &ICCData{}
	if err := tlv.Unmarshal(data, icc); err != nil {
		return nil, fmt.Errorf("failed to map ICC data: %w", err)
	}
	return icc, nil
}

// ParseICCDataHex is ParseICCData over the hex text of field 55.
func ParseICCDataHex(s string) (*ICCData, error) {
	data, err := tlv.DecodeHex(s)
	if err != nil {
		return nil, err
	}
	return ParseICCData(data)
}

// Bytes serialises the chip data back into its TLV form.
func (d *ICCData) Bytes() ([]byte, error) {
	return tlv.Marshal(d)
}

// Hex is Bytes as upper case hex, ready for Encoder.Set(55, ...).
func (d *ICCData) Hex() (string, error) {
	data, err := d.Bytes()
	if err != nil {
		return "", err
	}
	return tlv.EncodeHex(data), nil
}

// Describe generates a report of every tag present.
func (d *ICCData) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== EMV ICC DATA ===")

	tlv.WriteStructFields(&sb, "ICC", d)

	return strings.TrimRight(sb.String(), "\n")
}
