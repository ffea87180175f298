package emv

import (
	"fmt"

	"github.com/gregLibert/iso8583/pkg/iso8583"
	"github.com/gregLibert/iso8583/pkg/tlv"
)

// FieldICC is the data element carrying chip data.
const FieldICC iso8583.Index = 55

// ICCDataFromMessage interprets field 55 of a request.
func ICCDataFromMessage(m *iso8583.Message) (*ICCData, error) {
	raw, err := iccField(m)
	if err != nil {
		return nil, err
	}
	return ParseICCData(raw)
}

// IssuerResponseFromMessage interprets field 55 of a response.
func IssuerResponseFromMessage(m *iso8583.Message) (*IssuerResponse, error) {
	raw, err := iccField(m)
	if err != nil {
		return nil, err
	}
	return ParseIssuerResponse(raw)
}

// SetICCData stores d as field 55 of the message being built.
func SetICCData(e *iso8583.Encoder, d *ICCData) error {
	h, err := d.Hex()
	if err != nil {
		return fmt.Errorf("failed to serialise ICC data: %w", err)
	}
	return e.Set(FieldICC, h).Err()
}

func iccField(m *iso8583.Message) ([]byte, error) {
	f, ok := m.Field(FieldICC)
	if !ok {
		return nil, fmt.Errorf("message has no %s", FieldICC)
	}
	return tlv.DecodeHex(f.ValueHex())
}
