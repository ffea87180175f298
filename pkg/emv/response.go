package emv

import (
	"fmt"
	"strings"

	"github.com/gregLibert/iso8583/pkg/tlv"
	"github.com/moov-io/bertlv"
)

// ScriptTemplate is an issuer script (tag '71' before the second GENERATE AC, '72' after).
type ScriptTemplate struct {
	ScriptID []byte   `tlv:"9F18"`
	Commands [][]byte `tlv:"86"`

	Unknown []bertlv.TLV `tlv:",unknown"`
}

// IssuerResponse is the chip data returned by the issuer in field 55 of a response.
type IssuerResponse struct {
	AuthenticationData []byte           `tlv:"91"`
	ResponseCode       []byte           `tlv:"8A" fmt:"ascii"`
	ScriptsBefore      []ScriptTemplate `tlv:"71"`
	ScriptsAfter       []ScriptTemplate `tlv:"72"`

	Unknown []bertlv.TLV `tlv:",unknown"`
}

// ParseIssuerResponse interprets the raw value of field 55 of a response.
func ParseIssuerResponse(data []byte) (*IssuerResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty issuer response")
	}

	resp := &IssuerResponse{}
	if err := tlv.Unmarshal(data, resp); err != nil {
		return nil, fmt.Errorf("failed to map issuer response: %w", err)
	}
	return resp, nil
}

// Bytes serialises the response back into its TLV form.
func (r *IssuerResponse) Bytes() ([]byte, error) {
	return tlv.Marshal(r)
}

// Describe generates a report of the response, one block per script.
func (r *IssuerResponse) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== EMV ISSUER RESPONSE ===")

	tlv.WriteStructFields(&sb, "Response", r)

	writeScripts(&sb, "71", r.ScriptsBefore)
	writeScripts(&sb, "72", r.ScriptsAfter)

	return strings.TrimRight(sb.String(), "\n")
}

func writeScripts(sb *strings.Builder, tag string, scripts []ScriptTemplate) {
	for i, s := range scripts {
		prefix := fmt.Sprintf("Script%s[%d]", tag, i+1)
		tlv.WriteStructFields(sb, prefix, s)

		objs := make([]tlv.Object, 0, len(s.Commands))
		for _, c := range s.Commands {
			objs = append(objs, tlv.New("86", c))
		}
		tlv.WriteObjects(sb, prefix, objs)
	}
}
