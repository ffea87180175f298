package emv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gregLibert/iso8583/pkg/tlv"
)

func issuerResponseFixture() []byte {
	return tlv.Hex(
		"91 0A 11223344556677883030", // Issuer Authentication Data
		"8A 02 3030",                 // Authorisation Response Code "00"
		"72 17",                      // Issuer Script Template 2
		"9F18 04 00000001",           // Script Identifier
		"86 07 84240000021122",       // Script Command
		"86 05 8418000000",           // Script Command
	)
}

func TestParseIssuerResponse(t *testing.T) {
	resp, err := ParseIssuerResponse(issuerResponseFixture())
	if err != nil {
		t.Fatalf("ParseIssuerResponse() error = %v", err)
	}

	if string(resp.ResponseCode) != "00" {
		t.Errorf("ResponseCode = %q, want 00", resp.ResponseCode)
	}
	if len(resp.ScriptsBefore) != 0 {
		t.Errorf("ScriptsBefore = %d scripts, want 0", len(resp.ScriptsBefore))
	}
	if len(resp.ScriptsAfter) != 1 {
		t.Fatalf("ScriptsAfter = %d scripts, want 1", len(resp.ScriptsAfter))
	}

	wantCommands := [][]byte{tlv.Hex("84240000021122"), tlv.Hex("8418000000")}
	if diff := cmp.Diff(wantCommands, resp.ScriptsAfter[0].Commands); diff != "" {
		t.Errorf("Commands mismatch (-want +got):\n%s", diff)
	}

	again, err := resp.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if !bytes.Equal(again, issuerResponseFixture()) {
		t.Errorf("Bytes() = %X, want %X", again, issuerResponseFixture())
	}
}

func TestParseIssuerResponse_Errors(t *testing.T) {
	if _, err := ParseIssuerResponse(nil); err == nil {
		t.Error("ParseIssuerResponse(nil) should fail")
	}
	if _, err := ParseIssuerResponse(tlv.Hex("91 0A 1122")); err == nil {
		t.Error("ParseIssuerResponse() on truncated data should fail")
	}
}

func TestIssuerResponse_Describe(t *testing.T) {
	resp, err := ParseIssuerResponse(issuerResponseFixture())
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	expectedLines := []string{
		"=== EMV ISSUER RESPONSE ===",
		"    - Response.AuthenticationData (91): 11223344556677883030",
		`    - Response.ResponseCode (8A): 3030 ("00")`,
		"    - Script72[1].ScriptID (9F18): 00000001",
		"    - Script72[1].86 (7): 84240000021122",
		"    - Script72[1].86 (5): 8418000000",
	}

	if diff := cmp.Diff(expectedLines, strings.Split(resp.Describe(), "\n")); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}
}
