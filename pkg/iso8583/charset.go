package iso8583

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// Charset is the text encoding of an ASCII field.
// The zero value is GBK, the charset of Chinese POS networks.
type Charset struct {
	name string
	enc  encoding.Encoding
}

var (
	// GBK is the default charset.
	GBK = Charset{name: "GBK", enc: simplifiedchinese.GBK}
	// UTF8 encodes text as UTF-8.
	UTF8 = Charset{name: "UTF-8", enc: unicode.UTF8}
)

// LookupCharset resolves a charset by its IANA name or alias ("GBK", "UTF-8",
// "ISO-8859-1", "windows-1252", ...).
func LookupCharset(name string) (Charset, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "GBK":
		return GBK, nil
	case "UTF-8", "UTF8":
		return UTF8, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return Charset{}, fmt.Errorf("%w: charset %q: %v", ErrUnsupported, name, err)
	}
	if enc == nil {
		return Charset{}, fmt.Errorf("%w: charset %q has no implementation", ErrUnsupported, name)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}
	return Charset{name: canonical, enc: enc}, nil
}

// Name returns the IANA name of the charset.
func (c Charset) Name() string {
	if c.enc == nil {
		return GBK.name
	}
	return c.name
}

func (c Charset) encoding() encoding.Encoding {
	if c.enc == nil {
		return GBK.enc
	}
	return c.enc
}

func (c Charset) encode(s string) ([]byte, error) {
	b, err := c.encoding().NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not representable in %s", ErrInvalidValue, s, c.Name())
	}
	return b, nil
}

func (c Charset) decode(b []byte) (string, error) {
	s, err := c.encoding().NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: bytes %X are not valid %s", ErrInvalidValue, b, c.Name())
	}
	return string(s), nil
}

func (c Charset) equal(o Charset) bool {
	return c.Name() == o.Name()
}
