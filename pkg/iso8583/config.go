package iso8583

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Dialect files.
//
// A layout can be described in YAML instead of Go:
//
//	name: pos
//	fields: 64
//	length: envelope          # envelope, inline, or omitted
//	secondary_bitmap: false
//	types:
//	  - {index: length, size: 2, value: hex, align: right}
//	  - {index: mti, size: 4, value: bcd}
//	  - {index: 2, length: llvar, value: bcd}
//	  - {index: 43, size: 40, value: ascii, pad: " ", charset: GBK}
//	  - {index: 55, length: lllvar, value: hex, tlv: true}
//	  - index: 60
//	    length: lllvar
//	    value: bcd
//	    sub:
//	      - {index: 1, size: 2, value: bcd, align: none}
//
// Indices are data element numbers or header names (tpdu, header, mti,
// length, destination_id...). The length class defaults to fixed.

type layoutDocument struct {
	Name            string         `yaml:"name"`
	Fields          int            `yaml:"fields"`
	Length          string         `yaml:"length"`
	SecondaryBitmap bool           `yaml:"secondary_bitmap"`
	Types           []typeDocument `yaml:"types"`
}

type typeDocument struct {
	Index   indexNode      `yaml:"index"`
	Length  string         `yaml:"length"`
	Size    int            `yaml:"size"`
	Value   string         `yaml:"value"`
	Align   string         `yaml:"align"`
	Pad     string         `yaml:"pad"`
	Charset string         `yaml:"charset"`
	TLV     bool           `yaml:"tlv"`
	Sub     []typeDocument `yaml:"sub"`
}

// indexNode accepts an index written as a number or a header name.
type indexNode struct {
	Index
	set bool
}

func (n *indexNode) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: index must be a scalar", ErrConfig, node.Line)
	}
	idx, err := ParseIndex(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	n.Index, n.set = idx, true
	return nil
}

// LoadLayout reads a YAML dialect description. Unknown keys are rejected.
func LoadLayout(r io.Reader) (*Layout, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc layoutDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, configError(err)
	}
	l, err := doc.layout()
	if err != nil {
		return nil, configError(err)
	}
	return l, nil
}

// configError marks any problem found in a dialect file as ErrConfig,
// keeping the more specific kind when there is one.
func configError(err error) error {
	if errors.Is(err, ErrConfig) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrConfig, err)
}

// LoadLayoutFile is LoadLayout over a file.
func LoadLayoutFile(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dialect: %w", err)
	}
	defer f.Close()

	l, err := LoadLayout(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

func (d layoutDocument) layout() (*Layout, error) {
	opts := []LayoutOption{WithName(d.Name)}
	switch d.Length {
	case "", "envelope":
	case "inline":
		opts = append(opts, WithInlineLength())
	default:
		return nil, fmt.Errorf("%w: length %q is neither envelope nor inline", ErrConfig, d.Length)
	}
	if d.SecondaryBitmap {
		opts = append(opts, WithSecondaryBitmap())
	}

	types, err := buildTypes(d.Types)
	if err != nil {
		return nil, err
	}
	l, err := NewLayout(d.Fields, types, opts...)
	if err != nil {
		return nil, err
	}
	if d.Length == "envelope" && !l.Has(IndexLength) {
		return nil, fmt.Errorf("%w: envelope length without a %s element", ErrConfig, IndexLength)
	}
	return l, nil
}

func buildTypes(docs []typeDocument) ([]FieldType, error) {
	types := make([]FieldType, 0, len(docs))
	for i, td := range docs {
		t, err := td.fieldType()
		if err != nil {
			return nil, fmt.Errorf("types[%d]: %w", i, err)
		}
		types = append(types, t)
	}
	return types, nil
}

func (td typeDocument) fieldType() (FieldType, error) {
	if !td.Index.set {
		return FieldType{}, fmt.Errorf("%w: missing index", ErrConfig)
	}
	path := td.Index.key()

	length := LengthFixed
	if td.Length != "" {
		var err error
		if length, err = ParseLengthEncoding(td.Length); err != nil {
			return FieldType{}, fieldError(path, err)
		}
	}
	value, err := ParseValueEncoding(td.Value)
	if err != nil {
		return FieldType{}, fieldError(path, err)
	}
	align, err := ParseAlign(td.Align)
	if err != nil {
		return FieldType{}, fieldError(path, err)
	}

	opts := []TypeOption{WithAlign(align)}
	if td.Pad != "" {
		if utf8.RuneCountInString(td.Pad) != 1 {
			return FieldType{}, fieldError(path, fmt.Errorf("%w: pad %q must be one character", ErrConfig, td.Pad))
		}
		r, _ := utf8.DecodeRuneInString(td.Pad)
		opts = append(opts, WithPad(r))
	}
	if td.Charset != "" {
		cs, err := LookupCharset(td.Charset)
		if err != nil {
			return FieldType{}, fieldError(path, err)
		}
		opts = append(opts, WithCharset(cs))
	}
	if td.TLV {
		opts = append(opts, WithTLV())
	}
	if len(td.Sub) > 0 {
		children, err := buildTypes(td.Sub)
		if err != nil {
			return FieldType{}, fieldError(path, err)
		}
		sub, err := NewSubLayout(children...)
		if err != nil {
			return FieldType{}, fieldError(path, err)
		}
		opts = append(opts, WithSubLayout(sub))
	}

	if length == LengthFixed {
		return FixedField(td.Index.Index, td.Size, value, opts...), nil
	}
	if td.Size != 0 {
		return FieldType{}, fieldError(path, fmt.Errorf("%w: %s field cannot declare a size", ErrConfig, length))
	}
	return VariableField(td.Index.Index, length, value, opts...), nil
}
