package sectordoc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codec serializes sector documents.
type Codec interface {
	// Extension is the file extension without the dot.
	Extension() string
	// ContentType is the MIME type used when serving documents.
	ContentType() string
	Marshal(doc *Document) ([]byte, error)
	Unmarshal(data []byte, doc *Document) error
}

// CodecFor returns the codec for a configured format name ("xml" or "yaml").
func CodecFor(format string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "xml":
		return XMLCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported sector document format %q", format)
	}
}

// XMLCodec writes indented XML documents.
type XMLCodec struct{}

func (XMLCodec) Extension() string { return "xml" }

func (XMLCodec) ContentType() string { return "application/xml; charset=utf-8" }

func (XMLCodec) Marshal(doc *Document) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (XMLCodec) Unmarshal(data []byte, doc *Document) error {
	return xml.Unmarshal(data, doc)
}

// YAMLCodec writes YAML documents.
type YAMLCodec struct{}

func (YAMLCodec) Extension() string { return "yaml" }

func (YAMLCodec) ContentType() string { return "application/yaml; charset=utf-8" }

func (YAMLCodec) Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (YAMLCodec) Unmarshal(data []byte, doc *Document) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("empty yaml document")
	}
	return yaml.Unmarshal(data, doc)
}
