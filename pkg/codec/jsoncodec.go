// pkg/codec/jsoncodec.go
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Codec is the wire encoding shared by the router, the remote client and
// the CLI.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
}

type jsonLoose struct{}

// JSON accepts any well-formed document. Numbers decode as json.Number so
// integer params survive a round trip through map[string]any unchanged.
var JSON Codec = jsonLoose{}

func (jsonLoose) Marshal(v any) ([]byte, error) { return encode(v, "") }

func (jsonLoose) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	return expectEOF(dec)
}

func (jsonLoose) ContentType() string { return "application/json" }

// DecodeObject decodes a JSON object into a map. ok is false when the
// document is valid JSON but not an object.
func DecodeObject(data []byte) (m map[string]any, ok bool, err error) {
	var v any
	if err := JSON.Unmarshal(data, &v); err != nil {
		return nil, false, err
	}
	m, ok = v.(map[string]any)
	return m, ok, nil
}

// MarshalIndent is JSON.Marshal with two-space indentation.
func MarshalIndent(v any) ([]byte, error) { return encode(v, "  ") }

func encode(v any, indent string) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Probe for trailing data (must be EOF)
func expectEOF(dec *json.Decoder) error {
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return fmt.Errorf("json trailing content")
	}
	return nil
}
