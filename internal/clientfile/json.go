package clientfile

import (
	"bytes"
	"encoding/json"
)

type jsonCodec struct{}

func (jsonCodec) decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
