package clientfile

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

type yamlCodec struct{}

func (yamlCodec) decode(data []byte, v interface{}) error {
	return yaml.Unmarshal(data, v)
}

func (yamlCodec) encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
