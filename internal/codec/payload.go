package codec

import (
	"encoding/json"
	"fmt"
)

// Payload is one encoded message as it goes on the wire.
type Payload struct {
	Encoded   string    `json:"encoded"`
	CodeTable CodeTable `json:"codeTable"`
}

// Size is the number of bytes of encoded text.
func (p Payload) Size() int {
	return len(p.Encoded)
}

// TableSize is the number of bytes the code table adds on top.
func (p Payload) TableSize() int {
	n := 0
	for char, code := range p.CodeTable {
		n += len(char) + len(code)
	}
	return n
}

// EncodeJSON serializes v to JSON and Huffman-encodes the text.
func EncodeJSON(v any) (Payload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Payload{}, fmt.Errorf("marshal payload: %w", err)
	}
	encoded, table := Encode(string(data))
	return Payload{Encoded: encoded, CodeTable: table}, nil
}

// DecodeJSON reverses EncodeJSON into v.
func DecodeJSON(p Payload, v any) error {
	text, err := Decode(p.Encoded, p.CodeTable)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}
