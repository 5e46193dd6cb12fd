package render

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// encodeJSON encodes v without HTML escaping and without the trailing
// newline json.Encoder adds.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// encodeText returns the plain text form of an item.
func encodeText(v any) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	case fmt.Stringer:
		return []byte(t.String()), nil
	default:
		return encodeJSON(v)
	}
}

// encodeEvent returns the data payload of an item. Text is written as is,
// anything structured is JSON.
func encodeEvent(v any) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	default:
		return encodeJSON(v)
	}
}

// encodeArray writes items as one JSON array.
func encodeArray[T any](items []T) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := encodeJSON(item)
		if err != nil {
			return nil, fmt.Errorf("encoding item %d: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// concatText writes the text form of every item back to back.
func concatText[T any](items []T) ([]byte, error) {
	var buf bytes.Buffer
	for i, item := range items {
		b, err := encodeText(item)
		if err != nil {
			return nil, fmt.Errorf("encoding item %d: %w", i, err)
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}
