// Package codec decodes wire data into managed revmodel values and encodes
// them back.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/reoring/revmodel"
)

// DecodeJSON decodes data and constructs a value of type t under the default
// lifecycle. Numbers are decoded as json.Number so that large integers keep
// their precision until the Number type normalizes them.
func DecodeJSON(t revmodel.Type, data []byte) (any, error) {
	return DecodeJSONIn(nil, t, data)
}

// DecodeJSONIn is DecodeJSON under an explicit lifecycle.
func DecodeJSONIn(lc *revmodel.Lifecycle, t revmodel.Type, data []byte) (any, error) {
	v, err := readJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return revmodel.NewIn(lc, t, v)
}

// DecodeJSONReader decodes a single JSON document from r.
func DecodeJSONReader(lc *revmodel.Lifecycle, t revmodel.Type, r io.Reader) (any, error) {
	v, err := readJSON(r)
	if err != nil {
		return nil, err
	}
	return revmodel.NewIn(lc, t, v)
}

func readJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("codec: decode json: %w", err)
	}
	if dec.More() {
		return nil, errors.New("codec: decode json: trailing data after document")
	}
	return v, nil
}

// EncodeJSON renders a managed instance as JSON. Maps with non-string keys
// are rendered as arrays of [key, value] pairs.
func EncodeJSON(inst revmodel.Instance) ([]byte, error) {
	return inst.MarshalJSON()
}
