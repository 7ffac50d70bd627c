package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeForm parses a raw annotation document from JSON. Parsing and
// construction are separate steps: the returned form has the right
// shape but has not been checked against any invariant until it is
// passed to Build.
func DecodeForm(r io.Reader) (*Form, error) {
	var form Form
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&form); err != nil {
		return nil, fmt.Errorf("decode annotation document: %w", err)
	}
	return &form, nil
}

// DecodeFormBytes parses a raw annotation document from a byte slice.
func DecodeFormBytes(data []byte) (*Form, error) {
	return DecodeForm(bytes.NewReader(data))
}

// DecodeDataTree parses an arbitrary nested data tree from JSON.
// Numbers decode as json.Number so the resolver can distinguish
// integral values from ones carrying a fractional component.
func DecodeDataTree(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode data tree: %w", err)
	}
	return tree, nil
}

// DecodeDataTreeBytes parses a data tree from a byte slice.
func DecodeDataTreeBytes(data []byte) (any, error) {
	return DecodeDataTree(bytes.NewReader(data))
}
