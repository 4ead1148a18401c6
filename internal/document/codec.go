package document

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ErrMalformed is returned when the input is not a persisted document.
var ErrMalformed = errors.New("malformed document")

// DecodeError locates a malformed part of a persisted document.
type DecodeError struct {
	Path    string
	Message string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %s", ErrMalformed, e.Message)
	}
	return fmt.Sprintf("%v: %s: %s", ErrMalformed, e.Path, e.Message)
}

// Is matches ErrMalformed.
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformed
}

// Decode parses a persisted document. A bare JSON array is accepted as the
// block list of a document without time and version.
func Decode(raw []byte) (Output, error) {
	if !gjson.ValidBytes(raw) {
		return Output{}, &DecodeError{Message: "invalid JSON"}
	}

	root := gjson.ParseBytes(raw)
	var out Output

	switch {
	case root.IsArray():
		blocks, err := decodeBlocks(root, "")
		if err != nil {
			return Output{}, err
		}
		out.Blocks = blocks
	case root.IsObject():
		if t := root.Get("time"); t.Exists() {
			if t.Type != gjson.Number {
				return Output{}, &DecodeError{Path: "time", Message: "must be a number"}
			}
			out.Time = t.Int()
		}
		if v := root.Get("version"); v.Exists() {
			if v.Type != gjson.String {
				return Output{}, &DecodeError{Path: "version", Message: "must be a string"}
			}
			out.Version = v.Str
		}
		if b := root.Get("blocks"); b.Exists() {
			if !b.IsArray() {
				return Output{}, &DecodeError{Path: "blocks", Message: "must be an array"}
			}
			blocks, err := decodeBlocks(b, "blocks")
			if err != nil {
				return Output{}, err
			}
			out.Blocks = blocks
		}
	default:
		return Output{}, &DecodeError{Message: "document must be an object or an array"}
	}

	return out, nil
}

func decodeBlocks(arr gjson.Result, prefix string) ([]Block, error) {
	items := arr.Array()
	blocks := make([]Block, 0, len(items))

	for i, item := range items {
		path := fmt.Sprintf("%d", i)
		if prefix != "" {
			path = prefix + "." + path
		}
		if !item.IsObject() {
			return nil, &DecodeError{Path: path, Message: "block must be an object"}
		}

		typ := item.Get("type")
		if typ.Type != gjson.String || typ.Str == "" {
			return nil, &DecodeError{Path: path + ".type", Message: "must be a non-empty string"}
		}

		data := map[string]any{}
		if d := item.Get("data"); d.Exists() && d.Type != gjson.Null {
			if !d.IsObject() {
				return nil, &DecodeError{Path: path + ".data", Message: "must be an object"}
			}
			if m, ok := d.Value().(map[string]any); ok {
				data = m
			}
		}

		blocks = append(blocks, Block{Type: typ.Str, Data: data})
	}
	return blocks, nil
}

// Encode serializes a document with keys in time, blocks, version order.
func Encode(out Output) ([]byte, error) {
	raw := []byte(`{}`)
	var err error

	if raw, err = sjson.SetBytes(raw, "time", out.Time); err != nil {
		return nil, fmt.Errorf("encoding time: %w", err)
	}
	if raw, err = sjson.SetRawBytes(raw, "blocks", []byte(`[]`)); err != nil {
		return nil, fmt.Errorf("encoding blocks: %w", err)
	}
	for i, b := range out.Blocks {
		if raw, err = sjson.SetBytes(raw, "blocks.-1", NewBlock(b.Type, b.Data)); err != nil {
			return nil, fmt.Errorf("encoding block %d: %w", i, err)
		}
	}
	if raw, err = sjson.SetBytes(raw, "version", out.Version); err != nil {
		return nil, fmt.Errorf("encoding version: %w", err)
	}
	return raw, nil
}

// EncodeIndent is Encode followed by pretty printing.
func EncodeIndent(out Output) ([]byte, error) {
	raw, err := Encode(out)
	if err != nil {
		return nil, err
	}
	return pretty.Pretty(raw), nil
}
