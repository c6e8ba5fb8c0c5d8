package common

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	jsoniter "github.com/json-iterator/go"
	"github.com/vmihailenco/msgpack/v5"
)

// StrictJSON is used for persisted payloads: keys are written sorted and
// unknown fields are rejected on decode.
var StrictJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// MarshalMsgpack encodes v with map key sorting enabled.
func MarshalMsgpack(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalMsgpack decodes exactly one value from data into v. Unknown
// fields and trailing bytes are errors.
func UnmarshalMsgpack(data []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields(true)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after msgpack value")
	}
	return nil
}

// CheckDuplicateKeys fails if any object in the JSON document data repeats a
// key. Decoding into maps and structs would otherwise keep the last value.
func CheckDuplicateKeys(data []byte) error {
	return checkDuplicateKeys(jx.DecodeBytes(data), "$")
}

func checkDuplicateKeys(d *jx.Decoder, path string) error {
	switch d.Next() {
	case jx.Object:
		seen := map[string]struct{}{}
		return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			k := string(key)
			if _, ok := seen[k]; ok {
				return errors.Errorf("duplicate key %q in %s", k, path)
			}
			seen[k] = struct{}{}
			return checkDuplicateKeys(d, path+"."+k)
		})
	case jx.Array:
		i := 0
		return d.Arr(func(d *jx.Decoder) error {
			err := checkDuplicateKeys(d, fmt.Sprintf("%s[%d]", path, i))
			i++
			return err
		})
	default:
		return d.Skip()
	}
}
