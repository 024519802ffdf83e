// Package codec encodes the values array of a persisted trie.
//
// The codec name is stored in the file header, so changing codecs makes
// previously saved dictionaries unreadable with the new one.
package codec

import (
	ugorji "github.com/ugorji/go/codec"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is msgpack.
var Default Codec = Msgpack{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "msgpack":
		return Msgpack{}, true
	case "json":
		return JSON{}, true
	default:
		return nil, false
	}
}

var (
	msgpackHandle = &ugorji.MsgpackHandle{}
	jsonHandle    = &ugorji.JsonHandle{}
)

type Msgpack struct{}

func (Msgpack) Name() string { return "msgpack" }

func (Msgpack) Marshal(v any) ([]byte, error) {
	return marshal(msgpackHandle, v)
}

func (Msgpack) Unmarshal(data []byte, v any) error {
	return ugorji.NewDecoderBytes(data, msgpackHandle).Decode(v)
}

type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Marshal(v any) ([]byte, error) {
	return marshal(jsonHandle, v)
}

func (JSON) Unmarshal(data []byte, v any) error {
	return ugorji.NewDecoderBytes(data, jsonHandle).Decode(v)
}

func marshal(h ugorji.Handle, v any) ([]byte, error) {
	var out []byte
	if err := ugorji.NewEncoderBytes(&out, h).Encode(v); err != nil {
		return nil, err
	}
	return out, nil
}
