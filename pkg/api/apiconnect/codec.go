// Package apiconnect binds the splitledger services to Connect. It plays the
// role of protoc-gen-connect-go output for the plain Go messages in package
// api, which travel as JSON.
package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// codecName matches the Connect "json" codec, so curl and browser clients
// can send application/json or application/connect+json.
const codecName = "json"

// jsonCodec marshals plain Go structs with encoding/json. Connect's built-in
// JSON codec only accepts protobuf messages.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		// An empty body is an empty message.
		return nil
	}
	return json.Unmarshal(data, msg)
}

// WithJSON is the handler option that installs the JSON codec.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
