package eqpb

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is registered as grpc's wire codec name. The standard grpc-go
// client and server both default to "proto"; registering our own codec
// under that name lets GetKeccakInclusionRequest/Response ride the real
// grpc.Server/grpc.ClientConn stack without protoc-generated descriptors.
const CodecName = "proto"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec marshals eqpb messages as JSON. It satisfies
// google.golang.org/grpc/encoding.Codec.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}
