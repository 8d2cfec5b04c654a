package server

import (
	"mime"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/unkn0wn-root/memocache/codec"
)

const (
	ctJSON     = "application/json"
	ctMsgpack  = "application/msgpack"
	ctCBOR     = "application/cbor"
	ctProtobuf = "application/x-protobuf"
)

// indexResponse is the body of the index action: {"message": [...]}.
type indexResponse struct {
	Message []string `json:"message" msgpack:"message" cbor:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type renderer struct {
	json     codec.JSON[indexResponse]
	msgpack  codec.Msgpack[indexResponse]
	cbor     codec.CBOR[indexResponse]
	protobuf codec.Protobuf[*structpb.Struct]
}

func newRenderer() *renderer {
	return &renderer{
		cbor:     codec.MustCBOR[indexResponse](true),
		protobuf: codec.NewProtobuf(func() *structpb.Struct { return &structpb.Struct{} }),
	}
}

func (r *renderer) render(contentType string, msgs []string) ([]byte, error) {
	if msgs == nil {
		msgs = []string{}
	}
	resp := indexResponse{Message: msgs}
	switch contentType {
	case ctMsgpack:
		return r.msgpack.Encode(resp)
	case ctCBOR:
		return r.cbor.Encode(resp)
	case ctProtobuf:
		list := make([]any, len(msgs))
		for i, m := range msgs {
			list[i] = m
		}
		st, err := structpb.NewStruct(map[string]any{"message": list})
		if err != nil {
			return nil, err
		}
		return r.protobuf.Encode(st)
	default:
		return r.json.Encode(resp)
	}
}

// negotiate picks the first supported media type in Accept order.
// q-values are ignored; anything unknown falls back to JSON.
func negotiate(accept string) string {
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case ctJSON, ctMsgpack, ctCBOR, ctProtobuf:
			return mt
		case "*/*", "application/*":
			return ctJSON
		}
	}
	return ctJSON
}
