// Package rpc is the request/response bridge between a client endpoint and
// the remote agent peer: envelope codec, inbound dispatch, peer resolution
// and outbound calls with retry. It consumes a core.Session transport and
// never implements one.
package rpc

import "encoding/json"

// Reply is the structured envelope for calls that need a success/failure
// discriminator. Bare-string methods bypass it entirely; callers and handlers
// agree by method name which convention applies.
type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Encode marshals v into the string payload carried over the transport.
func Encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a structured payload into v. Malformed input yields a
// *DecodeError; field validation stays with each handler.
func Decode(s string, v any) error {
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// Success is the minimal {"ok":true} reply.
func Success() string {
	s, _ := Encode(Reply{OK: true})
	return s
}

// Failure wraps msg into the {"ok":false,"error":...} reply.
func Failure(msg string) string {
	s, _ := Encode(Reply{OK: false, Error: msg})
	return s
}
