package protocol

import "errors"

var (
	// ErrUnrecognizedType is returned when the leading byte of a message is
	// none of '+', '-', ':', '$', '*'.
	ErrUnrecognizedType = errors.New("unrecognized message type")

	// ErrMalformedLength is returned when a bulk string or array length
	// prefix cannot be parsed as a decimal integer, when a bulk string
	// length is below -1, or when a bulk string payload is not followed by
	// CRLF.
	ErrMalformedLength = errors.New("malformed length")

	// ErrIncomplete means the buffer does not yet hold a full message.
	// Callers should read more bytes and retry; it is not a protocol
	// error.
	ErrIncomplete = errors.New("incomplete message")
)
