package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSimpleString(t *testing.T) {
	v, n, err := Decode([]byte("+OK\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, SimpleString("OK"), v)
}

func TestDecodeError(t *testing.T) {
	v, n, err := Decode([]byte("-bad request\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 14, n)
	assert.Equal(t, Err("bad request"), v)
}

func TestDecodeInteger(t *testing.T) {
	v, _, err := Decode([]byte(":42\r\n"))
	require.NoError(t, err)
	assert.Equal(t, Integer("42"), v)
}

func TestDecodeBulkString(t *testing.T) {
	v, n, err := Decode([]byte("$5\r\nhello\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, BulkString("hello"), v)
}

func TestDecodeNullBulkString(t *testing.T) {
	v, n, err := Decode([]byte("$-1\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, Null(), v)
}

func TestDecodeArray(t *testing.T) {
	raw := "*2\r\n$3\r\nGET\r\n$1\r\na\r\n"
	v, n, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, len(raw), n)

	name, args, ok := v.ToCommand()
	require.True(t, ok)
	assert.Equal(t, "GET", name)
	require.Len(t, args, 1)
	assert.Equal(t, "a", args[0].Str)
}

func TestDecodeIncompleteWaitsForMoreBytes(t *testing.T) {
	_, _, err := Decode([]byte("$5\r\nhel"))
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestDecodeIncompleteEmptyBuffer(t *testing.T) {
	_, _, err := Decode(nil)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestDecodeUnrecognizedType(t *testing.T) {
	_, _, err := Decode([]byte("?garbage\r\n"))
	assert.ErrorIs(t, err, ErrUnrecognizedType)
}

func TestDecodeMalformedLength(t *testing.T) {
	_, _, err := Decode([]byte("$notanumber\r\nhello\r\n"))
	assert.ErrorIs(t, err, ErrMalformedLength)
}

func TestDecodeBulkStringMissingTrailingCRLF(t *testing.T) {
	_, _, err := Decode([]byte("$5\r\nhelloXX"))
	assert.ErrorIs(t, err, ErrMalformedLength)
}

func TestDecodeLoneCRIsNotATerminator(t *testing.T) {
	_, _, err := Decode([]byte("+OK\ronly-a-cr-no-lf"))
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []Value{
		SimpleString("PONG"),
		Err("boom"),
		Integer("7"),
		BulkString("hello world"),
		Null(),
		Array([]Value{BulkString("SET"), BulkString("k"), BulkString("v")}),
	}

	for _, original := range values {
		encoded := Encode(original)
		decoded, n, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, len(encoded), n)
		assert.Equal(t, original, decoded)
	}
}

func TestDecodeConsumesOnlyOneMessageFromABuffer(t *testing.T) {
	raw := []byte("+OK\r\n+ALSO-OK\r\n")
	first, n, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, SimpleString("OK"), first)

	second, _, err := Decode(raw[n:])
	require.NoError(t, err)
	assert.Equal(t, SimpleString("ALSO-OK"), second)
}
