package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSimpleString(t *testing.T) {
	assert.Equal(t, "+PONG\r\n", string(Encode(Pong())))
}

func TestEncodeError(t *testing.T) {
	assert.Equal(t, "-WRONGTYPE oops\r\n", string(Encode(ErrorValue("WRONGTYPE oops"))))
}

func TestEncodeBulkStringAndNull(t *testing.T) {
	assert.Equal(t, "$5\r\nhello\r\n", string(Encode(BulkStringFromString("hello"))))
	assert.Equal(t, "$0\r\n\r\n", string(Encode(BulkStringFromString(""))))
	assert.Equal(t, "$-1\r\n", string(Encode(NullBulk())))
}

func TestEncodeArray(t *testing.T) {
	v := Array([]Value{Integer(1), BulkStringFromString("a")})
	assert.Equal(t, "*2\r\n:1\r\n$1\r\na\r\n", string(Encode(v)))
	assert.Equal(t, "*-1\r\n", string(Encode(NullArray())))
}

func TestDecodeSingleArrayCommand(t *testing.T) {
	raw := []byte("*2\r\n$4\r\nPING\r\n$2\r\nhi\r\n")
	values, consumed, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, len(raw), consumed)
	assert.Equal(t, KindArray, values[0].Kind)
	assert.Len(t, values[0].Array, 2)
}

func TestDecodeRetainsPartialTail(t *testing.T) {
	raw := []byte("*1\r\n$4\r\nPING\r\n*1\r\n$3\r\nGE")
	values, consumed, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Less(t, consumed, len(raw))
	assert.Equal(t, "GE", string(raw[consumed:]))
}

func TestDecodePipelinedCommands(t *testing.T) {
	raw := []byte("*1\r\n$4\r\nPING\r\n*1\r\n$4\r\nPING\r\n")
	values, consumed, err := Decode(raw)
	require.NoError(t, err)
	assert.Len(t, values, 2)
	assert.Equal(t, len(raw), consumed)
}

func TestDecodeInlineBareLine(t *testing.T) {
	values, consumed, err := Decode([]byte("PING\r\n"))
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, 6, consumed)
	s, ok := values[0].Array[0].ToString()
	require.True(t, ok)
	assert.Equal(t, "PING", s)
}

func TestDecodeRejectsBadArrayLength(t *testing.T) {
	_, _, err := Decode([]byte("*99999999999\r\n"))
	assert.Error(t, err)
}

func TestDecodeRejectsMissingBulkCRLF(t *testing.T) {
	_, _, err := Decode([]byte("$3\r\nabcXY"))
	assert.Error(t, err)
}

func TestDecodeNullBulkAndArray(t *testing.T) {
	values, _, err := Decode([]byte("$-1\r\n*-1\r\n"))
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, KindNullBulk, values[0].Kind)
	assert.Equal(t, KindNullArray, values[1].Kind)
}
