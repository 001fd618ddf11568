package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arrayOf(args ...string) Value {
	vals := make([]Value, len(args))
	for i, a := range args {
		vals[i] = BulkStringFromString(a)
	}
	return Array(vals)
}

func TestParsePing(t *testing.T) {
	cmd, err := ParseCommand(arrayOf("PING"))
	require.NoError(t, err)
	assert.Equal(t, CmdPing, cmd.Kind)
}

func TestParseRPushRequiresValue(t *testing.T) {
	_, err := ParseCommand(arrayOf("RPUSH", "mylist"))
	require.Error(t, err)
	assert.Equal(t, "RPUSH requires at least one value", err.Error())
}

func TestParseLRangeRequiresArgs(t *testing.T) {
	_, err := ParseCommand(arrayOf("LRANGE", "mylist"))
	require.Error(t, err)
	assert.Equal(t, "Expected values for LRANGE start and end", err.Error())
}

func TestParseLRangeRequiresIntegers(t *testing.T) {
	_, err := ParseCommand(arrayOf("LRANGE", "mylist", "a", "b"))
	require.Error(t, err)
	assert.Equal(t, "Expected integer values for LRANGE start and end", err.Error())
}

func TestParseBLPopRequiresFloatTimeout(t *testing.T) {
	_, err := ParseCommand(arrayOf("BLPOP", "mylist", "soon"))
	require.Error(t, err)
	assert.Equal(t, "timeout is not a float", err.Error())
}

func TestParseBLPopOK(t *testing.T) {
	cmd, err := ParseCommand(arrayOf("BLPOP", "mylist", "1.5"))
	require.NoError(t, err)
	assert.Equal(t, CmdBLPop, cmd.Kind)
	assert.Equal(t, 1.5, cmd.TimeoutSeconds)
}

func TestParseZAddRejectsNXAndXX(t *testing.T) {
	_, err := ParseCommand(arrayOf("ZADD", "z", "NX", "XX", "1", "a"))
	require.Error(t, err)
}

func TestParseZAddRejectsGTAndLT(t *testing.T) {
	_, err := ParseCommand(arrayOf("ZADD", "z", "GT", "LT", "1", "a"))
	require.Error(t, err)
}

func TestParseZAddIncrRequiresSinglePair(t *testing.T) {
	_, err := ParseCommand(arrayOf("ZADD", "z", "INCR", "1", "a", "2", "b"))
	require.Error(t, err)
}

func TestParseZAddOK(t *testing.T) {
	cmd, err := ParseCommand(arrayOf("ZADD", "z", "1", "a", "2", "b"))
	require.NoError(t, err)
	require.Len(t, cmd.ScoreMembers, 2)
	assert.Equal(t, 1.0, cmd.ScoreMembers[0].Score)
	assert.Equal(t, "a", cmd.ScoreMembers[0].Member)
}

func TestParseSetWithPX(t *testing.T) {
	cmd, err := ParseCommand(arrayOf("SET", "k", "v", "PX", "100"))
	require.NoError(t, err)
	assert.True(t, cmd.HasExpiry)
	assert.Equal(t, int64(100), cmd.ExpiryMS)
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := ParseCommand(arrayOf("NOPE"))
	assert.Error(t, err)
}

func TestParseXAddRequiresFieldPair(t *testing.T) {
	_, err := ParseCommand(arrayOf("XADD", "s", "*", "field"))
	assert.Error(t, err)
}
