package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyspaceStringRoundTrip(t *testing.T) {
	k := NewKeyspace()
	k.SetString("name", []byte("sam"), 0)

	data, ok, wrongType := k.GetString("name")
	require.True(t, ok)
	assert.False(t, wrongType)
	assert.Equal(t, "sam", string(data))
}

func TestKeyspaceMissingKey(t *testing.T) {
	k := NewKeyspace()
	_, ok, wrongType := k.GetString("nope")
	assert.False(t, ok)
	assert.False(t, wrongType)
}

func TestKeyspaceTypeExclusivity(t *testing.T) {
	k := NewKeyspace()
	_, err := k.PushBack("mylist", [][]byte{[]byte("a")})
	require.NoError(t, err)

	_, ok, wrongType := k.GetString("mylist")
	assert.False(t, ok)
	assert.True(t, wrongType)
}

func TestKeyspaceSetOverwritesAcrossTypes(t *testing.T) {
	k := NewKeyspace()
	_, err := k.PushBack("key", [][]byte{[]byte("a")})
	require.NoError(t, err)

	k.SetString("key", []byte("now a string"), 0)
	data, ok, wrongType := k.GetString("key")
	require.True(t, ok)
	assert.False(t, wrongType)
	assert.Equal(t, "now a string", string(data))
}

func TestKeyspaceStringExpiresLazily(t *testing.T) {
	k := NewKeyspace()
	fixed := time.Now()
	k.clock = func() time.Time { return fixed }
	k.SetString("temp", []byte("x"), fixed.UnixMilli()+10)

	_, ok, _ := k.GetString("temp")
	assert.True(t, ok)

	k.clock = func() time.Time { return fixed.Add(time.Second) }
	_, ok, _ = k.GetString("temp")
	assert.False(t, ok)
}

func TestKeyspaceDelAndExists(t *testing.T) {
	k := NewKeyspace()
	k.SetString("a", []byte("1"), 0)
	k.SetString("b", []byte("2"), 0)

	assert.Equal(t, int64(2), k.Exists([]string{"a", "b", "c"}))
	assert.Equal(t, int64(2), k.Del([]string{"a", "b", "c"}))
	assert.Equal(t, int64(0), k.Exists([]string{"a", "b"}))
}

func TestKeyspaceListPopDeletesEmptyKey(t *testing.T) {
	k := NewKeyspace()
	_, err := k.PushBack("q", [][]byte{[]byte("only")})
	require.NoError(t, err)

	popped, err := k.LPopN("q", 1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("only")}, popped)
	assert.Equal(t, TypeNone, k.Type("q"))
}

func TestKeyspaceZSetWrongType(t *testing.T) {
	k := NewKeyspace()
	k.SetString("s", []byte("x"), 0)
	_, _, _, _, err := k.ZAdd("s", ZAddFlags{}, []ScoreMember{{Score: 1, Member: "a"}})
	assert.Error(t, err)
}

func TestKeyspaceSubscribeNotify(t *testing.T) {
	k := NewKeyspace()
	ch := k.Subscribe("k")

	done := make(chan struct{})
	go func() {
		k.Notify("k")
		close(done)
	}()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("notify did not wake subscriber")
	}
	<-done
}

func TestKeyspaceXAddAndXLen(t *testing.T) {
	k := NewKeyspace()
	id, err := k.XAdd("stream", "*", []StreamField{{Field: "f", Value: "v"}}, 1000)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	n, err := k.XLen("stream")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
