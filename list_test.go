package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListPushAndRange(t *testing.T) {
	l := NewList()
	l.PushBack([]byte("a"))
	l.PushBack([]byte("b"))
	l.PushFront([]byte("z"))

	assert.Equal(t, 3, l.Len())
	got := l.Range(0, -1)
	assert.Equal(t, [][]byte{[]byte("z"), []byte("a"), []byte("b")}, got)
}

func TestListPopFrontN(t *testing.T) {
	l := NewList()
	l.PushBack([]byte("a"))
	l.PushBack([]byte("b"))
	l.PushBack([]byte("c"))

	popped := l.PopFrontN(2)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, popped)
	assert.Equal(t, 1, l.Len())
}

func TestListRangeOutOfBounds(t *testing.T) {
	l := NewList()
	l.PushBack([]byte("a"))
	assert.Equal(t, [][]byte{}, l.Range(5, 10))
}

func TestListPopFrontEmpty(t *testing.T) {
	l := NewList()
	_, ok := l.PopFront()
	assert.False(t, ok)
}
