package main

// listNode is one element of the doubly-linked list backing ListValue,
// mirroring the teacher's ListNode shape in the now-retired data_structures.go.
type listNode struct {
	value      []byte
	prev, next *listNode
}

// List is an unsynchronized doubly-linked list; callers (Keyspace) provide
// the locking. Head is the LPUSH/LPOP end, tail the RPUSH end.
type List struct {
	head, tail *listNode
	length     int
}

func NewList() *List {
	return &List{}
}

func (l *List) Len() int {
	return l.length
}

func (l *List) PushFront(value []byte) {
	n := &listNode{value: value}
	if l.head == nil {
		l.head = n
		l.tail = n
	} else {
		n.next = l.head
		l.head.prev = n
		l.head = n
	}
	l.length++
}

func (l *List) PushBack(value []byte) {
	n := &listNode{value: value}
	if l.tail == nil {
		l.head = n
		l.tail = n
	} else {
		n.prev = l.tail
		l.tail.next = n
		l.tail = n
	}
	l.length++
}

// PopFront removes and returns the head element, if any.
func (l *List) PopFront() ([]byte, bool) {
	if l.head == nil {
		return nil, false
	}
	n := l.head
	l.head = n.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}
	l.length--
	return n.value, true
}

// PopFrontN pops up to count elements from the head, in head-to-tail order.
// count <= 0 pops nothing.
func (l *List) PopFrontN(count int) [][]byte {
	if count <= 0 {
		return nil
	}
	out := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		v, ok := l.PopFront()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// Range returns a copy of the elements between normalized start/end
// (inclusive), following the negative-index wraparound and clamping rules
// shared with ZRANGE.
func (l *List) Range(start, end int64) [][]byte {
	lo, hi, ok := normalizeRange(start, end, int64(l.length))
	if !ok {
		return [][]byte{}
	}

	out := make([][]byte, 0, hi-lo+1)
	idx := int64(0)
	for n := l.head; n != nil; n = n.next {
		if idx > hi {
			break
		}
		if idx >= lo {
			out = append(out, n.value)
		}
		idx++
	}
	return out
}

// normalizeRange applies Redis-style negative-index wraparound and clamping
// to a [start, end] pair against a collection of the given length, shared
// between LRANGE and ZRANGE. Returns ok=false for an empty resulting range.
func normalizeRange(start, end, length int64) (lo, hi int64, ok bool) {
	if length == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += length
	}
	if end < 0 {
		end += length
	}
	if start < 0 {
		start = 0
	}
	if end >= length {
		end = length - 1
	}
	if start > end || start >= length || end < 0 {
		return 0, 0, false
	}
	return start, end, true
}
