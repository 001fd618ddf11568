package main

import (
	"fmt"
	"sync"
	"time"
)

// ValueType tags the kind of value stored under a key.
type ValueType uint8

const (
	TypeNone ValueType = iota
	TypeString
	TypeList
	TypeZSet
	TypeStream
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeZSet:
		return "zset"
	case TypeStream:
		return "stream"
	default:
		return "none"
	}
}

// StringValue is a scalar byte payload with an optional absolute expiry.
type StringValue struct {
	Data      []byte
	ExpiresAt int64 // unix milliseconds; 0 means no expiry
}

func (s *StringValue) expired(nowMS int64) bool {
	return s.ExpiresAt != 0 && s.ExpiresAt <= nowMS
}

// entry is the tagged union stored per key: exactly one of the typed
// pointers is non-nil, matching its Type.
type entry struct {
	Type   ValueType
	Str    *StringValue
	List   *List
	ZSet   *SortedSet
	Stream *Stream
}

// KeyResult mirrors the three-way outcome of a creating/updating write.
type KeyResult int

const (
	KeyCreated KeyResult = iota
	KeyUpdated
	KeyWrongType
)

// wrongTypeErr is the exact prefix tests pin, per spec §6.
var wrongTypeErr = fmt.Errorf("WRONGTYPE Operation against a key holding the wrong kind of value")

// Keyspace is the shared, concurrent-safe container of typed values. A
// single Mutex guards the whole map AND the notifier registry; the §3
// invariants (type exclusivity, sorted-set dual-index consistency,
// at-least-one-wake) all hold within one critical section — subscribing
// and notifying share the exact lock that also guards the pop/push they
// race against, so there is no window in which a push's notify can land
// between a waiter's failed pop and its subscribe.
type Keyspace struct {
	mu        sync.Mutex
	data      map[string]*entry
	notifiers map[string]chan struct{}

	clock func() time.Time
}

func NewKeyspace() *Keyspace {
	return &Keyspace{
		data:      make(map[string]*entry),
		notifiers: make(map[string]chan struct{}),
		clock:     time.Now,
	}
}

func (k *Keyspace) nowMS() int64 {
	return k.clock().UnixMilli()
}

// deleteExpiredLocked removes a key if it holds an expired string. Caller
// must hold k.mu.
func (k *Keyspace) deleteExpiredLocked(key string) {
	if e, ok := k.data[key]; ok && e.Type == TypeString && e.Str.expired(k.nowMS()) {
		delete(k.data, key)
	}
}

// Type reports the tag for TYPE, "none" for an absent or lazily-expired key.
func (k *Keyspace) Type(key string) ValueType {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.deleteExpiredLocked(key)
	e, ok := k.data[key]
	if !ok {
		return TypeNone
	}
	return e.Type
}

// Del removes the given keys (any type) and returns how many existed.
func (k *Keyspace) Del(keys []string) int64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	var n int64
	for _, key := range keys {
		k.deleteExpiredLocked(key)
		if _, ok := k.data[key]; ok {
			delete(k.data, key)
			n++
		}
	}
	return n
}

// Exists returns how many of the given keys are present and unexpired.
func (k *Keyspace) Exists(keys []string) int64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	var n int64
	for _, key := range keys {
		k.deleteExpiredLocked(key)
		if _, ok := k.data[key]; ok {
			n++
		}
	}
	return n
}

// GetString returns the string payload for key, or ok=false if absent,
// expired, or of a different type (distinguished via wrongType).
func (k *Keyspace) GetString(key string) (data []byte, ok bool, wrongType bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.deleteExpiredLocked(key)
	e, exists := k.data[key]
	if !exists {
		return nil, false, false
	}
	if e.Type != TypeString {
		return nil, false, true
	}
	return e.Str.Data, true, false
}

// SetString unconditionally installs a string value, overwriting any prior
// value of any type, per spec.md §9 Open Question (i): this implementation
// chooses "overwrite across types" for SET, matching Redis's own semantics
// and the original source's `create_or_update_key` fallthrough for SET
// specifically (commands/set.rs always replaces the slot outright).
func (k *Keyspace) SetString(key string, data []byte, expiresAtMS int64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.data[key] = &entry{Type: TypeString, Str: &StringValue{Data: data, ExpiresAt: expiresAtMS}}
}

// PushFront/PushBack create the list on demand and append each value in
// argument order in one critical section and, when the push takes the list
// from empty to non-empty, notify any blocked BLPOP waiters before releasing
// the lock — the at-least-one-wake invariant (spec §3 invariant 5) depends
// on the push and the notify happening atomically with respect to any
// concurrent TryPopFrontOrSubscribe call.
func (k *Keyspace) PushFront(key string, values [][]byte) (int, error) {
	return k.push(key, values, true)
}

func (k *Keyspace) PushBack(key string, values [][]byte) (int, error) {
	return k.push(key, values, false)
}

func (k *Keyspace) push(key string, values [][]byte, front bool) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.deleteExpiredLocked(key)
	e, exists := k.data[key]
	if exists {
		if e.Type != TypeList {
			return 0, wrongTypeErr
		}
	} else {
		e = &entry{Type: TypeList, List: NewList()}
		k.data[key] = e
	}

	wasEmpty := e.List.Len() == 0
	for _, v := range values {
		if front {
			e.List.PushFront(v)
		} else {
			e.List.PushBack(v)
		}
	}
	n := e.List.Len()

	if wasEmpty && n > 0 {
		k.notifyLocked(key)
	}

	return n, nil
}

func (k *Keyspace) LLen(key string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.deleteExpiredLocked(key)
	e, ok := k.data[key]
	if !ok {
		return 0, nil
	}
	if e.Type != TypeList {
		return 0, wrongTypeErr
	}
	return e.List.Len(), nil
}

func (k *Keyspace) LRange(key string, start, end int64) ([][]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.deleteExpiredLocked(key)
	e, ok := k.data[key]
	if !ok {
		return [][]byte{}, nil
	}
	if e.Type != TypeList {
		return nil, wrongTypeErr
	}
	return e.List.Range(start, end), nil
}

// LPopN pops up to count elements from the head. Deleting the key entirely
// on empty is an implementation choice permitted by spec §3 (either policy
// is allowed; externally observable length is 0 either way) — this
// implementation deletes, matching the teacher's handleListPop cleanup.
func (k *Keyspace) LPopN(key string, count int64) ([][]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.deleteExpiredLocked(key)
	e, exists := k.data[key]
	if !exists {
		return nil, nil
	}
	if e.Type != TypeList {
		return nil, wrongTypeErr
	}
	popped := e.List.PopFrontN(int(count))
	if e.List.Len() == 0 {
		delete(k.data, key)
	}
	return popped, nil
}

func (k *Keyspace) tryPopFrontLocked(key string) (val []byte, ok bool, wrongType bool) {
	k.deleteExpiredLocked(key)
	e, exists := k.data[key]
	if !exists {
		return nil, false, false
	}
	if e.Type != TypeList {
		return nil, false, true
	}
	v, popped := e.List.PopFront()
	if !popped {
		return nil, false, false
	}
	if e.List.Len() == 0 {
		delete(k.data, key)
	}
	return v, true, false
}

// TryPopFrontOrSubscribe attempts a pop and, if it fails because the list is
// empty or absent, atomically subscribes to the key's notifier in the same
// critical section — this is what closes the lost-wakeup window: a push
// that lands concurrently either completes before this call (so the pop
// below succeeds) or happens after this call obtains its channel (so the
// matching Notify is guaranteed to reach it).
func (k *Keyspace) TryPopFrontOrSubscribe(key string) (val []byte, ok bool, wrongType bool, notify <-chan struct{}) {
	k.mu.Lock()
	defer k.mu.Unlock()
	val, ok, wrongType = k.tryPopFrontLocked(key)
	if ok || wrongType {
		return val, ok, wrongType, nil
	}
	return nil, false, false, k.subscribeLocked(key)
}

// getZSetLocked fetches (creating on demand if forWrite) the sorted set for
// key. Every caller holds k.mu for the lifetime of its use of the returned
// pointer — the pointer itself is never handed back across a lock release,
// since SortedSet's dual index is only consistent under that lock.
func (k *Keyspace) getZSetLocked(key string, forWrite bool) (zs *SortedSet, exists bool, wrongType bool) {
	k.deleteExpiredLocked(key)
	e, ok := k.data[key]
	if ok {
		if e.Type != TypeZSet {
			return nil, false, true
		}
		return e.ZSet, true, false
	}
	if !forWrite {
		return nil, false, false
	}
	z := NewSortedSet()
	k.data[key] = &entry{Type: TypeZSet, ZSet: z}
	return z, false, false
}

func (k *Keyspace) ZCard(key string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	zs, exists, wrongType := k.getZSetLocked(key, false)
	if wrongType {
		return 0, wrongTypeErr
	}
	if !exists {
		return 0, nil
	}
	return zs.Len(), nil
}

func (k *Keyspace) ZRank(key, member string) (rank int, found bool, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	zs, exists, wrongType := k.getZSetLocked(key, false)
	if wrongType {
		return 0, false, wrongTypeErr
	}
	if !exists {
		return 0, false, nil
	}
	r, ok := zs.RankOf(member)
	return r, ok, nil
}

func (k *Keyspace) ZScore(key, member string) (score float64, found bool, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	zs, exists, wrongType := k.getZSetLocked(key, false)
	if wrongType {
		return 0, false, wrongTypeErr
	}
	if !exists {
		return 0, false, nil
	}
	s, ok := zs.ScoreOf(member)
	return s, ok, nil
}

func (k *Keyspace) ZRange(key string, start, end int64) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	zs, exists, wrongType := k.getZSetLocked(key, false)
	if wrongType {
		return nil, wrongTypeErr
	}
	if !exists {
		return []string{}, nil
	}
	return zs.Range(start, end), nil
}

func (k *Keyspace) ZRem(key, member string) (int64, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	zs, exists, wrongType := k.getZSetLocked(key, false)
	if wrongType {
		return 0, wrongTypeErr
	}
	if !exists {
		return 0, nil
	}
	if zs.Remove(member) {
		return 1, nil
	}
	return 0, nil
}

// ZAdd applies NX/XX/GT/LT/CH/INCR semantics member by member under one
// critical section, matching the original's all-or-nothing-per-call
// evaluation. incrResult is only meaningful when flags.Incr is set: it
// carries the resulting score, or ok=false if the single pair was skipped
// by a conflicting flag.
func (k *Keyspace) ZAdd(key string, flags ZAddFlags, members []ScoreMember) (added, changed int64, incrResult float64, incrOK bool, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	zs, _, wrongType := k.getZSetLocked(key, true)
	if wrongType {
		return 0, 0, 0, false, wrongTypeErr
	}

	for _, sm := range members {
		existing, exists := zs.ScoreOf(sm.Member)

		if flags.NX && exists {
			continue
		}
		if flags.XX && !exists {
			continue
		}

		newScore := sm.Score
		if flags.Incr {
			newScore = existing + sm.Score
		}

		if exists {
			if flags.GT && newScore <= existing {
				continue
			}
			if flags.LT && newScore >= existing {
				continue
			}
		}

		created := zs.InsertOrReplace(sm.Member, newScore)
		if created {
			added++
			changed++
		} else if newScore != existing {
			changed++
		}

		if flags.Incr {
			incrResult, incrOK = newScore, true
		}
	}

	return added, changed, incrResult, incrOK, nil
}

func (k *Keyspace) XLen(key string) (int64, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.deleteExpiredLocked(key)
	e, ok := k.data[key]
	if !ok {
		return 0, nil
	}
	if e.Type != TypeStream {
		return 0, wrongTypeErr
	}
	return e.Stream.Len(), nil
}

// XAdd appends an entry to the stream at key, creating it on demand, all
// under one critical section so concurrent XADDs against the same key
// never interleave their id-monotonicity check with their append.
func (k *Keyspace) XAdd(key, id string, fields []StreamField, nowMS int64) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.deleteExpiredLocked(key)
	e, exists := k.data[key]
	if exists {
		if e.Type != TypeStream {
			return "", wrongTypeErr
		}
	} else {
		e = &entry{Type: TypeStream, Stream: NewStream()}
		k.data[key] = e
	}

	return e.Stream.Add(id, fields, nowMS)
}

// Subscribe returns a receive channel tied to key's notifier, lazily
// allocating the notifier on first use. Prefer TryPopFrontOrSubscribe,
// which does this atomically with the pop attempt it guards; this standalone
// form exists for callers (tests, future blocking commands) that need to
// subscribe without an accompanying pop.
func (k *Keyspace) Subscribe(key string) <-chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.subscribeLocked(key)
}

func (k *Keyspace) subscribeLocked(key string) <-chan struct{} {
	ch, ok := k.notifiers[key]
	if !ok {
		ch = make(chan struct{})
		k.notifiers[key] = ch
	}
	return ch
}

// Notify broadcasts a wakeup to every current subscriber of key by closing
// and replacing its channel — a single "tick" fans out to all waiters, who
// each re-arbitrate via their own tryPop, matching the broadcast-channel
// design note in spec §9.
func (k *Keyspace) Notify(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.notifyLocked(key)
}

func (k *Keyspace) notifyLocked(key string) {
	if ch, ok := k.notifiers[key]; ok {
		close(ch)
	}
	k.notifiers[key] = make(chan struct{})
}
