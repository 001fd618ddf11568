package main

import (
	"sort"
	"strconv"
)

// formatScore renders a score the way Redis does: as a plain integer when
// it has no fractional part, otherwise with Go's shortest round-tripping
// decimal representation.
func formatScore(score float64) string {
	if score == float64(int64(score)) {
		return strconv.FormatInt(int64(score), 10)
	}
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// zsetEntry is one (member, score) pair held by the ordered index.
type zsetEntry struct {
	member string
	score  float64
}

// zsetLess defines the total order used throughout: ascending by score, then
// ascending lexicographically by member to break ties. ZADD accepts any
// score strconv.ParseFloat accepts, NaN and infinities included; NaN sorts
// after every non-NaN score and equals another NaN, so NaN-scored members
// are ordered among themselves by member.
func zsetLess(a, b zsetEntry) bool {
	if !sameScore(a.score, b.score) {
		if isNaNFloat(a.score) {
			return false
		}
		if isNaNFloat(b.score) {
			return true
		}
		return a.score < b.score
	}
	return a.member < b.member
}

func isNaNFloat(f float64) bool {
	return f != f
}

// sameScore is score equality under zsetLess's order: NaN equals NaN.
func sameScore(a, b float64) bool {
	return a == b || (isNaNFloat(a) && isNaNFloat(b))
}

// SortedSet keeps a member->score map alongside a score-ordered slice index,
// mirroring original_source/src/datatypes/sorted_set.rs's dual structure.
// Every mutation updates both under the same critical section (Keyspace's
// lock), so the two never observably disagree.
type SortedSet struct {
	scores map[string]float64
	index  []zsetEntry // kept sorted by zsetLess
}

func NewSortedSet() *SortedSet {
	return &SortedSet{scores: make(map[string]float64)}
}

func (z *SortedSet) Len() int {
	return len(z.scores)
}

func (z *SortedSet) ScoreOf(member string) (float64, bool) {
	s, ok := z.scores[member]
	return s, ok
}

func (z *SortedSet) findIndex(member string, score float64) int {
	target := zsetEntry{member: member, score: score}
	i := sort.Search(len(z.index), func(i int) bool { return !zsetLess(z.index[i], target) })
	for i < len(z.index) && sameScore(z.index[i].score, score) {
		if z.index[i].member == member {
			return i
		}
		i++
	}
	return -1
}

func (z *SortedSet) removeFromIndex(member string, score float64) {
	i := z.findIndex(member, score)
	if i < 0 {
		return
	}
	z.index = append(z.index[:i], z.index[i+1:]...)
}

func (z *SortedSet) insertIntoIndex(member string, score float64) {
	entry := zsetEntry{member: member, score: score}
	i := sort.Search(len(z.index), func(i int) bool { return !zsetLess(z.index[i], entry) })
	z.index = append(z.index, zsetEntry{})
	copy(z.index[i+1:], z.index[i:])
	z.index[i] = entry
}

// InsertOrReplace sets member's score, updating both the map and the
// ordered index. Returns true if member is new.
func (z *SortedSet) InsertOrReplace(member string, score float64) (created bool) {
	old, exists := z.scores[member]
	if exists {
		if old == score {
			return false
		}
		z.removeFromIndex(member, old)
	}
	z.scores[member] = score
	z.insertIntoIndex(member, score)
	return !exists
}

// Remove deletes member if present, returning whether it existed.
func (z *SortedSet) Remove(member string) bool {
	old, exists := z.scores[member]
	if !exists {
		return false
	}
	delete(z.scores, member)
	z.removeFromIndex(member, old)
	return true
}

// RankOf returns member's zero-based position in ascending score order.
func (z *SortedSet) RankOf(member string) (int, bool) {
	score, ok := z.scores[member]
	if !ok {
		return 0, false
	}
	i := z.findIndex(member, score)
	if i < 0 {
		return 0, false
	}
	return i, true
}

// Range returns members in ascending order for the normalized [start, end]
// window, sharing the negative-index/clamping rules with LRANGE.
func (z *SortedSet) Range(start, end int64) []string {
	lo, hi, ok := normalizeRange(start, end, int64(len(z.index)))
	if !ok {
		return []string{}
	}
	out := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, z.index[i].member)
	}
	return out
}
