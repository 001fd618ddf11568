package main

import (
	"fmt"
	"strconv"
	"strings"
)

// streamEntry is one XADD'd record: an ordered field/value list, matching
// the original implementation's per-entry map in types/stream.rs.
type streamEntry struct {
	id     string
	fields []StreamField
}

// Stream is an append-only, strictly-monotonically-id-ordered sequence of
// entries. The original implementation keyed entries in a BTreeMap without
// validating id order; this implementation tightens that to Redis's actual
// "id must exceed the last one" rule and adds `*` auto-id assignment, since
// both are necessary for XADD to be usable without a client tracking ids
// itself.
type Stream struct {
	entries []streamEntry
	lastMS  int64
	lastSeq int64
}

func NewStream() *Stream {
	return &Stream{}
}

func (s *Stream) Len() int64 {
	return int64(len(s.entries))
}

// Add assigns or validates the entry id and appends the entry. id "*"
// requests auto-assignment as "<ms>-<seq>", where ms is nowMS or the last
// id's ms if that is later; an explicit id must be strictly greater than the
// stream's current last id.
func (s *Stream) Add(id string, fields []StreamField, nowMS int64) (assignedID string, err error) {
	var ms, seq int64

	if id == "*" {
		ms = nowMS
		if ms < s.lastMS {
			ms = s.lastMS
		}
		if ms == s.lastMS {
			seq = s.lastSeq + 1
		}
	} else {
		ms, seq, err = parseStreamID(id)
		if err != nil {
			return "", err
		}
		if ms < s.lastMS || (ms == s.lastMS && seq <= s.lastSeq) {
			return "", fmt.Errorf("ERR The ID specified in XADD is equal or smaller than the target stream top item")
		}
	}

	assignedID = fmt.Sprintf("%d-%d", ms, seq)
	s.entries = append(s.entries, streamEntry{id: assignedID, fields: fields})
	s.lastMS = ms
	s.lastSeq = seq
	return assignedID, nil
}

func parseStreamID(id string) (ms, seq int64, err error) {
	parts := strings.SplitN(id, "-", 2)
	ms, parseErr := strconv.ParseInt(parts[0], 10, 64)
	if parseErr != nil {
		return 0, 0, fmt.Errorf("ERR Invalid stream ID specified as stream command argument")
	}
	if len(parts) == 1 {
		return ms, 0, nil
	}
	seq, parseErr = strconv.ParseInt(parts[1], 10, 64)
	if parseErr != nil {
		return 0, 0, fmt.Errorf("ERR Invalid stream ID specified as stream command argument")
	}
	return ms, seq, nil
}
