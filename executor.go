package main

import (
	"time"
)

// Execute dispatches a parsed command against the shared keyspace and
// returns the wire value to send back. Every branch is a total function:
// parse errors never reach here (ParseCommand already rejected them), so
// the only failure mode left is WRONGTYPE and command-specific domain
// errors, both surfaced as RESP errors rather than Go errors bubbling up to
// the connection loop.
func Execute(cmd *Command, store *Keyspace, nowMS func() int64) Value {
	switch cmd.Kind {
	case CmdPing:
		return Pong()

	case CmdEcho:
		return BulkStringFromString(cmd.Msg)

	case CmdGet:
		data, ok, wrongType := store.GetString(cmd.Key)
		if wrongType {
			return wrongTypeValue()
		}
		if !ok {
			return NullBulk()
		}
		return BulkString(data)

	case CmdSet:
		expiresAt := int64(0)
		if cmd.HasExpiry {
			expiresAt = nowMS() + cmd.ExpiryMS
		}
		store.SetString(cmd.Key, cmd.Value, expiresAt)
		return OK()

	case CmdRPush:
		n, err := store.PushBack(cmd.Key, cmd.Values)
		if err != nil {
			return ErrorValue(err.Error())
		}
		return Integer(int64(n))

	case CmdLPush:
		n, err := store.PushFront(cmd.Key, cmd.Values)
		if err != nil {
			return ErrorValue(err.Error())
		}
		return Integer(int64(n))

	case CmdLRange:
		vals, err := store.LRange(cmd.Key, cmd.Start, cmd.End)
		if err != nil {
			return ErrorValue(err.Error())
		}
		return bulkArray(vals)

	case CmdLLen:
		n, err := store.LLen(cmd.Key)
		if err != nil {
			return ErrorValue(err.Error())
		}
		return Integer(int64(n))

	case CmdLPop:
		vals, err := store.LPopN(cmd.Key, cmd.Count)
		if err != nil {
			return ErrorValue(err.Error())
		}
		if !cmd.HasCount {
			if len(vals) == 0 {
				return NullBulk()
			}
			return BulkString(vals[0])
		}
		return bulkArray(vals)

	case CmdBLPop:
		return executeBLPop(cmd, store)

	case CmdZAdd:
		return executeZAdd(cmd, store)

	case CmdZRank:
		rank, found, err := store.ZRank(cmd.Key, cmd.Member)
		if err != nil {
			return ErrorValue(err.Error())
		}
		if !found {
			return NullBulk()
		}
		return Integer(int64(rank))

	case CmdZRange:
		members, err := store.ZRange(cmd.Key, cmd.Start, cmd.End)
		if err != nil {
			return ErrorValue(err.Error())
		}
		return stringArray(members)

	case CmdZCard:
		n, err := store.ZCard(cmd.Key)
		if err != nil {
			return ErrorValue(err.Error())
		}
		return Integer(int64(n))

	case CmdZScore:
		score, found, err := store.ZScore(cmd.Key, cmd.Member)
		if err != nil {
			return ErrorValue(err.Error())
		}
		if !found {
			return NullBulk()
		}
		return BulkStringFromString(formatScore(score))

	case CmdZRem:
		n, err := store.ZRem(cmd.Key, cmd.Member)
		if err != nil {
			return ErrorValue(err.Error())
		}
		return Integer(n)

	case CmdType:
		return SimpleString(store.Type(cmd.Key).String())

	case CmdDel:
		return Integer(store.Del(cmd.Keys))

	case CmdExists:
		return Integer(store.Exists(cmd.Keys))

	case CmdXAdd:
		return executeXAdd(cmd, store, nowMS)

	case CmdXLen:
		n, err := store.XLen(cmd.Key)
		if err != nil {
			return ErrorValue(err.Error())
		}
		return Integer(n)

	default:
		return ErrorValue("ERR unknown command")
	}
}

func wrongTypeValue() Value {
	return ErrorValue(wrongTypeErr.Error())
}

func bulkArray(vals [][]byte) Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = BulkString(v)
	}
	return Array(out)
}

func stringArray(vals []string) Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = BulkStringFromString(v)
	}
	return Array(out)
}

// executeBLPop implements the blocking pop loop: try a pop, and if the list
// was empty, subscribe to the key's notifier in the SAME keyspace critical
// section as the failed pop (Keyspace.TryPopFrontOrSubscribe) — this closes
// the lost-wakeup window a separate try-then-subscribe pair would leave
// open, guaranteeing a push landing between iterations is either already
// visible to the pop or reaches us through the channel we just obtained.
func executeBLPop(cmd *Command, store *Keyspace) Value {
	var deadline time.Time
	hasDeadline := cmd.TimeoutSeconds > 0
	if hasDeadline {
		deadline = time.Now().Add(time.Duration(cmd.TimeoutSeconds * float64(time.Second)))
	}

	for {
		val, ok, wrongType, notify := store.TryPopFrontOrSubscribe(cmd.Key)
		if wrongType {
			return wrongTypeValue()
		}
		if ok {
			return Array([]Value{BulkStringFromString(cmd.Key), BulkString(val)})
		}

		if !hasDeadline {
			<-notify
			continue
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return NullArray()
		}
		timer := time.NewTimer(remaining)
		select {
		case <-notify:
			timer.Stop()
		case <-timer.C:
			return NullArray()
		}
	}
}

// executeZAdd applies NX/XX/GT/LT/CH/INCR semantics member by member, under
// a single critical section on the set (Keyspace.ZAdd), matching the
// original's all-or-nothing-per-call-but-per-member-evaluated behavior.
func executeZAdd(cmd *Command, store *Keyspace) Value {
	added, changed, incrResult, incrOK, err := store.ZAdd(cmd.Key, cmd.ZAddFlags, cmd.ScoreMembers)
	if err != nil {
		return ErrorValue(err.Error())
	}

	if cmd.ZAddFlags.Incr {
		// INCR with a single pair that was skipped by NX/XX/GT/LT reports no
		// result, matching ZADD's single-reply INCR contract.
		if !incrOK {
			return NullBulk()
		}
		return BulkStringFromString(formatScore(incrResult))
	}

	if cmd.ZAddFlags.CH {
		return Integer(changed)
	}
	return Integer(added)
}

func executeXAdd(cmd *Command, store *Keyspace, nowMS func() int64) Value {
	id, err := store.XAdd(cmd.Key, cmd.StreamID, cmd.StreamFields, nowMS())
	if err != nil {
		return ErrorValue(err.Error())
	}
	return BulkStringFromString(id)
}
