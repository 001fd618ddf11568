package main

import (
	"fmt"
	"strconv"
	"strings"
)

// CommandKind tags the closed set of commands the executor understands.
type CommandKind uint8

const (
	CmdPing CommandKind = iota
	CmdEcho
	CmdGet
	CmdSet
	CmdRPush
	CmdLPush
	CmdLRange
	CmdLLen
	CmdLPop
	CmdBLPop
	CmdZAdd
	CmdZRank
	CmdZRange
	CmdZCard
	CmdZScore
	CmdZRem
	CmdType
	CmdDel
	CmdExists
	CmdXAdd
	CmdXLen
)

// ZAddFlags carries the parsed, validated NX/XX/GT/LT/CH/INCR modifiers.
type ZAddFlags struct {
	NX, XX, GT, LT, CH, Incr bool
}

// ScoreMember is one (score, member) pair from a ZADD argument list.
type ScoreMember struct {
	Score  float64
	Member string
}

// Command is a tagged variant over the closed command set, carrying
// validated, typed arguments. Parse errors never produce a Command; they
// produce a textual error to surface over the wire instead.
type Command struct {
	Kind CommandKind

	Key  string
	Keys []string // DEL / EXISTS

	Msg string // ECHO

	Value []byte // SET
	Values [][]byte // RPUSH / LPUSH arguments, in argument order

	HasExpiry bool
	ExpiryMS  int64 // SET PX value, milliseconds

	Start, End int64 // LRANGE / ZRANGE

	Count    int64 // LPOP
	HasCount bool

	TimeoutSeconds float64 // BLPOP

	ZAddFlags    ZAddFlags
	ScoreMembers []ScoreMember

	Member string // ZRANK / ZSCORE / ZREM

	StreamID     string // XADD
	StreamFields []StreamField
}

// StreamField is one field/value pair appended by XADD.
type StreamField struct {
	Field string
	Value string
}

// ParseCommand maps a parsed top-level RESP array (or the degenerate bare
// inline form) of bulk strings to a validated Command. A bare top-level
// simple or bulk string is treated as a one-element array. The first
// element is matched case-insensitively against the command name.
func ParseCommand(v Value) (*Command, error) {
	if v.Kind == KindSimpleString || v.Kind == KindBulkString {
		v = Array([]Value{v})
	}
	if v.Kind != KindArray || len(v.Array) == 0 {
		return nil, fmt.Errorf("ERR invalid request")
	}

	args := make([]string, 0, len(v.Array))
	for _, elem := range v.Array {
		s, ok := elem.ToString()
		if !ok {
			return nil, fmt.Errorf("ERR invalid argument type")
		}
		args = append(args, s)
	}

	name := strings.ToUpper(args[0])
	rest := args[1:]

	switch name {
	case "PING":
		return &Command{Kind: CmdPing}, nil

	case "ECHO":
		if len(rest) != 1 {
			return nil, fmt.Errorf("ERR wrong number of arguments for 'echo' command")
		}
		return &Command{Kind: CmdEcho, Msg: rest[0]}, nil

	case "GET":
		if len(rest) != 1 {
			return nil, fmt.Errorf("ERR wrong number of arguments for 'get' command")
		}
		return &Command{Kind: CmdGet, Key: rest[0]}, nil

	case "SET":
		return parseSet(rest)

	case "RPUSH":
		return parsePush(CmdRPush, "RPUSH", rest)

	case "LPUSH":
		return parsePush(CmdLPush, "LPUSH", rest)

	case "LRANGE":
		return parseLRange(rest)

	case "LLEN":
		if len(rest) != 1 {
			return nil, fmt.Errorf("ERR wrong number of arguments for 'llen' command")
		}
		return &Command{Kind: CmdLLen, Key: rest[0]}, nil

	case "LPOP":
		return parseLPop(rest)

	case "BLPOP":
		return parseBLPop(rest)

	case "ZADD":
		return parseZAdd(rest)

	case "ZRANK":
		return parseKeyMember(CmdZRank, "zrank", rest)

	case "ZRANGE":
		return parseZRange(rest)

	case "ZCARD":
		if len(rest) != 1 {
			return nil, fmt.Errorf("ERR wrong number of arguments for 'zcard' command")
		}
		return &Command{Kind: CmdZCard, Key: rest[0]}, nil

	case "ZSCORE":
		return parseKeyMember(CmdZScore, "zscore", rest)

	case "ZREM":
		return parseKeyMember(CmdZRem, "zrem", rest)

	case "TYPE":
		if len(rest) != 1 {
			return nil, fmt.Errorf("ERR wrong number of arguments for 'type' command")
		}
		return &Command{Kind: CmdType, Key: rest[0]}, nil

	case "DEL":
		if len(rest) < 1 {
			return nil, fmt.Errorf("ERR wrong number of arguments for 'del' command")
		}
		return &Command{Kind: CmdDel, Keys: rest}, nil

	case "EXISTS":
		if len(rest) < 1 {
			return nil, fmt.Errorf("ERR wrong number of arguments for 'exists' command")
		}
		return &Command{Kind: CmdExists, Keys: rest}, nil

	case "XADD":
		return parseXAdd(rest)

	case "XLEN":
		if len(rest) != 1 {
			return nil, fmt.Errorf("ERR wrong number of arguments for 'xlen' command")
		}
		return &Command{Kind: CmdXLen, Key: rest[0]}, nil

	default:
		return nil, fmt.Errorf("ERR unknown command '%s'", args[0])
	}
}

func parseSet(rest []string) (*Command, error) {
	if len(rest) < 2 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'set' command")
	}
	cmd := &Command{Kind: CmdSet, Key: rest[0], Value: []byte(rest[1])}

	i := 2
	for i < len(rest) {
		switch strings.ToUpper(rest[i]) {
		case "PX":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("ERR syntax error")
			}
			ms, ok := parseInt(rest[i+1])
			if !ok {
				return nil, fmt.Errorf("ERR PX value is not an integer")
			}
			cmd.HasExpiry = true
			cmd.ExpiryMS = ms
			i += 2
		default:
			return nil, fmt.Errorf("ERR syntax error")
		}
	}
	return cmd, nil
}

func parsePush(kind CommandKind, name string, rest []string) (*Command, error) {
	if len(rest) < 2 {
		return nil, fmt.Errorf("%s requires at least one value", name)
	}
	values := make([][]byte, 0, len(rest)-1)
	for _, v := range rest[1:] {
		values = append(values, []byte(v))
	}
	return &Command{Kind: kind, Key: rest[0], Values: values}, nil
}

func parseLRange(rest []string) (*Command, error) {
	if len(rest) < 3 {
		return nil, fmt.Errorf("Expected values for LRANGE start and end")
	}
	if len(rest) != 3 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'lrange' command")
	}
	start, ok1 := parseInt(rest[1])
	end, ok2 := parseInt(rest[2])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("Expected integer values for LRANGE start and end")
	}
	return &Command{Kind: CmdLRange, Key: rest[0], Start: start, End: end}, nil
}

func parseLPop(rest []string) (*Command, error) {
	if len(rest) < 1 || len(rest) > 2 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'lpop' command")
	}
	cmd := &Command{Kind: CmdLPop, Key: rest[0], Count: 1}
	if len(rest) == 2 {
		n, ok := parseInt(rest[1])
		if !ok {
			return nil, fmt.Errorf("ERR value is not an integer or out of range")
		}
		cmd.Count = n
		cmd.HasCount = true
	}
	return cmd, nil
}

func parseBLPop(rest []string) (*Command, error) {
	if len(rest) != 2 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'blpop' command")
	}
	timeout, ok := parseFloat(rest[1])
	if !ok {
		return nil, fmt.Errorf("timeout is not a float")
	}
	if timeout < 0 {
		return nil, fmt.Errorf("ERR timeout is negative")
	}
	return &Command{Kind: CmdBLPop, Key: rest[0], TimeoutSeconds: timeout}, nil
}

func parseKeyMember(kind CommandKind, name string, rest []string) (*Command, error) {
	if len(rest) != 2 {
		return nil, fmt.Errorf("ERR wrong number of arguments for '%s' command", name)
	}
	return &Command{Kind: kind, Key: rest[0], Member: rest[1]}, nil
}

func parseZRange(rest []string) (*Command, error) {
	if len(rest) != 3 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'zrange' command")
	}
	start, ok1 := parseInt(rest[1])
	end, ok2 := parseInt(rest[2])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("ERR value is not an integer or out of range")
	}
	return &Command{Kind: CmdZRange, Key: rest[0], Start: start, End: end}, nil
}

func parseZAdd(rest []string) (*Command, error) {
	if len(rest) < 3 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'zadd' command")
	}
	key := rest[0]
	i := 1
	var flags ZAddFlags

	for i < len(rest) {
		switch strings.ToUpper(rest[i]) {
		case "NX":
			flags.NX = true
		case "XX":
			flags.XX = true
		case "GT":
			flags.GT = true
		case "LT":
			flags.LT = true
		case "CH":
			flags.CH = true
		case "INCR":
			flags.Incr = true
		default:
			goto doneFlags
		}
		i++
	}
doneFlags:

	if flags.NX && flags.XX {
		return nil, fmt.Errorf("ERR XX and NX options at the same time are not compatible")
	}
	if flags.GT && flags.LT {
		return nil, fmt.Errorf("ERR GT, LT, and/or NX options at the same time are not compatible")
	}
	if flags.NX && (flags.GT || flags.LT) {
		return nil, fmt.Errorf("ERR GT, LT, and/or NX options at the same time are not compatible")
	}

	pairs := rest[i:]
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return nil, fmt.Errorf("ERR syntax error")
	}
	if flags.Incr && len(pairs) != 2 {
		return nil, fmt.Errorf("ERR INCR option supports a single increment-element pair")
	}

	scoreMembers := make([]ScoreMember, 0, len(pairs)/2)
	for j := 0; j < len(pairs); j += 2 {
		score, ok := parseFloat(pairs[j])
		if !ok {
			return nil, fmt.Errorf("ERR value is not a valid float")
		}
		scoreMembers = append(scoreMembers, ScoreMember{Score: score, Member: pairs[j+1]})
	}

	return &Command{Kind: CmdZAdd, Key: key, ZAddFlags: flags, ScoreMembers: scoreMembers}, nil
}

func parseXAdd(rest []string) (*Command, error) {
	if len(rest) < 4 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'xadd' command")
	}
	key := rest[0]
	id := rest[1]
	fieldArgs := rest[2:]
	if len(fieldArgs)%2 != 0 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'xadd' command")
	}

	fields := make([]StreamField, 0, len(fieldArgs)/2)
	for j := 0; j < len(fieldArgs); j += 2 {
		fields = append(fields, StreamField{Field: fieldArgs[j], Value: fieldArgs[j+1]})
	}

	return &Command{Kind: CmdXAdd, Key: key, StreamID: id, StreamFields: fields}, nil
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
