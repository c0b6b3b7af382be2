package protocol

import (
	"strconv"
	"strings"
)

// Verb identifies a top-level command.
type Verb int

const (
	VerbUnknown Verb = iota
	VerbRead
	VerbWrite
	VerbMode
	VerbReadAll
	VerbLCD
	VerbInfo
)

var verbs = map[string]Verb{
	"READ":    VerbRead,
	"WRITE":   VerbWrite,
	"MODE":    VerbMode,
	"READALL": VerbReadAll,
	"LCD":     VerbLCD,
	"INFO":    VerbInfo,
}

func (v Verb) String() string {
	switch v {
	case VerbRead:
		return "READ"
	case VerbWrite:
		return "WRITE"
	case VerbMode:
		return "MODE"
	case VerbReadAll:
		return "READALL"
	case VerbLCD:
		return "LCD"
	case VerbInfo:
		return "INFO"
	}
	return "UNKNOWN"
}

// Command is one parsed request line.
type Command struct {
	Verb Verb
	// Args holds the whitespace-separated tokens after the verb.
	Args []string
	// Rest is the raw text after the verb, with surrounding blanks removed.
	Rest string
}

// Parse splits line into a verb and its arguments. The verb must equal the
// first token exactly; matching is case-sensitive.
func Parse(line string) (Command, error) {
	line = strings.TrimSuffix(line, "\r")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, unknownErr(msgUnknownCommand)
	}
	v, ok := verbs[fields[0]]
	if !ok {
		return Command{}, unknownErr(msgUnknownCommand)
	}
	return Command{
		Verb: v,
		Args: fields[1:],
		Rest: restAfterToken(line),
	}, nil
}

// restAfterToken returns s with its first token and the blanks around it
// removed.
func restAfterToken(s string) string {
	_, rest := nextToken(s)
	return strings.TrimRight(rest, " \t")
}

// nextToken splits s into its first blank-separated token and the
// remainder, with leading blanks of the remainder removed.
func nextToken(s string) (tok, rest string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}

// ints parses every element of args as a decimal integer.
func ints(args []string) ([]int, bool) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// intArgs parses exactly n integer arguments, or returns an ArgumentError
// carrying msg.
func intArgs(args []string, n int, msg string) ([]int, error) {
	if len(args) != n {
		return nil, argErr(msg)
	}
	v, ok := ints(args)
	if !ok {
		return nil, argErr(msg)
	}
	return v, nil
}
