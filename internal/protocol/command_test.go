package protocol

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseVerbs(t *testing.T) {
	tests := []struct {
		line string
		verb Verb
		args []string
		rest string
	}{
		{"READ 1", VerbRead, []string{"1"}, "1"},
		{"WRITE 3 1", VerbWrite, []string{"3", "1"}, "3 1"},
		{"MODE 5 OUT", VerbMode, []string{"5", "OUT"}, "5 OUT"},
		{"READALL", VerbReadAll, []string{}, ""},
		{"  INFO  ", VerbInfo, []string{}, ""},
		{"LCD TEXT 10 0 12 hello  world", VerbLCD, []string{"TEXT", "10", "0", "12", "hello", "world"}, "TEXT 10 0 12 hello  world"},
		{"READ 1\r", VerbRead, []string{"1"}, "1"},
		{"READ\t7", VerbRead, []string{"7"}, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Verb != tt.verb {
				t.Errorf("expected verb %s, got %s", tt.verb, cmd.Verb)
			}
			if !reflect.DeepEqual(cmd.Args, tt.args) {
				t.Errorf("expected args %q, got %q", tt.args, cmd.Args)
			}
			if cmd.Rest != tt.rest {
				t.Errorf("expected rest %q, got %q", tt.rest, cmd.Rest)
			}
		})
	}
}

func TestParseUnknown(t *testing.T) {
	for _, line := range []string{"", "   ", "read 1", "READX 1", "MODEX 1 IN", "READALLX", "HELLO"} {
		_, err := Parse(line)
		var unknown *UnknownCommandError
		if !errors.As(err, &unknown) {
			t.Errorf("%q: expected UnknownCommandError, got %v", line, err)
			continue
		}
		if err.Error() != "unknown command" {
			t.Errorf("%q: expected message %q, got %q", line, "unknown command", err.Error())
		}
	}
}

func TestVerbString(t *testing.T) {
	for name, v := range verbs {
		if v.String() != name {
			t.Errorf("expected %s, got %s", name, v.String())
		}
	}
	if VerbUnknown.String() != "UNKNOWN" {
		t.Errorf("expected UNKNOWN, got %s", VerbUnknown.String())
	}
}

func TestResponseBytes(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{"ok", OK(), "OK\n"},
		{"payload", OKPayload("1"), "OK - 1\n"},
		{"error", ErrorResponse(&RangeError{Message: "unknown port number"}), "ERROR - unknown port number\n"},
		{"notification", Notification("doorbell"), "OK - doorbell\n"},
		{"multi", Response{Lines: []string{"OK", "OK - a"}}, "OK\nOK - a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(tt.resp.Bytes()); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResponseIsError(t *testing.T) {
	if OK().IsError() {
		t.Error("OK should not be an error")
	}
	if !ErrorResponse(errors.New("x")).IsError() {
		t.Error("ERROR response should be an error")
	}
	if (Response{}).IsError() {
		t.Error("empty response should not be an error")
	}
}
