package protocol

import "strings"

// Response is one or more protocol lines written back for a command.
// It is written to the connection as a unit.
type Response struct {
	Lines []string
}

// OK is the bare success response.
func OK() Response {
	return Response{Lines: []string{"OK"}}
}

// OKPayload returns "OK - <payload>".
func OKPayload(payload string) Response {
	return Response{Lines: []string{okLine(payload)}}
}

// ErrorResponse returns "ERROR - <err>".
func ErrorResponse(err error) Response {
	return Response{Lines: []string{"ERROR - " + err.Error()}}
}

// Notification is the line sent for a live interrupt.
func Notification(name string) Response {
	return OKPayload(name)
}

func okLine(payload string) string {
	return "OK - " + payload
}

// IsError reports whether the response carries an error.
func (r Response) IsError() bool {
	return len(r.Lines) > 0 && strings.HasPrefix(r.Lines[0], "ERROR")
}

// Bytes renders the response with each line newline-terminated.
func (r Response) Bytes() []byte {
	var b strings.Builder
	for _, l := range r.Lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func (r Response) String() string {
	return string(r.Bytes())
}
