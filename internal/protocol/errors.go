package protocol

// ArgumentError reports a wrong number or type of arguments.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string { return e.Message }

// RangeError reports an argument outside its allowed domain.
type RangeError struct {
	Message string
}

func (e *RangeError) Error() string { return e.Message }

// UnknownCommandError reports a line that does not name a known command.
type UnknownCommandError struct {
	Message string
}

func (e *UnknownCommandError) Error() string { return e.Message }

func argErr(msg string) error     { return &ArgumentError{Message: msg} }
func rangeErr(msg string) error   { return &RangeError{Message: msg} }
func unknownErr(msg string) error { return &UnknownCommandError{Message: msg} }

// Wire messages shared by several commands.
const (
	msgUnknownCommand    = "unknown command"
	msgUnknownLCDCommand = "unknown lcd command"
	msgUnknownPort       = "unknown port number"
	msgValue01           = "value must be 0 or 1"
	msgModeInOut         = "mode must be IN or OUT"
	msgNoParameters      = "no parameters expected"
)
