// Package protocol implements the line-oriented text protocol of the GPIO
// daemon.
//
// Requests are one command per line terminated by '\n':
//
//	READ <pin>
//	WRITE <pin> <0|1>
//	MODE <pin> <IN|OUT>
//	READALL
//	LCD <sub-command> [args...]
//	INFO
//
// Every response line starts with "OK" or "ERROR":
//
//	OK
//	OK - <payload>
//	ERROR - <message>
//
// Interrupt notifications use the same shape ("OK - <name>") and may arrive
// between responses, never inside one.
package protocol
