package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	historyFileName = ".gpioctl_history"
	historySize     = 500
	prompt          = "gpio> "
)

// LineEditor reads input lines with readline on a terminal and with a
// plain scanner otherwise. Piped input gets no prompt.
type LineEditor struct {
	interactive bool
	rl          *readline.Instance
	scanner     *bufio.Scanner
	out         io.Writer
}

// newLineEditor picks the input mode from in. Only a terminal on os.Stdin
// gets line editing.
func newLineEditor(in io.Reader, out io.Writer) *LineEditor {
	plain := &LineEditor{scanner: bufio.NewScanner(in), out: out}

	f, ok := in.(*os.File)
	if !ok || f != os.Stdin || !term.IsTerminal(int(f.Fd())) || os.Getenv("INSIDE_EMACS") != "" {
		return plain
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            historyPath(),
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
		return plain
	}
	return &LineEditor{interactive: true, rl: rl, out: out}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFileName)
}

// GetLine returns the next input line, or io.EOF at the end of input.
// Ctrl-C ends an interactive session like Ctrl-D.
func (le *LineEditor) GetLine(prompt string) (string, error) {
	if !le.interactive {
		if !le.scanner.Scan() {
			if err := le.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return le.scanner.Text(), nil
	}

	le.rl.SetPrompt(prompt)
	line, err := le.rl.Readline()
	if err == readline.ErrInterrupt {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		le.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

// Output is where asynchronous daemon output goes. On a terminal it is
// written above the prompt.
func (le *LineEditor) Output() io.Writer {
	if le.interactive {
		return le.rl
	}
	return le.out
}

// Close saves history. It is safe to call more than once.
func (le *LineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}
