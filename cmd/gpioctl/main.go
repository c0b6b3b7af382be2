// Command gpioctl is an interactive client for the gpiod socket protocol.
//
// With arguments it sends them as one command line and prints the reply:
//
//	gpioctl READALL
//
// Without arguments it reads command lines from stdin, with line editing
// and history when stdin is a terminal, and prints replies and interrupt
// notifications as they arrive.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"

	"github.com/sweeney/gpiod/internal/config"
)

func main() {
	socket := flag.String("s", config.DefaultSocket, "Unix socket path")
	flag.Parse()

	if err := run(*socket, flag.Args(), os.Stdin, os.Stdout); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(socket string, args []string, in io.Reader, out io.Writer) error {
	conn, err := dial(socket)
	if err != nil {
		return err
	}
	defer conn.Close()

	if len(args) > 0 {
		done := make(chan error, 1)
		go func() { done <- pump(conn, out) }()
		if err := send(conn, strings.Join(args, " ")); err != nil {
			return err
		}
		conn.CloseWrite()
		return <-done
	}

	editor := newLineEditor(in, out)
	defer editor.Close()

	done := make(chan error, 1)
	go func() { done <- pump(conn, editor.Output()) }()

	if err := session(editor, conn); err != nil {
		return err
	}
	conn.CloseWrite()
	return <-done
}

func dial(socket string) (*net.UnixConn, error) {
	addr := &net.UnixAddr{Name: socket, Net: "unix"}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", socket, err)
	}
	return conn, nil
}

// lineReader is the input side of an interactive session.
type lineReader interface {
	GetLine(prompt string) (string, error)
}

// session forwards non-empty input lines to w until input ends.
func session(lr lineReader, w io.Writer) error {
	for {
		line, err := lr.GetLine(prompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := send(w, line); err != nil {
			return err
		}
	}
}

func send(w io.Writer, line string) error {
	if _, err := io.WriteString(w, line+"\n"); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// pump copies daemon output to out one line at a time until the daemon
// closes the connection.
func pump(r io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if _, err := fmt.Fprintln(out, sc.Text()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("receive: %w", err)
	}
	return nil
}
