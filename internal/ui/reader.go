package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ErrInterrupted is returned by a reader when the user presses Ctrl+C at the prompt.
var ErrInterrupted = errors.New("interrupted")

// NewLineReader picks the bubbletea prompt when in is a terminal and a plain line reader otherwise.
func NewLineReader(in *os.File, out io.Writer) lineReader {
	if term.IsTerminal(int(in.Fd())) {
		return newPromptReader(in, out)
	}
	return newPlainReader(in, out)
}

type lineResult struct {
	line string
	err  error
}

// plainReader reads newline terminated input, for pipes and scripted sessions.
// A single goroutine owns the underlying reader so a cancelled ReadLine never loses a line.
type plainReader struct {
	in    *bufio.Reader
	out   io.Writer
	once  sync.Once
	lines chan lineResult
}

func newPlainReader(in io.Reader, out io.Writer) *plainReader {
	return &plainReader{in: bufio.NewReader(in), out: out, lines: make(chan lineResult)}
}

func (r *plainReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	r.once.Do(func() { go r.pump() })
	if prompt != "" {
		fmt.Fprint(r.out, prompt)
	}
	select {
	case res, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return res.line, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *plainReader) pump() {
	defer close(r.lines)
	for {
		line, err := r.in.ReadString('\n')
		if line != "" || err == nil {
			r.lines <- lineResult{line: strings.TrimRight(line, "\r\n")}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.lines <- lineResult{err: err}
			}
			return
		}
	}
}
