// Package input reads console commands for the interactive lexcheck engine,
// either straight from a stream or through readline when attached to a TTY.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Reader reads one console line at a time. Close must be called on it when it
// is no longer needed.
type Reader interface {
	// ReadLine blocks until a non-blank line is read and returns it with
	// surrounding space trimmed. At end of input it returns "" and io.EOF.
	ReadLine() (string, error)

	// SetPrompt changes the prompt shown before each line, if the Reader shows
	// one.
	SetPrompt(p string)

	Close() error
}

// DirectReader reads lines from any io.Reader. It does not sanitize the input
// of control and escape sequences.
//
// DirectReader should not be used directly; create one with NewDirectReader.
type DirectReader struct {
	r *bufio.Reader
}

// InteractiveReader reads lines from stdin using a Go implementation of GNU
// readline, which keeps editing escape sequences out of the input and gives
// the operator command history. It should only be used when stdin and stdout
// are a TTY.
//
// InteractiveReader should not be used directly; create one with
// NewInteractiveReader.
type InteractiveReader struct {
	rl *readline.Instance
}

// NewDirectReader returns a DirectReader with a buffered reader opened on r.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{
		r: bufio.NewReader(r),
	}
}

// NewInteractiveReader initializes readline with the given prompt. The
// returned InteractiveReader must have Close called on it to tear readline
// down.
func NewInteractiveReader(prompt string) (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "QUIT",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveReader{rl: rl}, nil
}

// Close does nothing; it exists so DirectReader is a Reader.
func (dr *DirectReader) Close() error {
	return nil
}

// SetPrompt does nothing; a DirectReader shows no prompt.
func (dr *DirectReader) SetPrompt(p string) {}

// ReadLine reads the next non-blank line.
func (dr *DirectReader) ReadLine() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = dr.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)
		if line == "" && err == io.EOF {
			return "", io.EOF
		}
	}

	return line, nil
}

// Close tears down readline.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

// SetPrompt updates the prompt to the given text.
func (ir *InteractiveReader) SetPrompt(p string) {
	ir.rl.SetPrompt(p)
}

// ReadLine reads the next non-blank line. An interrupt from the operator is
// treated as end of input.
func (ir *InteractiveReader) ReadLine() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = ir.rl.Readline()
		if err == readline.ErrInterrupt {
			return "", io.EOF
		}
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)
	}

	return line, nil
}
