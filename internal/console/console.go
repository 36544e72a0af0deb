// Package console implements the line-oriented terminal dialogue: prompts,
// answers and coloured status lines.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// ErrInputClosed is returned when the input stream ends before an answer is read.
var ErrInputClosed = errors.New("input closed")

// ANSI colours used for status lines.
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
)

// Console reads answers line by line and writes prompts and status lines.
type Console struct {
	in    *bufio.Scanner
	out   io.Writer
	color bool
}

// New creates a console over arbitrary streams with colour disabled.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// NewTerminal creates a console over stdin/stdout. Colour is enabled only when
// stdout is a terminal; on Windows output goes through an ANSI translator.
func NewTerminal(in io.Reader, out *os.File) *Console {
	c := New(in, out)
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		c.out = colorable.NewColorable(out)
		c.color = true
	}
	return c
}

// Ask writes prompt without a newline and returns the next input line with
// surrounding whitespace removed.
func (c *Console) Ask(prompt string) (string, error) {
	if _, err := io.WriteString(c.out, prompt); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("reading answer: %w", err)
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// Confirm asks a yes/no question where a blank answer means no.
func (c *Console) Confirm(prompt string) (bool, error) {
	answer, err := c.Ask(prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Print writes text verbatim.
func (c *Console) Print(text string) {
	_, _ = io.WriteString(c.out, text)
}

// Println writes a plain line.
func (c *Console) Println(format string, args ...any) {
	c.line("", format, args...)
}

// Info writes an informational line (cyan).
func (c *Console) Info(format string, args ...any) {
	c.line(colorCyan, format, args...)
}

// Success writes a confirmation line (green).
func (c *Console) Success(format string, args ...any) {
	c.line(colorGreen, format, args...)
}

// Warn writes a warning line (yellow).
func (c *Console) Warn(format string, args ...any) {
	c.line(colorYellow, format, args...)
}

// Error writes an error line (red).
func (c *Console) Error(format string, args ...any) {
	c.line(colorRed, format, args...)
}

func (c *Console) line(color, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if c.color && color != "" {
		text = color + text + colorReset
	}
	_, _ = io.WriteString(c.out, text+"\n")
}
