// Package console prints the operator-facing progress and error lines of a build.
// Structured diagnostics go to slog; this output is meant to be read.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gookit/color"
)

// Console writes progress to out and failures to errOut.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	colored bool
}

// New returns a Console. Colors are only emitted when colored is true.
func New(out, errOut io.Writer, colored bool) *Console {
	return &Console{out: out, errOut: errOut, colored: colored}
}

// Stdio returns a Console on the process' standard streams.
func Stdio(colored bool) *Console {
	return New(os.Stdout, os.Stderr, colored && color.SupportColor())
}

// Discard returns a Console that prints nothing.
func Discard() *Console {
	return New(io.Discard, io.Discard, false)
}

// Step announces a build step.
func (c *Console) Step(format string, args ...any) {
	c.print(c.out, color.Cyan, format, args...)
}

// Info prints a neutral progress line.
func (c *Console) Info(format string, args ...any) {
	c.print(c.out, color.Normal, format, args...)
}

// Success prints a completion line.
func (c *Console) Success(format string, args ...any) {
	c.print(c.out, color.Green, format, args...)
}

// Notice prints a line that deserves attention but is not an error.
func (c *Console) Notice(format string, args ...any) {
	c.print(c.out, color.Yellow, format, args...)
}

// Failure prints an error line.
func (c *Console) Failure(format string, args ...any) {
	c.print(c.errOut, color.Red, format, args...)
}

// Detail dumps captured tool output verbatim to the error stream.
func (c *Console) Detail(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.errOut, strings.TrimRight(text, "\r\n")+"\n")
}

func (c *Console) print(w io.Writer, col color.Color, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if c.colored && col != color.Normal {
		line = col.Sprint(line)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(w, line)
}
