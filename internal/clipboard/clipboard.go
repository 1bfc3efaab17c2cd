// Package clipboard copies the PIX "copy-paste" code for the visitor. The
// copy is a convenience: every copier failure is recoverable and the flow
// ignores it.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Copier places a string where the user can paste it from.
type Copier interface {
	Copy(text string) error
}

// ErrUnavailable means no platform clipboard tool could be found.
var ErrUnavailable = errors.New("clipboard: no system clipboard tool available")

// CommandCopier pipes text into a platform clipboard command.
type CommandCopier struct {
	name string
	args []string
}

// System probes for a usable clipboard tool.
func System() (*CommandCopier, error) {
	candidates := []struct {
		name string
		args []string
	}{
		{"pbcopy", nil},
		{"wl-copy", nil},
		{"xclip", []string{"-selection", "clipboard"}},
		{"xsel", []string{"--clipboard", "--input"}},
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c.name); err == nil {
			return &CommandCopier{name: c.name, args: c.args}, nil
		}
	}
	return nil, ErrUnavailable
}

func (c *CommandCopier) Copy(text string) error {
	cmd := exec.Command(c.name, c.args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard: %s failed: %w", c.name, err)
	}
	return nil
}

// WriterCopier is the manual fallback: it spools the text to a writer (a
// spool file, a terminal) so the user can select and copy it by hand.
type WriterCopier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterCopier(w io.Writer) *WriterCopier {
	return &WriterCopier{w: w}
}

func (c *WriterCopier) Copy(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.w, text)
	return err
}

// Chain tries the primary copier and falls back to the secondary when the
// primary is missing or rejects.
type Chain struct {
	Primary  Copier
	Fallback Copier
}

func (c Chain) Copy(text string) error {
	if c.Primary != nil {
		if err := c.Primary.Copy(text); err == nil {
			return nil
		}
	}
	if c.Fallback != nil {
		return c.Fallback.Copy(text)
	}
	return ErrUnavailable
}
