// Package clipboard copies text to the system clipboard, falling back to an
// OSC 52 terminal escape when no clipboard utility is available (for example
// over SSH).
package clipboard

import (
	"fmt"
	"io"
	"os"
	"strings"

	sysclip "github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// writeSystem is replaced in tests
var writeSystem = sysclip.WriteAll

// Copy copies text to the clipboard, using the terminal on stderr as fallback
func Copy(text string) error {
	return CopyTo(os.Stderr, text)
}

// CopyTo copies text to the system clipboard. When that fails the text is sent
// to the terminal attached to out as an OSC 52 sequence.
func CopyTo(out io.Writer, text string) error {
	sysErr := writeSystem(text)
	if sysErr == nil {
		return nil
	}

	seq := osc52.New(text)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(os.Getenv("TERM"), "screen"):
		seq = seq.Screen()
	}
	if _, err := seq.WriteTo(out); err != nil {
		return fmt.Errorf("clipboard unavailable (%v) and terminal write failed: %w", sysErr, err)
	}
	return nil
}
