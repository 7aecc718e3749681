package capability

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PathPicker "picks" a folder that was already named, e.g. on the command line.
type PathPicker struct {
	Path    string
	Options Options
}

func (p PathPicker) Pick(ctx context.Context) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimSpace(p.Path)
	if path == "" {
		return nil, ErrAborted
	}
	return OpenDir(expandHome(path), p.Options)
}

// PromptPicker asks for a folder path on a terminal.
// An empty answer or end of input counts as dismissing the picker.
type PromptPicker struct {
	In      io.Reader
	Out     io.Writer
	Options Options
}

func (p PromptPicker) Pick(ctx context.Context) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fmt.Fprint(p.Out, "Project folder (empty to cancel): ")

	line, err := readLine(p.In)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if line == "" {
		return nil, ErrAborted
	}
	return OpenDir(expandHome(line), p.Options)
}

// readLine reads one answer. A *bufio.Reader is read directly so several
// prompts can share it; other readers are consumed a byte at a time so
// nothing after the newline is taken from them.
func readLine(r io.Reader) (string, error) {
	if br, ok := r.(*bufio.Reader); ok {
		line, err := br.ReadString('\n')
		return strings.TrimSpace(line), err
	}

	var line strings.Builder
	b := make([]byte, 1)
	for {
		n, err := r.Read(b)
		if n == 1 {
			if b[0] == '\n' {
				return strings.TrimSpace(line.String()), nil
			}
			line.WriteByte(b[0])
		}
		if err != nil {
			return strings.TrimSpace(line.String()), err
		}
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}
