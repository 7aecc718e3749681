package capability

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// TerminalAuthorizer asks the user to confirm continued access.
type TerminalAuthorizer struct {
	In  io.Reader
	Out io.Writer
}

func (a TerminalAuthorizer) Authorize(ctx context.Context, rec Record) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(a.Out, "Allow PromptHive to read and write %q? [y/N] ", rec.Path)

	answer, err := readLine(a.In)
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// StaticAuthorizer answers every request the same way. Used for non-interactive runs.
type StaticAuthorizer bool

func (s StaticAuthorizer) Authorize(context.Context, Record) (bool, error) {
	return bool(s), nil
}
