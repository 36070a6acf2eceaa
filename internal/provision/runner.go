package provision

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner executes system commands. Production code uses ExecRunner; tests
// substitute a recorder.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands through os/exec with output discarded, the way
// the setup flow wants apt and service chatter handled.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}
