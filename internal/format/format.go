package format

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Formatter normalizes rewritten Python text. Implementations may only
// reformat; the pipeline treats their output as equivalent text.
type Formatter interface {
	Format(ctx context.Context, source []byte) ([]byte, error)
}

// Command pipes source through an external formatter, black by default,
// feeding stdin and reading the result from stdout.
type Command struct {
	argv    []string
	timeout time.Duration
}

func NewCommand(argv []string) *Command {
	return &Command{argv: argv, timeout: 30 * time.Second}
}

func (c *Command) Format(ctx context.Context, source []byte) ([]byte, error) {
	if len(c.argv) == 0 {
		return source, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Stdin = bytes.NewReader(source)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w (%s)", c.argv[0], err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// Noop returns text unchanged. Used for --no-format and in tests.
type Noop struct{}

func (Noop) Format(_ context.Context, source []byte) ([]byte, error) {
	return source, nil
}
