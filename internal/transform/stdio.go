package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ExitDataErr is the exit status (sysexits EX_DATAERR) a stdio rewriter
// uses to reject a payload.
const ExitDataErr = 65

// Environment passed to stdio rewriters.
const (
	EnvUnit      = "REJAR_UNIT"
	EnvClasspath = "REJAR_CLASSPATH"
)

// StdioTransformer runs an external command once per unit. The payload
// is written to stdin and the rewritten unit read from stdout; empty
// output leaves the unit unchanged.
type StdioTransformer struct {
	argv    []string
	timeout time.Duration
}

func NewStdioTransformer(argv []string, timeout time.Duration) (*StdioTransformer, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("stdio transformer: empty command")
	}
	return &StdioTransformer{argv: append([]string(nil), argv...), timeout: timeout}, nil
}

func (s *StdioTransformer) Transform(ctx context.Context, loader any, unit string, payload []byte) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, s.argv[0], s.argv[1:]...)
	cmd.Env = append(os.Environ(), EnvUnit+"="+unit)
	if cp, ok := loader.(Classpath); ok {
		cmd.Env = append(cmd.Env, EnvClasspath+"="+strings.Join(cp, string(os.PathListSeparator)))
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		var ee *exec.ExitError
		if errors.As(err, &ee) && ee.ExitCode() == ExitDataErr {
			return nil, &FormatError{Unit: unit, Reason: msg}
		}
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", s.argv[0], err, msg)
		}
		return nil, fmt.Errorf("%s: %w", s.argv[0], err)
	}
	if stdout.Len() == 0 {
		return nil, nil
	}
	return stdout.Bytes(), nil
}
