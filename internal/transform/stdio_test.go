package transform

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func needShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestStdioTransformer(t *testing.T) {
	needShell(t)

	up, err := NewStdioTransformer([]string{"sh", "-c", `printf '%s:' "$REJAR_UNIT"; cat`}, 0)
	if err != nil {
		t.Fatalf("NewStdioTransformer: %v", err)
	}
	out, err := up.Transform(context.Background(), nil, "pkg/A", []byte("body"))
	if err != nil || string(out) != "pkg/A:body" {
		t.Fatalf("got %q, %v", out, err)
	}

	silent, _ := NewStdioTransformer([]string{"sh", "-c", "cat >/dev/null"}, 0)
	out, err = silent.Transform(context.Background(), nil, "pkg/A", []byte("body"))
	if err != nil || out != nil {
		t.Fatalf("silent: got %q, %v", out, err)
	}
}

func TestStdioTransformer_ExitCodes(t *testing.T) {
	needShell(t)

	reject, _ := NewStdioTransformer([]string{"sh", "-c", "echo 'bad magic' >&2; exit 65"}, 0)
	_, err := reject.Transform(context.Background(), nil, "pkg/A", []byte("x"))
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Reason != "bad magic" {
		t.Fatalf("want FormatError(bad magic), got %v", err)
	}

	crash, _ := NewStdioTransformer([]string{"sh", "-c", "exit 3"}, 0)
	_, err = crash.Transform(context.Background(), nil, "pkg/A", []byte("x"))
	if err == nil || errors.Is(err, ErrFormatRejected) {
		t.Fatalf("want plain failure, got %v", err)
	}
}

func TestNewStdioTransformer_EmptyCommand(t *testing.T) {
	if _, err := NewStdioTransformer(nil, 0); err == nil {
		t.Fatal("expected error")
	}
}
