package format

import (
	"context"
	"testing"
)

func TestNoop(t *testing.T) {
	src := []byte("x   =   1\n")
	out, err := Noop{}.Format(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != string(src) {
		t.Errorf("Noop changed the text: %q", out)
	}
}

func TestCommandPassthrough(t *testing.T) {
	src := []byte("x = 1\n")
	out, err := NewCommand([]string{"cat"}).Format(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != string(src) {
		t.Errorf("cat should echo input, got %q", out)
	}
}

func TestCommandEmptyArgv(t *testing.T) {
	src := []byte("x = 1\n")
	out, err := NewCommand(nil).Format(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != string(src) {
		t.Errorf("Empty command should pass through, got %q", out)
	}
}

func TestCommandExitFailure(t *testing.T) {
	if _, err := NewCommand([]string{"false"}).Format(context.Background(), []byte("x")); err == nil {
		t.Error("Expected an error from a failing formatter")
	}
}

func TestCommandMissingBinary(t *testing.T) {
	if _, err := NewCommand([]string{"no-such-formatter-on-this-machine"}).Format(context.Background(), []byte("x")); err == nil {
		t.Error("Expected an error for a missing binary")
	}
}
