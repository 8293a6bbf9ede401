package errors

import (
	"io"
	"testing"
)

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Fatal("wrapping nil must stay nil")
	}

	err := Wrap(io.EOF, "read body")
	if err.Error() != "read body: EOF" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !Is(err, io.EOF) {
		t.Error("wrapped error lost its cause")
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "tool %s", "x") != nil {
		t.Fatal("wrapping nil must stay nil")
	}

	err := Wrapf(io.ErrUnexpectedEOF, "tool %s", "remove-background")
	if err.Error() != "tool remove-background: unexpected EOF" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !Is(err, io.ErrUnexpectedEOF) {
		t.Error("wrapped error lost its cause")
	}
}
