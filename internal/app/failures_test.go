package app

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

func TestFailureLogSkipsRepeats(t *testing.T) {
	var lines []string
	l := NewFailureLog(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})

	fail := func() error { return errors.Wrap(errors.New("strip 2: bad rule"), "tick 7 phase 0") }
	if !l.Record(fail()) {
		t.Fatal("first failure should be logged")
	}
	if l.Record(fail()) {
		t.Fatal("an identical failure wrapped again should not be logged twice")
	}
	if l.Record(nil) {
		t.Fatal("success is never logged")
	}
	if !l.Record(fail()) {
		t.Fatal("a failure after a successful tick should be logged again")
	}
	if len(lines) != 2 {
		t.Fatalf("logged %d lines, want 2: %q", len(lines), lines)
	}
}
