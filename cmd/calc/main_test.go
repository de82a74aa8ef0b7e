package main

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunPrintsDisplayPerLine(t *testing.T) {
	in := strings.NewReader("2 + 3 * 4 =\n\n8/0=\n5\nC\n9 sqrt\nq\n7\n")
	var out bytes.Buffer

	if err := run(in, &out, zap.NewNop(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "0\n14\nERR\nERR\n0\n3\n"
	if got := out.String(); got != want {
		t.Fatalf("expected output %q, got %q", want, got)
	}
}

func TestRunTrace(t *testing.T) {
	var out bytes.Buffer

	if err := run(strings.NewReader("1+2=\n"), &out, zap.NewNop(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "0\n1    1\n+    1\n2    2\n=    3\n"
	if got := out.String(); got != want {
		t.Fatalf("expected output %q, got %q", want, got)
	}
}

func TestRunSkipsUnknownKeys(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	var out bytes.Buffer

	if err := run(strings.NewReader("4\n4 & 4\n+1=\n"), &out, zap.New(core), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := "0\n4\n5\n"; out.String() != want {
		t.Fatalf("expected output %q, got %q", want, out.String())
	}
	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
}
