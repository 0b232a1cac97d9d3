package linesource

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type stubRunner struct {
	stdout []byte
	err    error

	gotName string
	gotArgs []string
}

func (r *stubRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	r.gotName = name
	r.gotArgs = args
	return r.stdout, r.err
}

func TestPopplerRawText(t *testing.T) {
	text := strings.Repeat("QUEST DIAGNOSTICS invoice line\n", 5)
	runner := &stubRunner{stdout: []byte(text)}
	src := NewPopplerSource(PopplerConfig{Pdftotext: "pdftotext"}, nil).WithRunner(runner)

	got, err := src.RawText(context.Background(), "/tmp/inv.pdf")
	if err != nil {
		t.Fatalf("RawText: %v", err)
	}
	if got != text {
		t.Errorf("RawText returned %d bytes, want %d", len(got), len(text))
	}
	if runner.gotName != "pdftotext" {
		t.Errorf("ran %q, want pdftotext", runner.gotName)
	}
	wantArgs := []string{"-layout", "/tmp/inv.pdf", "-"}
	if len(runner.gotArgs) != len(wantArgs) {
		t.Fatalf("args = %v, want %v", runner.gotArgs, wantArgs)
	}
	for i := range wantArgs {
		if runner.gotArgs[i] != wantArgs[i] {
			t.Errorf("args = %v, want %v", runner.gotArgs, wantArgs)
			break
		}
	}
}

func TestPopplerScannedDocument(t *testing.T) {
	// A scanned PDF has (almost) no embedded text layer.
	runner := &stubRunner{stdout: []byte(" \n \n")}
	src := NewPopplerSource(PopplerConfig{}, nil).WithRunner(runner)

	_, err := src.RawText(context.Background(), "scan.pdf")
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("err = %v, want ErrNoText", err)
	}
}

func TestPopplerHasNoOCRBackend(t *testing.T) {
	src := NewPopplerSource(PopplerConfig{}, nil).WithRunner(&stubRunner{stdout: []byte("x")})
	if _, err := src.TextLines(context.Background(), "scan.pdf", true); !errors.Is(err, ErrNoText) {
		t.Fatalf("err = %v, want ErrNoText", err)
	}
}

func TestPopplerNoTables(t *testing.T) {
	src := NewPopplerSource(PopplerConfig{}, nil)
	if _, err := src.Tables(context.Background(), "inv.pdf"); !errors.Is(err, ErrNoTables) {
		t.Fatalf("err = %v, want ErrNoTables", err)
	}
}

func TestPopplerCommandFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("exit status 1")}
	src := NewPopplerSource(PopplerConfig{}, nil).WithRunner(runner)
	if _, err := src.RawText(context.Background(), "inv.pdf"); err == nil {
		t.Fatal("command failure must surface as an error")
	}
}

func TestPdftotextRunnerMissingBinary(t *testing.T) {
	r := pdftotextRunner{logger: slog.Default()}
	_, err := r.Output(context.Background(), "pdftotext-binary-that-does-not-exist")
	if err == nil {
		t.Fatal("missing binary must surface as an error")
	}
	if !strings.Contains(err.Error(), "pdftotext-binary-that-does-not-exist") {
		t.Errorf("error does not name the binary: %v", err)
	}
}
