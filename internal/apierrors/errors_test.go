package apierrors

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestErrorsIsMatchesSentinelKind(t *testing.T) {
	err := &APIError{Kind: RateLimit, Message: "too many requests"}
	if !errors.Is(err, RateLimit) {
		t.Fatalf("expected errors.Is to match RateLimit")
	}
	if errors.Is(err, Timeout) {
		t.Fatalf("did not expect errors.Is to match Timeout")
	}
}

func TestErrorsIsAcrossEveryTaxonomyKind(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{&FileError{Kind: FileNotFound}, FileNotFound},
		{&CommandError{Kind: CommandTimeout}, CommandTimeout},
		{&ValidationError{Kind: MissingParameter, Tool: "read_file"}, MissingParameter},
		{&SecurityError{Kind: PathDenied, Subject: "/etc/passwd"}, PathDenied},
		{&ConfigError{Kind: ConfigMissing, Field: "api_key"}, ConfigMissing},
		{NetworkError("dns failure", nil), Network},
		{UnknownError("mystery", nil), Unknown},
	}
	for _, c := range cases {
		if !errors.Is(c.err, c.kind) {
			t.Errorf("errors.Is(%v, %v) = false, want true", c.err, c.kind)
		}
	}
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := &APIError{Kind: Transport, Cause: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to reach the wrapped cause")
	}
}

func TestRemediationForKnownKinds(t *testing.T) {
	err := &FileError{Kind: FilePermission, Path: "/root/secret"}
	hint := RemediationFor(err)
	if !strings.Contains(hint, "permission") {
		t.Fatalf("got remediation %q, want a permission hint", hint)
	}
}

func TestRemediationForUnknownErrorFallsBack(t *testing.T) {
	hint := RemediationFor(errors.New("plain error"))
	if hint == "" {
		t.Fatalf("expected a non-empty fallback hint")
	}
}

func TestRecorderRotatesOnDayChange(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir)

	day1 := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	r.now = func() time.Time { return day1 }
	r.Record("execute_command", &CommandError{Kind: CommandNonZeroExit, Command: "ls"})

	r.now = func() time.Time { return day2 }
	r.Record("read_file", &FileError{Kind: FileNotFound, Path: "missing.txt"})

	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	wantA := "errors-2026-07-29.log"
	wantB := "errors-2026-07-30.log"
	foundA, foundB := false, false
	for _, n := range names {
		if n == wantA {
			foundA = true
		}
		if n == wantB {
			foundB = true
		}
	}
	if !foundA {
		t.Errorf("expected %s among %v", wantA, names)
	}
	if !foundB {
		t.Errorf("expected %s among %v", wantB, names)
	}

	data, err := os.ReadFile(filepath.Join(dir, wantA))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "command_nonzero_exit") {
		t.Errorf("expected the first day's log to contain the recorded kind: %s", data)
	}
}
