// Package ripgrep wraps the rg binary for the search_files tool, with a
// pure-Go fallback when rg is not on PATH.
package ripgrep

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Match is one matching line from a search.
type Match struct {
	Path string
	Line int
	Text string
}

const defaultTimeout = 30 * time.Second

// Search runs a regex search over dir, restricted to files matching
// filePattern (a glob, empty means all files). It shells out to rg when
// available, since the teacher's stack already assumes ripgrep is present
// on the host for its own search tooling; otherwise it falls back to a
// sequential walk using regexp and bufio.Scanner.
func Search(ctx context.Context, dir, pattern, filePattern string) ([]Match, error) {
	if _, err := exec.LookPath("rg"); err == nil {
		return searchWithBinary(ctx, dir, pattern, filePattern)
	}
	return searchFallback(dir, pattern, filePattern)
}

func searchWithBinary(ctx context.Context, dir, pattern, filePattern string) ([]Match, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	args := []string{"--line-number", "--no-heading", "--color=never"}
	if filePattern != "" {
		args = append(args, "--glob", filePattern)
	}
	args = append(args, pattern, dir)

	cmd := exec.CommandContext(ctx, "rg", args...)
	out, err := cmd.Output()
	if err != nil {
		// rg exits 1 for "no matches", which is not a failure.
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("rg: %w", err)
	}
	return parseRipgrepOutput(out)
}

func parseRipgrepOutput(out []byte) ([]Match, error) {
	var matches []Match
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			continue
		}
		var lineNo int
		fmt.Sscanf(parts[1], "%d", &lineNo)
		matches = append(matches, Match{Path: parts[0], Line: lineNo, Text: parts[2]})
	}
	return matches, scanner.Err()
}

func searchFallback(dir, pattern, filePattern string) ([]Match, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}

	var matches []Match
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if filePattern != "" {
			if ok, _ := filepath.Match(filePattern, d.Name()); !ok {
				return nil
			}
		}
		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			if re.MatchString(scanner.Text()) {
				matches = append(matches, Match{Path: path, Line: lineNo, Text: scanner.Text()})
			}
		}
		return nil
	})
	return matches, err
}
