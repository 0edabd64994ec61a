// Package decklist normalizes decklist exports into plain card names. Deck
// builders emit lines like "4 Brainstorm (MH3) 282" or "1x Ponder"; the
// marketplace only wants the name.
package decklist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var leadingCount = regexp.MustCompile(`^\d+[xX]?\s+`)

// CleanName strips the leading quantity and anything from the first
// parenthesized set code onward.
func CleanName(line string) string {
	line = leadingCount.ReplaceAllString(line, "")
	if i := strings.Index(line, " ("); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// RawLines returns the non-empty lines as written, in input order. The
// report appendix reproduces these rather than the cleaned names.
func RawLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Names cleans raw lines into card names, dropping any that clean to
// nothing. Duplicates are kept; each occurrence prices independently.
func Names(lines []string) []string {
	var names []string
	for _, line := range lines {
		if name := CleanName(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Parse reads one card name per non-empty line, cleaned, in input order.
func Parse(r io.Reader) ([]string, error) {
	lines, err := RawLines(r)
	if err != nil {
		return nil, err
	}
	return Names(lines), nil
}

func ReadFile(path string) ([]string, error) {
	lines, err := ReadFileRaw(path)
	if err != nil {
		return nil, err
	}
	return Names(lines), nil
}

// ReadFileRaw reads the uncleaned lines for callers that need the input
// exactly as the user wrote it.
func ReadFileRaw(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read decklist %s: %w", path, err)
	}
	defer f.Close()
	return RawLines(f)
}

// CleanFile rewrites the decklist in place with cleaned names, mirroring
// what the tool will actually search for.
func CleanFile(path string) error {
	names, err := ReadFile(path)
	if err != nil {
		return err
	}
	var out strings.Builder
	for _, name := range names {
		out.WriteString(name)
		out.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(out.String()), 0644)
}
