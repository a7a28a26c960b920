package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxLine = 1024 * 1024

// WriteLines writes one value per line, newline terminated. An empty set
// produces an empty file.
func WriteLines(path string, lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadLines reads a line-oriented file the way scanner output has to be
// read: whitespace trimmed, blank lines skipped, bytes that are not valid
// UTF-8 dropped rather than failing the whole file.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, maxLine), maxLine)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.ToValidUTF8(scanner.Text(), ""))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

// CountLines returns the number of usable lines in a file, zero when the
// file is unreadable.
func CountLines(path string) int {
	lines, err := ReadLines(path)
	if err != nil {
		return 0
	}
	return len(lines)
}

// EnsureDir creates the directory and any missing parents.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return nil
}

// EnsureParent creates the parent directory of a file path.
func EnsureParent(path string) error {
	return EnsureDir(filepath.Dir(path))
}
