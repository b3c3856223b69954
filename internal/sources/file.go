package sources

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadLinks reads one URL per line. Blank lines and lines starting with '#'
// are skipped; surrounding whitespace is trimmed.
func ReadLinks(r io.Reader) ([]string, error) {
	var links []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read links: %w", err)
	}
	return links, nil
}

// LoadFile reads a links file from disk.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open links file: %w", err)
	}
	defer f.Close()
	return ReadLinks(f)
}
