package hotwords

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadGlossary reads a plain-text glossary, one term per line. Blank lines
// and '#' comments are skipped. A missing file yields no terms.
func LoadGlossary(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open glossary %s: %w", path, err)
	}
	defer file.Close()

	var terms []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read glossary %s: %w", path, err)
	}
	return terms, nil
}
