package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AliasTable maps a canonical work title to its known aliases. Looking up
// any member of a group returns the whole group.
type AliasTable struct {
	groups map[string][]string // canonical → aliases
}

// LoadAliases reads the YAML alias file: a mapping of canonical title to a
// list of alias strings. A missing file yields an empty table.
func LoadAliases(path string) (*AliasTable, error) {
	table := &AliasTable{groups: make(map[string][]string)}
	if strings.TrimSpace(path) == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return table, nil
		}
		return nil, fmt.Errorf("read alias file %s: %w", path, err)
	}
	raw := make(map[string][]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse alias file %s: %w", path, err)
	}
	for canonical, aliases := range raw {
		canonical = strings.TrimSpace(canonical)
		if canonical == "" {
			continue
		}
		cleaned := make([]string, 0, len(aliases))
		for _, alias := range aliases {
			if alias = strings.TrimSpace(alias); alias != "" && !strings.EqualFold(alias, canonical) {
				cleaned = append(cleaned, alias)
			}
		}
		table.groups[canonical] = cleaned
	}
	return table, nil
}

// Resolve returns the full alias group for a title: the canonical name plus
// every alias, whichever member was asked for. An unknown title returns only
// itself.
func (t *AliasTable) Resolve(title string) []string {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	for canonical, aliases := range t.groups {
		if strings.EqualFold(canonical, title) {
			return appendUnique([]string{canonical}, aliases...)
		}
		for _, alias := range aliases {
			if strings.EqualFold(alias, title) {
				group := appendUnique([]string{canonical}, aliases...)
				return group
			}
		}
	}
	return []string{title}
}

// Len reports the number of alias groups.
func (t *AliasTable) Len() int { return len(t.groups) }

func appendUnique(dst []string, values ...string) []string {
	for _, value := range values {
		exists := false
		for _, have := range dst {
			if strings.EqualFold(have, value) {
				exists = true
				break
			}
		}
		if !exists {
			dst = append(dst, value)
		}
	}
	return dst
}
