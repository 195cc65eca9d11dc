package skills

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"go.yaml.in/yaml/v4"
)

// AliasTable maps a base skill to the terms that count as related to it and,
// optionally, aliases to a canonical spelling. It is immutable once built and
// safe for concurrent use.
type AliasTable struct {
	related   map[string][]string
	canonical map[string]string
}

// NewAliasTable normalizes every key and term, drops empty ones and merges
// duplicate bases. Canonical chains (a -> b -> c) are collapsed so that
// normalizing twice gives the same result; cycles are rejected.
func NewAliasTable(related map[string][]string, canonical map[string]string) (*AliasTable, error) {
	t := &AliasTable{
		related:   make(map[string][]string, len(related)),
		canonical: make(map[string]string, len(canonical)),
	}

	for base, terms := range related {
		key := Normalize(base)
		if key == "" {
			continue
		}
		for _, term := range terms {
			term = Normalize(term)
			if term == "" || slices.Contains(t.related[key], term) {
				continue
			}
			t.related[key] = append(t.related[key], term)
		}
	}

	raw := make(map[string]string, len(canonical))
	for alias, target := range canonical {
		alias, target = Normalize(alias), Normalize(target)
		if alias == "" || target == "" || alias == target {
			continue
		}
		raw[alias] = target
	}

	for alias := range raw {
		resolved, err := resolveCanonical(raw, alias)
		if err != nil {
			return nil, err
		}
		t.canonical[alias] = resolved
	}

	return t, nil
}

func resolveCanonical(raw map[string]string, alias string) (string, error) {
	seen := map[string]bool{alias: true}
	current := raw[alias]
	for {
		next, ok := raw[current]
		if !ok {
			return current, nil
		}
		if seen[current] {
			return "", fmt.Errorf("canonical alias cycle through %q", alias)
		}
		seen[current] = true
		current = next
	}
}

// Extend returns a new table with the given entries layered over t.
// Related terms are appended to existing bases; canonical aliases override.
func (t *AliasTable) Extend(related map[string][]string, canonical map[string]string) (*AliasTable, error) {
	mergedRelated := make(map[string][]string, len(t.related)+len(related))
	for base, terms := range t.related {
		mergedRelated[base] = slices.Clone(terms)
	}
	for base, terms := range related {
		key := Normalize(base)
		mergedRelated[key] = append(mergedRelated[key], terms...)
	}

	mergedCanonical := make(map[string]string, len(t.canonical)+len(canonical))
	for alias, target := range t.canonical {
		mergedCanonical[alias] = target
	}
	for alias, target := range canonical {
		mergedCanonical[alias] = target
	}

	return NewAliasTable(mergedRelated, mergedCanonical)
}

// Related returns the related terms registered for skill, or nil.
func (t *AliasTable) Related(skill string) []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.related[Normalize(skill)])
}

// Relates reports whether base is a registered skill and one of its related
// terms occurs inside other. Both arguments must already be normalized.
func (t *AliasTable) Relates(base, other string) bool {
	if t == nil || base == "" || other == "" {
		return false
	}
	for _, term := range t.related[base] {
		if strings.Contains(other, term) {
			return true
		}
	}
	return false
}

// Skills returns the base skills in sorted order.
func (t *AliasTable) Skills() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.related))
	for base := range t.related {
		out = append(out, base)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of base skills.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.related)
}

// CanonicalLen returns the number of canonical aliases.
func (t *AliasTable) CanonicalLen() int {
	if t == nil {
		return 0
	}
	return len(t.canonical)
}

// Default returns the built-in dictionary of related technologies.
func Default() *AliasTable {
	t, err := NewAliasTable(defaultRelated, nil)
	if err != nil {
		// defaultRelated has no canonical entries, so this cannot happen.
		panic(err)
	}
	return t
}

var defaultRelated = map[string][]string{
	"javascript": {"js", "node.js", "nodejs", "react", "angular", "vue"},
	"python":     {"django", "flask", "fastapi", "pandas", "numpy"},
	"java":       {"spring", "hibernate", "maven", "gradle"},
	"react":      {"reactjs", "react.js", "next.js", "nextjs"},
	"node":       {"nodejs", "node.js", "express", "express.js"},
	"database":   {"mysql", "postgresql", "mongodb", "sql", "nosql"},
	"cloud":      {"aws", "azure", "gcp", "docker", "kubernetes"},
	"ai":         {"machine learning", "ml", "deep learning", "artificial intelligence"},
	"frontend":   {"html", "css", "javascript", "react", "angular", "vue"},
	"backend":    {"node", "python", "java", "php", "api", "rest"},
	"fullstack":  {"mern", "mean", "full-stack", "full stack"},
}

const (
	// FileModeExtend layers the file over the built-in dictionary.
	FileModeExtend = "extend"
	// FileModeReplace uses only the entries from the file.
	FileModeReplace = "replace"
)

// File is the on-disk YAML layout of an alias dictionary.
type File struct {
	Mode      string              `yaml:"mode"`
	Related   map[string][]string `yaml:"related"`
	Canonical map[string]string   `yaml:"canonical"`
}

// Load builds the alias table from a YAML file. An empty path returns the
// built-in dictionary.
func Load(path string) (*AliasTable, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading skills file %q: %w", path, err)
	}

	return Parse(data)
}

// Parse builds the alias table from YAML content.
func Parse(data []byte) (*AliasTable, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse skills file: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(file.Mode)) {
	case "", FileModeExtend:
		return Default().Extend(file.Related, file.Canonical)
	case FileModeReplace:
		return NewAliasTable(file.Related, file.Canonical)
	default:
		return nil, fmt.Errorf("unknown skills file mode %q", file.Mode)
	}
}
