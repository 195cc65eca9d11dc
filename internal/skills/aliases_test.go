package skills

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func sorted(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	return out
}

func TestNewAliasTableNormalizesAndMerges(t *testing.T) {
	t.Parallel()

	table, err := NewAliasTable(map[string][]string{
		"JavaScript":   {"JS", "React", "js", "  "},
		" javascript ": {"Vue"},
		"???":          {"ignored"},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 1 {
		t.Fatalf("expected 1 base skill, got %d", table.Len())
	}
	if got := sorted(table.Related("javascript")); !reflect.DeepEqual(got, []string{"js", "react", "vue"}) {
		t.Fatalf("unexpected related skills: %v", got)
	}
	if got := table.Related("python"); got != nil {
		t.Fatalf("expected nil for unknown skill, got %v", got)
	}
}

func TestAliasTableRelates(t *testing.T) {
	t.Parallel()

	table := Default()

	tests := []struct {
		base, other string
		want        bool
	}{
		{"javascript", "react", true},
		{"javascript", "react native", true},
		{"ai", "applied machine learning", true},
		{"javascript", "python", false},
		{"golang", "go", false},
		{"javascript", "", false},
	}
	for _, tt := range tests {
		if got := table.Relates(tt.base, tt.other); got != tt.want {
			t.Fatalf("Relates(%q, %q) = %v, want %v", tt.base, tt.other, got, tt.want)
		}
	}

	var nilTable *AliasTable
	if nilTable.Relates("javascript", "react") {
		t.Fatalf("nil table must not relate skills")
	}
	if nilTable.Len() != 0 {
		t.Fatalf("nil table must be empty")
	}
}

func TestDefaultTable(t *testing.T) {
	t.Parallel()

	table := Default()
	want := []string{
		"ai", "backend", "cloud", "database", "frontend", "fullstack",
		"java", "javascript", "node", "python", "react",
	}
	if got := table.Skills(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected default skills: %v", got)
	}
	if table.CanonicalLen() != 0 {
		t.Fatalf("default table must not carry canonical aliases")
	}
}

func TestCanonicalCycleIsRejected(t *testing.T) {
	t.Parallel()

	_, err := NewAliasTable(nil, map[string]string{"a": "b", "b": "a"})
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestExtendKeepsOriginal(t *testing.T) {
	t.Parallel()

	base := Default()
	extended, err := base.Extend(map[string][]string{
		"Go":         {"golang"},
		"javascript": {"TypeScript"},
	}, map[string]string{"golang": "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Contains(extended.Related("javascript"), "typescript") {
		t.Fatalf("expected typescript in extended table")
	}
	if slices.Contains(base.Related("javascript"), "typescript") {
		t.Fatalf("base table must stay unchanged")
	}
	if got := extended.Related("go"); !reflect.DeepEqual(got, []string{"golang"}) {
		t.Fatalf("unexpected related skills for go: %v", got)
	}
	if extended.CanonicalLen() != 1 {
		t.Fatalf("expected 1 canonical alias, got %d", extended.CanonicalLen())
	}
	if extended.Len() != base.Len()+1 {
		t.Fatalf("expected %d base skills, got %d", base.Len()+1, extended.Len())
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, table *AliasTable)
		wantErr bool
	}{
		{
			name: "extend by default",
			content: `
related:
  golang: [go modules, goroutines]
`,
			check: func(t *testing.T, table *AliasTable) {
				if table.Len() != Default().Len()+1 {
					t.Fatalf("expected default table plus one skill, got %d", table.Len())
				}
				if got := table.Related("golang"); !reflect.DeepEqual(got, []string{"go modules", "goroutines"}) {
					t.Fatalf("unexpected related skills: %v", got)
				}
			},
		},
		{
			name: "replace",
			content: `
mode: replace
related:
  sql: [postgres]
canonical:
  postgresql: postgres
`,
			check: func(t *testing.T, table *AliasTable) {
				if got := table.Skills(); !reflect.DeepEqual(got, []string{"sql"}) {
					t.Fatalf("unexpected skills: %v", got)
				}
				if got := NewNormalizer(table).Normalize("PostgreSQL"); got != "postgres" {
					t.Fatalf("expected canonical postgres, got %q", got)
				}
			},
		},
		{
			name:    "unknown mode",
			content: "mode: merge\n",
			wantErr: true,
		},
		{
			name:    "broken yaml",
			content: "related: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			table, err := Parse([]byte(tt.content))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, table)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	table, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != Default().Len() {
		t.Fatalf("empty path must return the default table")
	}

	path := filepath.Join(t.TempDir(), "skills.yaml")
	if err := os.WriteFile(path, []byte("mode: replace\nrelated:\n  go: [golang]\n"), 0o600); err != nil {
		t.Fatalf("write skills file: %v", err)
	}

	table, err = Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.Skills(); !reflect.DeepEqual(got, []string{"go"}) {
		t.Fatalf("unexpected skills: %v", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
