// Package lookup holds the static country tables and the flag/currency
// resolution rules built on top of them.
package lookup

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Lutefd/tasas-board/internal/logger"
	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var countriesYAML []byte

type tablesDocument struct {
	Fallback   string          `yaml:"fallback"`
	Countries  []countryEntry  `yaml:"countries"`
	Heuristics []heuristicRule `yaml:"heuristics"`
}

type countryEntry struct {
	Names    []string `yaml:"names"`
	Flag     string   `yaml:"flag"`
	Currency string   `yaml:"currency"`
}

type heuristicRule struct {
	Token   string `yaml:"token"`
	Country string `yaml:"country"`
}

// Tables is immutable once built. Several names may alias the same country.
type Tables struct {
	fallback   string
	flags      map[string]string
	folded     map[string]string
	currencies map[string]string
	heuristics []heuristicRule
}

var defaultTables = sync.OnceValues(func() (*Tables, error) {
	return ParseTables(countriesYAML)
})

// DefaultTables returns the embedded tables, parsed on first use.
func DefaultTables() (*Tables, error) {
	return defaultTables()
}

// LoadTables returns the tables at path, or the embedded ones when path
// is empty.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	return LoadTablesFile(path)
}

func LoadTablesFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup tables: %w", err)
	}
	t, err := ParseTables(data)
	if err != nil {
		return nil, err
	}
	logger.Infof("Loaded lookup tables from %s: %d flags, %d currencies", path, t.FlagCount(), t.CurrencyCount())
	return t, nil
}

func ParseTables(data []byte) (*Tables, error) {
	var doc tablesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse lookup tables: %w", err)
	}
	if strings.TrimSpace(doc.Fallback) == "" {
		return nil, fmt.Errorf("lookup tables: fallback flag is not set")
	}

	t := &Tables{
		fallback:   doc.Fallback,
		flags:      make(map[string]string),
		folded:     make(map[string]string),
		currencies: make(map[string]string),
	}

	for _, entry := range doc.Countries {
		if entry.Flag == "" {
			return nil, fmt.Errorf("lookup tables: country %v has no flag", entry.Names)
		}
		for _, name := range entry.Names {
			if name == "" {
				return nil, fmt.Errorf("lookup tables: empty name for flag %s", entry.Flag)
			}
			if existing, ok := t.flags[name]; ok && existing != entry.Flag {
				return nil, fmt.Errorf("lookup tables: name %q maps to %s and %s", name, existing, entry.Flag)
			}
			t.flags[name] = entry.Flag

			key := foldKey(name)
			if existing, ok := t.folded[key]; ok && existing != entry.Flag {
				return nil, fmt.Errorf("lookup tables: name %q collides with another country once case is ignored", name)
			}
			t.folded[key] = entry.Flag

			if entry.Currency != "" {
				t.currencies[name] = entry.Currency
			}
		}
	}

	for _, rule := range doc.Heuristics {
		if rule.Token == "" {
			return nil, fmt.Errorf("lookup tables: heuristic for %q has an empty token", rule.Country)
		}
		if _, ok := t.flags[rule.Country]; !ok {
			return nil, fmt.Errorf("lookup tables: heuristic %q targets unknown country %q", rule.Token, rule.Country)
		}
		t.heuristics = append(t.heuristics, rule)
	}

	return t, nil
}

func (t *Tables) Fallback() string {
	return t.fallback
}

func (t *Tables) FlagCount() int {
	return len(t.flags)
}

func (t *Tables) CurrencyCount() int {
	return len(t.currencies)
}

func foldKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
