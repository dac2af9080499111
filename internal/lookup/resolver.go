package lookup

import "strings"

type Resolver struct {
	tables *Tables
}

func NewResolver(tables *Tables) *Resolver {
	return &Resolver{tables: tables}
}

// ResolveFlag tries, in order: exact key, case-insensitive trimmed key,
// heuristic token, fallback. Aliases and heuristics can overlap, so the
// order matters.
func (r *Resolver) ResolveFlag(name string) string {
	if name == "" {
		return r.tables.fallback
	}

	if flag, ok := r.tables.flags[name]; ok {
		return flag
	}

	trimmed := strings.TrimSpace(name)
	if flag, ok := r.tables.folded[foldKey(trimmed)]; ok {
		return flag
	}

	for _, rule := range r.tables.heuristics {
		if strings.Contains(trimmed, rule.Token) {
			return r.tables.flags[rule.Country]
		}
	}

	return r.tables.fallback
}

// ResolveCurrency only matches the name exactly as given. Unknown names
// resolve to "".
func (r *Resolver) ResolveCurrency(name string) string {
	return r.tables.currencies[name]
}
