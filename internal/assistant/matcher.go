package assistant

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ozelders/ozelders-api/internal/storage"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// Normalize lowercases text with Turkish casing rules and collapses
// whitespace. Turkish folding is load-bearing here: an ASCII fold maps
// 'İ' to 'i̇' and leaves 'I' as 'i', which silently breaks matching for
// names containing dotted/dotless I.
func Normalize(s string) string {
	// cases.Caser carries internal state, so build one per call.
	lowered := cases.Lower(language.Turkish).String(s)
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(lowered, " "))
}

// FindStudent resolves a free-text name fragment against the roster by
// substring containment after normalization. Ties go to the first entry
// in roster order. Returns nil for an empty query or no match.
func FindStudent(query string, roster []storage.RosterEntry) *storage.RosterEntry {
	q := Normalize(query)
	if q == "" {
		return nil
	}
	for i := range roster {
		if strings.Contains(Normalize(roster[i].Name), q) {
			return &roster[i]
		}
	}
	return nil
}

// FilterStudents returns every roster entry whose name contains at least
// one of the supplied fragments. Fragments that match nobody are skipped
// silently. Roster order is preserved and each entry appears at most once.
func FilterStudents(names []string, roster []storage.RosterEntry) []storage.RosterEntry {
	queries := make([]string, 0, len(names))
	for _, n := range names {
		if q := Normalize(n); q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		return nil
	}

	var selected []storage.RosterEntry
	for _, entry := range roster {
		name := Normalize(entry.Name)
		for _, q := range queries {
			if strings.Contains(name, q) {
				selected = append(selected, entry)
				break
			}
		}
	}
	return selected
}
