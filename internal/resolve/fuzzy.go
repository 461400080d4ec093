// Package resolve matches user-typed names (commands, flags, profiles, 2FA
// types) against a known set.
package resolve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// MaxDistance is the largest edit distance Closest still treats as a typo.
const MaxDistance = 3

var (
	ErrEmptyQuery = errors.New("empty name")
	ErrEmptyNames = errors.New("no names to match against")
)

// AmbiguousError indicates multiple candidates matched equally well.
type AmbiguousError struct {
	Query   string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous name %q, candidates: %s", e.Query, strings.Join(e.Matches, ", "))
}

// NotFoundError reports a name with no match. Suggestions may be empty.
type NotFoundError struct {
	Query       string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no match for %q", e.Query)
	}
	return fmt.Sprintf("no match for %q (did you mean %s?)", e.Query, strings.Join(e.Suggestions, ", "))
}

type lowerSource []string

func (s lowerSource) String(i int) string { return strings.ToLower(s[i]) }
func (s lowerSource) Len() int            { return len(s) }

// Match returns the name query refers to.
//
// An exact case-insensitive hit wins. Otherwise the best fuzzy match is
// returned, or *AmbiguousError when the top two tie on score, or
// *NotFoundError when nothing matches.
func Match(query string, names []string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	if len(names) == 0 {
		return "", ErrEmptyNames
	}

	for _, name := range names {
		if strings.EqualFold(name, query) {
			return name, nil
		}
	}

	results := fuzzy.FindFrom(strings.ToLower(query), lowerSource(names))
	if len(results) == 0 {
		return "", &NotFoundError{Query: query, Suggestions: Suggest(query, names, 3)}
	}
	if len(results) > 1 && results[0].Score == results[1].Score {
		var matches []string
		for _, r := range results {
			if r.Score != results[0].Score {
				break
			}
			matches = append(matches, names[r.Index])
		}
		return "", &AmbiguousError{Query: query, Matches: matches}
	}
	return names[results[0].Index], nil
}

// Closest returns the single best "did you mean" candidate, or "" when
// nothing is close. Typos within MaxDistance edits are preferred over
// subsequence matches.
func Closest(query string, names []string) string {
	if s := Suggest(query, names, 1); len(s) > 0 {
		return s[0]
	}
	return ""
}

// Suggest returns up to limit candidates: names within MaxDistance edits
// of query by increasing distance, then fuzzy subsequence matches.
func Suggest(query string, names []string, limit int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(names) == 0 || limit <= 0 {
		return nil
	}

	type candidate struct {
		name string
		dist int
	}
	var near []candidate
	for _, name := range names {
		if d := Distance(query, strings.ToLower(name)); d <= MaxDistance {
			near = append(near, candidate{name: name, dist: d})
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].dist < near[j].dist })

	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if !seen[name] && len(out) < limit {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, c := range near {
		add(c.name)
	}
	for _, r := range fuzzy.FindFrom(query, lowerSource(names)) {
		add(names[r.Index])
	}
	return out
}
