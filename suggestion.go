package dispatch

import (
	"sort"
	"strings"
)

// Suggestion is a candidate next token offered during tab completion.
type Suggestion struct {
	Text    string
	Tooltip string
}

// SimpleSuggestion wraps plain text in a Suggestion.
func SimpleSuggestion(text string) Suggestion {
	return Suggestion{Text: text}
}

// SuggestionsOf converts plain strings to Suggestions.
func SuggestionsOf(texts ...string) []Suggestion {
	out := make([]Suggestion, len(texts))
	for i, t := range texts {
		out[i] = Suggestion{Text: t}
	}
	return out
}

// SuggestionFilter decides whether a candidate should be offered for the
// partial token being completed.
type SuggestionFilter func(partial, candidate string) bool

// PrefixFilter matches candidates that start with the partial token.
func PrefixFilter(partial, candidate string) bool {
	return strings.HasPrefix(candidate, partial)
}

// ContainsFilter matches candidates that contain the partial token anywhere.
func ContainsFilter(partial, candidate string) bool {
	return strings.Contains(candidate, partial)
}

// sortAndDedupe orders suggestions alphabetically and removes duplicates,
// keeping the first tooltip seen for a given text.
func sortAndDedupe(in []Suggestion) []Suggestion {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s.Text] {
			continue
		}
		seen[s.Text] = true
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out
}
