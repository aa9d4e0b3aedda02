// Package selection chooses which documents in a category directory are
// passed to the model as context for a query.
package selection

import (
	"strings"

	"github.com/a-h/docqa/documents"
)

// Matcher decides whether a document is relevant to a query.
type Matcher interface {
	// Match is called with the lower-cased query and document stem.
	Match(query, stem string) bool
}

// SubstringMatcher matches when the query contains the document stem.
type SubstringMatcher struct{}

func (SubstringMatcher) Match(query, stem string) bool {
	return stem != "" && strings.Contains(query, stem)
}

type MatcherFunc func(query, stem string) bool

func (f MatcherFunc) Match(query, stem string) bool {
	return f(query, stem)
}

const DefaultFallbackLimit = 2

func New() Selector {
	return Selector{
		Matcher:       SubstringMatcher{},
		Broadening:    []string{"invoice"},
		FallbackLimit: DefaultFallbackLimit,
	}
}

type Selector struct {
	Matcher Matcher
	// Broadening tokens include every document when found in the query.
	Broadening []string
	// FallbackLimit is the number of documents used when nothing matches.
	FallbackLimit int
}

// Select returns the paths of the documents in dir relevant to query, in
// directory order. If nothing matches, the first FallbackLimit documents are
// returned. The result is only empty if dir contains no documents.
func (s Selector) Select(dir, query string) (paths []string) {
	candidates := documents.List(dir)
	q := strings.ToLower(query)
	broaden := s.broadens(q)
	for _, path := range candidates {
		if broaden || s.Matcher.Match(q, documents.Stem(path)) {
			paths = append(paths, path)
		}
	}
	if len(paths) > 0 {
		return paths
	}
	limit := max(s.FallbackLimit, 1)
	return candidates[:min(limit, len(candidates))]
}

func (s Selector) broadens(q string) bool {
	for _, token := range s.Broadening {
		if token != "" && strings.Contains(q, strings.ToLower(token)) {
			return true
		}
	}
	return false
}
