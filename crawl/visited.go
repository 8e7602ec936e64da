package crawl

import "github.com/fwojciec/docseek"

// VisitedSet records the pages examined while resolving one question.
// URLs differing only by fragment are the same entry. Membership is exact:
// a URL is never reported visited unless it was added.
type VisitedSet struct {
	seen  map[string]struct{}
	order []string
}

// NewVisitedSet returns an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// Add marks url as visited. Returns false if it already was.
func (s *VisitedSet) Add(url string) bool {
	url = docseek.StripFragment(url)
	if _, ok := s.seen[url]; ok {
		return false
	}
	s.seen[url] = struct{}{}
	s.order = append(s.order, url)
	return true
}

// Has reports whether url has been visited.
func (s *VisitedSet) Has(url string) bool {
	_, ok := s.seen[docseek.StripFragment(url)]
	return ok
}

// Len returns the number of distinct URLs visited.
func (s *VisitedSet) Len() int {
	return len(s.order)
}

// URLs returns the visited URLs in the order they were added.
func (s *VisitedSet) URLs() []string {
	return append([]string(nil), s.order...)
}

// Unvisited returns the links whose URL has not been visited, preserving
// order.
func (s *VisitedSet) Unvisited(links []docseek.Link) []docseek.Link {
	var out []docseek.Link
	for _, l := range links {
		if !s.Has(l.URL) {
			out = append(out, l)
		}
	}
	return out
}
