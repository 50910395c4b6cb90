package utils

import (
	"strings"
)

// SeenSet tracks case-insensitive strings that have already been emitted.
// It is not safe for concurrent use.
type SeenSet struct {
	seen map[string]struct{}
}

// NewSeenSet creates an empty set. Any initial values are marked as seen.
func NewSeenSet(initial ...string) *SeenSet {
	s := &SeenSet{seen: make(map[string]struct{}, len(initial))}
	for _, v := range initial {
		s.seen[strings.ToLower(v)] = struct{}{}
	}
	return s
}

// Add marks v as seen and reports whether it was new.
func (s *SeenSet) Add(v string) bool {
	key := strings.ToLower(v)
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Has reports whether v has been seen.
func (s *SeenSet) Has(v string) bool {
	_, ok := s.seen[strings.ToLower(v)]
	return ok
}

// Len returns the number of distinct values.
func (s *SeenSet) Len() int {
	return len(s.seen)
}

// Dedupe returns values with case-insensitive duplicates removed, keeping the
// first occurrence.
func Dedupe(values []string) []string {
	s := NewSeenSet()
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s.Add(v) {
			out = append(out, v)
		}
	}
	return out
}
