// Package ahocorasick provides multi-prefix matching using an Aho-Corasick automaton.
// It wraps the petar-dambovaliev/aho-corasick library so a raw tag is scanned once
// regardless of how many tag-id prefixes are registered.
package ahocorasick

import (
	"sort"

	aho "github.com/petar-dambovaliev/aho-corasick"
)

// PrefixScanner reports which of its patterns are prefixes of a given string.
// Empty patterns are not compiled into the automaton; callers handle them.
type PrefixScanner struct {
	automaton aho.AhoCorasick
	index     []int // automaton pattern -> caller pattern index
	built     bool
}

// NewPrefixScanner compiles a scanner for the given patterns. Pattern indexes
// returned by Prefixes refer to positions in this slice.
func NewPrefixScanner(patterns []string) *PrefixScanner {
	s := &PrefixScanner{}

	var compiled []string
	for i, p := range patterns {
		if p == "" {
			continue
		}
		compiled = append(compiled, p)
		s.index = append(s.index, i)
	}
	if len(compiled) == 0 {
		return s
	}

	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	s.automaton = builder.Build(compiled)
	s.built = true
	return s
}

// Prefixes returns the indexes of every non-empty pattern that occurs at
// offset 0 of content, in ascending index order.
func (s *PrefixScanner) Prefixes(content string) []int {
	if !s.built || content == "" {
		return nil
	}

	iter := s.automaton.IterOverlappingByte([]byte(content))
	seen := make(map[int]bool)
	var result []int
	for next := iter.Next(); next != nil; next = iter.Next() {
		m := *next
		if m.Start() != 0 {
			continue
		}
		idx := s.index[m.Pattern()]
		if !seen[idx] {
			seen[idx] = true
			result = append(result, idx)
		}
	}
	sort.Ints(result)
	return result
}
