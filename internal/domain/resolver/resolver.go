// Package resolver replaces the tag-id prefix of a raw tag string with the
// tag's display name.
//
// Every tag id is a prefix rule. When several rules are prefixes of the same
// raw tag, the rule with the highest priority wins. Priority is explicit:
// PriorityLongest prefers the most specific id, PriorityInsertion keeps the
// order in which ids were first seen in the store.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/corey/tagreport/internal/adapters/ahocorasick"
)

// Priority orders prefix rules.
type Priority string

const (
	// PriorityLongest tries longer prefixes first. Deterministic for any store.
	PriorityLongest Priority = "longest"
	// PriorityInsertion tries prefixes in source order; the first match wins.
	PriorityInsertion Priority = "insertion"
)

// ParsePriority validates a priority name. Empty selects PriorityLongest.
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.TrimSpace(s)) {
	case "", PriorityLongest:
		return PriorityLongest, nil
	case PriorityInsertion:
		return PriorityInsertion, nil
	default:
		return "", fmt.Errorf("unknown resolution priority %q (want %s or %s)", s, PriorityLongest, PriorityInsertion)
	}
}

// Rule maps a tag-id prefix to a display name.
type Rule struct {
	Prefix string
	Name   string
}

// Resolver applies an ordered set of prefix rules.
type Resolver struct {
	rules    []Rule
	scanner  *ahocorasick.PrefixScanner
	catchAll int // index of the empty-prefix rule, -1 if none
}

// New builds a resolver. rules must be in source order; they are reordered
// according to priority. The resolver is immutable and safe to share.
func New(rules []Rule, priority Priority) *Resolver {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	if priority == PriorityLongest {
		sort.SliceStable(ordered, func(i, j int) bool {
			return len(ordered[i].Prefix) > len(ordered[j].Prefix)
		})
	}

	prefixes := make([]string, len(ordered))
	catchAll := -1
	for i, r := range ordered {
		prefixes[i] = r.Prefix
		if r.Prefix == "" && catchAll < 0 {
			catchAll = i
		}
	}

	return &Resolver{
		rules:    ordered,
		scanner:  ahocorasick.NewPrefixScanner(prefixes),
		catchAll: catchAll,
	}
}

// Resolve returns raw with its highest-priority matching prefix replaced by
// that rule's name. Only the leading occurrence is substituted. A raw tag no
// rule matches is returned unchanged.
func (r *Resolver) Resolve(raw string) string {
	best := r.catchAll
	if m := r.scanner.Prefixes(raw); len(m) > 0 && (best < 0 || m[0] < best) {
		best = m[0]
	}
	if best < 0 {
		return raw
	}
	rule := r.rules[best]
	return rule.Name + raw[len(rule.Prefix):]
}

// ResolveAll resolves every raw tag and returns the results sorted ascending.
// The result is never nil.
func (r *Resolver) ResolveAll(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		out = append(out, r.Resolve(tag))
	}
	sort.Strings(out)
	return out
}
