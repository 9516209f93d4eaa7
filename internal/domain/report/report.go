// Package report assembles the per-user tag report from decoded store data.
package report

import (
	"github.com/corey/tagreport/internal/domain/keyspace"
	"github.com/corey/tagreport/internal/domain/resolver"
	"github.com/corey/tagreport/internal/ports"
)

// Collision records a user id whose record was replaced by a later user id
// with the same display name.
type Collision struct {
	Name       string
	Replaced   string // user id that was overwritten
	ReplacedBy string // user id that won
}

// Result is the built report plus what happened while building it.
type Result struct {
	Report     ports.Report
	Collisions []Collision
}

// Rules converts decoded tag rules into resolver rules, keeping source order.
func Rules(d *keyspace.Decoded) []resolver.Rule {
	rules := make([]resolver.Rule, 0, len(d.Tags))
	for _, t := range d.Tags {
		rules = append(rules, resolver.Rule{Prefix: t.ID, Name: t.Name})
	}
	return rules
}

// Build resolves and sorts every user's tags. Users are visited in ascending
// user-id order and keyed by display name, so when two ids share a name the
// later id wins.
func Build(d *keyspace.Decoded, r *resolver.Resolver) *Result {
	res := &Result{Report: make(ports.Report, len(d.Users))}
	owner := make(map[string]string, len(d.Users))

	for _, id := range d.UserIDs() {
		u := d.Users[id]
		if prev, ok := owner[u.Name]; ok {
			res.Collisions = append(res.Collisions, Collision{Name: u.Name, Replaced: prev, ReplacedBy: id})
		}
		owner[u.Name] = id
		res.Report[u.Name] = &ports.UserRecord{
			Name:  u.Name,
			Atags: r.ResolveAll(u.Atags),
			Ptags: r.ResolveAll(u.Ptags),
		}
	}
	return res
}
