// Package keyspace decodes the flat, colon-delimited key space of a tag database
// dump into tag rules and per-user raw records.
//
// Recognised keys:
//
//	tag:<tag_id>            -> display name of the tag
//	user:<user_id>:name     -> display name of the user
//	user:<user_id>:atags    -> actual tags (array of raw tag strings)
//	user:<user_id>:ptags    -> predicted tags (array of raw tag strings)
//
// Keys in any other namespace (post:, index:, ...) are ignored.
package keyspace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/corey/tagreport/internal/ports"
)

// Key namespaces and user attributes.
const (
	nsTag  = "tag"
	nsUser = "user"

	attrName  = "name"
	attrAtags = "atags"
	attrPtags = "ptags"
)

// MergePolicy decides what happens when the same key appears more than once.
type MergePolicy string

const (
	// LastWriteWins keeps the last value. The key keeps the position where it
	// was first seen, as ordinary map construction does.
	LastWriteWins MergePolicy = "last_write_wins"
	// Strict rejects the store on the first repeated key.
	Strict MergePolicy = "strict"
)

// ErrDuplicateKey is returned in Strict mode when a key repeats.
var ErrDuplicateKey = errors.New("duplicate key")

// ParseMergePolicy validates a policy name. Empty selects LastWriteWins.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(strings.TrimSpace(s)) {
	case "", LastWriteWins:
		return LastWriteWins, nil
	case Strict:
		return Strict, nil
	default:
		return "", fmt.Errorf("unknown merge policy %q (want %s or %s)", s, LastWriteWins, Strict)
	}
}

// TagRule maps a tag-id prefix to its display name.
type TagRule struct {
	ID   string
	Name string
}

// User is the raw, unresolved record of one user.
type User struct {
	ID    string
	Name  string
	Atags []string
	Ptags []string
}

// Skip records an entry that was recognised but could not be used.
type Skip struct {
	Key    string
	Reason string
}

// Decoded is the result of decoding a RawStore.
type Decoded struct {
	// Tags are in the order their ids were first seen in the store.
	Tags []TagRule
	// Users holds every user id that has a name entry.
	Users map[string]*User
	// Skipped lists entries with an unusable value type.
	Skipped []Skip
	// Duplicates counts keys overwritten under LastWriteWins.
	Duplicates int
}

// UserIDs returns the known user ids in ascending lexicographic order.
func (d *Decoded) UserIDs() []string {
	ids := make([]string, 0, len(d.Users))
	for id := range d.Users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Decode classifies every entry of the store.
// Users without an atags or ptags entry get empty slices, never nil.
func Decode(store *ports.RawStore, policy MergePolicy) (*Decoded, error) {
	entries, dups, err := merge(store, policy)
	if err != nil {
		return nil, err
	}

	d := &Decoded{
		Users:      make(map[string]*User),
		Duplicates: dups,
	}
	tagPos := make(map[string]int)
	pending := make(map[string]*User)
	named := make(map[string]bool)
	user := func(id string) *User {
		u, ok := pending[id]
		if !ok {
			u = &User{ID: id, Atags: []string{}, Ptags: []string{}}
			pending[id] = u
		}
		return u
	}

	for _, e := range entries {
		segs := strings.Split(e.Key, ":")
		switch segs[0] {
		case nsTag:
			if len(segs) < 2 {
				continue
			}
			name, ok := decodeString(e.Value)
			if !ok {
				d.Skipped = append(d.Skipped, Skip{Key: e.Key, Reason: "tag name is not a string"})
				continue
			}
			if i, ok := tagPos[segs[1]]; ok {
				d.Tags[i].Name = name
				continue
			}
			tagPos[segs[1]] = len(d.Tags)
			d.Tags = append(d.Tags, TagRule{ID: segs[1], Name: name})

		case nsUser:
			if len(segs) < 3 {
				continue
			}
			id := segs[1]
			switch segs[len(segs)-1] {
			case attrName:
				name, ok := decodeString(e.Value)
				if !ok {
					d.Skipped = append(d.Skipped, Skip{Key: e.Key, Reason: "user name is not a string"})
					continue
				}
				user(id).Name = name
				named[id] = true
			case attrAtags:
				tags, ok := decodeList(e.Value)
				if !ok {
					d.Skipped = append(d.Skipped, Skip{Key: e.Key, Reason: "atags is not an array"})
					continue
				}
				user(id).Atags = tags
			case attrPtags:
				tags, ok := decodeList(e.Value)
				if !ok {
					d.Skipped = append(d.Skipped, Skip{Key: e.Key, Reason: "ptags is not an array"})
					continue
				}
				user(id).Ptags = tags
			}
		}
	}

	for id := range named {
		d.Users[id] = pending[id]
	}
	return d, nil
}

// merge collapses repeated keys according to policy and returns the unique
// entries in first-seen order together with the number of overwrites.
func merge(store *ports.RawStore, policy MergePolicy) ([]ports.Entry, int, error) {
	if store == nil {
		return nil, 0, nil
	}
	pos := make(map[string]int, len(store.Entries))
	out := make([]ports.Entry, 0, len(store.Entries))
	dups := 0
	for _, e := range store.Entries {
		i, seen := pos[e.Key]
		if !seen {
			pos[e.Key] = len(out)
			out = append(out, e)
			continue
		}
		if policy == Strict {
			return nil, 0, fmt.Errorf("%w: %q", ErrDuplicateKey, e.Key)
		}
		out[i].Value = e.Value
		dups++
	}
	return out, dups, nil
}

// decodeString reports whether raw is a JSON string and returns it.
func decodeString(raw json.RawMessage) (string, bool) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeList reports whether raw is a JSON array and returns its string
// members. Members of any other type are dropped.
func decodeList(raw json.RawMessage) ([]string, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := decodeString(item); ok {
			tags = append(tags, s)
		}
	}
	return tags, true
}
