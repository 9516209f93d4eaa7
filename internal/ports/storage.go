// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these types, never on concrete file or database implementations.
package ports

import "encoding/json"

// Entry is a single key/value pair of the raw store. Value holds the JSON
// encoding of the stored value (a string, an array of strings, or anything
// else the dump happens to contain).
type Entry struct {
	Key   string
	Value json.RawMessage
}

// RawStore is the flat key-value dump of the tag database.
// Entries keep the order in which the source produced them; repeated keys
// are preserved so the decoder can apply its merge policy.
type RawStore struct {
	Entries []Entry
}

// Len returns the number of entries, duplicates included.
func (s *RawStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Source yields the raw key-value store. Implementations read the whole
// store into memory and release the underlying file before returning.
type Source interface {
	Load() (*RawStore, error)
}

// ReportSink persists a built report.
//
// Output must be deterministic: the same report always produces the same bytes.
type ReportSink interface {
	SaveReport(report Report) error
}

// ReportReader reads back a previously persisted report.
type ReportReader interface {
	LoadReport() (Report, error)
}

// UserRecord is the per-user section of a report. Name is the resolved display
// name; it is the report key and is not serialized inside the record.
type UserRecord struct {
	Name  string   `json:"-"`
	Atags []string `json:"atags"`
	Ptags []string `json:"ptags"`
}

// Report maps resolved user display names to their records.
type Report map[string]*UserRecord
