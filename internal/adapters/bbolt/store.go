// Package bbolt keeps tag database dumps and built reports in a bbolt file
// (embedded B+ tree). Each dataset gets its own top-level bucket. Within it,
// the "entries" sub-bucket holds the raw key-value entries in import order and
// the "report" key holds the last built report. Writes are transactional: a
// crash mid-import cannot corrupt previously committed data.
package bbolt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/corey/tagreport/internal/ports"
	bolt "go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"
)

// Bucket keys
var (
	bucketEntries = []byte("entries")
	keyReport     = []byte("report")
	keyMeta       = []byte("meta")
)

// ErrDatasetNotFound is returned when a dataset has never been imported.
var ErrDatasetNotFound = errors.New("dataset not found")

// ErrNoReport is returned when a dataset has no saved report.
var ErrNoReport = errors.New("no report saved")

// Meta describes the last import into a dataset.
type Meta struct {
	Source     string    `json:"source"`
	Entries    int       `json:"entries"`
	ImportedAt time.Time `json:"imported_at"`
}

// Store is a bbolt-backed dataset store.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Import replaces the entries of a dataset with those of raw, preserving order
// and repeated keys. source is recorded in the dataset metadata.
func (s *Store) Import(datasetID, source string, raw *ports.RawStore) error {
	meta, err := json.Marshal(Meta{Source: source, Entries: raw.Len(), ImportedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		ds, err := tx.CreateBucketIfNotExists([]byte(datasetID))
		if err != nil {
			return err
		}
		if err := ds.DeleteBucket(bucketEntries); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		eb, err := ds.CreateBucket(bucketEntries)
		if err != nil {
			return err
		}
		if raw != nil {
			for _, e := range raw.Entries {
				seq, err := eb.NextSequence()
				if err != nil {
					return err
				}
				if err := eb.Put(seqKey(seq), encodeEntry(e)); err != nil {
					return err
				}
			}
		}
		return ds.Put(keyMeta, meta)
	})
}

// Load returns the entries of a dataset in import order.
func (s *Store) Load(datasetID string) (*ports.RawStore, error) {
	var store *ports.RawStore
	err := s.db.View(func(tx *bolt.Tx) error {
		ds := tx.Bucket([]byte(datasetID))
		if ds == nil {
			return ErrDatasetNotFound
		}
		eb := ds.Bucket(bucketEntries)
		if eb == nil {
			return ErrDatasetNotFound
		}
		store = &ports.RawStore{}
		return eb.ForEach(func(k, v []byte) error {
			e, err := decodeEntry(v)
			if err != nil {
				return fmt.Errorf("entry %x: %w", k, err)
			}
			store.Entries = append(store.Entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load dataset %q: %w", datasetID, err)
	}
	return store, nil
}

// Meta returns the import metadata of a dataset.
func (s *Store) Meta(datasetID string) (*Meta, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		ds := tx.Bucket([]byte(datasetID))
		if ds == nil {
			return ErrDatasetNotFound
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := ds.Get(keyMeta); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrDatasetNotFound
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal meta: %w", err)
	}
	return &m, nil
}

// SaveReport stores the built report of a dataset, replacing any earlier one.
func (s *Store) SaveReport(datasetID string, report ports.Report) error {
	data, err := encodeGob(normalize(report))
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		ds, err := tx.CreateBucketIfNotExists([]byte(datasetID))
		if err != nil {
			return err
		}
		return ds.Put(keyReport, data)
	})
}

// LoadReport retrieves the saved report of a dataset.
func (s *Store) LoadReport(datasetID string) (ports.Report, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		ds := tx.Bucket([]byte(datasetID))
		if ds == nil {
			return nil
		}
		if v := ds.Get(keyReport); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("dataset %q: %w", datasetID, ErrNoReport)
	}

	var report ports.Report
	if err := decodeGob(data, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return normalize(report), nil
}

// Datasets lists dataset ids in ascending order.
func (s *Store) Datasets() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			ids = append(ids, string(name))
			return nil
		})
	})
	sort.Strings(ids)
	return ids, err
}

// DeleteDataset removes all data (entries, metadata, report) for a dataset.
// Idempotent: deleting a nonexistent dataset is not an error.
func (s *Store) DeleteDataset(datasetID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(datasetID))
		if errors.Is(err, bolterrors.ErrBucketNotFound) {
			return nil // idempotent
		}
		return err
	})
}

// Dataset binds a store to one dataset id so it satisfies ports.Source,
// ports.ReportSink and ports.ReportReader.
type Dataset struct {
	store *Store
	id    string
}

// Dataset returns a view of a single dataset.
func (s *Store) Dataset(id string) *Dataset {
	return &Dataset{store: s, id: id}
}

// Load implements ports.Source.
func (d *Dataset) Load() (*ports.RawStore, error) { return d.store.Load(d.id) }

// SaveReport implements ports.ReportSink.
func (d *Dataset) SaveReport(r ports.Report) error { return d.store.SaveReport(d.id, r) }

// LoadReport implements ports.ReportReader.
func (d *Dataset) LoadReport() (ports.Report, error) { return d.store.LoadReport(d.id) }

// normalize gives every record a name and non-nil tag lists. gob drops empty
// slices, so this runs on both sides of the encoding.
func normalize(report ports.Report) ports.Report {
	out := make(ports.Report, len(report))
	for name, rec := range report {
		r := ports.UserRecord{Name: name}
		if rec != nil {
			r.Atags, r.Ptags = rec.Atags, rec.Ptags
		}
		if r.Atags == nil {
			r.Atags = []string{}
		}
		if r.Ptags == nil {
			r.Ptags = []string{}
		}
		out[name] = &r
	}
	return out
}
