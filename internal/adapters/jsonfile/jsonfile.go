// Package jsonfile reads the raw key-value dump from a JSON file and persists
// reports as deterministic, indented JSON.
//
// The dump is decoded token by token so entries keep their document order,
// including repeated keys, which a map-based decode would lose.
package jsonfile

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/corey/tagreport/internal/ports"
)

// Indent is the per-level indentation of written reports.
const Indent = "    "

// ErrNotObject is returned when the top-level JSON value is not an object.
var ErrNotObject = errors.New("top-level JSON value is not an object")

// Source loads a RawStore from a JSON object on disk.
type Source struct {
	path string
}

// NewSource returns a Source reading path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path returns the file the source reads.
func (s *Source) Path() string {
	return s.path
}

// Load reads and decodes the whole file.
func (s *Source) Load() (*ports.RawStore, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	store, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return store, nil
}

// Decode reads a single JSON object from r and returns its members in order.
func Decode(r io.Reader) (*ports.RawStore, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}

	store := &ports.RawStore{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		store.Entries = append(store.Entries, ports.Entry{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after top-level object")
	}
	return store, nil
}

// Sink writes reports to a JSON file and reads them back.
type Sink struct {
	path string
}

// NewSink returns a Sink bound to path.
func NewSink(path string) *Sink {
	return &Sink{path: path}
}

// SaveReport writes the report atomically: a temp file in the same directory
// is renamed over the target once fully written.
func (s *Sink) SaveReport(report ports.Report) error {
	data, err := Encode(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

// LoadReport reads a report written by SaveReport. Record names are filled
// in from the object keys.
func (s *Sink) LoadReport() (ports.Report, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	report, err := DecodeReport(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return report, nil
}

// Encode renders a report as JSON with keys sorted at every level, four-space
// indentation and no HTML escaping. Nil tag lists are written as [].
func Encode(report ports.Report) ([]byte, error) {
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

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeReport parses report JSON.
func DecodeReport(data []byte) (ports.Report, error) {
	var report ports.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrNotObject
	}
	for name, rec := range report {
		if rec == nil {
			rec = &ports.UserRecord{}
			report[name] = rec
		}
		rec.Name = name
	}
	return report, nil
}
