// Package app wires together adapters and domain logic.
// A Pipeline runs the two batch passes: analyze (dump -> report) and score
// (persisted report -> ptags accuracy).
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/corey/tagreport/internal/adapters/bbolt"
	"github.com/corey/tagreport/internal/adapters/jsonfile"
	"github.com/corey/tagreport/internal/config"
	"github.com/corey/tagreport/internal/domain/accuracy"
	"github.com/corey/tagreport/internal/domain/keyspace"
	"github.com/corey/tagreport/internal/domain/report"
	"github.com/corey/tagreport/internal/domain/resolver"
	"github.com/corey/tagreport/internal/ports"
	"go.uber.org/zap"
)

// Pipeline holds the collaborators and policies of one run.
type Pipeline struct {
	Source   ports.Source
	Sinks    []ports.ReportSink
	Reader   ports.ReportReader
	Priority resolver.Priority
	Merge    keyspace.MergePolicy
	Sentinel string
	Log      *zap.Logger
}

// AnalyzeResult summarises an analyze pass.
type AnalyzeResult struct {
	Report     ports.Report
	Entries    int
	TagRules   int
	Users      int
	Skipped    []keyspace.Skip
	Collisions []report.Collision
	Elapsed    time.Duration
}

// New builds a pipeline from configuration. When cfg.DB is set the dump is
// read from that bbolt dataset, the report is saved there as well as to the
// JSON output file, and Score reads it back from the dataset. The returned
// close function releases the database.
func New(cfg *config.Config, paths *Paths, log *zap.Logger) (*Pipeline, func() error, error) {
	priority, err := resolver.ParsePriority(cfg.Priority)
	if err != nil {
		return nil, nil, err
	}
	merge, err := keyspace.ParseMergePolicy(cfg.Merge)
	if err != nil {
		return nil, nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	out := jsonfile.NewSink(paths.Output)
	p := &Pipeline{
		Source:   jsonfile.NewSource(paths.Input),
		Sinks:    []ports.ReportSink{out},
		Reader:   out,
		Priority: priority,
		Merge:    merge,
		Sentinel: cfg.ScoreSentinel(),
		Log:      log,
	}
	closeFn := func() error { return nil }

	if paths.DB != "" {
		store, err := bbolt.NewStore(paths.DB)
		if err != nil {
			return nil, nil, err
		}
		ds := store.Dataset(cfg.Dataset)
		p.Source = ds
		p.Sinks = append(p.Sinks, ds)
		p.Reader = ds
		closeFn = store.Close
	}
	return p, closeFn, nil
}

// Analyze loads the dump, builds the report and persists it to every sink.
func (p *Pipeline) Analyze() (*AnalyzeResult, error) {
	start := time.Now()
	log := p.logger()

	raw, err := p.Source.Load()
	if err != nil {
		return nil, err
	}

	decoded, err := keyspace.Decode(raw, p.Merge)
	if err != nil {
		return nil, fmt.Errorf("decode store: %w", err)
	}
	for _, s := range decoded.Skipped {
		log.Warn("skipped entry", zap.String("key", s.Key), zap.String("reason", s.Reason))
	}
	if decoded.Duplicates > 0 {
		log.Info("duplicate keys merged", zap.Int("count", decoded.Duplicates), zap.String("policy", string(p.Merge)))
	}

	r := resolver.New(report.Rules(decoded), p.Priority)
	built := report.Build(decoded, r)
	for _, c := range built.Collisions {
		log.Warn("user name collision",
			zap.String("name", c.Name),
			zap.String("replaced", c.Replaced),
			zap.String("replaced_by", c.ReplacedBy))
	}

	for _, sink := range p.Sinks {
		if err := sink.SaveReport(built.Report); err != nil {
			return nil, fmt.Errorf("save report: %w", err)
		}
	}

	res := &AnalyzeResult{
		Report:     built.Report,
		Entries:    raw.Len(),
		TagRules:   len(decoded.Tags),
		Users:      len(built.Report),
		Skipped:    decoded.Skipped,
		Collisions: built.Collisions,
		Elapsed:    time.Since(start),
	}
	log.Debug("analyze done",
		zap.Int("entries", res.Entries),
		zap.Int("tag_rules", res.TagRules),
		zap.Int("users", res.Users),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// Score re-reads the persisted report and computes the ptags accuracy.
func (p *Pipeline) Score() (*accuracy.Result, error) {
	if p.Reader == nil {
		return nil, errors.New("no report reader configured")
	}
	rep, err := p.Reader.LoadReport()
	if err != nil {
		return nil, err
	}
	res, err := accuracy.Score(rep, p.Sentinel)
	if err != nil {
		return nil, fmt.Errorf("score report: %w", err)
	}
	p.logger().Debug("score done",
		zap.Int("users", len(res.Users)),
		zap.Int("tags", res.Tags),
		zap.Int("skipped", res.Skipped),
		zap.Float64("total", res.Total))
	return res, nil
}

// Import copies a JSON dump into a bbolt dataset and returns the entry count.
func Import(store *bbolt.Store, datasetID string, src *jsonfile.Source) (int, error) {
	raw, err := src.Load()
	if err != nil {
		return 0, err
	}
	if err := store.Import(datasetID, src.Path(), raw); err != nil {
		return 0, fmt.Errorf("import %s: %w", src.Path(), err)
	}
	return raw.Len(), nil
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}
