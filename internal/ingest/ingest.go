// Package ingest drives the classification, parsing, batching, and storage
// of one input file into one store.
package ingest

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/inodb/genidx/internal/format"
	"github.com/inodb/genidx/internal/parse"
	"github.com/inodb/genidx/internal/record"
)

// BatchWriter persists one batch of records as an atomic unit.
type BatchWriter interface {
	InsertBatch(records []record.PositionRecord) error
}

// Config collects the pipeline tunables.
type Config struct {
	// BatchSize is the number of records per insertion transaction. Peak
	// memory is proportional to it, independent of input size.
	BatchSize int

	// ProgressInterval is the record count between progress log events.
	ProgressInterval int64
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:        1000,
		ProgressInterval: 1_000_000,
	}
}

// Pipeline ingests input files into a store.
type Pipeline struct {
	store  BatchWriter
	cfg    Config
	logger *zap.Logger
}

// New creates a pipeline writing to the given store. Non-positive config
// values fall back to the defaults.
func New(s BatchWriter, cfg Config) *Pipeline {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = def.ProgressInterval
	}
	return &Pipeline{store: s, cfg: cfg, logger: zap.NewNop()}
}

// SetLogger sets the logger for progress and summary events.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Ingest classifies the file at path, drains the matching parser, and
// persists the records in batches. It returns the number of records handed
// to storage. Malformed input lines are skipped by the parser and never
// abort the run; a storage failure does, leaving previously committed
// batches in place.
func (p *Pipeline) Ingest(path string) (int64, error) {
	f, err := format.Detect(path)
	if err != nil {
		return 0, fmt.Errorf("detect format: %w", err)
	}
	p.logger.Info("detected format",
		zap.String("file", filepath.Base(path)),
		zap.String("format", f.String()))

	parser, err := parse.New(f, path)
	if err != nil {
		return 0, err
	}
	defer parser.Close()

	batch := make([]record.PositionRecord, 0, p.cfg.BatchSize)
	var total int64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.store.InsertBatch(batch); err != nil {
			return fmt.Errorf("flush batch: %w", err)
		}
		total += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	var yielded int64
	for {
		rec, err := parser.Next()
		if err != nil {
			return total, fmt.Errorf("read record near line %d: %w", parser.LineNumber(), err)
		}
		if rec == nil {
			break
		}

		batch = append(batch, *rec)
		yielded++

		if len(batch) >= p.cfg.BatchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
		if yielded%p.cfg.ProgressInterval == 0 {
			p.logger.Info("progress", zap.Int64("records", yielded))
		}
	}

	if err := flush(); err != nil {
		return total, err
	}

	p.logger.Info("ingest complete",
		zap.String("file", filepath.Base(path)),
		zap.Int64("inserted", total),
		zap.Int64("skipped", parser.Skipped()))

	return total, nil
}
