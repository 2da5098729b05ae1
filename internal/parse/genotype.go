package parse

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inodb/genidx/internal/record"
)

// GenotypeArrayParser reads position records from a consumer genotyping
// export: whitespace-separated columns rsid, chromosome, position, genotype.
// Comment lines (#) and blank lines are skipped; rows with fewer than four
// tokens or a non-integer position are discarded silently.
type GenotypeArrayParser struct {
	src     *source
	name    string
	skipped int64
}

// NewGenotypeArray creates a genotype-array parser for the given file.
// Compressed files are decompressed transparently.
func NewGenotypeArray(path string) (*GenotypeArrayParser, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, fmt.Errorf("open genotype array: %w", err)
	}
	return &GenotypeArrayParser{src: src, name: filepath.Base(path)}, nil
}

// NewGenotypeArrayFromReader creates a genotype-array parser over an
// arbitrary reader.
func NewGenotypeArrayFromReader(r io.Reader, name string) *GenotypeArrayParser {
	return &GenotypeArrayParser{src: sourceFromReader(r), name: name}
}

// Next reads the next genotype record.
// Returns nil, nil when there are no more records.
func (p *GenotypeArrayParser) Next() (*record.PositionRecord, error) {
	for {
		line, err := p.src.readLine()
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read genotype line: %w", err)
		}

		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			p.skipped++
			continue
		}

		pos, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			p.skipped++
			continue
		}

		return &record.PositionRecord{
			Chrom:      fields[1],
			Pos:        pos,
			Genotype:   fields[3],
			RSID:       fields[0],
			SourceFile: p.name,
		}, nil
	}
}

// Skipped returns the number of discarded data rows.
func (p *GenotypeArrayParser) Skipped() int64 {
	return p.skipped
}

// LineNumber returns the current line number being processed.
func (p *GenotypeArrayParser) LineNumber() int {
	return p.src.lineNumber
}

// Close closes the underlying file.
func (p *GenotypeArrayParser) Close() error {
	return p.src.Close()
}
