package parse

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inodb/genidx/internal/record"
)

// VCFParser reads position records from a VCF file. Meta lines (##) and the
// #CHROM column header are skipped; data rows with fewer than 8 tab-separated
// columns or a non-integer position are discarded silently.
type VCFParser struct {
	src     *source
	name    string
	skipped int64
}

// NewVCF creates a VCF parser for the given file.
// Compressed files are decompressed transparently.
func NewVCF(path string) (*VCFParser, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf: %w", err)
	}
	return &VCFParser{src: src, name: filepath.Base(path)}, nil
}

// NewVCFFromReader creates a VCF parser over an arbitrary reader.
// The name is recorded as the source file of every emitted record.
func NewVCFFromReader(r io.Reader, name string) *VCFParser {
	return &VCFParser{src: sourceFromReader(r), name: name}
}

// Next reads the next variant record.
// Returns nil, nil when there are no more records.
func (p *VCFParser) Next() (*record.PositionRecord, error) {
	for {
		line, err := p.src.readLine()
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read vcf line: %w", err)
		}

		if line == "" || strings.HasPrefix(line, "##") || strings.HasPrefix(line, "#CHROM") {
			continue
		}

		rec, ok := p.parseLine(line)
		if !ok {
			p.skipped++
			continue
		}
		return rec, nil
	}
}

// parseLine maps one data row to a record. The second return value is false
// for rows that must be discarded.
func (p *VCFParser) parseLine(line string) (*record.PositionRecord, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, false
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, false
	}

	rec := &record.PositionRecord{
		Chrom:      fields[0],
		Pos:        pos,
		Ref:        fields[3],
		Alt:        fields[4],
		SourceFile: p.name,
	}

	if id := fields[2]; id != "." && id != "" {
		rec.RSID = id
	}

	// A non-numeric quality keeps the row; the value is just dropped.
	if q := fields[5]; q != "." && q != "" {
		if v, err := strconv.ParseFloat(q, 64); err == nil {
			rec.Quality = &v
		}
	}

	// FORMAT + first sample column carry the genotype call.
	if len(fields) >= 10 {
		rec.Genotype = sampleGenotype(fields[8], fields[9])
	}

	return rec, true
}

// sampleGenotype extracts the GT value for the first sample column. Returns
// an empty string when the GT tag is absent or the sample column is short.
func sampleGenotype(formatCol, sampleCol string) string {
	keys := strings.Split(formatCol, ":")
	for i, k := range keys {
		if k == "GT" {
			vals := strings.Split(sampleCol, ":")
			if i < len(vals) {
				return vals[i]
			}
			return ""
		}
	}
	return ""
}

// Skipped returns the number of discarded data rows.
func (p *VCFParser) Skipped() int64 {
	return p.skipped
}

// LineNumber returns the current line number being processed.
func (p *VCFParser) LineNumber() int {
	return p.src.lineNumber
}

// Close closes the underlying file.
func (p *VCFParser) Close() error {
	return p.src.Close()
}
