package parse

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/inodb/genidx/internal/record"
)

// FASTAParser emits one record per base of every sequence. A header line (>)
// sets the current sequence label from its first whitespace-delimited token
// (kept verbatim, no version stripping) and resets the running position
// counter. Sequence lines before the first usable header are skipped.
type FASTAParser struct {
	src     *source
	name    string
	chrom   string
	pos     int64
	seq     []rune
	idx     int
	skipped int64
}

// NewFASTA creates a FASTA parser for the given file.
// Compressed files are decompressed transparently.
func NewFASTA(path string) (*FASTAParser, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, fmt.Errorf("open fasta: %w", err)
	}
	return &FASTAParser{src: src, name: filepath.Base(path)}, nil
}

// NewFASTAFromReader creates a FASTA parser over an arbitrary reader.
func NewFASTAFromReader(r io.Reader, name string) *FASTAParser {
	return &FASTAParser{src: sourceFromReader(r), name: name}
}

// Next reads the next per-base record.
// Returns nil, nil when there are no more records.
func (p *FASTAParser) Next() (*record.PositionRecord, error) {
	for {
		if p.idx < len(p.seq) {
			base := p.seq[p.idx]
			p.idx++
			p.pos++
			return &record.PositionRecord{
				Chrom:      p.chrom,
				Pos:        p.pos,
				Ref:        strings.ToUpper(string(base)),
				SourceFile: p.name,
			}, nil
		}

		line, err := p.src.readLine()
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read fasta line: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ">") {
			tokens := strings.Fields(line[1:])
			if len(tokens) == 0 {
				// Header without a label: no sequence context until
				// the next usable header.
				p.chrom = ""
			} else {
				p.chrom = tokens[0]
			}
			p.pos = 0
			continue
		}

		if p.chrom == "" {
			p.skipped++
			continue
		}

		p.seq = []rune(line)
		p.idx = 0
	}
}

// Skipped returns the number of sequence lines discarded for lack of a
// header.
func (p *FASTAParser) Skipped() int64 {
	return p.skipped
}

// LineNumber returns the current line number being processed.
func (p *FASTAParser) LineNumber() int {
	return p.src.lineNumber
}

// Close closes the underlying file.
func (p *FASTAParser) Close() error {
	return p.src.Close()
}
