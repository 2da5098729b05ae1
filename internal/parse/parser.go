// Package parse provides streaming parsers that turn genomic input files
// into position records. Each parser is single-pass and pull-based: the
// caller drains it one record at a time, so memory stays bounded no matter
// how large the input is. Malformed lines are skipped and counted, never
// surfaced as errors.
package parse

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/genidx/internal/format"
	"github.com/inodb/genidx/internal/reader"
	"github.com/inodb/genidx/internal/record"
)

// RecordParser is the interface shared by all format parsers.
type RecordParser interface {
	// Next reads the next position record.
	// Returns nil, nil when the input is exhausted.
	Next() (*record.PositionRecord, error)

	// Skipped returns the number of malformed lines discarded so far.
	Skipped() int64

	// LineNumber returns the current line number being processed.
	LineNumber() int

	// Close closes the parser and releases the underlying file handle.
	Close() error
}

// New returns the parser bound to the given format.
func New(f format.Format, path string) (RecordParser, error) {
	switch f {
	case format.VCF:
		return NewVCF(path)
	case format.FASTA:
		return NewFASTA(path)
	case format.GenotypeArray:
		return NewGenotypeArray(path)
	default:
		return nil, fmt.Errorf("no parser for format %q", f)
	}
}

// source yields text lines from a decoded input stream and tracks the
// current line number.
type source struct {
	reader     *bufio.Reader
	closer     io.Closer
	lineNumber int
}

func openSource(path string) (*source, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, err
	}
	return &source{reader: bufio.NewReader(r), closer: r}, nil
}

func sourceFromReader(r io.Reader) *source {
	return &source{reader: bufio.NewReader(r)}
}

// readLine returns the next line without its trailing newline. A final line
// with no newline is still returned; io.EOF signals exhaustion.
func (s *source) readLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			s.lineNumber++
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	s.lineNumber++
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *source) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
