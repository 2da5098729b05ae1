// Package format classifies input files into the supported genomic formats.
package format

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/inodb/genidx/internal/reader"
)

// Format identifies one of the supported input file formats.
type Format int

const (
	VCF Format = iota
	FASTA
	GenotypeArray
)

// String returns a human-readable format name.
func (f Format) String() string {
	switch f {
	case VCF:
		return "vcf"
	case FASTA:
		return "fasta"
	case GenotypeArray:
		return "genotype-array"
	default:
		return "unknown"
	}
}

// probeLines bounds how much content Detect reads when the file name is
// inconclusive.
const probeLines = 20

// compressedExts are suffixes stripped before matching the format extension.
var compressedExts = []string{".gz", ".zst"}

// Detect classifies the file at path. The file name is checked first; if
// inconclusive, up to probeLines lines of content are sampled. Files with no
// recognizable name or marker default to GenotypeArray. This is a
// best-effort heuristic, not a validator.
func Detect(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range compressedExts {
		name = strings.TrimSuffix(name, ext)
	}

	switch {
	case strings.HasSuffix(name, ".vcf"):
		return VCF, nil
	case strings.HasSuffix(name, ".fa"), strings.HasSuffix(name, ".fasta"):
		return FASTA, nil
	}

	f, err := probe(path)
	if err != nil {
		return GenotypeArray, err
	}
	return f, nil
}

// probe samples the first lines of the file looking for format markers.
func probe(path string) (Format, error) {
	r, err := reader.Open(path)
	if err != nil {
		return GenotypeArray, err
	}
	defer r.Close()

	br := bufio.NewReader(r)
	for i := 0; i < probeLines; i++ {
		line, err := br.ReadString('\n')
		if strings.HasPrefix(line, ">") {
			return FASTA, nil
		}
		if strings.Contains(line, "23andMe") || strings.HasPrefix(line, "# rsid") {
			return GenotypeArray, nil
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return GenotypeArray, err
		}
	}

	return GenotypeArray, nil
}
