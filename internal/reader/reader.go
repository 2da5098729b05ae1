// Package reader opens input files as decoded text streams. Compression is
// detected from content magic bytes rather than file names, and invalid
// UTF-8 sequences are substituted in-stream so a corrupt byte never aborts
// reading an otherwise-valid file.
package reader

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Reader is a decoded text stream over a possibly-compressed file.
// It owns the underlying file handle; Close releases it.
type Reader struct {
	file *os.File
	gzip *gzip.Reader
	zstd *zstd.Decoder
	text io.Reader
}

// Open opens the file at path and returns a decoded text stream.
// Gzip (0x1f 0x8b) and zstd (0x28 0xb5 0x2f 0xfd) content is decompressed
// transparently, regardless of file extension.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}

	// Sniff magic bytes, then seek back to the beginning. Files shorter
	// than the magic are plain text by definition.
	magic := make([]byte, 4)
	n, err := io.ReadFull(file, magic)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		file.Close()
		return nil, fmt.Errorf("read magic bytes: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek input file: %w", err)
	}

	r := &Reader{file: file}
	var raw io.Reader = file

	switch {
	case n >= 2 && magic[0] == 0x1f && magic[1] == 0x8b:
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.gzip = gz
		raw = gz
	case n >= 4 && magic[0] == 0x28 && magic[1] == 0xb5 && magic[2] == 0x2f && magic[3] == 0xfd:
		dec, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		r.zstd = dec
		raw = dec
	}

	// Substitute ill-formed byte sequences with U+FFFD instead of erroring.
	r.text = transform.NewReader(raw, runes.ReplaceIllFormed())
	return r, nil
}

// Read implements io.Reader over the decoded text.
func (r *Reader) Read(p []byte) (int, error) {
	return r.text.Read(p)
}

// Close releases the decompressor (if any) and the underlying file.
func (r *Reader) Close() error {
	if r.gzip != nil {
		r.gzip.Close()
	}
	if r.zstd != nil {
		r.zstd.Close()
	}
	return r.file.Close()
}
