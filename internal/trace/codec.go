package trace

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects a trace file encoding.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

// CompressionFor picks the encoding from a file extension: .zst and .zstd
// for zstd, .lz4 for lz4, anything else is plain text.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// readCloser closes the decoder and then the file beneath it.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// writeCloser flushes the encoder before closing the file.
type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w *writeCloser) Close() error {
	var errs []error
	for _, c := range w.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewReader wraps r in a decoder for c.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}

// NewWriter wraps w in an encoder for c. Close flushes the encoder but does
// not close w.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, err
		}
		return enc, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return &writeCloser{Writer: w}, nil
	}
}

// Open opens a trace file for reading, decompressing by extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := NewReader(f, CompressionFor(path))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &readCloser{Reader: dec, closers: []func() error{dec.Close, f.Close}}, nil
}

// Create creates a trace file for writing, compressing by extension.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc, err := NewWriter(f, CompressionFor(path))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &writeCloser{Writer: enc, closers: []func() error{enc.Close, f.Close}}, nil
}

// ReadFile parses the trace at path.
func ReadFile(path string) ([]Op, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	ops, err := Parse(r)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	return ops, err
}

// WriteFile writes ops to path, preceded by header as '#' comment lines.
func WriteFile(path string, header []string, ops []Op) error {
	w, err := Create(path)
	if err != nil {
		return err
	}
	for _, h := range header {
		if _, err := io.WriteString(w, "# "+h+"\n"); err != nil {
			w.Close()
			return err
		}
	}
	err = Write(w, ops)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}
