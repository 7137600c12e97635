// Package xio opens and creates files, with compression chosen by file
// extension. Files are written atomically: content appears under the final
// name only after a successful Close.
package xio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
)

// OpenFile opens a file and returns a reader, detecting if the file is
// compressed by its extension (.gz, .zst).
func OpenFile(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(filename, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case strings.HasSuffix(filename, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []io.Closer{closerFunc(zr.Close), f}}, nil
	default:
		return f, nil
	}
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

// readCloser closes the decompressor and the underlying file.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// File is an output file that is written to a temporary location in the
// same directory and renamed on Close.
type File struct {
	name   string
	tmp    *os.File
	writer io.WriteCloser // compressor, if any
	done   bool
}

// CreateFile creates a new output file. Data is compressed if the name ends
// with .gz or .zst. The caller must either Close or Abort the file.
func CreateFile(name string) (*File, error) {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".tmp-*")
	if err != nil {
		return nil, err
	}
	f := &File{name: name, tmp: tmp}
	switch {
	case strings.HasSuffix(name, ".gz"):
		f.writer = gzip.NewWriter(tmp)
	case strings.HasSuffix(name, ".zst"):
		zw, err := zstd.NewWriter(tmp)
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return nil, fmt.Errorf("error creating zstd writer: %w", err)
		}
		f.writer = zw
	}
	return f, nil
}

// Name returns the final name of the file.
func (f *File) Name() string { return f.name }

func (f *File) Write(p []byte) (int, error) {
	if f.writer != nil {
		return f.writer.Write(p)
	}
	return f.tmp.Write(p)
}

// Close flushes all data and moves the file into place. On failure, the
// temporary file is removed and no file appears under the final name.
func (f *File) Close() error {
	if f.done {
		return nil
	}
	f.done = true
	if f.writer != nil {
		if err := f.writer.Close(); err != nil {
			f.tmp.Close()
			os.Remove(f.tmp.Name())
			return err
		}
	}
	if err := f.tmp.Close(); err != nil {
		os.Remove(f.tmp.Name())
		return err
	}
	// CreateTemp uses 0600
	if err := os.Chmod(f.tmp.Name(), 0644); err != nil {
		os.Remove(f.tmp.Name())
		return err
	}
	if err := os.Rename(f.tmp.Name(), f.name); err != nil {
		os.Remove(f.tmp.Name())
		return err
	}
	return nil
}

// Abort discards the file. Calling Abort after Close is a no-op.
func (f *File) Abort() error {
	if f.done {
		return nil
	}
	f.done = true
	if f.writer != nil {
		f.writer.Close()
	}
	f.tmp.Close()
	return os.Remove(f.tmp.Name())
}
