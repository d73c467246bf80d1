package archive

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/build/pargzip"
)

// Writer gzips records as json lines. It is safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	gz  *pargzip.Writer
	n   int
	err error
}

// NewWriter compresses to w using up to parallel goroutines
func NewWriter(w io.Writer, parallel int) *Writer {
	gz := pargzip.NewWriter(w)
	if parallel > 0 {
		gz.Parallel = parallel
	}
	return &Writer{gz: gz}
}

// Write appends one record. After a failed write every later call fails too.
func (w *Writer) Write(r Record) error {
	j, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "json marshal error")
	}
	j = append(j, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if _, err := w.gz.Write(j); err != nil {
		w.err = errors.Wrap(err, "write error")
		return w.err
	}
	w.n++
	return nil
}

// Count returns how many records were written
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Close flushes the compressed stream. It does not close the underlying writer.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gz.Close()
}

// Reader decodes a dataset written by Writer
type Reader struct {
	gz      *gzip.Reader
	scanner *bufio.Scanner
	line    int
}

// NewReader starts decompressing r
func NewReader(r io.Reader) (*Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress dataset")
	}
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024) // SGF text of long games
	return &Reader{gz: gz, scanner: scanner}, nil
}

// Next returns the next record, or io.EOF after the last one
func (r *Reader) Next() (Record, error) {
	var rec Record
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return rec, errors.Wrapf(err, "line %d", r.line+1)
		}
		return rec, io.EOF
	}
	r.line++
	if err := json.Unmarshal(r.scanner.Bytes(), &rec); err != nil {
		return rec, errors.Wrapf(err, "line %d", r.line)
	}
	return rec, nil
}

// Close releases the decompressor
func (r *Reader) Close() error {
	return r.gz.Close()
}
