package archive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// Writer builds a destination archive. Entry names must be unique; a
// repeated name is rejected with ErrDuplicateEntry.
type Writer struct {
	path   string
	file   io.Closer // nil when the caller owns the underlying stream
	buf    *bufio.Writer
	zw     *zip.Writer
	names  map[string]struct{}
	closed bool
}

// Create truncates or creates path and returns a Writer on top of it.
// level follows compress/flate; 0 selects the default level.
func Create(path string, level int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive %s: %w", path, err)
	}
	w, err := newWriter(f, level)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.path, w.file = path, f
	return w, nil
}

// NewWriter writes an archive to out. Close flushes the archive but does
// not close out.
func NewWriter(out io.Writer, level int) (*Writer, error) {
	return newWriter(out, level)
}

func newWriter(out io.Writer, level int) (*Writer, error) {
	if level == 0 {
		level = flate.DefaultCompression
	}
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return nil, fmt.Errorf("compression level %d out of range", level)
	}
	buf := bufio.NewWriter(out)
	zw := zip.NewWriter(buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})
	return &Writer{buf: buf, zw: zw, names: make(map[string]struct{})}, nil
}

func (w *Writer) Path() string { return w.path }

// Len is the number of entries written so far.
func (w *Writer) Len() int { return len(w.names) }

// Add appends e. Directory records are stored and must not carry a
// payload.
func (w *Writer) Add(e Entry) error {
	if w.closed {
		return errors.New("archive writer closed")
	}
	if e.IsDir() && len(e.Payload) > 0 {
		return fmt.Errorf("%w: %s (%d bytes)", ErrDirPayload, e.Name, len(e.Payload))
	}
	if _, dup := w.names[e.Name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, e.Name)
	}
	w.names[e.Name] = struct{}{}

	hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: e.Modified}
	if e.IsDir() {
		hdr.Method = zip.Store
	}
	fw, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("add %s: %w", e.Name, err)
	}
	if e.IsDir() {
		return nil
	}
	if _, err := fw.Write(e.Payload); err != nil {
		return fmt.Errorf("write %s: %w", e.Name, err)
	}
	return nil
}

// Close finalizes the central directory, flushes buffered bytes and
// closes the file opened by Create. Only the first call does any work.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	if err := w.zw.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := w.buf.Flush(); err != nil {
		errs = append(errs, err)
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
