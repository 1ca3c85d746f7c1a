package archive

import (
	"fmt"

	"github.com/klauspost/compress/zip"
)

// Reader is a lazy, non-restartable cursor over the entries of one
// archive.
//
//	r, err := archive.Open(path)
//	...
//	defer r.Close()
//	for r.Next() {
//		e := r.Entry()
//	}
//	if err := r.Err(); err != nil { ... }
type Reader struct {
	path string
	zr   *zip.ReadCloser
	idx  int
	cur  Entry
	err  error
}

// Open opens path read-only. It fails when the file is missing or is not
// a valid zip container.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return &Reader{path: path, zr: zr}, nil
}

func (r *Reader) Path() string { return r.path }

// Len is the number of entries in the archive's central directory.
func (r *Reader) Len() int { return len(r.zr.File) }

// Next materializes the next entry. It returns false at the end of the
// archive or on the first read failure; check Err afterwards.
func (r *Reader) Next() bool {
	if r.err != nil || r.idx >= len(r.zr.File) {
		return false
	}
	f := r.zr.File[r.idx]
	r.idx++

	payload, err := readFile(f)
	if err != nil {
		r.err = &EntryError{Name: f.Name, Err: err}
		return false
	}
	r.cur = Entry{Name: f.Name, Payload: payload, Modified: f.Modified}
	return true
}

// Entry returns the entry produced by the last successful Next.
func (r *Reader) Entry() Entry { return r.cur }

func (r *Reader) Err() error { return r.err }

func (r *Reader) Close() error { return r.zr.Close() }

func readFile(f *zip.File) (payload []byte, err error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return ReadPayload(rc)
}
