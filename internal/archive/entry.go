// Package archive reads and writes the zip/jar containers rewritten by
// the engine. Readers yield fully materialized entries in the order the
// archive stores them; writers append entries and never revisit them.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// chunkSize is the read granularity used when materializing payloads.
const chunkSize = 1024

var ErrDuplicateEntry = errors.New("duplicate entry")

// ErrDirPayload is returned by Writer.Add for a directory record that
// carries data.
var ErrDirPayload = errors.New("directory entry with payload")

// Entry is one named record of an archive.
type Entry struct {
	Name     string
	Payload  []byte
	Modified time.Time
}

// IsDir reports whether the entry is a directory record.
func (e Entry) IsDir() bool { return strings.HasSuffix(e.Name, "/") }

// WithPayload returns a copy of e carrying p.
func (e Entry) WithPayload(p []byte) Entry {
	e.Payload = p
	return e
}

// EntryWriter is the append-only view of a destination archive.
type EntryWriter interface {
	Add(Entry) error
}

// EntryError reports a failure tied to one entry of an archive.
type EntryError struct {
	Name string
	Err  error
}

func (e *EntryError) Error() string { return fmt.Sprintf("entry %s: %v", e.Name, e.Err) }
func (e *EntryError) Unwrap() error { return e.Err }

// ReadPayload drains r into memory.
func ReadPayload(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}
