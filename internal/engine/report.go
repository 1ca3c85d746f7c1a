package engine

import (
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// UnitChange records one compiled unit the chain rewrote.
type UnitChange struct {
	Source     string `json:"source" yaml:"source"`
	Entry      string `json:"entry" yaml:"entry"`
	Unit       string `json:"unit" yaml:"unit"`
	Before     string `json:"before" yaml:"before"` // blake3, hex
	After      string `json:"after" yaml:"after"`
	SizeBefore int    `json:"size_before" yaml:"size_before"`
	SizeAfter  int    `json:"size_after" yaml:"size_after"`
}

// Report summarizes one run.
type Report struct {
	Destination string        `json:"destination" yaml:"destination"`
	Sources     []string      `json:"sources" yaml:"sources"`
	Entries     int           `json:"entries" yaml:"entries"`
	Eligible    int           `json:"eligible" yaml:"eligible"`
	Rewritten   []UnitChange  `json:"rewritten" yaml:"rewritten"`
	Started     time.Time     `json:"started" yaml:"started"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
	Error       string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded reports whether the run completed.
func (r Report) Succeeded() bool { return r.Error == "" }

func digest(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
