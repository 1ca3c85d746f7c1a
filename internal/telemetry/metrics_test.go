package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.Entries.WithLabelValues("copied").Add(3)
	m.Rewritten.Inc()

	if got := testutil.ToFloat64(m.Entries.WithLabelValues("copied")); got != 3 {
		t.Fatalf("copied = %v", got)
	}

	path := filepath.Join(t.TempDir(), "rejar.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), `rejar_entries_total{disposition="copied"} 3`) {
		t.Fatalf("textfile missing counter:\n%s", raw)
	}
	if !strings.Contains(string(raw), "rejar_units_rewritten_total 1") {
		t.Fatalf("textfile missing rewritten counter:\n%s", raw)
	}
}
