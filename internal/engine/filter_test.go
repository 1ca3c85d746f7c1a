package engine

import "testing"

func TestFilter_Match(t *testing.T) {
	f, err := NewFilter([]string{"com/acme/**"}, []string{"com/acme/gen/*", "**/package-info"})
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	cases := map[string]bool{
		"com/acme/Main":           true,
		"com/acme/deep/pkg/Thing": true,
		"com/acme/gen/Stub":       false,
		"com/acme/package-info":   false,
		"org/other/Main":          false,
	}
	for unit, want := range cases {
		if got := f.Match(unit); got != want {
			t.Fatalf("Match(%q) = %v, want %v", unit, got, want)
		}
	}
}

func TestFilter_NilAndEmptyMatchAll(t *testing.T) {
	var nilFilter *Filter
	if !nilFilter.Match("any/Thing") {
		t.Fatal("nil filter should match")
	}
	f, err := NewFilter(nil, nil)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	if !f.Match("any/Thing") {
		t.Fatal("empty filter should match")
	}
}

func TestNewFilter_BadPattern(t *testing.T) {
	if _, err := NewFilter([]string{"com/[acme"}, nil); err == nil {
		t.Fatal("expected compile error")
	}
}
