package logging

import "testing"

func TestNew(t *testing.T) {
	for _, debug := range []bool{false, true} {
		logger, err := New(debug)
		if err != nil {
			t.Fatalf("New(%v) failed: %v", debug, err)
		}
		if got := logger.Core().Enabled(-1); got != debug {
			t.Errorf("Expected debug level enabled=%v, got %v", debug, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc…" {
		t.Errorf("Expected abc…, got %s", got)
	}
	if got := Truncate("abc", 3); got != "abc" {
		t.Errorf("Expected unchanged, got %s", got)
	}
}
