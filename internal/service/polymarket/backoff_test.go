package polymarket

import (
	"testing"
	"time"
)

func TestBackoffDoublesToCap(t *testing.T) {
	b := NewBackoff(1*time.Second, 60*time.Second, 2)

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
		60 * time.Second,
		60 * time.Second,
	}
	for i, w := range want {
		got := b.Next()
		if got != w {
			t.Fatalf("step %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestBackoffResetReturnsToFloor(t *testing.T) {
	b := NewBackoff(500*time.Millisecond, 10*time.Second, 2)

	b.Next()
	b.Next()
	b.Next()
	b.Reset()

	if got := b.Next(); got != 500*time.Millisecond {
		t.Fatalf("expected floor after reset, got %v", got)
	}
}

func TestBackoffDefaults(t *testing.T) {
	b := NewBackoff(0, 0, 0)
	if b.Current() != time.Second {
		t.Fatalf("expected 1s default floor, got %v", b.Current())
	}
}
