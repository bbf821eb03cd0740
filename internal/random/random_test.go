package random

import "testing"

func TestNewIsDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 20; i++ {
		if x, y := a.Intn(81), b.Intn(81); x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
}

func TestNewRandomReturnsReplayableSeed(t *testing.T) {
	r, seed, err := NewRandom()
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	replay := New(seed)
	for i := 0; i < 10; i++ {
		if x, y := r.Intn(1000), replay.Intn(1000); x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
}
