package pipeline

import (
	"strings"
	"testing"
	"time"
)

func TestEncodeULID(t *testing.T) {
	var zero [16]byte
	if got := encodeULID(zero); got != strings.Repeat("0", 26) {
		t.Errorf("expected all zeros, got %q", got)
	}

	var ones [16]byte
	for i := range ones {
		ones[i] = 0xFF
	}
	if got := encodeULID(ones); got != "7"+strings.Repeat("Z", 25) {
		t.Errorf("expected max ulid, got %q", got)
	}

	var one [16]byte
	one[15] = 1
	if got := encodeULID(one); got != strings.Repeat("0", 25)+"1" {
		t.Errorf("expected trailing 1, got %q", got)
	}
}

func TestNewULID_TimestampPrefix(t *testing.T) {
	// Ahead of any id generated so far, so the clock is not clamped.
	ts := time.Now().Add(time.Hour)
	id := newULID(ts)

	var want [16]byte
	ms := uint64(ts.UnixMilli())
	for i := range 6 {
		want[i] = byte(ms >> (40 - 8*i))
	}
	if prefix := encodeULID(want)[:10]; !strings.HasPrefix(id, prefix) {
		t.Errorf("expected timestamp prefix %q, got %q", prefix, id)
	}
}

func TestNewJobID_Monotonic(t *testing.T) {
	prev := NewJobID()
	for range 1000 {
		id := NewJobID()
		if len(id) != 26 {
			t.Fatalf("expected 26 characters, got %q", id)
		}
		if id <= prev {
			t.Fatalf("expected increasing ids, got %q after %q", id, prev)
		}
		prev = id
	}
}
