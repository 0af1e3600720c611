package wirebit

import (
	"bytes"
	"errors"
	"testing"
)

func TestRingPushPopSingleByte(t *testing.T) {
	r, err := NewByteRing(4)
	if err != nil {
		t.Fatalf("NewByteRing: %v", err)
	}
	if err := r.Push(0x42); err != nil {
		t.Fatalf("Push: %v", err)
	}
	b, err := r.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if b != 0x42 {
		t.Fatalf("got %x, want 0x42", b)
	}
	if _, err := r.Pop(); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout on empty ring, got %v", err)
	}
}

func TestRingFullReportsTimeout(t *testing.T) {
	r, _ := NewByteRing(2)
	if err := r.Push(1); err != nil {
		t.Fatal(err)
	}
	if err := r.Push(2); err != nil {
		t.Fatal(err)
	}
	if err := r.Push(3); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout on full ring, got %v", err)
	}
}

func TestRingPushNPopNWrap(t *testing.T) {
	r, _ := NewByteRing(4)
	if err := r.PushN([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, 2)
	if err := r.PopN(out); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{1, 2}) {
		t.Fatalf("got %v, want [1 2]", out)
	}
	// Push again so the write cursor wraps around the 4-byte buffer.
	if err := r.PushN([]byte{4, 5, 6}); err != nil {
		t.Fatal(err)
	}
	rest := make([]byte, 4)
	if err := r.PopN(rest); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rest, []byte{3, 4, 5, 6}) {
		t.Fatalf("got %v, want [3 4 5 6]", rest)
	}
}

func TestRingPushNAllOrNothing(t *testing.T) {
	r, _ := NewByteRing(4)
	if err := r.PushN([]byte{1, 2, 3, 4, 5}); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout for oversized PushN, got %v", err)
	}
	if r.Used() != 0 {
		t.Fatalf("ring should be untouched after failed PushN, used=%d", r.Used())
	}
}

func TestRingUsedAndFree(t *testing.T) {
	r, _ := NewByteRing(8)
	if r.Used() != 0 || r.Free() != 8 {
		t.Fatalf("fresh ring should be empty: used=%d free=%d", r.Used(), r.Free())
	}
	r.PushN([]byte{1, 2, 3})
	if r.Used() != 3 || r.Free() != 5 {
		t.Fatalf("used=%d free=%d, want 3/5", r.Used(), r.Free())
	}
}
