package wirebit

import (
	"bytes"
	"errors"
	"testing"
)

func TestLoopbackLinkSendRecv(t *testing.T) {
	a, b, err := NewLoopbackLinkPair(256, nil)
	if err != nil {
		t.Fatalf("NewLoopbackLinkPair: %v", err)
	}
	defer a.Close()
	defer b.Close()

	f := &Frame{FrameType: FrameSerial, Payload: []byte("hi")}
	if err := a.Send(f); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := b.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if !bytes.Equal(got.Payload, []byte("hi")) {
		t.Fatalf("got payload %q, want %q", got.Payload, "hi")
	}
	if _, err := a.Recv(); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout on the sender's own recv side, got %v", err)
	}
}

func TestLoopbackLinkStatsUpdate(t *testing.T) {
	a, b, err := NewLoopbackLinkPair(256, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	defer b.Close()

	if err := a.Send(&Frame{FrameType: FrameCAN, Payload: []byte{1, 2}}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Recv(); err != nil {
		t.Fatal(err)
	}
	as := a.Stats()
	bs := b.Stats()
	if as.FramesSent != 1 || as.BytesSent == 0 {
		t.Fatalf("sender stats wrong: %+v", as)
	}
	if bs.FramesReceived != 1 || bs.BytesReceived == 0 {
		t.Fatalf("receiver stats wrong: %+v", bs)
	}
}

func TestLoopbackLinkWithModelDelaysDelivery(t *testing.T) {
	model := &LinkModel{BaseLatencyNs: 1000}
	a, b, err := NewLoopbackLinkPair(256, model)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	defer b.Close()

	clock := NewFakeClock(0)
	a.SetClock(clock)
	b.SetClock(clock)

	if err := a.Send(&Frame{FrameType: FrameCAN, Payload: []byte{1}}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Recv(); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout before deliver_at_ns, got %v", err)
	}
	clock.Advance(1000)
	if _, err := b.Recv(); err != nil {
		t.Fatalf("expected delivery once deliver_at_ns elapsed, got %v", err)
	}
}

func TestLoopbackLinkCanSendCanRecv(t *testing.T) {
	a, b, err := NewLoopbackLinkPair(64, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	defer b.Close()

	if !a.CanSend() {
		t.Fatalf("expected CanSend true on empty ring")
	}
	if b.CanRecv() {
		t.Fatalf("expected CanRecv false before any send")
	}
	a.Send(&Frame{FrameType: FrameCAN})
	if !b.CanRecv() {
		t.Fatalf("expected CanRecv true after send")
	}
}
