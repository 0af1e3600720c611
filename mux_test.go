package wirebit

import (
	"testing"
	"time"
)

func TestMuxFanOutMatchingFilter(t *testing.T) {
	a, b, err := NewLoopbackLinkPair(256, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	m := NewMux(b, func() { time.Sleep(time.Millisecond) })
	defer m.Close()

	canCh, cancelCAN := m.Subscribe(ByType(FrameCAN), 4)
	defer cancelCAN()
	serialCh, cancelSerial := m.Subscribe(ByType(FrameSerial), 4)
	defer cancelSerial()

	if err := a.Send(&Frame{FrameType: FrameCAN, Payload: []byte{1}}); err != nil {
		t.Fatal(err)
	}

	select {
	case f := <-canCh:
		if f.FrameType != FrameCAN {
			t.Fatalf("got frame type %v, want FrameCAN", f.FrameType)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for CAN subscriber")
	}

	select {
	case <-serialCh:
		t.Fatal("serial subscriber should not have received a CAN frame")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMuxSubscribeCancel(t *testing.T) {
	a, b, err := NewLoopbackLinkPair(256, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	m := NewMux(b, func() { time.Sleep(time.Millisecond) })
	defer m.Close()

	ch, cancel := m.Subscribe(nil, 1)
	cancel()

	if err := a.Send(&Frame{FrameType: FrameCAN}); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}
}

func TestMuxCloseStopsBackgroundReader(t *testing.T) {
	_, b, err := NewLoopbackLinkPair(256, nil)
	if err != nil {
		t.Fatal(err)
	}
	m := NewMux(b, func() { time.Sleep(time.Millisecond) })
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
