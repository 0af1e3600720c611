package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wirebit/wirebit"
)

func TestLinkCollectorReportsStats(t *testing.T) {
	a, b, err := wirebit.NewLoopbackLinkPair(256, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	defer b.Close()

	if err := a.Send(&wirebit.Frame{FrameType: wirebit.FrameCAN, Payload: []byte{1, 2, 3}}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Recv(); err != nil {
		t.Fatal(err)
	}

	c := NewLinkCollector(map[string]wirebit.Link{"a": a, "b": b})
	count := testutil.CollectAndCount(c)
	if count == 0 {
		t.Fatal("expected at least one metric family to be collected")
	}
}

func TestLinkCollectorDescribe(t *testing.T) {
	c := NewLinkCollector(nil)
	ch := make(chan *prometheus.Desc, 16)
	c.Describe(ch)
	close(ch)
	n := 0
	for range ch {
		n++
	}
	if n != 9 {
		t.Fatalf("got %d descriptors, want 9", n)
	}
}
