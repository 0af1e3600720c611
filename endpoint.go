package wirebit

// Base is the common state every protocol endpoint (serial, CAN,
// Ethernet) builds on: a reference to a Link, this endpoint's ID, a
// clock, and the monotone last_tx_deliver_at_ns counter that serializes
// successive frames sent by this endpoint on the wire. Endpoints hold no
// state machine beyond this and their own receive FIFOs; §4.10.
type Base struct {
	Link  Link
	ID    uint32
	Clock Clock

	lastTxDeliverAtNs int64
}

// NewBase wires a Base to link with the given endpoint id. clock may be
// nil, in which case a SystemClock is used.
func NewBase(link Link, id uint32, clock Clock) Base {
	if clock == nil {
		clock = NewSystemClock()
	}
	return Base{Link: link, ID: id, Clock: clock}
}

// NextDeliverAt advances last_tx_deliver_at_ns by txTimeNs and returns
// the new value, which endpoints stamp into the frame they are about to
// send. If the counter has fallen behind the clock it is first raised to
// now, so an idle endpoint never stamps a deliver_at_ns in the past;
// back-to-back sends then advance it by txTimeNs each, serializing this
// endpoint's own bytes/frames on the wire independently of the link
// model's separate bandwidth pacer.
func (b *Base) NextDeliverAt(txTimeNs int64) int64 {
	now := b.Clock.NowNs()
	if b.lastTxDeliverAtNs < now {
		b.lastTxDeliverAtNs = now
	}
	b.lastTxDeliverAtNs += txTimeNs
	return b.lastTxDeliverAtNs
}

// Stamp fills the common timestamp/endpoint fields of f, then computes
// and assigns DeliverAtNs by advancing this endpoint's pacing counter by
// txTimeNs.
func (b *Base) Stamp(f *Frame, dst uint32, txTimeNs int64) {
	f.TxTimestampNs = b.Clock.NowNs()
	f.SrcEndpointID = b.ID
	f.DstEndpointID = dst
	f.DeliverAtNs = b.NextDeliverAt(txTimeNs)
}
