package wirebit

// LoopbackLink is an in-memory duplex Link for tests and simulations,
// built the way the teacher's LoopbackBus wires two in-memory endpoints
// together: NewLoopbackLinkPair returns two Links whose TX/RX rings are
// cross-wired, so a Send on one is a Recv on the other, optionally
// passing through an impairment model exactly like ShmLink.
type LoopbackLink struct {
	linkCore
}

// NewLoopbackLinkPair creates two cross-wired LoopbackLinks sharing a
// pair of heap-backed FrameRings of the given per-direction capacity. If
// model is non-nil, both sides get their own RNG seeded from model.Seed,
// so both ends apply impairment independently to what they send.
func NewLoopbackLinkPair(capacity uint64, model *LinkModel) (a, b *LoopbackLink, err error) {
	ringAB, err := NewByteRing(capacity) // a writes, b reads
	if err != nil {
		return nil, nil, err
	}
	ringBA, err := NewByteRing(capacity) // b writes, a reads
	if err != nil {
		return nil, nil, err
	}
	a = &LoopbackLink{}
	a.init(NewFrameRing(ringAB), NewFrameRing(ringBA), model)
	b = &LoopbackLink{}
	b.init(NewFrameRing(ringBA), NewFrameRing(ringAB), model)
	return a, b, nil
}

// Close releases the link's ring resources (a no-op for heap-backed
// rings; present so LoopbackLink satisfies Link symmetrically with
// ShmLink).
func (l *LoopbackLink) Close() error {
	if err := l.tx.Close(); err != nil {
		return err
	}
	return l.rx.Close()
}
