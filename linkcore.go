package wirebit

import "sync/atomic"

// linkCore implements the send/recv/impairment logic shared by every
// duplex Link built from a pair of FrameRings, regardless of whether
// those rings are backed by shared memory (ShmLink) or the heap
// (LoopbackLink). Embedding it and wiring tx/rx is the entire job of a
// new Link implementation.
type linkCore struct {
	tx, rx  *FrameRing
	clock   Clock
	model   *LinkModel
	rng     *RNG
	pacer   pacer
	pending *Frame // single-slot holding buffer for a not-yet-due frame
	stats   LinkStats
}

func (l *linkCore) init(tx, rx *FrameRing, model *LinkModel) {
	l.tx = tx
	l.rx = rx
	l.clock = NewSystemClock()
	if model != nil {
		m := *model
		l.model = &m
		l.rng = NewRNG(model.Seed)
	}
}

// SetClock overrides the link's time source; intended for deterministic
// tests.
func (l *linkCore) SetClock(c Clock) { l.clock = c }

// Send transmits f, applying the link's impairment model if one is
// installed. A DROP outcome is reported as success: the medium silently
// discards the frame, which is not an API failure. A DUPLICATE outcome
// enqueues the original immediately with no pacing computation, then
// enqueues a second copy that alone consumes the pacer/RNG's single
// deliver_at_ns computation for this Send call. A CORRUPT outcome flips
// bits in the payload in place before the frame is paced and enqueued.
func (l *linkCore) Send(f *Frame) error {
	atomic.AddUint64(&l.stats.FramesSent, 1)
	atomic.AddUint64(&l.stats.BytesSent, uint64(frameWireSize(f)))

	if l.model == nil {
		if err := l.tx.PushFrame(f); err != nil {
			atomic.AddUint64(&l.stats.SendErrors, 1)
			return err
		}
		return nil
	}

	switch l.model.Decide(l.rng) {
	case ActionDrop:
		atomic.AddUint64(&l.stats.FramesDropped, 1)
		return nil

	case ActionDuplicate:
		atomic.AddUint64(&l.stats.FramesDuplicated, 1)
		original := cloneFrame(f)
		if err := l.tx.PushFrame(original); err != nil {
			atomic.AddUint64(&l.stats.SendErrors, 1)
			return err
		}
		duplicate := cloneFrame(f)
		duplicate.DeliverAtNs = l.pacer.deliverAt(l.model, l.rng, l.clock.NowNs(), len(duplicate.Payload))
		if err := l.tx.PushFrame(duplicate); err != nil {
			atomic.AddUint64(&l.stats.SendErrors, 1)
			return err
		}
		return nil

	case ActionCorrupt:
		atomic.AddUint64(&l.stats.FramesCorrupted, 1)
		corruptPayload(f.Payload, l.rng)
	}

	f.DeliverAtNs = l.pacer.deliverAt(l.model, l.rng, l.clock.NowNs(), len(f.Payload))
	if err := l.tx.PushFrame(f); err != nil {
		atomic.AddUint64(&l.stats.SendErrors, 1)
		return err
	}
	return nil
}

// Recv pops the next frame and counts it as received. If a model is in
// effect and the frame is not yet due, it is held in a single-slot
// pending buffer and ErrTimeout is reported until the clock reaches its
// deliver_at_ns; with a model, no frame is surfaced before its
// deliver_at_ns, and none is reordered ahead of an earlier one held
// pending. Without a model, frames are surfaced as soon as they are
// popped, whatever their deliver_at_ns.
func (l *linkCore) Recv() (*Frame, error) {
	if l.pending != nil {
		if l.clock.NowNs() < l.pending.DeliverAtNs {
			return nil, ErrTimeout
		}
		f := l.pending
		l.pending = nil
		return f, nil
	}

	f, err := l.rx.PopFrame()
	if err != nil {
		if err != ErrTimeout {
			atomic.AddUint64(&l.stats.RecvErrors, 1)
		}
		return nil, err
	}
	l.countRecv(f)
	if l.model != nil && l.clock.NowNs() < f.DeliverAtNs {
		l.pending = f
		return nil, ErrTimeout
	}
	return f, nil
}

func (l *linkCore) countRecv(f *Frame) {
	atomic.AddUint64(&l.stats.FramesReceived, 1)
	atomic.AddUint64(&l.stats.BytesReceived, uint64(frameWireSize(f)))
}

// CanSend reports whether the TX ring has room for at least one byte.
func (l *linkCore) CanSend() bool { return l.tx.Free() > 0 }

// CanRecv reports whether a frame is available, ignoring deliver_at_ns.
func (l *linkCore) CanRecv() bool {
	return l.pending != nil || l.rx.Used() > 0
}

// Stats returns a snapshot of the link's counters.
func (l *linkCore) Stats() LinkStats { return l.stats.Snapshot() }
