package wirebit

import "sync/atomic"

// Action is the per-frame impairment decision a LinkModel makes at send
// time.
type Action uint8

const (
	ActionDeliver Action = iota
	ActionDrop
	ActionDuplicate
	ActionCorrupt
)

func (a Action) String() string {
	switch a {
	case ActionDrop:
		return "DROP"
	case ActionDuplicate:
		return "DUPLICATE"
	case ActionCorrupt:
		return "CORRUPT"
	default:
		return "DELIVER"
	}
}

// LinkModel is an immutable configuration for a link's impairment
// simulation. A model is deterministic iff Jitter and all three
// probabilities are zero, in which case it degenerates to pure
// bandwidth pacing plus a fixed base latency.
type LinkModel struct {
	BaseLatencyNs int64
	JitterNs      int64   // uniform draw in [0, JitterNs)
	DropProb      float64 // [0, 1]
	DupProb       float64 // [0, 1]
	CorruptProb   float64 // [0, 1]
	BandwidthBps  uint64  // 0 = unlimited
	Seed          uint64
}

// Decide draws the impairment action for one frame. Three independent
// draws are taken in priority order — drop, then duplicate, then
// corrupt — and the first match short-circuits the rest.
func (m *LinkModel) Decide(rng *RNG) Action {
	if m.DropProb > 0 && rng.Uniform() < m.DropProb {
		return ActionDrop
	}
	if m.DupProb > 0 && rng.Uniform() < m.DupProb {
		return ActionDuplicate
	}
	if m.CorruptProb > 0 && rng.Uniform() < m.CorruptProb {
		return ActionCorrupt
	}
	return ActionDeliver
}

// pacer tracks the per-link next-send-time state that serializes frames
// over a bandwidth-limited wire: the second frame's transmit start is at
// least the first frame's transmit finish.
type pacer struct {
	nextSendNs int64
}

// deliverAt computes deliver_at_ns for a frame of payloadLen bytes sent
// at now, advancing the pacer's internal next-send-time.
func (p *pacer) deliverAt(m *LinkModel, rng *RNG, now int64, payloadLen int) int64 {
	start := now
	if p.nextSendNs > start {
		start = p.nextSendNs
	}
	var transmitNs int64
	if m.BandwidthBps > 0 {
		transmitNs = int64(float64(payloadLen) * 8 * 1e9 / float64(m.BandwidthBps))
	}
	p.nextSendNs = start + transmitNs

	latency := m.BaseLatencyNs
	if m.JitterNs > 0 {
		latency += int64(rng.Range(uint64(m.JitterNs)))
	}
	return start + latency
}

// corruptPayload flips 1-3 bits at rng-selected positions in-place.
// Empty payloads are left unchanged. The number of flips is itself drawn
// as 1 + rng.Range(3).
func corruptPayload(payload []byte, rng *RNG) {
	if len(payload) == 0 {
		return
	}
	flips := 1 + rng.Range(3)
	for i := uint64(0); i < flips; i++ {
		bitPos := rng.Range(uint64(len(payload)) * 8)
		byteIdx := bitPos / 8
		bitIdx := bitPos % 8
		payload[byteIdx] ^= 1 << bitIdx
	}
}

// LinkStats holds monotonically increasing totals for one side of a
// link. Counters are single-writer; readers may observe up-to-one
// operation's worth of drift on platforms without atomic 64-bit reads,
// which is acceptable — exact readings are not a correctness property.
type LinkStats struct {
	FramesSent       uint64
	FramesReceived   uint64
	FramesDropped    uint64
	FramesDuplicated uint64
	FramesCorrupted  uint64
	BytesSent        uint64
	BytesReceived    uint64
	SendErrors       uint64
	RecvErrors       uint64
}

// Snapshot returns an atomically-read-enough copy of s for reporting.
func (s *LinkStats) Snapshot() LinkStats {
	return LinkStats{
		FramesSent:       atomic.LoadUint64(&s.FramesSent),
		FramesReceived:   atomic.LoadUint64(&s.FramesReceived),
		FramesDropped:    atomic.LoadUint64(&s.FramesDropped),
		FramesDuplicated: atomic.LoadUint64(&s.FramesDuplicated),
		FramesCorrupted:  atomic.LoadUint64(&s.FramesCorrupted),
		BytesSent:        atomic.LoadUint64(&s.BytesSent),
		BytesReceived:    atomic.LoadUint64(&s.BytesReceived),
		SendErrors:       atomic.LoadUint64(&s.SendErrors),
		RecvErrors:       atomic.LoadUint64(&s.RecvErrors),
	}
}
