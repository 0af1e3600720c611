package wirebit

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// recordPrefixSize is the width of the record_len field that precedes
// every frame on a FrameRing.
const recordPrefixSize = 4

// FrameRing lays self-delimiting Frame records on top of a Ring. Each
// record is [u32 record_len][44B header][payload][meta][zero pad to 8B],
// where record_len is the full aligned size including the prefix itself.
// Records are consumed in FIFO insertion order; deliver_at_ns governs
// when a frame may be surfaced, not where it sits in the queue.
type FrameRing struct {
	ring *Ring
}

// NewFrameRing wraps an existing Ring (in-process or shared-memory) as a
// FrameRing.
func NewFrameRing(ring *Ring) *FrameRing {
	return &FrameRing{ring: ring}
}

// PushFrame encodes f and appends it to the ring as one record, computing
// record_len = align8(4 + 44 + payload_len + meta_len). If free space is
// less than record_len, it fails with ErrTimeout and writes nothing
// partial. Otherwise the four sections are assembled in one buffer and
// published to the ring with a single cursor store, so the consumer
// never observes a torn record.
func (fr *FrameRing) PushFrame(f *Frame) error {
	encoded, err := f.Encode()
	if err != nil {
		return err
	}
	recordLen := align8(recordPrefixSize + len(encoded))
	if uint64(recordLen) > fr.ring.Capacity() {
		return fmt.Errorf("%w: record of %d bytes exceeds ring capacity %d", ErrInvalidArgument, recordLen, fr.ring.Capacity())
	}
	if fr.ring.Free() < uint64(recordLen) {
		return ErrTimeout
	}
	buf := make([]byte, recordLen)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(recordLen))
	copy(buf[recordPrefixSize:], encoded)
	// buf[recordPrefixSize+len(encoded):] is already zero (pad).
	return fr.ring.PushN(buf)
}

// PopFrame reads the next record off the ring. It first peeks the
// record_len prefix without advancing the read cursor; a length outside
// (0, capacity] is ring corruption (ErrCorrupt) and leaves the cursor
// untouched, since the ring's contents can no longer be trusted to
// self-delimit. An empty ring reports ErrTimeout.
func (fr *FrameRing) PopFrame() (*Frame, error) {
	if fr.ring.Used() < recordPrefixSize {
		return nil, ErrTimeout
	}
	readCursor := atomic.LoadUint64(fr.ring.readPtr())
	prefix := fr.ring.peekAt(readCursor, recordPrefixSize)
	recordLen := binary.LittleEndian.Uint32(prefix)
	if recordLen == 0 || uint64(recordLen) > fr.ring.Capacity() {
		return nil, ErrCorrupt
	}
	if fr.ring.Used() < uint64(recordLen) {
		return nil, ErrTimeout
	}
	buf := make([]byte, recordLen)
	if err := fr.ring.PopN(buf); err != nil {
		// Used() already confirmed enough bytes were queued; a failure
		// here would mean a concurrent second consumer, which violates
		// the single-consumer contract.
		return nil, ErrCorrupt
	}
	return Decode(buf[recordPrefixSize:])
}

// Free returns the number of bytes currently free on the underlying
// ring.
func (fr *FrameRing) Free() uint64 { return fr.ring.Free() }

// Used returns the number of bytes currently queued on the underlying
// ring (not the number of whole records).
func (fr *FrameRing) Used() uint64 { return fr.ring.Used() }

// Close releases the underlying ring's resources (a no-op for
// heap-backed rings).
func (fr *FrameRing) Close() error { return fr.ring.Close() }
