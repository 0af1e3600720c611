package wirebit

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"unsafe"
)

// ringHeaderSize is the size in bytes of the cursor header that precedes
// the data buffer in every ring's backing region: capacity (8 bytes),
// write cursor (8 bytes), read cursor (8 bytes).
const ringHeaderSize = 24

// Ring is a lock-free single-producer/single-consumer byte ring. Exactly
// one producer and one consumer may operate on a Ring at a time; the
// producer exclusively writes the write cursor, the consumer exclusively
// writes the read cursor. Both cursors are ever-increasing counts rather
// than wrapped indices, which sidesteps the empty/full ambiguity: the
// ring is empty iff write == read and full iff write - read == capacity.
//
// Both sides read both cursors with acquire ordering (via sync/atomic)
// and publish their own cursor with release ordering after the backing
// bytes are stored, so the consumer never observes a torn write.
type Ring struct {
	region   []byte // header followed by the data buffer
	capacity uint64
	mapped   bool // true if region came from mmap and must be munmapped on Close
}

// newRing wraps region (header + capacity data bytes) as a Ring. When
// create is true the header is initialized (capacity stamped, cursors
// zeroed); when false the existing header is validated against capacity.
func newRing(region []byte, capacity uint64, create bool) (*Ring, error) {
	if uint64(len(region)) < uint64(ringHeaderSize)+capacity {
		return nil, fmt.Errorf("%w: region of %d bytes too small for capacity %d", ErrInvalidArgument, len(region), capacity)
	}
	r := &Ring{region: region, capacity: capacity}
	if create {
		binary.LittleEndian.PutUint64(region[0:8], capacity)
		atomic.StoreUint64(r.writePtr(), 0)
		atomic.StoreUint64(r.readPtr(), 0)
	} else {
		existing := binary.LittleEndian.Uint64(region[0:8])
		if existing != capacity {
			return nil, fmt.Errorf("%w: ring capacity mismatch: have %d, attach requested %d", ErrInvalidArgument, existing, capacity)
		}
	}
	return r, nil
}

// NewByteRing allocates an in-process (heap-backed) ring of the given
// capacity. Use CreateShm/AttachShm for a ring shared between processes.
func NewByteRing(capacity uint64) (*Ring, error) {
	region := make([]byte, uint64(ringHeaderSize)+capacity)
	return newRing(region, capacity, true)
}

func (r *Ring) writePtr() *uint64 {
	return (*uint64)(unsafe.Pointer(&r.region[8]))
}

func (r *Ring) readPtr() *uint64 {
	return (*uint64)(unsafe.Pointer(&r.region[16]))
}

// Capacity returns the ring's fixed byte capacity.
func (r *Ring) Capacity() uint64 { return r.capacity }

// Used returns the number of bytes currently queued.
func (r *Ring) Used() uint64 {
	write := atomic.LoadUint64(r.writePtr())
	read := atomic.LoadUint64(r.readPtr())
	return write - read
}

// Free returns the number of bytes that can currently be pushed.
func (r *Ring) Free() uint64 {
	return r.capacity - r.Used()
}

// Push writes a single byte. It fails with ErrTimeout if the ring is
// full; the producer cursor is published with release ordering only
// after the byte is stored.
func (r *Ring) Push(b byte) error {
	write := atomic.LoadUint64(r.writePtr())
	read := atomic.LoadUint64(r.readPtr())
	if write-read >= r.capacity {
		return ErrTimeout
	}
	r.region[ringHeaderSize+(write%r.capacity)] = b
	atomic.StoreUint64(r.writePtr(), write+1)
	return nil
}

// Pop reads a single byte. It fails with ErrTimeout if the ring is
// empty.
func (r *Ring) Pop() (byte, error) {
	read := atomic.LoadUint64(r.readPtr())
	write := atomic.LoadUint64(r.writePtr())
	if read == write {
		return 0, ErrTimeout
	}
	b := r.region[ringHeaderSize+(read%r.capacity)]
	atomic.StoreUint64(r.readPtr(), read+1)
	return b, nil
}

// PushN writes buf in full or not at all, wrapping across at most two
// contiguous segments, and publishes the write cursor once at the end.
// It fails with ErrTimeout if there is insufficient free space for the
// entire buffer.
func (r *Ring) PushN(buf []byte) error {
	write := atomic.LoadUint64(r.writePtr())
	read := atomic.LoadUint64(r.readPtr())
	n := uint64(len(buf))
	if r.capacity-(write-read) < n {
		return ErrTimeout
	}
	r.copyIn(write, buf)
	atomic.StoreUint64(r.writePtr(), write+n)
	return nil
}

// PopN reads exactly len(buf) bytes into buf, wrapping across at most
// two contiguous segments, and publishes the read cursor once at the
// end. It fails with ErrTimeout if fewer bytes are available.
func (r *Ring) PopN(buf []byte) error {
	read := atomic.LoadUint64(r.readPtr())
	write := atomic.LoadUint64(r.writePtr())
	n := uint64(len(buf))
	if write-read < n {
		return ErrTimeout
	}
	r.copyOut(read, buf)
	atomic.StoreUint64(r.readPtr(), read+n)
	return nil
}

func (r *Ring) copyIn(cursor uint64, buf []byte) {
	start := cursor % r.capacity
	first := r.capacity - start
	n := uint64(len(buf))
	if first > n {
		first = n
	}
	copy(r.region[ringHeaderSize+start:], buf[:first])
	if n > first {
		copy(r.region[ringHeaderSize:], buf[first:n])
	}
}

func (r *Ring) copyOut(cursor uint64, buf []byte) {
	start := cursor % r.capacity
	first := r.capacity - start
	n := uint64(len(buf))
	if first > n {
		first = n
	}
	copy(buf[:first], r.region[ringHeaderSize+start:])
	if n > first {
		copy(buf[first:], r.region[ringHeaderSize:])
	}
}

// peekAt returns n bytes starting logical position cursor without
// advancing any cursor. Used by the frame ring to read a record's
// length prefix and header before committing to consume it.
func (r *Ring) peekAt(cursor uint64, n uint64) []byte {
	out := make([]byte, n)
	r.copyOut(cursor, out)
	return out
}
