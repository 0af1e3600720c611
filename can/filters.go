package can

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/wirebit/wirebit"
)

// idOf decodes a wirebit.Frame's CAN ID, returning ok=false for
// non-CAN or malformed frames so filters built on top of it simply
// don't match rather than panicking.
func idOf(f *wirebit.Frame) (id uint32, ok bool) {
	if f.FrameType != wirebit.FrameCAN {
		return 0, false
	}
	frame, err := Unmarshal(f.Payload)
	if err != nil {
		return 0, false
	}
	return frame.ID, true
}

// ByID matches CAN frames with the given arbitration ID.
func ByID(id uint32) wirebit.FrameFilter {
	return func(f *wirebit.Frame) bool {
		got, ok := idOf(f)
		return ok && got == id
	}
}

// ByRange matches CAN frames whose ID falls in [lo, hi] inclusive.
func ByRange(lo, hi uint32) wirebit.FrameFilter {
	return func(f *wirebit.Frame) bool {
		got, ok := idOf(f)
		return ok && got >= lo && got <= hi
	}
}

// ByMask matches CAN frames whose ID agrees with want on every bit set
// in mask: (id & mask) == (want & mask).
func ByMask(want, mask uint32) wirebit.FrameFilter {
	return func(f *wirebit.Frame) bool {
		got, ok := idOf(f)
		return ok && got&mask == want&mask
	}
}

// Extended matches extended (29-bit) CAN frames.
func Extended() wirebit.FrameFilter {
	return func(f *wirebit.Frame) bool {
		if f.FrameType != wirebit.FrameCAN {
			return false
		}
		frame, err := Unmarshal(f.Payload)
		return err == nil && frame.Extended
	}
}

// RemoteRequest matches RTR (remote transmission request) CAN frames.
func RemoteRequest() wirebit.FrameFilter {
	return func(f *wirebit.Frame) bool {
		if f.FrameType != wirebit.FrameCAN {
			return false
		}
		frame, err := Unmarshal(f.Payload)
		return err == nil && frame.RTR
	}
}

// IDSet is an acceptance list for large numbers of CAN IDs, such as a
// gateway or logger configured with thousands of IDs to accept. It
// Bloom-prefilters the exact membership check: a negative from the
// Bloom filter skips the map lookup entirely, while a positive always
// falls through to the exact map, so false positives in the Bloom
// filter never cause an incorrect match.
type IDSet struct {
	exact map[uint32]struct{}
	bloom *bloom.BloomFilter
}

// NewIDSet builds an IDSet accepting exactly the given IDs.
func NewIDSet(ids ...uint32) *IDSet {
	s := &IDSet{
		exact: make(map[uint32]struct{}, len(ids)),
		bloom: bloom.NewWithEstimates(uint(len(ids))+1, 0.01),
	}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set.
func (s *IDSet) Add(id uint32) {
	s.exact[id] = struct{}{}
	var b [4]byte
	putUint32(b[:], id)
	s.bloom.Add(b[:])
}

// Contains reports whether id is in the set.
func (s *IDSet) Contains(id uint32) bool {
	var b [4]byte
	putUint32(b[:], id)
	if !s.bloom.Test(b[:]) {
		return false
	}
	_, ok := s.exact[id]
	return ok
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// ByIDs matches CAN frames whose ID is in set.
func ByIDs(set *IDSet) wirebit.FrameFilter {
	return func(f *wirebit.Frame) bool {
		got, ok := idOf(f)
		return ok && set.Contains(got)
	}
}
