package wirebit

// FrameFilter decides whether a frame should be delivered to a Mux
// subscriber. Generalized from the teacher's CAN-ID-only FrameFilter to
// operate on the wirebit Frame's common fields; protocol-specific
// filters (CAN ID, Ethernet MAC) live in their own endpoint packages and
// compose with these via And/Or/Not.
type FrameFilter func(*Frame) bool

// ByType matches frames of the given type.
func ByType(t FrameType) FrameFilter {
	return func(f *Frame) bool { return f.FrameType == t }
}

// BySrc matches frames from the given source endpoint.
func BySrc(id uint32) FrameFilter {
	return func(f *Frame) bool { return f.SrcEndpointID == id }
}

// ByDst matches frames addressed to the given destination endpoint, or
// broadcast (dst == 0) frames when includeBroadcast is true.
func ByDst(id uint32, includeBroadcast bool) FrameFilter {
	return func(f *Frame) bool {
		return f.DstEndpointID == id || (includeBroadcast && f.DstEndpointID == 0)
	}
}

// And composes two filters; the result matches when both match.
func And(a, b FrameFilter) FrameFilter {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return func(f *Frame) bool { return a(f) && b(f) }
	}
}

// Or composes two filters; the result matches when either matches.
func Or(a, b FrameFilter) FrameFilter {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return func(f *Frame) bool { return a(f) || b(f) }
	}
}

// Not inverts a filter.
func Not(a FrameFilter) FrameFilter {
	if a == nil {
		return func(*Frame) bool { return true }
	}
	return func(f *Frame) bool { return !a(f) }
}
