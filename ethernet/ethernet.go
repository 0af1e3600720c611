// Package ethernet implements an Ethernet II endpoint over a wirebit
// Link: fixed 14-byte dst/src/ethertype header, minimum frame padding,
// MAC-based delivery filtering, and bandwidth-paced transmission.
package ethernet

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/wirebit/wirebit"
)

// MAC is a 6-byte hardware address.
type MAC [6]byte

// Broadcast is the Ethernet broadcast address.
var Broadcast = MAC{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

func (m MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// EtherType identifies the payload protocol carried by a Frame.
type EtherType uint16

const (
	TypeIPv4  EtherType = 0x0800
	TypeARP   EtherType = 0x0806
	TypeIPv6  EtherType = 0x86DD
	TypeVLAN  EtherType = 0x8100
)

const (
	headerSize  = 14
	minFrame    = 60
	maxPayload  = 1500
	maxFrame    = 1514
)

// Frame is an Ethernet II frame.
type Frame struct {
	Dst       MAC
	Src       MAC
	EtherType EtherType
	Payload   []byte
}

// Marshal encodes f as an Ethernet II frame: 6-byte dst MAC, 6-byte src
// MAC, 2-byte ethertype (network byte order), then payload zero-padded
// to the minimum 60-byte frame size.
func (f Frame) Marshal() ([]byte, error) {
	if len(f.Payload) > maxPayload {
		return nil, fmt.Errorf("%w: payload len %d exceeds %d", wirebit.ErrInvalidArgument, len(f.Payload), maxPayload)
	}
	size := headerSize + len(f.Payload)
	if size < minFrame {
		size = minFrame
	}
	buf := make([]byte, size)
	copy(buf[0:6], f.Dst[:])
	copy(buf[6:12], f.Src[:])
	binary.BigEndian.PutUint16(buf[12:14], uint16(f.EtherType))
	copy(buf[14:], f.Payload)
	return buf, nil
}

// Unmarshal decodes an Ethernet II frame, trusting the caller's slice
// length as the on-wire frame length (trailing zero padding is kept as
// payload bytes — callers that need the logical payload length should
// carry it out-of-band, e.g. via a higher-layer length field).
func Unmarshal(b []byte) (Frame, error) {
	var f Frame
	if len(b) < headerSize {
		return f, fmt.Errorf("%w: need >= %d bytes for ethernet header, got %d", wirebit.ErrInvalidArgument, headerSize, len(b))
	}
	if len(b) > maxFrame {
		return f, fmt.Errorf("%w: frame len %d exceeds %d", wirebit.ErrInvalidArgument, len(b), maxFrame)
	}
	copy(f.Dst[:], b[0:6])
	copy(f.Src[:], b[6:12])
	f.EtherType = EtherType(binary.BigEndian.Uint16(b[12:14]))
	f.Payload = append([]byte(nil), b[14:]...)
	return f, nil
}

// Config configures an Ethernet Endpoint.
type Config struct {
	MAC          MAC
	BandwidthBps uint64
	Promiscuous  bool
	RxBufferSize int
}

// Endpoint is an Ethernet endpoint: it paces outgoing frames by
// bandwidth and, unless Promiscuous, only buffers frames addressed to
// its own MAC or the broadcast address.
type Endpoint struct {
	wirebit.Base
	cfg    Config
	logger *slog.Logger
	rxFIFO []Frame
}

// New creates an Ethernet Endpoint over link with the given id and
// config.
func New(link wirebit.Link, id uint32, cfg Config, logger *slog.Logger) (*Endpoint, error) {
	if cfg.BandwidthBps == 0 {
		return nil, fmt.Errorf("%w: bandwidth_bps must be > 0", wirebit.ErrInvalidArgument)
	}
	if cfg.RxBufferSize <= 0 {
		return nil, fmt.Errorf("%w: rx_buffer_size must be > 0", wirebit.ErrInvalidArgument)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Endpoint{Base: wirebit.NewBase(link, id, nil), cfg: cfg, logger: logger}, nil
}

// wireTimeNs is the transmission time for a frame of wireLen bytes,
// including the 8-byte preamble and 12-byte interframe gap overhead
// (20 bytes), at the endpoint's configured bandwidth.
func (e *Endpoint) wireTimeNs(wireLen int) int64 {
	return int64(float64((wireLen+20)*8) * 1e9 / float64(e.cfg.BandwidthBps))
}

// SendEth transmits frame to the given destination endpoint ID as one
// wirebit.FrameEthernet frame.
func (e *Endpoint) SendEth(dst uint32, frame Frame) error {
	wire, err := frame.Marshal()
	if err != nil {
		return err
	}
	txTime := e.wireTimeNs(len(wire))
	f := &wirebit.Frame{FrameType: wirebit.FrameEthernet, Payload: wire}
	e.Stamp(f, dst, txTime)
	return e.Link.Send(f)
}

// Process drains available Ethernet frames from the link. Unless the
// endpoint is Promiscuous, frames not addressed to this endpoint's MAC
// or the broadcast MAC are discarded here, before reaching the RX
// FIFO — but the link's LinkStats counters were already incremented
// when Recv popped the frame, since MAC filtering is endpoint-level and
// the link has no notion of it. The oldest buffered frame is dropped
// once RxBufferSize is reached. It never blocks: it stops at the first
// wirebit.ErrTimeout.
func (e *Endpoint) Process() error {
	for {
		f, err := e.Link.Recv()
		if err != nil {
			if err == wirebit.ErrTimeout {
				return nil
			}
			return err
		}
		if f.FrameType != wirebit.FrameEthernet {
			e.logger.Warn("ethernet endpoint: skipping non-ethernet frame", "frame_type", f.FrameType)
			continue
		}
		frame, err := Unmarshal(f.Payload)
		if err != nil {
			e.logger.Warn("ethernet endpoint: skipping malformed ethernet payload", "error", err)
			continue
		}
		if !e.cfg.Promiscuous && frame.Dst != e.cfg.MAC && frame.Dst != Broadcast {
			continue
		}
		if len(e.rxFIFO) >= e.cfg.RxBufferSize {
			e.rxFIFO = e.rxFIFO[1:]
		}
		e.rxFIFO = append(e.rxFIFO, frame)
	}
}

// RecvEth pops the oldest buffered frame. ok is false if the buffer is
// empty.
func (e *Endpoint) RecvEth() (frame Frame, ok bool) {
	if len(e.rxFIFO) == 0 {
		return Frame{}, false
	}
	frame = e.rxFIFO[0]
	e.rxFIFO = e.rxFIFO[1:]
	return frame, true
}
