// Package can implements a CAN bus endpoint over a wirebit Link:
// standard/extended/RTR frame arbitration, DLC validation, bitrate
// pacing with worst-case bit-stuffing overhead, and receive-side
// buffering, matching the Linux SocketCAN struct can_frame wire layout.
package can

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/wirebit/wirebit"
)

// Masks and flags matching Linux SocketCAN.
const (
	SFFMask uint32 = 0x7FF
	EFFMask uint32 = 0x1FFFFFFF
	EFFFlag uint32 = 0x80000000
	RTRFlag uint32 = 0x40000000
)

// Frame is a classical CAN 2.0A/2.0B frame.
type Frame struct {
	ID       uint32 // 11-bit (standard) or 29-bit (extended)
	Extended bool
	RTR      bool
	DLC      uint8 // 0-8
	Data     [8]byte
}

// Validate checks the frame's ID range and DLC.
func (f Frame) Validate() error {
	if f.DLC > 8 {
		return fmt.Errorf("%w: can_dlc %d exceeds 8", wirebit.ErrInvalidArgument, f.DLC)
	}
	if f.Extended {
		if f.ID > EFFMask {
			return fmt.Errorf("%w: extended can_id 0x%X exceeds 29 bits", wirebit.ErrInvalidArgument, f.ID)
		}
	} else if f.ID > SFFMask {
		return fmt.Errorf("%w: standard can_id 0x%X exceeds 11 bits", wirebit.ErrInvalidArgument, f.ID)
	}
	return nil
}

// Marshal encodes f as the 16-byte SocketCAN struct can_frame layout:
// 4-byte can_id (with EFF/RTR flags in the high bits), 1-byte DLC, 3
// bytes padding, 8 bytes data.
func (f Frame) Marshal() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	id := f.ID
	if f.Extended {
		id |= EFFFlag
	}
	if f.RTR {
		id |= RTRFlag
	}
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], id)
	buf[4] = f.DLC
	copy(buf[8:16], f.Data[:])
	return buf, nil
}

// Unmarshal decodes a 16-byte SocketCAN struct can_frame layout into f.
func Unmarshal(b []byte) (Frame, error) {
	var f Frame
	if len(b) < 16 {
		return f, fmt.Errorf("%w: need 16 bytes for can_frame, got %d", wirebit.ErrInvalidArgument, len(b))
	}
	id := binary.LittleEndian.Uint32(b[0:4])
	f.Extended = id&EFFFlag != 0
	f.RTR = id&RTRFlag != 0
	if f.Extended {
		f.ID = id & EFFMask
	} else {
		f.ID = id & SFFMask
	}
	f.DLC = b[4]
	copy(f.Data[:], b[8:16])
	return f, f.Validate()
}

// Config configures a CAN Endpoint.
type Config struct {
	Bitrate      uint64
	Loopback     bool
	ListenOnly   bool
	RxBufferSize int
}

// Endpoint is a CAN bus endpoint: it paces outgoing frames by bitrate
// and buffers decoded frames from the link in a bounded FIFO.
type Endpoint struct {
	wirebit.Base
	cfg    Config
	logger *slog.Logger
	rxFIFO []Frame
}

// New creates a CAN Endpoint over link with the given id and config.
func New(link wirebit.Link, id uint32, cfg Config, logger *slog.Logger) (*Endpoint, error) {
	if cfg.Bitrate == 0 {
		return nil, fmt.Errorf("%w: bitrate must be > 0", wirebit.ErrInvalidArgument)
	}
	if cfg.RxBufferSize <= 0 {
		return nil, fmt.Errorf("%w: rx_buffer_size must be > 0", wirebit.ErrInvalidArgument)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Endpoint{Base: wirebit.NewBase(link, id, nil), cfg: cfg, logger: logger}, nil
}

// frameTimeNs computes the wire time for a CAN frame of the given DLC
// and extended-ness: overhead bits plus 8 bits per data byte, inflated
// by 20% for worst-case bit stuffing, divided by the bitrate.
func (e *Endpoint) frameTimeNs(extended bool, dlc uint8) int64 {
	overhead := 47
	if extended {
		overhead = 67
	}
	totalBits := overhead + 8*int(dlc)
	totalBits += totalBits / 5
	return int64(float64(totalBits) * 1e9 / float64(e.cfg.Bitrate))
}

// SendCAN transmits frame to dst as one wirebit.FrameCAN frame. It fails
// with wirebit.ErrInvalidArgument — without sending anything or updating
// any counters — if frame.DLC exceeds 8 or its ID exceeds its ID space.
func (e *Endpoint) SendCAN(dst uint32, frame Frame) error {
	payload, err := frame.Marshal()
	if err != nil {
		return err
	}
	txTime := e.frameTimeNs(frame.Extended, frame.DLC)
	f := &wirebit.Frame{FrameType: wirebit.FrameCAN, Payload: payload}
	e.Stamp(f, dst, txTime)
	return e.Link.Send(f)
}

// Process drains available CAN frames from the link into the internal
// receive FIFO until it holds RxBufferSize frames, then stops pulling
// from the link — any further frames stay queued in the link's ring for
// a later Process call rather than being dropped. Non-CAN frames and
// malformed CAN payloads are skipped with a warning. It never blocks: it
// stops at the first wirebit.ErrTimeout.
func (e *Endpoint) Process() error {
	for len(e.rxFIFO) < e.cfg.RxBufferSize {
		f, err := e.Link.Recv()
		if err != nil {
			if err == wirebit.ErrTimeout {
				return nil
			}
			return err
		}
		if f.FrameType != wirebit.FrameCAN {
			e.logger.Warn("can endpoint: skipping non-can frame", "frame_type", f.FrameType)
			continue
		}
		frame, err := Unmarshal(f.Payload)
		if err != nil {
			e.logger.Warn("can endpoint: skipping malformed can payload", "error", err)
			continue
		}
		e.rxFIFO = append(e.rxFIFO, frame)
	}
	return nil
}

// RecvCAN pops the oldest buffered frame. ok is false if the buffer is
// empty.
func (e *Endpoint) RecvCAN() (frame Frame, ok bool) {
	if len(e.rxFIFO) == 0 {
		return Frame{}, false
	}
	frame = e.rxFIFO[0]
	e.rxFIFO = e.rxFIFO[1:]
	return frame, true
}
