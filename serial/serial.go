// Package serial implements a UART-paced byte-stream endpoint over a
// wirebit Link: bytes go out one wirebit.FrameSerial frame at a time,
// spaced by the transmission time a real UART would take at the
// configured baud rate.
package serial

import (
	"fmt"
	"log/slog"

	"github.com/wirebit/wirebit"
)

// Parity selects the UART parity bit.
type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// Config configures a serial Endpoint's UART framing.
type Config struct {
	Baud         uint64
	DataBits     uint8 // 5-8
	StopBits     uint8 // 1 or 2
	Parity       Parity
	MaxChunkRead int
}

// Validate checks Config's fields are within their legal ranges.
func (c Config) Validate() error {
	if c.Baud == 0 {
		return fmt.Errorf("%w: baud must be > 0", wirebit.ErrInvalidArgument)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("%w: data_bits must be 5-8, got %d", wirebit.ErrInvalidArgument, c.DataBits)
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return fmt.Errorf("%w: stop_bits must be 1 or 2, got %d", wirebit.ErrInvalidArgument, c.StopBits)
	}
	if c.MaxChunkRead <= 0 {
		return fmt.Errorf("%w: max_chunk_read must be > 0", wirebit.ErrInvalidArgument)
	}
	return nil
}

// bitsPerByte is 1 start bit + data bits + stop bits + an optional
// parity bit.
func (c Config) bitsPerByte() int {
	n := 1 + int(c.DataBits) + int(c.StopBits)
	if c.Parity != ParityNone {
		n++
	}
	return n
}

// byteTimeNs is the wire time, in nanoseconds, to transmit one byte at
// the configured baud rate and framing.
func (c Config) byteTimeNs() int64 {
	return int64(float64(c.bitsPerByte()) * 1e9 / float64(c.Baud))
}

// Endpoint is a serial byte-stream endpoint paced by UART framing.
type Endpoint struct {
	wirebit.Base
	cfg    Config
	logger *slog.Logger
	rxBuf  []byte
}

// New creates a serial Endpoint over link with the given id and config.
func New(link wirebit.Link, id uint32, cfg Config, logger *slog.Logger) (*Endpoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Endpoint{
		Base:   wirebit.NewBase(link, id, nil),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Send emits one wirebit.FrameSerial frame per byte of data, addressed
// to dst. Each byte's deliver_at_ns is spaced from the previous one by
// this endpoint's byte time, serializing bytes on the wire.
func (e *Endpoint) Send(dst uint32, data []byte) error {
	byteTime := e.cfg.byteTimeNs()
	for _, b := range data {
		f := &wirebit.Frame{
			FrameType: wirebit.FrameSerial,
			Payload:   []byte{b},
		}
		e.Stamp(f, dst, byteTime)
		if err := e.Link.Send(f); err != nil {
			return err
		}
	}
	return nil
}

// Process drains available frames from the link, appending every
// wirebit.FrameSerial frame's payload byte to the internal receive
// buffer in arrival order. Non-serial frames are skipped with a warning.
// It never blocks: it stops at the first wirebit.ErrTimeout.
func (e *Endpoint) Process() error {
	for {
		f, err := e.Link.Recv()
		if err != nil {
			if err == wirebit.ErrTimeout {
				return nil
			}
			return err
		}
		if f.FrameType != wirebit.FrameSerial {
			e.logger.Warn("serial endpoint: skipping non-serial frame", "frame_type", f.FrameType)
			continue
		}
		e.rxBuf = append(e.rxBuf, f.Payload...)
	}
}

// Recv returns up to MaxChunkRead bytes from the internal receive
// buffer, or nil if it is empty.
func (e *Endpoint) Recv() []byte {
	if len(e.rxBuf) == 0 {
		return nil
	}
	n := e.cfg.MaxChunkRead
	if n > len(e.rxBuf) {
		n = len(e.rxBuf)
	}
	out := append([]byte(nil), e.rxBuf[:n]...)
	e.rxBuf = e.rxBuf[n:]
	return out
}
