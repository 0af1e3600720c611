package wirebit

import (
	"context"
	"log/slog"
)

// LogOption is a bitmask selecting which Link operations a LoggedLink
// records.
type LogOption uint8

const (
	LogNone  LogOption = 0
	LogSend  LogOption = 1 << iota
	LogRecv
	LogAll = LogSend | LogRecv
)

// LoggedLink wraps a Link and logs selected operations through a
// slog.Logger, mirroring the teacher's LoggedBus decorator: logging
// lives entirely at this boundary, never inside the core send/recv
// logic it wraps.
type LoggedLink struct {
	inner  Link
	logger *slog.Logger
	level  slog.Level
	opts   LogOption
}

// NewLoggedLink wraps inner, logging the selected operations at level.
func NewLoggedLink(inner Link, logger *slog.Logger, level slog.Level, opts LogOption) *LoggedLink {
	return &LoggedLink{inner: inner, logger: logger, level: level, opts: opts}
}

// Send logs the frame and forwards to the wrapped Link.
func (l *LoggedLink) Send(f *Frame) error {
	err := l.inner.Send(f)
	if l.opts&LogSend != 0 {
		if err != nil {
			l.logger.Error("wirebit send error", "frame_type", f.FrameType, "error", err)
		} else {
			l.logger.Log(context.Background(), l.level, "wirebit send",
				"frame_type", f.FrameType,
				"src", f.SrcEndpointID,
				"dst", f.DstEndpointID,
				"payload_len", len(f.Payload),
			)
		}
	}
	return err
}

// Recv logs the received frame or error and forwards to the wrapped
// Link.
func (l *LoggedLink) Recv() (*Frame, error) {
	f, err := l.inner.Recv()
	if l.opts&LogRecv != 0 {
		if err != nil {
			if err != ErrTimeout {
				l.logger.Error("wirebit recv error", "error", err)
			}
		} else {
			l.logger.Log(context.Background(), l.level, "wirebit recv",
				"frame_type", f.FrameType,
				"src", f.SrcEndpointID,
				"dst", f.DstEndpointID,
				"payload_len", len(f.Payload),
			)
		}
	}
	return f, err
}

// CanSend forwards to the wrapped Link without logging.
func (l *LoggedLink) CanSend() bool { return l.inner.CanSend() }

// CanRecv forwards to the wrapped Link without logging.
func (l *LoggedLink) CanRecv() bool { return l.inner.CanRecv() }

// Stats forwards to the wrapped Link without logging.
func (l *LoggedLink) Stats() LinkStats { return l.inner.Stats() }

// Close forwards to the wrapped Link without logging.
func (l *LoggedLink) Close() error { return l.inner.Close() }
