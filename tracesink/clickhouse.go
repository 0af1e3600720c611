// Package tracesink batches wirebit frame send/receive events to
// ClickHouse for offline analysis. It is optional and off by default:
// nothing in wirebit core depends on it.
package tracesink

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"

	"github.com/wirebit/wirebit"
)

// Direction identifies which side of a link an event happened on.
type Direction string

const (
	DirSend Direction = "send"
	DirRecv Direction = "recv"
)

// Event is one traced frame action.
type Event struct {
	SessionID  uuid.UUID
	Timestamp  time.Time
	LinkName   string
	Direction  Direction
	FrameType  wirebit.FrameType
	PayloadLen int
	Action     wirebit.Action
}

// Sink batches Events and flushes them to ClickHouse in bulk.
type Sink struct {
	conn      clickhouse.Conn
	sessionID uuid.UUID
	table     string
	buf       []Event
	batchSize int
}

// Options configures a Sink.
type Options struct {
	Addr      []string
	Database  string
	Username  string
	Password  string
	Table     string // defaults to "wirebit_frame_events"
	BatchSize int    // defaults to 256
}

// Open connects to ClickHouse and returns a Sink with a fresh session
// ID used to group this process's events.
func Open(ctx context.Context, opts Options) (*Sink, error) {
	table := opts.Table
	if table == "" {
		table = "wirebit_frame_events"
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 256
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: opts.Addr,
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wirebit.ErrIOError, err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", wirebit.ErrIOError, err)
	}
	return &Sink{conn: conn, sessionID: uuid.New(), table: table, batchSize: batch}, nil
}

// SessionID returns the session ID grouping this Sink's events.
func (s *Sink) SessionID() uuid.UUID { return s.sessionID }

// Record appends one event to the pending batch, flushing automatically
// once the batch reaches its configured size.
func (s *Sink) Record(ctx context.Context, ev Event) error {
	if ev.SessionID == uuid.Nil {
		ev.SessionID = s.sessionID
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	s.buf = append(s.buf, ev)
	if len(s.buf) >= s.batchSize {
		return s.Flush(ctx)
	}
	return nil
}

// Flush writes all pending events to ClickHouse in a single batch
// insert, the way a high-throughput trace sink avoids one round trip
// per row.
func (s *Sink) Flush(ctx context.Context) error {
	if len(s.buf) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s", s.table))
	if err != nil {
		return fmt.Errorf("%w: %v", wirebit.ErrIOError, err)
	}
	for _, ev := range s.buf {
		if err := batch.Append(
			ev.SessionID.String(),
			ev.Timestamp,
			ev.LinkName,
			string(ev.Direction),
			uint16(ev.FrameType),
			uint32(ev.PayloadLen),
			ev.Action.String(),
		); err != nil {
			return fmt.Errorf("%w: %v", wirebit.ErrIOError, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("%w: %v", wirebit.ErrIOError, err)
	}
	s.buf = s.buf[:0]
	return nil
}

// Close flushes any pending events and closes the ClickHouse
// connection.
func (s *Sink) Close(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return err
	}
	return s.conn.Close()
}
