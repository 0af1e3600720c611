package wirebit

import (
	"context"
	"sync"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// Mux multiplexes frames from a Link to any number of subscribers via
// filters. It owns the given Link for receiving and runs a single
// background goroutine — supervised by an errgroup.Group so Close can
// observe whether that goroutine exited cleanly — that drains Recv and
// fans frames out to subscribers. This mirrors the teacher's Mux, which
// does the same for a CAN Bus; Send is not proxied, callers keep using
// the original Link to send.
//
// Recv on the underlying Link is non-blocking and returns ErrTimeout
// when nothing is ready, so the background goroutine here is what turns
// that into a pushed stream for subscribers; it polls at pollInterval
// when the link reports nothing pending.
type Mux struct {
	link Link
	grp  *errgroup.Group
	stop chan struct{}

	mu   sync.RWMutex
	subs map[uint64]*subscriber
	next uint64
}

type subscriber struct {
	filter FrameFilter
	ch     chan *Frame
}

// NewMux creates and starts a multiplexer bound to link, polling for new
// frames at pollInterval when the link has nothing ready.
func NewMux(link Link, pollInterval func()) *Mux {
	m := &Mux{
		link: link,
		stop: make(chan struct{}),
		subs: make(map[uint64]*subscriber),
	}
	grp, _ := errgroup.WithContext(context.Background())
	m.grp = grp
	m.grp.Go(func() error {
		m.run(pollInterval)
		return nil
	})
	return m
}

// Close stops the background reader and closes all subscriber channels,
// then waits for the reader goroutine to exit.
func (m *Mux) Close() error {
	select {
	case <-m.stop:
		return nil
	default:
	}
	close(m.stop)
	m.mu.Lock()
	for id, s := range m.subs {
		close(s.ch)
		delete(m.subs, id)
	}
	m.mu.Unlock()
	return m.grp.Wait()
}

// Subscribe registers a new subscriber with the provided filter and
// channel buffer. The returned channel receives frames matching the
// filter (nil matches everything); the cancel function closes it.
func (m *Mux) Subscribe(filter FrameFilter, buffer int) (<-chan *Frame, func()) {
	if buffer < 0 {
		buffer = 0
	}
	s := &subscriber{filter: filter, ch: make(chan *Frame, buffer)}
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = s
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if cur, ok := m.subs[id]; ok && cur == s {
			close(cur.ch)
			delete(m.subs, id)
		}
		m.mu.Unlock()
	}
	return s.ch, cancel
}

func (m *Mux) run(pollInterval func()) {
	for {
		select {
		case <-m.stop:
			return
		default:
		}
		f, err := m.link.Recv()
		if err != nil {
			if err == ErrTimeout {
				if pollInterval != nil {
					pollInterval()
				}
				continue
			}
			m.mu.Lock()
			for id, s := range m.subs {
				close(s.ch)
				delete(m.subs, id)
			}
			m.mu.Unlock()
			return
		}
		m.mu.RLock()
		// Fan out in ascending subscriber-ID order so a given frame's
		// delivery order across subscribers is deterministic, which
		// matters for tests asserting on relative arrival order.
		ids := make([]uint64, 0, len(m.subs))
		for id := range m.subs {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			s := m.subs[id]
			if s.filter == nil || s.filter(f) {
				select {
				case s.ch <- f:
				default:
					// Drop if subscriber is slow and channel is full.
				}
			}
		}
		m.mu.RUnlock()
	}
}
