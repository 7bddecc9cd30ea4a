package mix

import (
	"io"
	"log/slog"
	"sync"
)

// Mixer merges two PCM streams sample index for sample index and
// streams the result to a writer. The primary lane is the mix clock:
// output advances exactly as fast as primary audio arrives, so the
// recording's length always equals the primary stream's length. The
// secondary lane is buffered and consumed against primary bytes; when
// it has fallen behind, silence is synthesized in its place so output
// never stalls waiting for it. When the two heads differ in length,
// only the overlapping prefix is mixed and the longer head keeps its
// un-mixed remainder, which keeps both streams sample-aligned without
// ever mixing a sample twice.
type Mixer struct {
	mu        sync.Mutex
	primary   *FrameQueue
	secondary *FrameQueue
	w         io.Writer
	log       *slog.Logger
	written   int64
}

// NewMixer creates a mixer writing merged PCM to w. maxQueueBytes caps
// each lane's backlog (see FrameQueue).
func NewMixer(w io.Writer, maxQueueBytes int, log *slog.Logger) *Mixer {
	if log == nil {
		log = slog.Default()
	}
	return &Mixer{
		primary:   NewFrameQueue(maxQueueBytes),
		secondary: NewFrameQueue(maxQueueBytes),
		w:         w,
		log:       log,
	}
}

// PushPrimary enqueues a primary-lane frame and drains the queues.
func (m *Mixer) PushPrimary(frame []byte) {
	if len(frame) == 0 {
		return
	}
	m.primary.Push(frame)
	m.mu.Lock()
	m.drainLocked()
	m.mu.Unlock()
}

// PushSecondary enqueues a secondary-lane frame. It is mixed once
// primary audio covering the same span arrives.
func (m *Mixer) PushSecondary(frame []byte) {
	if len(frame) == 0 {
		return
	}
	m.secondary.Push(frame)
}

func (m *Mixer) drainLocked() {
	for {
		p := m.primary.Peek()
		if len(p) == 0 {
			return
		}
		n := len(p)
		s := m.secondary.Peek()
		if len(s) > 0 && len(s) < n {
			n = len(s)
		}
		out := make([]byte, n)
		if len(s) == 0 {
			mixS16Silence(out, p, n)
		} else {
			mixS16(out, p, s, n)
			m.secondary.Advance(n)
		}
		m.primary.Advance(n)

		// A single failed write drops one buffer, never the session.
		if _, err := m.w.Write(out); err != nil {
			m.log.Warn("mixed buffer dropped", "error", err, "bytes", n)
			continue
		}
		m.written += int64(n)
	}
}

// Flush drains whatever primary audio is still queued. Secondary
// leftovers are discarded: the secondary never extends the recording
// past the primary stream's span.
func (m *Mixer) Flush() {
	m.mu.Lock()
	m.drainLocked()
	m.mu.Unlock()
}

// Written returns the number of mixed bytes successfully written.
func (m *Mixer) Written() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.written
}

// SecondaryDropped reports bytes evicted from the secondary backlog.
func (m *Mixer) SecondaryDropped() uint64 {
	return m.secondary.Dropped()
}
