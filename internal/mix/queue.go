package mix

import "sync"

// FrameQueue is a FIFO of PCM byte frames with one producer and one
// consumer. The head frame can be consumed partially, which is what the
// mixer's remainder-carry rule needs. Depth is capped in bytes: pushing
// past the cap evicts the oldest frames so a stalled consumer degrades
// to dropped audio instead of unbounded memory growth.
type FrameQueue struct {
	mu      sync.Mutex
	frames  [][]byte
	headOff int
	size    int
	maxSize int
	dropped uint64
}

// NewFrameQueue creates a queue holding at most maxBytes of buffered
// audio. maxBytes <= 0 means uncapped.
func NewFrameQueue(maxBytes int) *FrameQueue {
	return &FrameQueue{maxSize: maxBytes}
}

// Push appends a frame, evicting from the head if the cap is exceeded.
// Empty frames are ignored.
func (q *FrameQueue) Push(frame []byte) {
	if len(frame) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.frames = append(q.frames, frame)
	q.size += len(frame)
	for q.maxSize > 0 && q.size > q.maxSize && len(q.frames) > 1 {
		head := q.frames[0]
		evicted := len(head) - q.headOff
		q.frames = q.frames[1:]
		q.headOff = 0
		q.size -= evicted
		q.dropped += uint64(evicted)
	}
}

// Peek returns the unconsumed remainder of the head frame, or nil if
// the queue is empty. The slice stays valid until the next Advance.
func (q *FrameQueue) Peek() []byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.frames) == 0 {
		return nil
	}
	return q.frames[0][q.headOff:]
}

// Advance consumes n bytes from the head frame, popping it once fully
// consumed. n must not exceed the length returned by Peek.
func (q *FrameQueue) Advance(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.frames) == 0 || n <= 0 {
		return
	}
	q.headOff += n
	q.size -= n
	if q.headOff >= len(q.frames[0]) {
		q.frames = q.frames[1:]
		q.headOff = 0
	}
}

// Buffered returns the number of unconsumed bytes in the queue.
func (q *FrameQueue) Buffered() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Dropped returns the total bytes evicted by the depth cap.
func (q *FrameQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
