package queue

import (
	"container/heap"
	"context"
	"sync"
)

// Entry is one queued video.
type Entry struct {
	Path     string
	Priority Priority
	seq      uint64
}

type entryHeap []Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(Entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

// Queue is the thread-safe priority queue shared by the watcher and the
// worker pool.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   entryHeap
	pending map[string]struct{}
	nextSeq uint64
	closed  bool
}

// New constructs an empty queue.
func New() *Queue {
	q := &Queue{pending: make(map[string]struct{})}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue adds a path unless it is already pending (queued or being worked
// on). It reports whether the path was accepted.
func (q *Queue) Enqueue(path string, priority Priority) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	if _, exists := q.pending[path]; exists {
		return false
	}
	q.pending[path] = struct{}{}
	heap.Push(&q.items, Entry{Path: path, Priority: priority, seq: q.nextSeq})
	q.nextSeq++
	q.cond.Signal()
	return true
}

// Take blocks until an entry is available, the context is cancelled, or the
// queue is closed. The taken path stays pending until Done is called.
func (q *Queue) Take(ctx context.Context) (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	for {
		if ctx.Err() != nil || q.closed {
			return Entry{}, false
		}
		if q.items.Len() > 0 {
			return heap.Pop(&q.items).(Entry), true
		}
		q.cond.Wait()
	}
}

// Done releases a path from the pending set so future scans may re-enqueue
// it. Workers call this when a job finishes, whatever the outcome.
func (q *Queue) Done(path string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, path)
}

// Len returns the number of queued (not yet taken) entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// PendingCount returns the size of the pending set, queued plus in-flight.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Snapshot returns the queued entries ordered by dispatch preference.
func (q *Queue) Snapshot() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	entries := make([]Entry, len(q.items))
	copy(entries, q.items)
	tmp := entryHeap(entries)
	heap.Init(&tmp)
	ordered := make([]Entry, 0, len(entries))
	for tmp.Len() > 0 {
		ordered = append(ordered, heap.Pop(&tmp).(Entry))
	}
	return ordered
}

// Clear drops every queued entry, keeping in-flight paths pending. It
// returns the number of dropped entries.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	dropped := q.items.Len()
	for _, entry := range q.items {
		delete(q.pending, entry.Path)
	}
	q.items = q.items[:0]
	return dropped
}

// Close wakes all blocked consumers and refuses further enqueues.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
