package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// DefaultHistorySize is the number of records kept by a [History] created
// with a non-positive capacity.
const DefaultHistorySize = 200

// History is a thread-safe ring of the most recent log records. It
// implements [io.Writer], so it can be passed to [CreateHandler] or combined
// with another writer using [io.MultiWriter].
//
// Each call to Write is stored as one record, with trailing newlines removed.
// slog handlers write one record per call.
type History struct {
	records []string
	next    int
	count   int
	mu      sync.RWMutex
}

// NewHistory creates a new [History] holding up to capacity records.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}

	return &History{records: make([]string, capacity)}
}

// Write stores p as a new record, replacing the oldest record when full.
func (h *History) Write(p []byte) (int, error) {
	rec := string(bytes.TrimRight(p, "\r\n"))
	if rec == "" {
		return len(p), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.records[h.next] = rec
	h.next = (h.next + 1) % len(h.records)

	if h.count < len(h.records) {
		h.count++
	}

	return len(p), nil
}

// Last returns up to n of the most recent records, oldest first. A
// non-positive n returns every record.
func (h *History) Last(n int) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > h.count {
		n = h.count
	}

	out := make([]string, 0, n)

	start := (h.next - n + len(h.records)) % len(h.records)
	for i := range n {
		out = append(out, h.records[(start+i)%len(h.records)])
	}

	return out
}

// Len returns the number of stored records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.count
}

// Cap returns the maximum number of records.
func (h *History) Cap() int {
	return len(h.records)
}

// Reset removes all records.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clear(h.records)
	h.next = 0
	h.count = 0
}

// WriteTo writes all records to w, one per line, oldest first.
func (h *History) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, rec := range h.Last(0) {
		n, err := io.WriteString(w, rec+"\n")
		total += int64(n)

		if err != nil {
			return total, fmt.Errorf("write record: %w", err)
		}
	}

	return total, nil
}
