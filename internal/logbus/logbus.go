// Package logbus implements Aurora's ring-buffered, fan-out event log.
// It is distinct from zerolog's process-diagnostic logging: the bus is
// consumed over HTTP (/api/logs, /api/logs/stream) by clients, not an
// operator watching stderr — though ERROR and request/response entries
// are also mirrored to zerolog so both views agree.
package logbus

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const ringCapacity = 500

// Category classifies a log entry.
type Category string

const (
	CategoryInfo     Category = "INFO"
	CategoryError    Category = "ERROR"
	CategoryRequest  Category = "request"
	CategoryResponse Category = "response"
	CategoryModel    Category = "MODEL"
	CategoryDownload Category = "DOWNLOAD"
)

// Entry is one event on the bus.
type Entry struct {
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Category  Category  `json:"category"`
	Message   string    `json:"message"`
}

// String renders the entry in the bus's plain-text line format.
func (e Entry) String() string {
	return fmt.Sprintf("%s %s %s", e.Timestamp.Format(time.RFC3339Nano), e.Category, e.Message)
}

// Bus is a bounded ring buffer of Entry with fan-out subscription. Slow
// subscribers never block producers: a full subscriber channel drops
// the entry for that subscriber instead of stalling Publish.
type Bus struct {
	mu          sync.RWMutex
	buf         []Entry
	next        int
	count       int
	seq         uint64
	subscribers map[chan Entry]struct{}
}

// New creates an empty bus with the standard 500-entry capacity.
func New() *Bus {
	return &Bus{
		buf:         make([]Entry, ringCapacity),
		subscribers: make(map[chan Entry]struct{}),
	}
}

// Publish appends an entry to the ring and fans it out to subscribers.
func (b *Bus) Publish(category Category, format string, args ...any) {
	e := Entry{
		Timestamp: time.Now(),
		Category:  category,
		Message:   fmt.Sprintf(format, args...),
	}

	b.mu.Lock()
	b.seq++
	e.Seq = b.seq
	b.buf[b.next] = e
	b.next = (b.next + 1) % ringCapacity
	if b.count < ringCapacity {
		b.count++
	}
	subs := make([]chan Entry, 0, len(b.subscribers))
	for ch := range b.subscribers {
		subs = append(subs, ch)
	}
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
			// Slow subscriber — drop rather than block the publisher.
		}
	}

	mirrorToZerolog(e)
}

func mirrorToZerolog(e Entry) {
	switch e.Category {
	case CategoryError:
		log.Error().Uint64("seq", e.Seq).Msg(e.Message)
	case CategoryRequest, CategoryResponse:
		log.Debug().Uint64("seq", e.Seq).Str("category", string(e.Category)).Msg(e.Message)
	}
}

// Tail returns up to n of the most recent entries, oldest first.
func (b *Bus) Tail(n int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || n > b.count {
		n = b.count
	}
	out := make([]Entry, n)
	start := (b.next - n + ringCapacity) % ringCapacity
	for i := 0; i < n; i++ {
		out[i] = b.buf[(start+i)%ringCapacity]
	}
	return out
}

// Subscribe registers a new channel that receives every entry published
// after this call. The caller must call the returned cancel func to
// unregister and release the channel.
func (b *Bus) Subscribe() (<-chan Entry, func()) {
	ch := make(chan Entry, 64)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
