package race

import (
	"sync"

	"github.com/zucenko/mazerace/model"
)

const EVENT_LOG_SIZE = 20

// EventLog keeps the latest entries in a ring; the oldest entry is dropped
// once the log is full.
type EventLog struct {
	mu      sync.Mutex
	entries []model.LogEntry
	next    int
	full    bool
}

func NewEventLog(size int) *EventLog {
	if size < 1 {
		size = 1
	}
	return &EventLog{entries: make([]model.LogEntry, size)}
}

func (l *EventLog) Append(entry model.LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.next] = entry
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
}

// Entries returns a copy of the log, newest first.
func (l *EventLog) Entries() []model.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.next
	if l.full {
		n = len(l.entries)
	}
	out := make([]model.LogEntry, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, l.entries[(l.next-i+len(l.entries))%len(l.entries)])
	}
	return out
}

func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.full {
		return len(l.entries)
	}
	return l.next
}
