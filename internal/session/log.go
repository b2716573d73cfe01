package session

import (
	"fmt"
	"time"
)

// LogCapacity is the number of entries the session log retains. Older
// entries are discarded, newest kept.
const LogCapacity = 15

// Log is the user-visible session log: an append-only, capped sequence of
// timestamped strings. It is purely diagnostic and never interpreted by the
// state machine. Not safe for concurrent use; the manager serializes access.
type Log struct {
	entries []string
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) Append(msg string) {
	entry := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), msg)
	l.entries = append(l.entries, entry)
	if len(l.entries) > LogCapacity {
		l.entries = l.entries[len(l.entries)-LogCapacity:]
	}
}

// Entries returns a copy of the log, oldest first.
func (l *Log) Entries() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}
