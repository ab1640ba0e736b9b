package diagnostics

import (
	"container/ring"
	"sync"
)

// LogTail is a small in-memory ring buffer of recent log lines, fed by an
// io.Writer adapter installed alongside the process's regular logger
// output, and fanned out live to any /logs websocket subscribers.
type LogTail struct {
	mu          sync.Mutex
	buf         *ring.Ring
	subscribers map[int]func(string)
	nextID      int
}

// NewLogTail creates a tail buffer holding the last capacity lines.
func NewLogTail(capacity int) *LogTail {
	return &LogTail{
		buf:         ring.New(capacity),
		subscribers: make(map[int]func(string)),
	}
}

// Write implements io.Writer so a LogTail can be composed into an
// io.MultiWriter alongside the process's normal log destination, the way
// nupi-ai/nupi's setupLogging composes io.MultiWriter(os.Stdout,
// logFile).
func (t *LogTail) Write(p []byte) (int, error) {
	line := string(p)
	t.mu.Lock()
	t.buf.Value = line
	t.buf = t.buf.Next()
	subs := make([]func(string), 0, len(t.subscribers))
	for _, fn := range t.subscribers {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(line)
	}
	return len(p), nil
}

// Subscribe registers fn to be called with each new line, and returns an
// unsubscribe function.
func (t *LogTail) Subscribe(fn func(string)) func() {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subscribers[id] = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.subscribers, id)
		t.mu.Unlock()
	}
}

// Snapshot returns the buffered lines in oldest-to-newest order.
func (t *LogTail) Snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var lines []string
	t.buf.Do(func(v interface{}) {
		if v != nil {
			lines = append(lines, v.(string))
		}
	})
	return lines
}
