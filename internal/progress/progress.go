// Package progress writes simple per-item progress lines during a batch run.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Tracker writes one line per processed item plus a closing duration
// summary. It is safe for concurrent use.
type Tracker struct {
	mutex     sync.Mutex
	output    io.Writer
	total     int
	current   int
	startTime time.Time
}

// New creates a Tracker that reports to output for total items.
func New(output io.Writer, total int) *Tracker {
	return &Tracker{
		output:    output,
		total:     total,
		startTime: time.Now(),
	}
}

// Step reports that processing of the named item has started.
func (t *Tracker) Step(name string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.current++
	fmt.Fprintf(t.output, "[%d/%d] %s\n", t.current, t.total, name)
}

// Finish writes the closing summary line.
func (t *Tracker) Finish() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	fmt.Fprintf(t.output, "Done: %d files in %s\n", t.current, time.Since(t.startTime).Round(time.Millisecond))
}
