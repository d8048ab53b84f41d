package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

const progressInterval = 200 * time.Millisecond

// progressPrinter renders download progress on a single terminal line.
type progressPrinter struct {
	w   io.Writer
	now func() time.Time

	mu     sync.Mutex
	last   time.Time
	active bool
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, now: time.Now}
}

// Update matches download.ProgressFunc. total is -1 when unknown.
func (p *progressPrinter) Update(written, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	done := total > 0 && written >= total
	if p.active && !done && now.Sub(p.last) < progressInterval {
		return
	}
	p.last = now
	p.active = true

	if total > 0 {
		pct := float64(written) * 100 / float64(total)
		_, _ = fmt.Fprintf(p.w, "\r  %s / %s (%.1f%%)", humanize.IBytes(uint64(written)), humanize.IBytes(uint64(total)), pct)
		return
	}
	_, _ = fmt.Fprintf(p.w, "\r  %s", humanize.IBytes(uint64(written)))
}

// Finish ends the progress line, if one was started.
func (p *progressPrinter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		_, _ = fmt.Fprintln(p.w)
		p.active = false
	}
}
