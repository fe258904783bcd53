package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Status displays a live right-aligned "Resolve (X.Xs)" timer on a
// terminal while a restore runs. On anything but a terminal it prints
// nothing.
type Status struct {
	output io.Writer
	label  string
	isTTY  bool
	width  int
	start  time.Time

	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// NewStatus starts a status line on output.
func NewStatus(output io.Writer, label string) *Status {
	s := &Status{
		output: output,
		label:  label,
		isTTY:  IsTerminal(output),
		width:  TerminalWidth(output, 120),
		start:  time.Now(),
		done:   make(chan struct{}),
	}
	if s.isTTY {
		s.ticker = time.NewTicker(33 * time.Millisecond)
		go s.loop()
	}
	return s
}

func (s *Status) loop() {
	for {
		select {
		case <-s.ticker.C:
			s.render()
		case <-s.done:
			return
		}
	}
}

func (s *Status) render() {
	status := fmt.Sprintf("%s (%.1fs)", s.label, time.Since(s.start).Seconds())
	column := min(s.width, 120)
	// Hide cursor, move to the right edge, write, return, show cursor.
	_, _ = fmt.Fprintf(s.output, "\x1B[?25l\x1B[%dG\x1B[%dD%s\r\x1B[?25h", column, len(status), status)
}

// Stop stops the timer and clears the line. Safe to call more than once.
func (s *Status) Stop() {
	s.once.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
			close(s.done)
		}
		if s.isTTY {
			_, _ = fmt.Fprint(s.output, "\x1B[K")
		}
	})
}

// Elapsed returns the time since the status started.
func (s *Status) Elapsed() time.Duration {
	return time.Since(s.start)
}

// IsTTY reports whether the status is being drawn.
func (s *Status) IsTTY() bool {
	return s.isTTY
}
