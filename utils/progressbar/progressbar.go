// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressBar prints the progress of an iterative computation to a
// terminal, redrawing in place
type ProgressBar struct {
	out     io.Writer
	width   int
	max     int
	current int
	start   time.Time
}

// New returns a new progress bar that is width characters wide and
// reaches 100% after max Increment calls. Output is written to out.
func New(out io.Writer, width, max int) *ProgressBar {
	return &ProgressBar{
		out:   out,
		width: width,
		max:   max,
		start: time.Now(),
	}
}

// Increment increments the internal progress counter and redraws the
// bar. Each time an iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	if p.current < p.max {
		p.current++
	}

	var bar strings.Builder
	bar.WriteString("|")

	progress := p.current * p.width / p.max
	for i := 0; i < progress; i++ {
		bar.WriteString("█")
	}
	for i := progress; i < p.width; i++ {
		bar.WriteString(" ")
	}
	fmt.Fprintf(p.out, "\r%v| [%v/%v | elapsed: %v]", bar.String(),
		p.current, p.max, time.Since(p.start).Round(time.Second))
}

// Close finishes the bar, jumping to the next terminal line
func (p *ProgressBar) Close() {
	fmt.Fprintln(p.out)
}
