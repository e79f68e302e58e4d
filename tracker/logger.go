// Package tracker implements the experiment logger: a sink of named
// scalar records produced once per iteration or episode of a training
// run. The logger is a pure observer; algorithms behave identically
// whether or not one is attached.
package tracker

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// HistoryFile is the name of the gob-encoded metric history written
// into a Logger's output directory
const HistoryFile string = "progress.bin"

// Store persists one row of named scalars. Implementations must not
// retain the map.
type Store interface {
	StoreRow(row int, scalars map[string]float64) error
}

// Logger records named scalar metrics for a single run. Each call to
// Store appends one row to the in-memory history; the full history can
// be saved to the run's output directory as a gob stream. A nil
// *Logger is valid and discards everything.
type Logger struct {
	outputDir string
	logFreq   int
	out       io.Writer

	history map[string][]float64
	rows    int
	stores  []Store
}

// New creates a Logger. If outputDir is non-empty it is created and
// Save writes the metric history there. If logFreq is positive, every
// logFreq-th row is echoed to the console.
func New(outputDir string, logFreq int) (*Logger, error) {
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "new: could not create output "+
				"directory")
		}
	}
	return &Logger{
		outputDir: outputDir,
		logFreq:   logFreq,
		out:       os.Stdout,
		history:   make(map[string][]float64),
	}, nil
}

// SetOutput redirects console echoing to w
func (l *Logger) SetOutput(w io.Writer) {
	if l == nil {
		return
	}
	l.out = w
}

// Attach registers a Store that receives every row passed to Store
func (l *Logger) Attach(s Store) {
	if l == nil {
		return
	}
	l.stores = append(l.stores, s)
}

// Store appends one row of named scalars to the history, forwards it
// to attached stores, and echoes it to the console when the row index
// falls on the logging frequency.
func (l *Logger) Store(scalars map[string]float64) {
	if l == nil {
		return
	}

	row := l.rows
	l.rows++
	for name, value := range scalars {
		l.history[name] = append(l.history[name], value)
	}

	for _, s := range l.stores {
		if err := s.StoreRow(row, scalars); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not store metrics row "+
				"%d: %v\n", row, err)
		}
	}

	if l.logFreq > 0 && row%l.logFreq == 0 {
		names := make([]string, 0, len(scalars))
		for name := range scalars {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Fprintf(l.out, "%-24v %v\n", name, scalars[name])
		}
		fmt.Fprintln(l.out)
	}
}

// Rows returns the number of rows stored so far
func (l *Logger) Rows() int {
	if l == nil {
		return 0
	}
	return l.rows
}

// History returns the stored values of the named metric in insertion
// order
func (l *Logger) History(name string) []float64 {
	if l == nil {
		return nil
	}
	return l.history[name]
}

// Save writes the gob-encoded metric history to the output directory.
// Save is a no-op for loggers without an output directory.
func (l *Logger) Save() error {
	if l == nil || l.outputDir == "" {
		return nil
	}

	file, err := os.Create(filepath.Join(l.outputDir, HistoryFile))
	if err != nil {
		return errors.Wrap(err, "save: could not open history file")
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err := en.Encode(l.history); err != nil {
		return errors.Wrap(err, "save: could not encode history")
	}
	return nil
}

// LoadHistory reads a gob-encoded metric history previously written
// by Save
func LoadHistory(dir string) (map[string][]float64, error) {
	file, err := os.Open(filepath.Join(dir, HistoryFile))
	if err != nil {
		return nil, errors.Wrap(err, "loadhistory: could not open history "+
			"file")
	}
	defer file.Close()

	var history map[string][]float64
	de := gob.NewDecoder(file)
	if err := de.Decode(&history); err != nil {
		return nil, errors.Wrap(err, "loadhistory: could not decode history")
	}
	return history, nil
}
