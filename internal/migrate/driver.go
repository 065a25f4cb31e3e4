package migrate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gdsfactory/gf/internal/watcher"
)

// ErrNotText indicates a source file that is not valid UTF-8 text.
var ErrNotText = errors.New("not a text file")

// Reporter receives progress callbacks while the driver runs.
type Reporter interface {
	// MigrationStart is called once with the number of files to process.
	MigrationStart(total int)

	// FileProcessed is called after each file, changed or not.
	FileProcessed(task FileTask)

	// FileUpdated is called when a destination received changed content,
	// with the unified diff between source and destination.
	FileUpdated(task FileTask, diff string)

	// MigrationComplete is called once with the final counts.
	MigrationComplete(stats Stats)
}

// NoopReporter discards all progress callbacks.
type NoopReporter struct{}

func (NoopReporter) MigrationStart(int)           {}
func (NoopReporter) FileProcessed(FileTask)       {}
func (NoopReporter) FileUpdated(FileTask, string) {}
func (NoopReporter) MigrationComplete(Stats)      {}

// Stats counts what a migration run did.
type Stats struct {
	Files   int
	Updated int
	Failed  int
}

// Driver runs the rewriter over resolved file tasks and writes the results.
type Driver struct {
	rewriter *Rewriter
	reporter Reporter
}

// NewDriver creates a driver. A nil reporter falls back to NoopReporter.
func NewDriver(rw *Rewriter, reporter Reporter) *Driver {
	if reporter == nil {
		reporter = NoopReporter{}
	}
	return &Driver{rewriter: rw, reporter: reporter}
}

// Run processes every task in order. Failures on individual files are
// collected and returned at the end; remaining files still run.
func (d *Driver) Run(ctx context.Context, tasks []FileTask) (Stats, error) {
	stats := Stats{Files: len(tasks)}
	var errs []error

	d.reporter.MigrationStart(len(tasks))
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		updated, err := d.processTask(task)
		if err != nil {
			stats.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", task.Source, err))
		} else if updated {
			stats.Updated++
		}
		d.reporter.FileProcessed(task)
	}
	d.reporter.MigrationComplete(stats)

	if len(errs) > 0 {
		return stats, joinErrors(errs)
	}
	return stats, nil
}

// processTask reads, rewrites, and writes one file. In-place destinations
// are only written when the content changed; mirror destinations are always
// written so the output tree is complete. Reports whether the destination
// received changed content.
func (d *Driver) processTask(task FileTask) (bool, error) {
	data, err := os.ReadFile(task.Source)
	if err != nil {
		return false, fmt.Errorf("read: %w", err)
	}
	if !isText(data) {
		return false, ErrNotText
	}

	res := d.rewriter.Rewrite(string(data))

	if task.Dest == task.Source {
		if !res.Changed {
			return false, nil
		}
		if err := os.WriteFile(task.Dest, []byte(res.Rewritten), 0644); err != nil {
			return false, fmt.Errorf("write: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(task.Dest), 0755); err != nil {
			return false, fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(task.Dest, []byte(res.Rewritten), 0644); err != nil {
			return false, fmt.Errorf("write: %w", err)
		}
		if !res.Changed {
			return false, nil
		}
	}

	diff, err := UnifiedDiff(res, task.Source, task.Dest)
	if err != nil {
		return true, fmt.Errorf("render diff: %w", err)
	}
	d.reporter.FileUpdated(task, diff)
	return true, nil
}

// Watch blocks and re-runs the migration whenever recognized files under
// input change. Returns when ctx is cancelled.
func (d *Driver) Watch(ctx context.Context, w *Walker, input, output string) error {
	fw, err := watcher.New([]string{input}, w.Extensions())
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Stop()

	err = fw.Start(ctx, func(files []string) {
		tasks := w.TasksFor(input, output, files)
		if len(tasks) == 0 {
			return
		}
		if _, err := d.Run(ctx, tasks); err != nil && ctx.Err() == nil {
			log.Printf("Warning: migration of changed files failed: %v\n", err)
		}
	})
	if err != nil {
		return fmt.Errorf("start file watcher: %w", err)
	}

	<-ctx.Done()
	return nil
}

// isText reports whether data looks like UTF-8 text. A null byte in the
// first 512 bytes marks the file binary, the same heuristic used by tools
// like 'file'; the rest must be valid UTF-8.
func isText(data []byte) bool {
	n := len(data)
	if n > 512 {
		n = 512
	}
	for i := 0; i < n; i++ {
		if data[i] == 0 {
			return false
		}
	}
	return utf8.Valid(data)
}

// joinErrors combines multiple per-file errors into a single error with
// clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("%d files failed:\n  - %s", len(msgs), strings.Join(msgs, "\n  - "))
}
