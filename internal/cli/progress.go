package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"

	"github.com/gdsfactory/gf/internal/migrate"
)

// updatedStyle renders the per-file update notice, bold violet like the
// original rich console output.
var updatedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))

// migrateReporter implements migrate.Reporter with a progress bar and
// styled per-file diff output.
type migrateReporter struct {
	quiet     bool
	bar       *progressbar.ProgressBar
	startTime time.Time
}

// newMigrateReporter creates a new CLI progress reporter.
func newMigrateReporter(quiet bool) *migrateReporter {
	return &migrateReporter{
		quiet:     quiet,
		startTime: time.Now(),
	}
}

func (r *migrateReporter) MigrationStart(total int) {
	if r.quiet {
		return
	}
	r.startTime = time.Now()

	// A bar for a single file is just noise.
	if total <= 1 {
		return
	}
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Migrating files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (r *migrateReporter) FileProcessed(task migrate.FileTask) {
	if r.quiet {
		return
	}
	if r.bar != nil {
		r.bar.Add(1)
	}
}

func (r *migrateReporter) FileUpdated(task migrate.FileTask, diff string) {
	if r.quiet {
		return
	}
	if r.bar != nil {
		// Keep the bar from shredding the diff output.
		r.bar.Clear()
	}
	fmt.Println(updatedStyle.Render("Updated " + task.Dest))
	fmt.Print(diff)
}

func (r *migrateReporter) MigrationComplete(stats migrate.Stats) {
	if r.quiet {
		return
	}
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
	fmt.Printf("✓ Migration complete: %d files in %.1fs (%d updated, %d failed)\n",
		stats.Files, time.Since(r.startTime).Seconds(), stats.Updated, stats.Failed)
}
