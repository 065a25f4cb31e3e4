package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gdsfactory/gf/internal/migrate"
)

var (
	migrationFlag string
	inplaceFlag   bool
	quietFlag     bool
	watchFlag     bool
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate --migration=7to8 <input> [output]",
	Short: "Rewrite legacy gdsfactory attribute names in a source tree",
	Long: `Migrate rewrites source files from one gdsfactory major version to the
next by renaming legacy attribute accesses (center, move, rotate, ...) to
their marker-prefixed successors (dcenter, dmove, drotate, ...).

Qualified accesses through the marker ('d.center') are rewritten before
bare names ('center'), so both forms are covered in a single run.

With --inplace the input files are overwritten; otherwise every resolved
source file is written under <output>, mirroring the input tree. Each
changed file is announced with a unified diff.

Examples:
  # Migrate a project into a sibling directory
  gf migrate --migration=7to8 ./src ./src-v8

  # Migrate in place
  gf migrate --migration=7to8 -i ./src

  # Migrate a single file
  gf migrate --migration=7to8 cell.py migrated/cell.py

  # Keep watching the tree for edits after the initial run
  gf migrate --migration=7to8 -i -w ./src
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVarP(&migrationFlag, "migration", "m", "", "Migration to apply (e.g. 7to8)")
	migrateCmd.Flags().BoolVarP(&inplaceFlag, "inplace", "i", false, "Overwrite the input files instead of writing a copy")
	migrateCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars, diffs and non-error output")
	migrateCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the input tree and re-run on changes")
	migrateCmd.MarkFlagRequired("migration")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling migration...")
		cancel()
	}()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	extras, err := cfg.Catalogues()
	if err != nil {
		return fmt.Errorf("failed to load configured migrations: %w", err)
	}

	cat, err := migrate.Lookup(migrationFlag, extras)
	if err != nil {
		return err
	}
	rewriter, err := migrate.NewRewriter(cat)
	if err != nil {
		return err
	}

	walker, err := migrate.NewWalker(cfg.Paths.Source, cfg.Paths.Ignore)
	if err != nil {
		return fmt.Errorf("invalid source patterns: %w", err)
	}

	input := args[0]
	output := ""
	if len(args) == 2 {
		output = args[1]
	}

	res, err := walker.Resolve(input, output, inplaceFlag)
	if err != nil {
		return err
	}

	if watchFlag {
		if !res.Dir {
			return fmt.Errorf("--watch requires a directory input")
		}
		// A mirror destination inside the watched tree would feed the
		// watcher its own writes.
		if isSubpath(res.Input, res.Output) {
			return fmt.Errorf("cannot watch: output directory %s is inside the input tree", res.Output)
		}
	}

	if verbose {
		fmt.Printf("Migrating %s -> %s (%d files)\n", res.Input, res.Output, len(res.Tasks))
	}

	driver := migrate.NewDriver(rewriter, newMigrateReporter(quietFlag))

	stats, err := driver.Run(ctx, res.Tasks)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("migration cancelled")
		}
		if !watchFlag {
			return fmt.Errorf("migration failed: %w", err)
		}
		// Watch mode keeps going; the failures were already reported.
		log.Printf("Warning: %v\n", err)
	}

	// Print summary (if not quiet, MigrationComplete already printed it)
	if err == nil && quietFlag {
		fmt.Printf("Migration complete: %d files (%d updated)\n", stats.Files, stats.Updated)
	}

	if watchFlag {
		if !quietFlag {
			log.Println("Watching for changes... (Ctrl+C to stop)")
		}
		if err := driver.Watch(ctx, walker, res.Input, res.Output); err != nil && ctx.Err() == nil {
			return fmt.Errorf("watch mode failed: %w", err)
		}
		if !quietFlag {
			log.Println("Watch mode stopped")
		}
	}

	return nil
}

// isSubpath reports whether path lies strictly inside root.
func isSubpath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
