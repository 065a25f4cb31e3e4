package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrOutputRequired indicates the caller gave no output path and did
	// not ask for an in-place run.
	ErrOutputRequired = errors.New("output path required unless --inplace is set")

	// ErrInputNotFound indicates the input path does not exist.
	ErrInputNotFound = errors.New("input path not found")
)

// FileTask pairs one source file with the destination its rewritten content
// is written to. Dest equals Source for in-place runs.
type FileTask struct {
	Source string
	Dest   string
}

// Resolution is the outcome of resolving an input/output pair: the absolute
// roots plus one task per source file.
type Resolution struct {
	Input  string
	Output string
	Dir    bool
	Tasks  []FileTask
}

// compiledPattern holds both the pattern string and compiled globs.
type compiledPattern struct {
	pattern string
	full    glob.Glob
	root    glob.Glob // pattern with a leading "**/" stripped, for root-level paths
}

// matches reports whether rel matches the pattern. Root-level paths (no
// slash) are retried against the pattern with its leading "**/" stripped,
// so "**/*.py" matches "a.py" as well as "sub/a.py".
func (cp compiledPattern) matches(rel string) bool {
	if cp.full.Match(rel) {
		return true
	}
	return cp.root != nil && !strings.Contains(rel, "/") && cp.root.Match(rel)
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, full: g}
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
			if rg, err := glob.Compile(rest, '/'); err == nil {
				cp.root = rg
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

func matchesAny(rel string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.matches(rel) {
			return true
		}
	}
	return false
}

// Walker expands an input path into migration tasks. Source patterns decide
// which files are recognized; ignore patterns prune the walk.
type Walker struct {
	sourcePatterns []compiledPattern
	ignorePatterns []compiledPattern
	extensions     map[string]bool
}

// NewWalker compiles the source and ignore glob patterns.
func NewWalker(sourcePatterns, ignorePatterns []string) (*Walker, error) {
	source, err := compilePatterns(sourcePatterns)
	if err != nil {
		return nil, err
	}
	ignore, err := compilePatterns(ignorePatterns)
	if err != nil {
		return nil, err
	}

	extensions := make(map[string]bool)
	for _, pattern := range sourcePatterns {
		if ext := extractExtension(pattern); ext != "" {
			extensions[ext] = true
		}
	}

	return &Walker{
		sourcePatterns: source,
		ignorePatterns: ignore,
		extensions:     extensions,
	}, nil
}

// Extensions returns the file extensions named by the source patterns, with
// leading dot, sorted. A multi-dot pattern contributes its whole suffix
// ("**/*.pic.yml" -> ".pic.yml").
func (w *Walker) Extensions() []string {
	exts := make([]string, 0, len(w.extensions))
	for ext := range w.extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Resolve turns the input and output arguments into concrete migration
// tasks. The output path is required unless inplace is set, in which case
// any given output is ignored and files are rewritten where they are. The
// missing-output check runs before any filesystem access.
func (w *Walker) Resolve(input, output string, inplace bool) (*Resolution, error) {
	if inplace {
		output = input
	} else if output == "" {
		return nil, ErrOutputRequired
	}

	input, err := filepath.Abs(input)
	if err != nil {
		return nil, fmt.Errorf("resolve input path: %w", err)
	}
	output, err = filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("resolve output path: %w", err)
	}

	info, err := os.Stat(input)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, input)
	}
	if err != nil {
		return nil, fmt.Errorf("stat input path: %w", err)
	}

	res := &Resolution{Input: input, Output: output, Dir: info.IsDir()}
	if !info.IsDir() {
		res.Tasks = []FileTask{{Source: input, Dest: w.fileDest(input, output)}}
		return res, nil
	}

	res.Tasks, err = w.walk(input, output)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// fileDest picks the destination for a single-file migration. An existing
// directory or an unrecognized extension means the file keeps its name
// under the output path; a recognized extension names the destination file
// itself.
func (w *Walker) fileDest(input, output string) string {
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, filepath.Base(input))
	}
	if w.recognized(filepath.Base(output)) {
		return output
	}
	return filepath.Join(output, filepath.Base(input))
}

// recognized reports whether name ends in one of the source-pattern
// extensions. Matching is by suffix, so a compound extension like
// ".pic.yml" works even though filepath.Ext would only see ".yml".
func (w *Walker) recognized(name string) bool {
	for ext := range w.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// walk enumerates recognized files under input and mirrors their relative
// paths below output. Ignored directories are pruned whole.
func (w *Walker) walk(input, output string) ([]FileTask, error) {
	tasks := []FileTask{}

	err := filepath.Walk(input, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(input, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel != "." && w.ignored(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if w.ignored(rel) || !matchesAny(rel, w.sourcePatterns) {
			return nil
		}

		tasks = append(tasks, FileTask{
			Source: path,
			Dest:   filepath.Join(output, filepath.FromSlash(rel)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", input, err)
	}

	return tasks, nil
}

// TasksFor maps already-known source files (for example from a watcher)
// back onto their destinations. Files outside input, not matching the
// source patterns, ignored, or no longer present are dropped.
func (w *Walker) TasksFor(input, output string, files []string) []FileTask {
	tasks := []FileTask{}
	for _, file := range files {
		rel, err := filepath.Rel(input, file)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		rel = filepath.ToSlash(rel)
		if w.ignored(rel) || !matchesAny(rel, w.sourcePatterns) {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			continue
		}
		tasks = append(tasks, FileTask{
			Source: file,
			Dest:   filepath.Join(output, filepath.FromSlash(rel)),
		})
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Source < tasks[j].Source })
	return tasks
}

// ignored checks rel against the ignore patterns, including the directory
// form ("node_modules" matching pattern "node_modules/**").
func (w *Walker) ignored(rel string) bool {
	if matchesAny(rel, w.ignorePatterns) {
		return true
	}
	return matchesAny(rel+"/**", w.ignorePatterns)
}

// extractExtension pulls the trailing "*.ext" extension out of a glob
// pattern, keeping compound extensions whole. Returns empty string if the
// pattern doesn't end in one.
// Examples: "**/*.py" -> ".py", "**/*.pic.yml" -> ".pic.yml"
func extractExtension(pattern string) string {
	for i := len(pattern) - 1; i >= 1; i-- {
		if pattern[i] == '.' && pattern[i-1] == '*' {
			return pattern[i:]
		}
	}
	return ""
}
