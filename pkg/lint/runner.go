package lint

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/macropower/kls/pkg/log"
)

// DefaultConcurrency is the number of files linted at once by default.
const DefaultConcurrency = 8

// ErrNoFiles is returned when the given paths contain no YAML files.
var ErrNoFiles = errors.New("no yaml files found")

var (
	defaultIgnores = []string{
		".git/",
		"node_modules/",
		"vendor/",
	}

	yamlExtensions = []string{".yaml", ".yml"}
)

// Runner lints files concurrently.
type Runner struct {
	tracer      trace.Tracer
	linters     []Linter
	ignores     []string
	concurrency int
}

// RunnerOpt configures a [Runner].
type RunnerOpt func(r *Runner)

// WithConcurrency sets the maximum number of files linted at once.
func WithConcurrency(n int) RunnerOpt {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithIgnores adds gitignore-style patterns excluded when walking directories.
func WithIgnores(patterns ...string) RunnerOpt {
	return func(r *Runner) {
		r.ignores = append(r.ignores, patterns...)
	}
}

// NewRunner creates a new [Runner] for the given linters.
func NewRunner(linters []Linter, opts ...RunnerOpt) *Runner {
	r := &Runner{
		tracer:      otel.Tracer("lint-runner"),
		linters:     linters,
		ignores:     slices.Clone(defaultIgnores),
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Collect expands paths into the YAML files they name. Files are kept as
// given; directories are walked, honoring their .gitignore file.
func (r *Runner) Collect(paths ...string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", path, err)
		}

		if !info.IsDir() {
			files = append(files, path)

			continue
		}

		found, err := r.walk(path)
		if err != nil {
			return nil, err
		}

		files = append(files, found...)
	}

	slices.Sort(files)
	files = slices.Compact(files)

	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	return files, nil
}

func (r *Runner) matcher(root string) *ignore.GitIgnore {
	patterns := slices.Clone(r.ignores)

	content, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err == nil {
		patterns = append(patterns, strings.Split(string(content), "\n")...)
	}

	return ignore.CompileIgnoreLines(patterns...)
}

func (r *Runner) walk(root string) ([]string, error) {
	m := r.matcher(root)

	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path: %w", err)
		}

		if rel != "." && m.MatchesPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.IsDir() && isYAMLFile(path) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", root, err)
	}

	return files, nil
}

func isYAMLFile(path string) bool {
	return slices.Contains(yamlExtensions, strings.ToLower(filepath.Ext(path)))
}

// LintFile reads and lints a single file.
func (r *Runner) LintFile(ctx context.Context, path string) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "lint file", trace.WithAttributes(
		attribute.String("file", path),
	))
	defer span.End()

	//nolint:gosec // G304: Paths come from the user.
	content, err := os.ReadFile(path)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("read %q: %w", path, err)
	}

	res, err := LintFile(ctx, path, string(content), r.linters...)
	if err != nil {
		span.RecordError(err)
		log.WithContext(ctx).WarnContext(ctx, "linter failed",
			slog.String("file", path),
			slog.Any("error", err),
		)
	}

	if res == nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("diagnostics", len(res.Diagnostics)))

	return res, nil
}

// LintFiles lints the files named by paths (see [Runner.Collect]).
// Results are sorted by file name. Files that cannot be read are reported in
// the returned error; the remaining results are still returned.
func (r *Runner) LintFiles(ctx context.Context, paths ...string) ([]*Result, error) {
	ctx, span := r.tracer.Start(ctx, "lint files")
	defer span.End()

	files, err := r.Collect(paths...)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("files", len(files)))

	log.WithContext(ctx).DebugContext(ctx, "linting files",
		slog.Int("count", len(files)),
		slog.Int("concurrency", r.concurrency),
	)

	p := pool.NewWithResults[*Result]().
		WithErrors().
		WithContext(ctx).
		WithMaxGoroutines(r.concurrency)

	for _, file := range files {
		p.Go(func(ctx context.Context) (*Result, error) {
			return r.LintFile(ctx, file)
		})
	}

	results, err := p.Wait()

	slices.SortFunc(results, func(a, b *Result) int {
		return cmp.Compare(a.File, b.File)
	})

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	return results, err
}

// Watch lints paths, then lints each YAML file again whenever it is written
// or created, passing every result to fn. It returns when ctx is done.
func (r *Runner) Watch(ctx context.Context, fn func(*Result), paths ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}

	defer func() {
		if err := watcher.Close(); err != nil {
			slog.Error("close watcher", slog.Any("err", err))
		}
	}()

	files, err := r.Collect(paths...)
	if err != nil {
		return err
	}

	watched := make(map[string]struct{}, len(files))
	dirs := make(map[string]struct{})

	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("absolute path of %q: %w", file, err)
		}

		watched[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %q: %w", dir, err)
		}
	}

	results, err := r.LintFiles(ctx, files...)
	for _, res := range results {
		fn(res)
	}

	if err != nil {
		log.WithContext(ctx).ErrorContext(ctx, "lint files", slog.Any("error", err))
	}

	logger := log.WithContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
				continue
			}

			if _, ok := watched[evt.Name]; !ok {
				continue
			}

			logger.DebugContext(ctx, "file changed", slog.String("event", evt.String()))

			res, err := r.LintFile(ctx, evt.Name)
			if err != nil {
				logger.ErrorContext(ctx, "lint file",
					slog.String("file", evt.Name),
					slog.Any("error", err),
				)

				continue
			}

			fn(res)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.ErrorContext(ctx, "watcher", slog.Any("error", err))
		}
	}
}
