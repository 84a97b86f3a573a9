// Package driver is the entry point shared by the command line and by
// other programs: it loads the configuration, builds the engine, and
// checks files and directories of litmus tests.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/litmus/internal"
	"github.com/gnoswap-labs/litmus/internal/alloy"
	tt "github.com/gnoswap-labs/litmus/internal/types"
	"github.com/gnoswap-labs/litmus/scanner"
)

const maxShowRecentFiles = 5

// Engine checks one test file.
type Engine interface {
	Run(ctx context.Context, filename string) ([]tt.Outcome, error)
}

// EngineOptions are the per-invocation settings that do not belong in
// the configuration file.
type EngineOptions struct {
	Skip    int
	Listing bool
	// NoChecker builds an engine that can only compile.
	NoChecker bool
}

// New builds an engine from config. The Alloy model is read once here.
func New(config Config, opts EngineOptions, logger *zap.Logger) (*internal.Engine, error) {
	if config.Model == "" {
		return nil, errors.New("no Alloy model configured")
	}
	model, err := os.ReadFile(config.Model)
	if err != nil {
		return nil, fmt.Errorf("error reading model: %w", err)
	}

	var checker internal.Checker
	if !opts.NoChecker {
		runner, err := alloy.NewRunner(config.Checker, "")
		if err != nil {
			return nil, err
		}
		checker = runner
	}

	engine := internal.NewEngine(string(model), checker, internal.Options{
		Marker:  config.Marker,
		Scope:   config.Bound.Scope,
		IntBits: config.Bound.IntBits,
		Jobs:    config.Jobs,
		Skip:    opts.Skip,
		Listing: opts.Listing,
	}, logger)

	if config.CacheDir != "" {
		cache, err := internal.NewCache(config.CacheDir)
		if err != nil {
			return nil, err
		}
		engine.UseCache(cache)
	}
	return engine, nil
}

// Result gathers what checking a set of files produced. Files that
// failed to compile or check contribute a diagnostic instead of
// aborting the others.
type Result struct {
	Outcomes    []tt.Outcome
	Diagnostics []tt.Diagnostic
}

// Broken reports whether any outcome broke its expectation.
func (r *Result) Broken() bool {
	for _, o := range r.Outcomes {
		if o.Broken {
			return true
		}
	}
	return false
}

// Failed reports whether checking should be considered unsuccessful.
func (r *Result) Failed() bool {
	return len(r.Diagnostics) > 0 || r.Broken()
}

func (r *Result) merge(other *Result) {
	r.Outcomes = append(r.Outcomes, other.Outcomes...)
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}

// Processor checks a single file with engine.
type Processor func(ctx context.Context, engine Engine, filename string) ([]tt.Outcome, error)

// ProcessFile is the default Processor.
func ProcessFile(ctx context.Context, engine Engine, filename string) ([]tt.Outcome, error) {
	return engine.Run(ctx, filename)
}

// Options tunes how directories are walked.
type Options struct {
	// Workers bounds the files checked at once; 0 means one per CPU.
	Workers int
	// Progress receives a progress bar while a directory is checked;
	// nil disables it.
	Progress io.Writer
}

// ProcessFiles checks every path in turn.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	paths []string,
	processor Processor,
	opts Options,
) (*Result, error) {
	all := &Result{}
	for _, path := range paths {
		r, err := ProcessPath(ctx, logger, engine, path, processor, opts)
		if r != nil {
			all.merge(r)
		}
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return all, err
		}
	}
	return all, nil
}

// ProcessPath checks path, which is either a test file or a directory
// searched recursively for test files. Results are ordered by file name
// whatever order the workers finish in.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	path string,
	processor Processor,
	opts Options,
) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		result := &Result{}
		processOne(ctx, logger, engine, path, processor, result)
		return result, nil
	}

	files, err := collectTests(path)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(files))
	progress := newProgress(opts.Progress, path, len(files))

	maxWorkers := opts.Workers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	var cancelled error
loop:
	for i, filePath := range files {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break loop
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			progress.start(filepath.Base(fp))
			processOne(ctx, logger, engine, fp, processor, &results[i])
			progress.done()
		}(i, filePath)
	}
	wg.Wait()
	progress.finish()

	result := &Result{}
	for i := range results {
		result.merge(&results[i])
	}
	return result, cancelled
}

func processOne(ctx context.Context, logger *zap.Logger, engine Engine, filename string, processor Processor, into *Result) {
	outcomes, err := processor(ctx, engine, filename)
	into.Outcomes = append(into.Outcomes, outcomes...)
	if err != nil {
		if logger != nil {
			logger.Error("Error processing file", zap.String("file", filename), zap.Error(err))
		}
		into.Diagnostics = append(into.Diagnostics, internal.Diagnose(filename, err))
	}
}

func collectTests(root string) ([]string, error) {
	found, err := scanner.New(root, internal.TestExtension).Scan()
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	files := make([]string, len(found))
	for i, f := range found {
		files[i] = f.Path
	}
	return files, nil
}

// progress draws a bar with the most recently started files above it.
// A nil *progress draws nothing.
type progress struct {
	w   io.Writer
	bar *progressbar.ProgressBar

	mu     sync.Mutex
	recent []string
}

func newProgress(w io.Writer, description string, total int) *progress {
	if w == nil {
		return nil
	}

	// make space for recent files
	for i := 0; i < maxShowRecentFiles+1; i++ {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\033[%dA", maxShowRecentFiles+1)

	return &progress{
		w:      w,
		recent: make([]string, maxShowRecentFiles),
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			})),
	}
}

func (p *progress) start(filename string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	copy(p.recent[1:], p.recent[:len(p.recent)-1])
	p.recent[0] = filename

	// move the cursor up and redraw the list
	fmt.Fprintf(p.w, "\033[%dA", maxShowRecentFiles)
	for _, name := range p.recent {
		// \033[2K: clear the line
		fmt.Fprintf(p.w, "\033[2K\r%s\n", name)
	}
}

func (p *progress) done() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Add(1)
}

func (p *progress) finish() {
	if p == nil {
		return
	}
	fmt.Fprintln(p.w)
}
