package internal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnoswap-labs/litmus/internal/alloy"
	"github.com/gnoswap-labs/litmus/internal/emitter"
	"github.com/gnoswap-labs/litmus/internal/litmus"
	"github.com/gnoswap-labs/litmus/internal/template"
	"github.com/gnoswap-labs/litmus/internal/transform"
	tt "github.com/gnoswap-labs/litmus/internal/types"
)

// Checker runs an emitted specification. *alloy.Runner implements it.
type Checker interface {
	Run(ctx context.Context, spec string) (*alloy.Report, error)
}

// Options configures an Engine.
type Options struct {
	Marker  string
	Scope   int
	IntBits int
	// Jobs bounds how many instances are checked at once; 0 means 1.
	Jobs int
	// Skip drops the first instances of a templated test.
	Skip int
	// Listing records source-attributed fragments for each instance.
	Listing bool
}

// Engine drives the pipeline for one file at a time: template
// expansion, parsing, transformation, emission and checking.
// Instances never share state, so Run checks them concurrently.
type Engine struct {
	model   string
	opts    Options
	checker Checker
	cache   *Cache
	logger  *zap.Logger

	watch watchState
}

// NewEngine creates an engine emitting against the given Alloy model.
// checker may be nil when only compiling.
func NewEngine(model string, checker Checker, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Jobs <= 0 {
		opts.Jobs = 1
	}
	if opts.IntBits == 0 {
		opts.IntBits = emitter.DefaultIntBits
	}
	return &Engine{
		model:   model,
		opts:    opts,
		checker: checker,
		logger:  logger,
	}
}

// UseCache makes Run reuse reports of previously checked text.
func (e *Engine) UseCache(c *Cache) {
	e.cache = c
}

// Result is one compiled instance.
type Result struct {
	Instance template.Instance
	Test     *litmus.Test
	Spec     string
	Listing  *emitter.Listing
}

// InstanceError is a failure tied to one template instance.
type InstanceError struct {
	Instance template.Instance
	Err      error
}

func (e *InstanceError) Error() string {
	if len(e.Instance.Params) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("instance %s: %v", e.Instance.Name(), e.Err)
}

func (e *InstanceError) Unwrap() error { return e.Err }

// Compile expands src and compiles every instance. The first failing
// instance aborts the compilation.
func (e *Engine) Compile(src string) ([]Result, error) {
	instances, err := template.Expand(src)
	if err != nil {
		return nil, err
	}
	instances = template.Skip(instances, e.opts.Skip)

	results := make([]Result, 0, len(instances))
	for _, inst := range instances {
		r, err := e.compileInstance(inst)
		if err != nil {
			return nil, &InstanceError{Instance: inst, Err: err}
		}
		results = append(results, r)
	}
	return results, nil
}

func (e *Engine) compileInstance(inst template.Instance) (Result, error) {
	test, err := transform.Build(inst.Source, transform.Options{IntBits: e.opts.IntBits})
	if err != nil {
		return Result{}, err
	}

	var listing *emitter.Listing
	if e.opts.Listing {
		listing = &emitter.Listing{}
	}
	spec, err := emitter.Emit(e.model, test, emitter.Options{
		Marker:  e.opts.Marker,
		Scope:   e.opts.Scope,
		IntBits: e.opts.IntBits,
		Logger:  e.logger.With(zap.String("instance", inst.Name())),
		Listing: listing,
	})
	if err != nil {
		return Result{}, err
	}

	e.logger.Debug("compiled instance",
		zap.String("instance", inst.Name()),
		zap.Int("instructions", len(test.Instructions())),
		zap.Int("commands", len(test.Commands)))
	return Result{Instance: inst, Test: test, Spec: spec, Listing: listing}, nil
}

// CompileFile reads and compiles filename.
func (e *Engine) CompileFile(filename string) ([]Result, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return e.Compile(string(src))
}

// Run compiles filename and checks every instance. Outcomes are ordered
// by instance, then by the order the checker printed them.
//
// A checker that exits with ExitBrokenExpectation has already reported
// why through its outcomes, so that status is not an error. Any other
// nonzero exit is returned with the outcomes gathered so far.
func (e *Engine) Run(ctx context.Context, filename string) ([]tt.Outcome, error) {
	if e.checker == nil {
		return nil, errors.New("no checker configured")
	}
	results, err := e.CompileFile(filename)
	if err != nil {
		return nil, err
	}

	perInstance := make([][]tt.Outcome, len(results))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Jobs)
	for i, r := range results {
		i, r := i, r
		g.Go(func() error {
			outcomes, err := e.check(ctx, filename, r)
			perInstance[i] = outcomes
			if err != nil {
				return &InstanceError{Instance: r.Instance, Err: err}
			}
			return nil
		})
	}
	err = g.Wait()

	var outcomes []tt.Outcome
	for _, o := range perInstance {
		outcomes = append(outcomes, o...)
	}
	return outcomes, err
}

func (e *Engine) check(ctx context.Context, filename string, r Result) ([]tt.Outcome, error) {
	key := ""
	if e.cache != nil {
		key = CacheKey(e.commandLine(), r.Spec)
		if report, ok := e.cache.Get(key); ok {
			e.logger.Debug("cache hit", zap.String("file", filename), zap.String("instance", r.Instance.Name()))
			return e.outcomes(filename, r, report, true), nil
		}
	}

	report, err := e.checker.Run(ctx, r.Spec)
	var toolErr *alloy.ToolError
	if errors.As(err, &toolErr) && toolErr.ExitCode == alloy.ExitBrokenExpectation &&
		report != nil && len(report.Broken()) > 0 {
		err = nil
	}
	if err != nil {
		if report != nil {
			return e.outcomes(filename, r, report, false), err
		}
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(key, report); err != nil {
			e.logger.Warn("failed to cache report", zap.String("file", filename), zap.Error(err))
		}
	}
	return e.outcomes(filename, r, report, false), nil
}

func (e *Engine) commandLine() []string {
	if runner, ok := e.checker.(*alloy.Runner); ok {
		return runner.Command
	}
	return nil
}

func (e *Engine) outcomes(filename string, r Result, report *alloy.Report, cached bool) []tt.Outcome {
	lines := make(map[string]int, len(r.Test.Commands))
	for _, c := range r.Test.Commands {
		lines[c.Name] = c.Line
	}

	instance := ""
	if len(r.Instance.Params) > 0 {
		instance = r.Instance.Name()
	}

	out := make([]tt.Outcome, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		out = append(out, tt.Outcome{
			Filename:      filename,
			Instance:      instance,
			Command:       o.Command,
			Line:          alloy.Attribute(o.Command, lines),
			Sanity:        o.Sanity,
			SAT:           o.SAT,
			Broken:        o.Verdict == alloy.Breaks,
			Informational: o.Verdict == alloy.Informational,
			Message:       o.Message,
			Detail:        o.Detail,
			Cached:        cached,
		})
	}
	return out
}
