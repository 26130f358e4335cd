// Package generate runs the derive generators over records and renders their
// output into files.
//
// Each (record, generator) pair is an independent generation call. Calls run
// in parallel, results are reassembled in input order, and a failed call is
// replaced by its diagnostic artifact without affecting the others.
package generate

import (
	"context"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/diag"
	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/logger"
)

// Generator produces one artifact per record.
type Generator interface {
	// Name is matched case-insensitively against a record's derive list.
	Name() string
	Generate(td *descriptor.TypeDescriptor) (string, error)
}

// Options configures Run.
type Options struct {
	Generators []Generator
	// Default lists the derives applied to records that request none.
	Default []string
	// Jobs limits parallel generation calls; zero means GOMAXPROCS.
	Jobs int
}

// Section is the outcome of one generation call.
type Section struct {
	Record    string
	Generator string
	Code      string
	// Err is the generation error; Code is empty when it is set.
	Err error
}

// Result holds sections in record order, then generator order.
type Result struct {
	Sections []Section
}

// Err returns the failures of the run, or nil.
func (r *Result) Err() error {
	var f Failures
	for _, s := range r.Sections {
		if s.Err != nil {
			f = append(f, Failure{Record: s.Record, Generator: s.Generator, Err: s.Err})
		}
	}
	if len(f) == 0 {
		return nil
	}
	return f
}

// Failure is one failed generation call.
type Failure struct {
	Record    string
	Generator string
	Err       error
}

// Failures collects the failed calls of a run. It matches
// errors.ErrGeneration.
type Failures []Failure

func (f Failures) Error() string {
	parts := make([]string, len(f))
	for i, x := range f {
		parts[i] = x.Record + " (" + x.Generator + "): " + x.Err.Error()
	}
	noun := "call"
	if len(f) != 1 {
		noun = "calls"
	}
	return strconv.Itoa(len(f)) + " generation " + noun + " failed: " + strings.Join(parts, "; ")
}

// Is reports whether target is errors.ErrGeneration.
func (f Failures) Is(target error) bool {
	return target == errors.ErrGeneration
}

// Unwrap exposes the individual diagnostics.
func (f Failures) Unwrap() []error {
	out := make([]error, len(f))
	for i, x := range f {
		out[i] = x.Err
	}
	return out
}

type task struct {
	record *descriptor.TypeDescriptor
	gen    Generator
}

// Run validates records and runs every requested generator on each.
//
// Invalid input and cancellation return a nil Result. When only generation
// calls fail, Run returns the complete Result together with its Failures,
// so callers can still render every section.
func Run(ctx context.Context, records []*descriptor.TypeDescriptor, opts Options) (*Result, error) {
	tasks, err := plan(records, opts)
	if err != nil {
		return nil, err
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	sections := make([]Section, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(tasks))))

	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			start := time.Now()
			code, err := t.gen.Generate(t.record)
			sections[i] = Section{Record: t.record.Name, Generator: t.gen.Name(), Code: code, Err: err}
			if err != nil {
				sections[i].Code = ""
				logger.Debugw("Generation failed",
					logger.FieldRecord, t.record.Name,
					logger.FieldGenerator, t.gen.Name(),
					logger.FieldError, diag.Format(err, diag.ContextPlain))
				return nil
			}
			logger.Debugw("Generated",
				logger.FieldRecord, t.record.Name,
				logger.FieldGenerator, t.gen.Name(),
				logger.FieldDuration, time.Since(start).Milliseconds())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "generation cancelled")
	}
	res := &Result{Sections: sections}
	return res, res.Err()
}

// plan expands records into generation calls in deterministic order.
func plan(records []*descriptor.TypeDescriptor, opts Options) ([]task, error) {
	var tasks []task
	for _, td := range records {
		if err := td.Validate(); err != nil {
			return nil, err
		}

		derives := td.Derives
		if len(derives) == 0 {
			derives = opts.Default
		}
		for _, d := range derives {
			if lookup(opts.Generators, d) == nil {
				return nil, errors.WithHintf(
					errors.NewInvalidSchemaError("%s: unknown derive %q on %s", td.Location, d, td.Name),
					"known derives: %s", strings.Join(names(opts.Generators), ", "))
			}
		}
		for _, gen := range opts.Generators {
			if requested(derives, gen.Name()) {
				tasks = append(tasks, task{record: td, gen: gen})
			}
		}
	}
	return tasks, nil
}

func lookup(gens []Generator, name string) Generator {
	for _, g := range gens {
		if strings.EqualFold(g.Name(), name) {
			return g
		}
	}
	return nil
}

func requested(derives []string, name string) bool {
	for _, d := range derives {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

func names(gens []Generator) []string {
	out := make([]string, len(gens))
	for i, g := range gens {
		out[i] = g.Name()
	}
	return out
}
