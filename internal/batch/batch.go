// Package batch fans the per-method analysis pipeline (DCE and
// SimplifyCFG to a fixpoint, then Forest) out across many independent
// method bodies concurrently. Nothing in the pipeline shares state across
// bodies — each goroutine owns exactly one *ir.MethodBody end to end, the
// concurrency model spec.md §5 describes in prose and this package turns
// into actual code, mirroring the teacher's TokenizeDir/ParseDir sharding.
package batch

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"ilcore/internal/alias"
	"ilcore/internal/forest"
	"ilcore/internal/ir"
	"ilcore/internal/observ"
	"ilcore/internal/opt"
	"ilcore/internal/trace"
)

// Options tunes the driver and the passes it runs on each body. The zero
// value is not usable; call DefaultOptions.
type Options struct {
	// Jobs bounds concurrency; Jobs <= 0 means runtime.GOMAXPROCS(0), the
	// teacher's own default for an unset job count.
	Jobs int

	Forest forest.Options
	Opt    opt.Options

	Tracer trace.Tracer

	// Timed requests a per-body observ.Report in Result.Timing. Off by
	// default: building a Timer and calling time.Now() on every phase
	// boundary is wasted work for a caller that only wants Result.Err.
	Timed bool
}

// DefaultOptions returns GOMAXPROCS-bounded concurrency, the default pass
// tunables, and no tracing or timing.
func DefaultOptions() Options {
	return Options{
		Jobs:   0,
		Forest: forest.DefaultOptions(),
		Opt:    opt.DefaultOptions(),
		Tracer: trace.Nop,
	}
}

// Item names one method body for reporting; Name is opaque to this
// package and only ever copied into the matching Result.
type Item struct {
	Name string
	Body *ir.MethodBody
}

// Result reports what the pipeline did to one Item's body. Forest is nil
// if Err is non-nil: a body that failed SSA validation never reaches the
// classification stage.
type Result struct {
	Name   string
	Forest *forest.Info
	Opt    opt.Result
	Timing *observ.Report
	Err    error
}

// Run drives one DCE+SimplifyCFG+Forest pipeline over every item in
// items, one goroutine per item, and returns a Result slice
// index-aligned with items. A body's own failure (failed validation) is
// carried in that body's Result, not returned as Run's error; Run's own
// error is only ever ctx.Err() from a caller-initiated cancellation.
func Run(ctx context.Context, items []Item, opts Options) ([]Result, error) {
	if opts.Tracer == nil {
		opts.Tracer = trace.FromContext(ctx)
	}
	span := trace.Begin(opts.Tracer, trace.ScopeBatch, "batch.Run", 0)
	defer span.End("")

	if len(items) == 0 {
		return nil, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(items))

	// Every runOne span nests under this call's span: a trace consumer
	// can tell which batch.Run a given method body's events belong to
	// even though each item runs on its own goroutine.
	ctx = trace.WithTracer(ctx, opts.Tracer)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(items)))

	for i, item := range items {
		g.Go(func(i int, item Item) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				results[i] = runOne(gctx, opts, item)
				return nil
			}
		}(i, item))
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// runOne runs the pipeline over a single item's body; it never touches
// any other item's body, so Run's caller is free to give every item a
// distinct goroutine without synchronization beyond the index-aligned
// results slice.
func runOne(ctx context.Context, opts Options, item Item) Result {
	var timer *observ.Timer
	begin := func(string) int { return -1 }
	end := func(int, string) {}
	if opts.Timed {
		timer = observ.NewTimer()
		begin = timer.Begin
		end = timer.End
	}

	parent := trace.CurrentSpan(ctx).SpanID
	span := trace.BeginMethod(opts.Tracer, trace.ScopeMethod, "batch.runOne:"+item.Name, item.Name, parent)
	defer span.End("")

	res := Result{Name: item.Name}

	validateIdx := begin("validate")
	if err := item.Body.Validate(); err != nil {
		end(validateIdx, "invalid")
		res.Err = err
		return res
	}
	end(validateIdx, "")

	// DCE/SimplifyCFG run first: Forest's classification is only valid
	// against the body it was computed over, and a pass that still has
	// dead blocks or foldable branches left to remove would just have
	// its Forest result invalidated by the next edit. Codegen consumes
	// Forest last, against the stable post-fixpoint body.
	optIdx := begin("opt")
	res.Opt = opt.RunToFixpoint(item.Body, opts.Opt)
	end(optIdx, "")

	forestIdx := begin("forest")
	aq := alias.New(item.Body)
	res.Forest = forest.Analyze(item.Body, aq, opts.Forest)
	end(forestIdx, "")

	if timer != nil {
		report := timer.Report()
		res.Timing = &report
	}
	return res
}

// Summarize rolls up every non-nil Timing report in results into one
// observ.Aggregate, the cross-body view of where a Timed Run spent its
// wall time (e.g. "opt took 40% of this run" across every item, not just
// one). Results with Timing == nil, including every failed-validation
// item, are skipped.
func Summarize(results []Result) observ.Aggregate {
	reports := make([]observ.Report, 0, len(results))
	for _, res := range results {
		if res.Timing != nil {
			reports = append(reports, *res.Timing)
		}
	}
	return observ.MergeReports(reports)
}
