package driver

import (
	"context"
	"fmt"
	"time"

	"viewc/internal/ast"
	"viewc/internal/classify"
	"viewc/internal/diag"
	"viewc/internal/host"
	"viewc/internal/ir"
	"viewc/internal/lower"
	"viewc/internal/observ"
	"viewc/internal/parser"
	"viewc/internal/registry"
	"viewc/internal/resolve"
	"viewc/internal/source"
	"viewc/internal/trace"
	"viewc/internal/types"
)

// Stage names, as they appear in traces, timings and progress events.
const (
	StageParse    = "parse"
	StageClassify = "classify"
	StageResolve  = "resolve"
	StageLower    = "lower"
	StageCheck    = "check"
	StageLint     = "lint"
)

// Stages lists the pass stages in execution order.
var Stages = []string{StageParse, StageClassify, StageResolve, StageLower, StageCheck, StageLint}

// Pass is the outcome of compiling one invocation.
type Pass struct {
	Invocation host.Invocation
	View       *ast.View
	Resolved   *resolve.Result
	IR         *ir.Expr
	// Type is what the checked view evaluates to.
	Type *types.Type
	// Fatal is set when the body could not be parsed; nothing past the
	// parser ran.
	Fatal bool
}

// PassOptions tunes RunPass.
type PassOptions struct {
	// Until stops the pass after the named stage. Empty runs everything.
	Until  string
	Timer  *observ.Timer
	Parser parser.Options
	// OnStage is called after each stage with its duration.
	OnStage func(stage string, elapsed time.Duration)
}

// RunPass compiles one invocation of file. Every stage reports into col,
// which also tells the lowering which spans already carry an error.
func RunPass(ctx context.Context, file *source.File, inv host.Invocation, reg *registry.Registry, col *diag.Collector, opts PassOptions) *Pass {
	p := &Pass{Invocation: inv}
	ctx, sp := trace.Start(ctx, trace.ScopeInvocation, fmt.Sprintf("%s:%d", file.Path, file.LineCol(inv.Span.Start).Line))
	defer sp.End("")

	stage := func(name string, f func()) bool {
		if ctx.Err() != nil {
			return false
		}
		_, ssp := trace.Start(ctx, trace.ScopeStage, name)
		start := time.Now()
		f()
		elapsed := time.Since(start)
		ssp.End("")
		opts.Timer.Add(name, elapsed)
		if opts.OnStage != nil {
			opts.OnStage(name, elapsed)
		}
		return opts.Until != name
	}

	popts := opts.Parser
	popts.Reporter = col
	cont := stage(StageParse, func() {
		res := parser.Parse(file, inv.Body, popts)
		p.View, p.Fatal = res.View, res.Fatal
	})
	if !cont || p.Fatal {
		return p
	}
	cont = stage(StageClassify, func() { classify.Classify(p.View, col) })
	if !cont {
		return p
	}
	cont = stage(StageResolve, func() { p.Resolved = resolve.Resolve(p.View, reg, col) })
	if !cont {
		return p
	}
	cont = stage(StageLower, func() { p.IR = lower.Lower(p.Resolved, col) })
	if !cont {
		return p
	}
	cont = stage(StageCheck, func() { p.Type = ir.Check(p.IR, reg, col) })
	if !cont {
		return p
	}
	stage(StageLint, func() { ir.Lint(p.IR, col) })
	return p
}
