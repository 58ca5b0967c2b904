// Package buildpipeline runs the compiler over a project target and writes
// its outputs, reporting progress to a sink.
package buildpipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"viewc/internal/driver"
	"viewc/internal/ir"
	"viewc/internal/project"
)

// ErrDiagnostics is returned by Build when errors were reported and
// AllowDiagnosticsError is off.
var ErrDiagnostics = errors.New("diagnostics reported errors")

// BuildRequest configures output generation for a compilation.
type BuildRequest struct {
	CompileRequest
	// OutputDir defaults to Config.Output.Dir resolved against the
	// project root.
	OutputDir string
	// Format is one of project.FormatText, FormatJSON, FormatMsgpack;
	// empty means Config.Output.Format.
	Format string
	// AllowDiagnosticsError writes outputs even when errors were
	// reported. Erroneous nodes are emitted as placeholders.
	AllowDiagnosticsError bool
}

// BuildResult captures build artefacts and timings.
type BuildResult struct {
	Result *driver.Result
	// Outputs are the written files, in unit order.
	Outputs []string
	Timings Timings
}

// Build compiles the target and writes one output file per unit.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	reqCopy := *req
	req = &reqCopy

	format := req.Format
	if format == "" {
		format = req.Config.Output.Format
	}
	if format == "" {
		format = project.FormatText
	}
	switch format {
	case project.FormatText:
		// The cache keeps exported nodes only; text needs the passes.
		req.NoCache = true
	case project.FormatJSON, project.FormatMsgpack:
	default:
		return result, fmt.Errorf("%w %q", project.ErrBadFormat, format)
	}

	compileRes, err := Compile(ctx, &req.CompileRequest)
	result.Result = compileRes.Result
	result.Timings = compileRes.Timings
	if err != nil {
		return result, err
	}
	if compileRes.Result.HasErrors() && !req.AllowDiagnosticsError {
		return result, ErrDiagnostics
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = req.Config.Abs(req.Config.Output.Dir)
	}
	if outputDir == "" {
		outputDir = "build"
	}

	base := absBase(resolveBaseDir(&req.CompileRequest))
	emitStart := time.Now()
	for _, u := range compileRes.Result.Units {
		if u.Passes == nil && u.Outputs == nil {
			continue
		}
		name := displayPath(u.Path, base)
		emit := func(ev Event) {
			if req.Progress != nil {
				ev.File, ev.Stage = name, StageEmit
				req.Progress.OnEvent(ev)
			}
		}
		emit(Event{Status: StatusWorking})
		start := time.Now()
		out := filepath.Join(outputDir, filepath.FromSlash(name)+extension(format))
		if err := writeUnit(out, u, compileRes.Result, format); err != nil {
			err = fmt.Errorf("failed to write build output %q: %w", out, err)
			emit(Event{Status: StatusError, Err: err})
			return result, err
		}
		emit(Event{Status: StatusDone, Elapsed: time.Since(start)})
		result.Outputs = append(result.Outputs, out)
	}
	result.Timings.Set(StageEmit, time.Since(emitStart))
	return result, nil
}

func extension(format string) string {
	switch format {
	case project.FormatJSON:
		return ".json"
	case project.FormatMsgpack:
		return ".msgpack"
	default:
		return ".ir"
	}
}

func writeUnit(path string, u *driver.Unit, res *driver.Result, format string) error {
	var buf bytes.Buffer
	switch format {
	case project.FormatText:
		file := res.FileSet.Get(u.File)
		for i, p := range u.Passes {
			if i > 0 {
				buf.WriteByte('\n')
			}
			lc := file.LineCol(p.Invocation.Span.Start)
			fmt.Fprintf(&buf, "// %s:%d:%d\n", filepath.ToSlash(u.Path), lc.Line, lc.Col)
			if p.Fatal {
				buf.WriteString("// not compiled\n")
				continue
			}
			if err := ir.Fprint(&buf, p.IR, ir.PrintOptions{}); err != nil {
				return err
			}
		}
	case project.FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(nonNil(u.Outputs)); err != nil {
			return err
		}
	case project.FormatMsgpack:
		if err := msgpack.NewEncoder(&buf).Encode(nonNil(u.Outputs)); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// nonNil keeps a fatal pass's nil entry out of the encoded list.
func nonNil(nodes []*ir.Node) []*ir.Node {
	out := make([]*ir.Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// DecodeOutput reads a msgpack file written by Build.
func DecodeOutput(data []byte) ([]*ir.Node, error) {
	var nodes []*ir.Node
	if err := msgpack.Unmarshal(data, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}
