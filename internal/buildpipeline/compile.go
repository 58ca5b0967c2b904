package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"viewc/internal/diag"
	"viewc/internal/driver"
	"viewc/internal/observ"
	"viewc/internal/project"
	"viewc/internal/source"
)

// ErrNoFiles is returned when the target holds no view files.
var ErrNoFiles = errors.New("no view files found")

// CompileRequest configures the shared compilation pipeline.
type CompileRequest struct {
	// Target is a file or a directory scanned with Config.Project.Include.
	Target string
	// BaseDir is what paths are reported relative to; defaults to the
	// project root, then to the target's directory.
	BaseDir string
	Config  project.Config
	// Registry lists manifests in addition to Config's.
	Registry []string
	// Only restricts the run to these files; entries outside Target are
	// ignored. `viewc watch` passes the changed files here.
	Only []string
	// Jobs and MaxDiagnostics override Config when positive.
	Jobs           int
	MaxDiagnostics int
	// Until stops every pass after the named driver stage.
	Until    string
	NoCache  bool
	Progress ProgressSink
	Timer    *observ.Timer
}

// CompileResult captures compilation artefacts and stage timings.
type CompileResult struct {
	Result *driver.Result
	// Files are the compiled files as progress events name them.
	Files   []string
	Timings Timings
}

// Compile lists the target's files and runs the driver over them.
// Diagnostics never turn into an error; callers inspect
// Result.HasErrors.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing compile request")
	}
	if req.Target == "" {
		return result, fmt.Errorf("missing target path")
	}

	paths, err := driver.ListFiles(req.Target, req.Config.Project.Include)
	if err != nil {
		return result, fmt.Errorf("list %s: %w", req.Target, err)
	}
	if req.Only != nil {
		paths = intersect(paths, filterFilesUnderRoot(req.Only, req.Target))
	}
	if len(paths) == 0 {
		return result, fmt.Errorf("%s: %w", req.Target, ErrNoFiles)
	}

	baseDir := resolveBaseDir(req)
	result.Files = DisplayFiles(paths, baseDir)

	timer := req.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}
	opts := driver.Options{
		Jobs:           firstPositive(req.Jobs, req.Config.Project.Jobs),
		MaxDiagnostics: firstPositive(req.MaxDiagnostics, req.Config.Project.MaxDiagnostics),
		Until:          req.Until,
		Timer:          timer,
		Observer:       progressObserver(req.Progress, baseDir),
	}

	var warnings []diag.Diagnostic
	if msg := req.Config.UnknownKeysMessage(); msg != "" {
		warnings = append(warnings, diag.New(diag.SevWarning, diag.ProjUnknownKey, source.Nowhere, msg))
	}
	if req.Config.Cache.Enabled && !req.NoCache && req.Until == "" {
		cache, err := driver.OpenCache(req.Config.Abs(req.Config.Cache.Dir))
		if err != nil {
			warnings = append(warnings, diag.New(diag.SevWarning, diag.IOCacheError, source.Nowhere,
				fmt.Sprintf("result cache disabled: %v", err)))
		} else {
			opts.Cache = cache
		}
	}

	registryPaths := append(req.Config.RegistryPaths(), req.Registry...)
	res, err := driver.Compile(ctx, baseDir, registryPaths, paths, opts)
	if res != nil {
		for _, w := range warnings {
			res.RegistryBag.Add(w)
		}
	}
	result.Result = res
	recordCompileTimings(&result, timer)
	if err != nil {
		if req.Progress != nil {
			req.Progress.OnEvent(Event{Stage: StageCheck, Status: StatusError, Err: err})
		}
		return result, err
	}
	return result, nil
}

func resolveBaseDir(req *CompileRequest) string {
	if req.BaseDir != "" {
		return req.BaseDir
	}
	if req.Config.Root != "" {
		return req.Config.Root
	}
	if info, err := os.Stat(req.Target); err == nil && !info.IsDir() {
		return filepath.Dir(req.Target)
	}
	return req.Target
}

// recordCompileTimings splits the summed stage durations into parse and
// everything after it.
func recordCompileTimings(result *CompileResult, timer *observ.Timer) {
	var parse, check time.Duration
	for _, st := range timer.Stages() {
		if st.Name == driver.StageParse {
			parse += st.Dur
			continue
		}
		check += st.Dur
	}
	result.Timings.Set(StageParse, parse)
	result.Timings.Set(StageCheck, check)
}

func intersect(paths, only []string) []string {
	want := make(map[string]struct{}, len(only))
	for _, p := range only {
		if abs, err := filepath.Abs(p); err == nil {
			want[abs] = struct{}{}
		}
	}
	out := make([]string, 0, len(only))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if _, ok := want[abs]; ok {
			out = append(out, p)
		}
	}
	return out
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
