package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"viewc/internal/diag"
	"viewc/internal/host"
	"viewc/internal/ir"
	"viewc/internal/observ"
	"viewc/internal/parser"
	"viewc/internal/registry"
	"viewc/internal/source"
	"viewc/internal/trace"
)

// Options configures a compilation over several files.
type Options struct {
	// Jobs bounds the number of files compiled at once; <= 0 means
	// GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps each file's bag; <= 0 is unlimited.
	MaxDiagnostics int
	// Until stops every pass after the named stage.
	Until string
	Cache *Cache
	Timer *observ.Timer
	// Observer receives progress events. It is called from worker
	// goroutines.
	Observer Observer
}

// Unit is one compiled file.
type Unit struct {
	Path   string
	File   source.FileID
	Passes []*Pass
	Bag    *diag.Bag
	// Outputs holds the exported IR per invocation; nil for a fatal pass.
	Outputs []*ir.Node
	Cached  bool
}

// Result is a whole compilation.
type Result struct {
	FileSet  *source.FileSet
	Registry *registry.Registry
	// RegistryBag holds the diagnostics of the registry manifests.
	RegistryBag *diag.Bag
	Units       []*Unit
}

// Diagnostics returns every diagnostic: registry first, then per file in
// file order.
func (r *Result) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	if r.RegistryBag != nil {
		out = append(out, r.RegistryBag.Items()...)
	}
	for _, u := range r.Units {
		out = append(out, u.Bag.Items()...)
	}
	return out
}

// HasErrors reports whether any diagnostic is an error.
func (r *Result) HasErrors() bool {
	if r.RegistryBag != nil && r.RegistryBag.HasErrors() {
		return true
	}
	for _, u := range r.Units {
		if u.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// ListFiles returns the files under root whose base name matches one of
// include, sorted. A root naming a file is returned as is.
func ListFiles(root string, include []string) ([]string, error) {
	if len(include) == 0 {
		include = []string{"*.view"}
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			files = append(files, path)
			return nil
		}
		for _, pat := range include {
			if ok, _ := filepath.Match(pat, d.Name()); ok {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// LoadRegistry decodes the manifests into fileSet and freezes them into
// one registry. Problems land in the returned bag; the registry is always
// usable.
func LoadRegistry(fileSet *source.FileSet, paths []string) (*registry.Registry, *diag.Bag) {
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	b := registry.NewBuilder(rep)
	for _, path := range paths {
		id, err := fileSet.Load(path)
		if err != nil {
			diag.ReportError(rep, diag.IOLoadFileError, source.Nowhere, fmt.Sprintf("failed to load registry: %v", err)).Emit()
			continue
		}
		b.Decode(fileSet.Get(id), rep)
	}
	reg, _ := b.Freeze()
	bag.Sort()
	return reg, bag
}

// CompileFiles loads paths into fileSet and compiles them in parallel
// against reg. Results are in path order; a file that fails to load gets
// an IO diagnostic instead of passes. The returned error is only the
// context's.
func CompileFiles(ctx context.Context, fileSet *source.FileSet, paths []string, reg *registry.Registry, opts Options) ([]*Unit, error) {
	ctx, sp := trace.Start(ctx, trace.ScopeCommand, "compile")
	defer sp.End(fmt.Sprintf("%d files", len(paths)))

	ids := make([]source.FileID, len(paths))
	loadErrs := make([]error, len(paths))
	for i, path := range paths {
		ids[i], loadErrs[i] = fileSet.Load(path)
	}
	for _, path := range paths {
		opts.Observer.emit(Event{Path: path, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	units := make([]*Unit, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if loadErrs[i] != nil {
				bag := diag.NewBag(opts.MaxDiagnostics)
				diag.ReportError(diag.BagReporter{Bag: bag}, diag.IOLoadFileError, source.Nowhere,
					fmt.Sprintf("failed to load file: %v", loadErrs[i])).Emit()
				units[i] = &Unit{Path: path, Bag: bag}
				opts.Observer.emit(Event{Path: path, Status: StatusError, Err: loadErrs[i]})
				return nil
			}
			units[i] = CompileFile(gctx, fileSet.Get(ids[i]), reg, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return units, err
	}
	return units, nil
}

// CompileFile compiles every invocation of file. The file hash, registry
// digest and diagnostics cap key the cache; a hit skips the pipeline.
func CompileFile(ctx context.Context, file *source.File, reg *registry.Registry, opts Options) *Unit {
	ctx, sp := trace.Start(ctx, trace.ScopeFile, file.Path)
	start := time.Now()
	opts.Observer.emit(Event{Path: file.Path, Status: StatusWorking})

	u := &Unit{Path: file.Path, File: file.ID}
	if reg == nil {
		reg, _ = registry.NewBuilder(nil).Freeze()
	}
	key := Key(file, reg.Digest(), opts.MaxDiagnostics)
	useCache := opts.Cache != nil && opts.Until == ""
	if useCache {
		if cu, ok, err := opts.Cache.Get(key); err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache", err.Error(), sp.ID())
		} else if ok {
			u.Bag = diag.NewBag(opts.MaxDiagnostics)
			for _, d := range cu.Restore(file.ID) {
				u.Bag.Add(d)
			}
			u.Outputs = cu.Outputs
			u.Cached = true
			sp.End("cached")
			opts.Observer.emit(Event{Path: file.Path, Status: StatusDone, Cached: true, Elapsed: time.Since(start)})
			return u
		}
	}

	u.Bag = diag.NewBag(opts.MaxDiagnostics)
	col := diag.NewCollector(u.Bag)
	maxErrors, err := safecast.Conv[uint](max(opts.MaxDiagnostics, 0))
	if err != nil {
		maxErrors = 0
	}
	popts := PassOptions{
		Until:  opts.Until,
		Timer:  opts.Timer,
		Parser: parser.Options{MaxErrors: maxErrors},
		OnStage: func(stage string, elapsed time.Duration) {
			opts.Observer.emit(Event{Path: file.Path, Stage: stage, Status: StatusWorking, Elapsed: elapsed})
		},
	}
	for _, inv := range host.Extract(file, col) {
		p := RunPass(ctx, file, inv, reg, col, popts)
		u.Passes = append(u.Passes, p)
		u.Outputs = append(u.Outputs, ir.Export(p.IR, file))
	}
	u.Bag.Sort()

	if useCache && ctx.Err() == nil {
		cu := &CachedUnit{Path: file.Path, FileID: file.ID, Diagnostics: u.Bag.Items(), Outputs: u.Outputs}
		if err := opts.Cache.Put(key, cu); err != nil {
			diag.ReportWarning(col, diag.IOCacheError, source.Nowhere, fmt.Sprintf("result cache: %v", err)).Emit()
		}
	}

	status := StatusDone
	if u.Bag.HasErrors() {
		status = StatusError
	}
	sp.End(fmt.Sprintf("%d diagnostics", u.Bag.Len()))
	opts.Observer.emit(Event{Path: file.Path, Status: status, Elapsed: time.Since(start)})
	return u
}

// Compile loads the registry manifests and compiles paths. It is the
// entry point the commands use.
func Compile(ctx context.Context, baseDir string, registryPaths, paths []string, opts Options) (*Result, error) {
	fileSet := source.NewFileSetWithBase(baseDir)
	reg, regBag := LoadRegistry(fileSet, registryPaths)
	units, err := CompileFiles(ctx, fileSet, paths, reg, opts)
	return &Result{FileSet: fileSet, Registry: reg, RegistryBag: regBag, Units: units}, err
}

// CompileSource compiles an in-memory file. Tests and `viewc check -`
// use it.
func CompileSource(ctx context.Context, name string, src []byte, reg *registry.Registry, opts Options) (*source.FileSet, *Unit) {
	fileSet := source.NewFileSet()
	file := fileSet.Get(fileSet.AddVirtual(name, src))
	return fileSet, CompileFile(ctx, file, reg, opts)
}
