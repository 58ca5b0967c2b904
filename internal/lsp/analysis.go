package lsp

import (
	"context"
	"path/filepath"

	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/driver"
	"viewc/internal/project"
	"viewc/internal/registry"
	"viewc/internal/resolve"
	"viewc/internal/source"
)

// Analysis is the compiled state of one open document.
type Analysis struct {
	URI      string
	Version  int
	FileSet  *source.FileSet
	File     *source.File
	Registry *registry.Registry
	Unit     *driver.Unit
	// Diagnostics holds the document's diagnostics followed by those of the
	// registry manifests it was compiled against.
	Diagnostics []diag.Diagnostic
}

// AnalyzeFunc compiles text as the document at path.
type AnalyzeFunc func(ctx context.Context, path string, text []byte, maxDiagnostics int) (*Analysis, error)

// Analyze compiles text against the registry of the project enclosing
// path. Without a viewc.toml the registry is empty and every component
// is reported unknown.
func Analyze(ctx context.Context, path string, text []byte, maxDiagnostics int) (*Analysis, error) {
	cfg, found, err := project.Discover(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if !found {
		cfg = project.Default()
	}
	if maxDiagnostics <= 0 {
		maxDiagnostics = cfg.Project.MaxDiagnostics
	}
	fileSet := source.NewFileSetWithBase(cfg.Root)
	reg, regBag := driver.LoadRegistry(fileSet, cfg.RegistryPaths())
	file := fileSet.Get(fileSet.AddVirtual(path, text))
	unit := driver.CompileFile(ctx, file, reg, driver.Options{MaxDiagnostics: maxDiagnostics})

	diags := append(unit.Bag.Items(), regBag.Items()...)
	if msg := cfg.UnknownKeysMessage(); msg != "" {
		diags = append(diags, diag.New(diag.SevWarning, diag.ProjUnknownKey, source.Nowhere, msg))
	}
	return &Analysis{FileSet: fileSet, File: file, Registry: reg, Unit: unit, Diagnostics: diags}, nil
}

// fileOf returns the file a span points into, or nil.
func (a *Analysis) fileOf(span source.Span) *source.File {
	if !span.HasFile() || int(span.File) >= a.FileSet.Len() {
		return nil
	}
	return a.FileSet.Get(span.File)
}

// hit is what the cursor is on.
type hit struct {
	pass *driver.Pass
	// node is the innermost tag whose name or attribute is under the cursor.
	node    *ast.Node
	attr    *ast.Attr
	binding *ast.Binding
	// span is the range the hit covers, for hover highlighting.
	span source.Span
}

func (h hit) info() *resolve.Info {
	if h.pass == nil || h.pass.Resolved == nil || h.node == nil {
		return &resolve.Info{}
	}
	return h.pass.Resolved.Of(h.node)
}

// component returns the resolved descriptor of the hit tag.
func (h hit) component() *registry.Component {
	return h.info().Component
}

// locate finds the tag name, attribute key or `let:` binding at off.
func (a *Analysis) locate(off uint32) hit {
	var h hit
	for _, pass := range a.Unit.Passes {
		if pass.View == nil || !touches(pass.Invocation.Span, off) {
			continue
		}
		ast.Inspect(pass.View.Root, func(n *ast.Node) bool {
			if !touches(n.Span, off) {
				return false
			}
			if !n.IsTag() {
				return true
			}
			switch {
			case touches(n.NameSpan, off):
				h = hit{pass: pass, node: n, span: n.NameSpan}
			case touches(n.CloseSpan, off):
				h = hit{pass: pass, node: n, span: n.CloseSpan}
			}
			for _, attr := range n.Attrs {
				for i := range attr.Idents {
					if b := &attr.Idents[i]; touches(b.Span, off) {
						h = hit{pass: pass, node: n, attr: attr, binding: b, span: b.Span}
					}
				}
				if h.binding == nil && touches(attr.KeySpan, off) {
					h = hit{pass: pass, node: n, attr: attr, span: attr.KeySpan}
				}
			}
			return true
		})
	}
	return h
}

// bindingType finds the type the resolver gave binding b.
func (h hit) bindingType() (resolve.Binding, bool) {
	if h.binding == nil {
		return resolve.Binding{}, false
	}
	for _, b := range h.info().Bindings {
		if b.Name == h.binding.Name && b.Span == h.binding.Span {
			return b, true
		}
	}
	return resolve.Binding{}, false
}
