package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"viewc/internal/diag"
	"viewc/internal/source"
)

// Manifest is the on-disk registry declaration, TOML or YAML.
type Manifest struct {
	Component map[string]ComponentSpec `toml:"component" yaml:"component"`
	Slot      map[string]ComponentSpec `toml:"slot" yaml:"slot"`
	Struct    map[string]StructSpec    `toml:"struct" yaml:"struct"`
	Scope     map[string]string        `toml:"scope" yaml:"scope"`
}

var lineRe = regexp.MustCompile(`line (\d+)`)

// Decode parses file as a manifest (YAML for .yaml/.yml, TOML otherwise)
// and adds its declarations. Problems are reported to r; it returns false
// when the file could not be decoded at all.
func (b *Builder) Decode(file *source.File, r diag.Reporter) bool {
	if r == nil {
		r = diag.NopReporter{}
	}
	var (
		m  Manifest
		ok bool
	)
	switch strings.ToLower(filepath.Ext(file.Path)) {
	case ".yaml", ".yml":
		ok = decodeYAML(file, &m, r)
	default:
		ok = decodeTOML(file, &m, r)
	}
	if !ok {
		return false
	}

	report := func(err error) {
		for _, e := range flatten(err) {
			sp := file.Span().Head()
			var de *DeclError
			if errors.As(e, &de) && de.Text != "" {
				sp = locate(file, de.Text)
			}
			diag.ReportError(r, diag.ProjInvalidRegistry, sp, e.Error()).Emit()
		}
	}
	for _, name := range sortedSpecKeys(m.Slot) {
		report(b.addComponent(name, m.Slot[name], true, locateDecl(file, "slot", name)))
	}
	for _, name := range sortedSpecKeys(m.Component) {
		report(b.addComponent(name, m.Component[name], false, locateDecl(file, "component", name)))
	}
	for _, name := range sortedSpecKeys(m.Struct) {
		report(b.AddStruct(name, m.Struct[name]))
	}
	for _, name := range sortedSpecKeys(m.Scope) {
		report(b.AddScope(name, m.Scope[name]))
	}
	return true
}

func decodeTOML(file *source.File, m *Manifest, r diag.Reporter) bool {
	meta, err := toml.Decode(string(file.Content), m)
	if err != nil {
		diag.ReportError(r, diag.ProjInvalidManifest, tomlErrorSpan(file, err),
			fmt.Sprintf("%s: %v", file.Path, err)).Emit()
		return false
	}
	for _, key := range meta.Undecoded() {
		last := key[len(key)-1]
		diag.ReportWarning(r, diag.ProjUnknownKey, locate(file, last),
			fmt.Sprintf("unknown key %q", key.String())).Emit()
	}
	return true
}

func decodeYAML(file *source.File, m *Manifest, r diag.Reporter) bool {
	dec := yaml.NewDecoder(bytes.NewReader(file.Content))
	dec.KnownFields(true)
	err := dec.Decode(m)
	if err == nil || (errors.Is(err, io.EOF) && len(bytes.TrimSpace(file.Content)) == 0) {
		return true
	}
	var terr *yaml.TypeError
	if !errors.As(err, &terr) {
		diag.ReportError(r, diag.ProjInvalidManifest, lineSpanOf(file, err.Error()),
			fmt.Sprintf("%s: %v", file.Path, err)).Emit()
		return false
	}
	ok := true
	for _, msg := range terr.Errors {
		sp := lineSpanOf(file, msg)
		if strings.Contains(msg, "not found in type") {
			diag.ReportWarning(r, diag.ProjUnknownKey, sp, "unknown key: "+msg).Emit()
			continue
		}
		ok = false
		diag.ReportError(r, diag.ProjInvalidManifest, sp, msg).Emit()
	}
	return ok
}

// tomlErrorSpan places a TOML parse error on the bytes the decoder blames.
// A blamed newline or blank stands for the end of its line, so the whole
// line is used instead.
func tomlErrorSpan(file *source.File, err error) source.Span {
	var pe toml.ParseError
	if !errors.As(err, &pe) {
		return lineSpanOf(file, err.Error())
	}
	start, end := pe.Position.Start, pe.Position.Start+pe.Position.Len
	if start < 0 || start >= end || end > len(file.Content) {
		return lineSpan(file, pe.Position.Line)
	}
	if len(bytes.TrimSpace(file.Content[start:end])) > 0 {
		return spanAt(file, start, end-start)
	}
	return lineSpan(file, bytes.Count(file.Content[:start], []byte{'\n'})+1)
}

// lineSpanOf places a decoder message carrying "line N" on that line.
func lineSpanOf(file *source.File, msg string) source.Span {
	if sm := lineRe.FindStringSubmatch(msg); sm != nil {
		if n, err := strconv.Atoi(sm[1]); err == nil {
			return lineSpan(file, n)
		}
	}
	return file.Span().Head()
}

func lineSpan(file *source.File, line int) source.Span {
	sp := file.Span()
	if line < 1 || line > len(file.LineIdx)+1 {
		return sp.Head()
	}
	start := uint32(0)
	if line > 1 {
		start = file.LineIdx[line-2] + 1
	}
	end := sp.End
	if line-1 < len(file.LineIdx) {
		end = file.LineIdx[line-1]
	}
	if start > end {
		return sp.Head()
	}
	return source.Span{File: file.ID, Start: start, End: end}
}

// locate finds the first occurrence of text in the file. Quoted
// occurrences win so that type strings land on their literal.
func locate(file *source.File, text string) source.Span {
	for _, needle := range []string{strconv.Quote(text), text} {
		if i := bytes.Index(file.Content, []byte(needle)); i >= 0 {
			if needle[0] == '"' && len(needle) > 1 {
				i++
				needle = text
			}
			return spanAt(file, i, len(needle))
		}
	}
	return file.Span().Head()
}

func locateDecl(file *source.File, table, name string) source.Span {
	for _, needle := range []string{"[" + table + "." + name + "]", name + ":"} {
		if i := bytes.Index(file.Content, []byte(needle)); i >= 0 {
			if needle[0] == '[' {
				i += len(table) + 2
			}
			return spanAt(file, i, len(name))
		}
	}
	return locate(file, name)
}

func spanAt(file *source.File, off, n int) source.Span {
	start, err := safecast.Conv[uint32](off)
	if err != nil {
		panic(fmt.Errorf("manifest offset overflow: %w", err))
	}
	end, err := safecast.Conv[uint32](off + n)
	if err != nil {
		panic(fmt.Errorf("manifest offset overflow: %w", err))
	}
	return source.Span{File: file.ID, Start: start, End: end}
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

func sortedSpecKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Load decodes and freezes a single manifest. It fails on the first error
// diagnostic; warnings are discarded.
func Load(name string, data []byte) (*Registry, error) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(name, data))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	b := NewBuilder(rep)
	b.Decode(file, rep)
	reg, _ := b.Freeze()
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			return nil, fmt.Errorf("%s: %s", name, d.Message)
		}
	}
	return reg, nil
}
