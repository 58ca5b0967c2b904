package lsp

import (
	"fmt"
	"sort"
	"time"

	"viewc/internal/diag"
	"viewc/internal/source"
)

const diagnosticSource = "viewc"

// scheduleDiagnostics marks uris for analysis and restarts the debounce
// timer.
func (s *Server) scheduleDiagnostics(uris ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, uri := range uris {
		s.dirty[uri] = struct{}{}
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, s.runDiagnostics)
}

type analysisJob struct {
	uri     string
	path    string
	text    string
	version int
}

// runDiagnostics analyzes the dirty documents and republishes.
func (s *Server) runDiagnostics() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.Lock()
	ctx := s.baseCtx
	jobs := make([]analysisJob, 0, len(s.dirty))
	for uri := range s.dirty {
		doc, ok := s.docs[uri]
		if !ok {
			continue
		}
		path := uriToPath(uri)
		if path == "" {
			continue
		}
		jobs = append(jobs, analysisJob{uri: uri, path: path, text: doc.text, version: doc.version})
	}
	clear(s.dirty)
	maxDiagnostics := s.maxDiagnostics
	s.mu.Unlock()

	for _, job := range jobs {
		start := time.Now()
		a, err := s.analyze(ctx, job.path, []byte(job.text), maxDiagnostics)
		if err != nil {
			s.logf("analysis of %s failed: %v", job.path, err)
			continue
		}
		a.URI, a.Version = job.uri, job.version
		s.mu.Lock()
		// Drop results for documents edited or closed meanwhile.
		if doc, ok := s.docs[job.uri]; ok && doc.version == job.version {
			s.analyses[job.uri] = a
		}
		trace := s.traceLSP
		s.mu.Unlock()
		if trace {
			s.logf("analyzed %s v%d in %s: %d diagnostics", job.path, job.version, time.Since(start), len(a.Diagnostics))
		}
	}
	s.publishAll()
}

type publication struct {
	version *int
	items   []lspDiagnostic
	seen    map[string]struct{}
}

// publishAll sends the diagnostics of every analysis, grouped by the file
// they point into, and clears files that no longer have any.
func (s *Server) publishAll() {
	s.mu.Lock()
	grouped := make(map[string]*publication)
	get := func(uri string) *publication {
		p, ok := grouped[uri]
		if !ok {
			p = &publication{seen: make(map[string]struct{})}
			grouped[uri] = p
		}
		return p
	}
	for uri, a := range s.analyses {
		own := get(uri)
		v := a.Version
		own.version = &v
		for _, d := range a.Diagnostics {
			target, file := uri, a.File
			if f := a.fileOf(d.Primary); f != nil && f.ID != a.File.ID {
				target, file = pathToURI(f.Path), f
			}
			item := convertDiagnostic(a, file, d)
			p := get(target)
			// Manifest diagnostics arrive once per open document.
			key := item.Code + "\x00" + item.Message + "\x00" + rangeKey(item.Range)
			if _, dup := p.seen[key]; dup {
				continue
			}
			p.seen[key] = struct{}{}
			p.items = append(p.items, item)
		}
	}
	var stale []string
	for uri := range s.published {
		if _, ok := grouped[uri]; !ok {
			stale = append(stale, uri)
		}
	}
	s.published = make(map[string]struct{}, len(grouped))
	for uri := range grouped {
		s.published[uri] = struct{}{}
	}
	s.mu.Unlock()

	uris := make([]string, 0, len(grouped))
	for uri := range grouped {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		p := grouped[uri]
		if err := s.sendPublish(uri, p.version, p.items); err != nil {
			s.logf("failed to publish diagnostics: %v", err)
		}
	}
	sort.Strings(stale)
	for _, uri := range stale {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.published))
	for uri := range s.published {
		uris = append(uris, uri)
	}
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	sort.Strings(uris)
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

func rangeKey(r lspRange) string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Character, r.End.Line, r.End.Character)
}

// convertDiagnostic maps d onto file. Diagnostics without a location sit
// at the start of the document.
func convertDiagnostic(a *Analysis, file *source.File, d diag.Diagnostic) lspDiagnostic {
	out := lspDiagnostic{
		Severity: lspSeverity(d.Severity),
		Code:     d.Code.ID(),
		Source:   diagnosticSource,
		Message:  d.Message,
	}
	if d.Primary.HasFile() {
		out.Range = rangeForSpan(file, d.Primary)
	}
	for _, note := range d.Notes {
		nf := a.fileOf(note.Span)
		if nf == nil {
			out.Message += "\nnote: " + note.Msg
			continue
		}
		out.RelatedInformation = append(out.RelatedInformation, diagnosticRelatedInformation{
			Location: location{URI: pathToURI(nf.Path), Range: rangeForSpan(nf, note.Span)},
			Message:  note.Msg,
		})
	}
	return out
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	default:
		return 3
	}
}
