package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"viewc/internal/diag"
	"viewc/internal/source"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name,omitempty"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string          `json:"ruleId"`
	RuleIndex        int             `json:"ruleIndex"`
	Level            string          `json:"level"`
	Message          sarifMessage    `json:"message"`
	Locations        []sarifLocation `json:"locations,omitempty"`
	RelatedLocations []sarifLocation `json:"relatedLocations,omitempty"`
	Fixes            []sarifFix      `json:"fixes,omitempty"`
}

type sarifLocation struct {
	ID               int           `json:"id,omitempty"`
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
	Message          *sarifMessage `json:"message,omitempty"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine,omitempty"`
	StartColumn uint32 `json:"startColumn,omitempty"`
	EndLine     uint32 `json:"endLine,omitempty"`
	EndColumn   uint32 `json:"endColumn,omitempty"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifact      `json:"artifactLocation"`
	Replacements     []sarifReplacement `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion   `json:"deletedRegion"`
	InsertedContent *sarifMessage `json:"insertedContent,omitempty"`
}

// Sarif writes the diagnostics as a SARIF 2.1.0 log with one run. Paths
// are relative to the FileSet base so the log can be uploaded from the
// project root.
func Sarif(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, meta SarifRunMeta) error {
	ruleIndex := make(map[diag.Code]int)
	var codes []diag.Code
	for i := range items {
		if _, ok := ruleIndex[items[i].Code]; !ok {
			ruleIndex[items[i].Code] = 0
			codes = append(codes, items[i].Code)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	rules := make([]sarifRule, len(codes))
	for i, c := range codes {
		ruleIndex[c] = i
		rules[i] = sarifRule{ID: c.ID(), Name: c.Kind(), ShortDescription: sarifMessage{Text: c.Title()}}
	}

	failed := false
	results := make([]sarifResult, 0, len(items))
	for i := range items {
		d := &items[i]
		if d.Severity == diag.SevError {
			failed = true
		}
		res := sarifResult{
			RuleID:    d.Code.ID(),
			RuleIndex: ruleIndex[d.Code],
			Level:     sarifLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message},
		}
		if loc, ok := sarifLocate(fs, d.Primary); ok {
			res.Locations = []sarifLocation{loc}
		}
		for j, n := range d.Notes {
			loc, ok := sarifLocate(fs, n.Span)
			if !ok {
				continue
			}
			loc.ID = j + 1
			loc.Message = &sarifMessage{Text: n.Msg}
			res.RelatedLocations = append(res.RelatedLocations, loc)
		}
		for _, fix := range orderedFixes(d.Fixes) {
			if sf, ok := sarifFixOf(fs, &fix); ok {
				res.Fixes = append(res.Fixes, sf)
			}
		}
		results = append(results, res)
	}

	log := sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: meta.ToolName, Version: meta.ToolVersion, Rules: rules}},
			Results: results,
		}},
	}
	if len(meta.InvocationArgs) > 0 {
		log.Runs[0].Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: !failed}}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

func sarifLocate(fs *source.FileSet, span source.Span) (sarifLocation, bool) {
	f := fileOf(fs, span)
	if f == nil {
		return sarifLocation{}, false
	}
	return sarifLocation{PhysicalLocation: sarifPhysical{
		ArtifactLocation: sarifArtifact{URI: sarifURI(fs, f)},
		Region:           sarifRegionOf(fs, span),
	}}, true
}

func sarifURI(fs *source.FileSet, f *source.File) string {
	return normalizeURI(f.FormatPath("relative", fs.BaseDir()))
}

func sarifRegionOf(fs *source.FileSet, span source.Span) sarifRegion {
	start, end := fs.Resolve(span)
	return sarifRegion{
		StartLine:   start.Line,
		StartColumn: start.Col,
		EndLine:     end.Line,
		EndColumn:   end.Col,
		ByteOffset:  span.Start,
		ByteLength:  span.Len(),
	}
}

// sarifFixOf groups the edits of fix by file. A fix touching no known file
// is dropped.
func sarifFixOf(fs *source.FileSet, fix *diag.Fix) (sarifFix, bool) {
	out := sarifFix{Description: sarifMessage{Text: fix.Title}}
	byURI := make(map[string]int)
	for _, edit := range fix.Edits {
		f := fileOf(fs, edit.Span)
		if f == nil {
			continue
		}
		uri := sarifURI(fs, f)
		idx, ok := byURI[uri]
		if !ok {
			idx = len(out.ArtifactChanges)
			byURI[uri] = idx
			out.ArtifactChanges = append(out.ArtifactChanges, sarifArtifactChange{ArtifactLocation: sarifArtifact{URI: uri}})
		}
		rep := sarifReplacement{DeletedRegion: sarifRegionOf(fs, edit.Span)}
		if edit.NewText != "" {
			rep.InsertedContent = &sarifMessage{Text: edit.NewText}
		}
		out.ArtifactChanges[idx].Replacements = append(out.ArtifactChanges[idx].Replacements, rep)
	}
	return out, len(out.ArtifactChanges) > 0
}
