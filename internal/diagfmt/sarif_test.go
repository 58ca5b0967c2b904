package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"viewc/internal/diag"
	"viewc/internal/source"
)

func TestSarif(t *testing.T) {
	fs := source.NewFileSetWithBase("/work")
	fileID := fs.AddVirtual("/work/pages/home.view", []byte("<div>\n  <Label txt=\"hi\"/>\n</div>\n"))
	key := source.Span{File: fileID, Start: 15, End: 18}
	items := []diag.Diagnostic{
		diag.New(diag.SevError, diag.TypUnknownProp, key, "no prop `txt`").
			WithNote(source.Span{File: fileID, Start: 9, End: 14}, "available props: `text`").
			WithFixSuggestion(diag.ReplaceSpan("rename to `text`", key, "text", "txt")),
		diag.New(diag.SevWarning, diag.IOCacheError, source.Nowhere, "cache is read-only"),
	}

	var buf bytes.Buffer
	if err := Sarif(&buf, items, fs, SarifRunMeta{ToolName: "viewc", ToolVersion: "0.1.0", InvocationArgs: []string{"check"}}); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v\n%s", err, buf.String())
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if len(run.Tool.Driver.Rules) != 2 || run.Tool.Driver.Rules[0].ID != "TYP4003" {
		t.Errorf("rules = %+v", run.Tool.Driver.Rules)
	}
	if len(run.Invocations) != 1 || run.Invocations[0].ExecutionSuccessful {
		t.Errorf("invocations = %+v", run.Invocations)
	}

	res := run.Results[0]
	if res.Level != "error" || res.RuleIndex != 0 {
		t.Errorf("result = %+v", res)
	}
	loc := res.Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "pages/home.view" || loc.Region.StartLine != 2 || loc.Region.StartColumn != 10 {
		t.Errorf("location = %+v", loc)
	}
	if len(res.RelatedLocations) != 1 || res.RelatedLocations[0].Message.Text != "available props: `text`" {
		t.Errorf("related = %+v", res.RelatedLocations)
	}
	rep := res.Fixes[0].ArtifactChanges[0].Replacements[0]
	if rep.DeletedRegion.ByteOffset != 15 || rep.DeletedRegion.ByteLength != 3 || rep.InsertedContent.Text != "text" {
		t.Errorf("replacement = %+v", rep)
	}

	if noLoc := run.Results[1]; noLoc.Level != "warning" || len(noLoc.Locations) != 0 || noLoc.RuleIndex != 1 {
		t.Errorf("unlocated result = %+v", noLoc)
	}
}
