package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"viewc/internal/diag"
	"viewc/internal/fix"
	"viewc/internal/registry"
	"viewc/internal/source"
)

func TestChangeSet(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, "components.toml")
	cs := newChangeSet(nil, []string{manifest})

	if !cs.empty() {
		t.Fatalf("new change set is not empty")
	}
	if cs.note(filepath.Join(root, "notes.txt")) {
		t.Fatalf("unrelated file counted as a change")
	}
	for _, name := range []string{"b.view", "a.view", "a.view"} {
		if !cs.note(filepath.Join(root, name)) {
			t.Fatalf("%s not counted", name)
		}
	}
	want := []string{filepath.Join(root, "a.view"), filepath.Join(root, "b.view")}
	if diff := cmp.Diff(want, cs.take()); diff != "" {
		t.Fatalf("take mismatch (-want +got):\n%s", diff)
	}
	if !cs.empty() {
		t.Fatalf("take did not reset the set")
	}

	cs.note(filepath.Join(root, "c.view"))
	cs.note(manifest)
	if got := cs.take(); got != nil {
		t.Fatalf("manifest change should re-check everything, got %v", got)
	}
}

func TestSummaryLine(t *testing.T) {
	items := []diag.Diagnostic{
		diag.New(diag.SevError, diag.ProjUnknownKey, source.Nowhere, "a"),
		diag.New(diag.SevWarning, diag.ProjUnknownKey, source.Nowhere, "b"),
		diag.New(diag.SevWarning, diag.ProjUnknownKey, source.Nowhere, "c"),
		diag.New(diag.SevInfo, diag.ProjUnknownKey, source.Nowhere, "d"),
	}
	if got := summaryLine(items); got != "1 error, 2 warnings" {
		t.Fatalf("summaryLine = %q", got)
	}
	if got := summaryLine(items[3:]); got != "" {
		t.Fatalf("summaryLine of infos = %q, want empty", got)
	}
	if got := plural(2, "fix"); got != "2 fixes" {
		t.Fatalf("plural = %q", got)
	}
}

func TestExitStatus(t *testing.T) {
	warn := []diag.Diagnostic{diag.New(diag.SevWarning, diag.ProjUnknownKey, source.Nowhere, "w")}
	if err := exitStatus(warn, false); err != nil {
		t.Fatalf("warnings alone failed the run: %v", err)
	}
	if err := exitStatus(warn, true); !errors.Is(err, errSilent) {
		t.Fatalf("--warnings-as-errors ignored: %v", err)
	}
}

func TestReportFixesDryRun(t *testing.T) {
	res := &fix.ApplyResult{
		Applied:     []fix.AppliedFix{{ID: "RES3001-0-1-0", Title: "add `slot`", PrimaryPath: "a.view:1:2", EditCount: 1}},
		FileChanges: []fix.FileChange{{Path: "a.view", EditCount: 1, Content: []byte("<Then slot/>")}},
	}
	var buf bytes.Buffer
	if err := reportFixes(&buf, res, nil, true); err != nil {
		t.Fatalf("reportFixes: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Would apply 1 fix:", "--- a.view (1 edit)", "<Then slot/>\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := reportFixes(&buf, &fix.ApplyResult{}, fix.ErrNoFixes, false); err != nil {
		t.Fatalf("ErrNoFixes should not fail: %v", err)
	}
	if !strings.Contains(buf.String(), "No applicable fixes found.") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestDescribeJSON(t *testing.T) {
	reg, err := registry.Load("components.toml", []byte(`
[component.List]
generics = ["C: Fn(String) -> IV", "IV: IntoView"]
props = { each = { type = "Vec<String>", into = true } }
children = "C"
`))
	if err != nil {
		t.Fatal(err)
	}
	c, ok := reg.Lookup("List")
	if !ok {
		t.Fatal("List not declared")
	}
	want := componentJSON{
		Name:      "List",
		Kind:      "component",
		Signature: "List<C: Fn(String) -> IV, IV: IntoView>",
		Generics:  []string{"C: Fn(String) -> IV", "IV: IntoView"},
		Props:     []propJSON{{Name: "each", Type: "Vec<String>", Into: true}},
		Children:  c.Children.String(),
	}
	if diff := cmp.Diff(want, describeJSON(c, source.NewFileSet())); diff != "" {
		t.Errorf("describeJSON (-want +got):\n%s", diff)
	}
}
