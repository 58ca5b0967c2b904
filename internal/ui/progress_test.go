package ui

import (
	"errors"
	"strings"
	"testing"

	"viewc/internal/buildpipeline"
)

func newModel(final buildpipeline.Stage, files ...string) *progressModel {
	return NewProgressModel("build", files, final, nil).(*progressModel)
}

func TestApplyEventTracksStages(t *testing.T) {
	m := newModel(buildpipeline.StageEmit, "a.view", "b.view")

	m.applyEvent(buildpipeline.Event{File: "a.view", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusWorking})
	if got := m.items[0].status; got != "parsing" {
		t.Fatalf("status = %q, want parsing", got)
	}
	m.applyEvent(buildpipeline.Event{File: "a.view", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusDone})
	if m.items[0].finished || m.items[0].status != "checked" {
		t.Fatalf("item after check = %+v", m.items[0])
	}
	m.applyEvent(buildpipeline.Event{File: "a.view", Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusDone})
	if !m.items[0].finished || m.items[0].status != "done" {
		t.Fatalf("item after emit = %+v", m.items[0])
	}

	m.applyEvent(buildpipeline.Event{File: "b.view", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusError, Err: errors.New("boom")})
	if !m.items[1].finished || m.items[1].status != "error" {
		t.Fatalf("failed item = %+v", m.items[1])
	}
	if got := m.percent(); got != 1 {
		t.Fatalf("percent = %v, want 1", got)
	}
}

func TestApplyEventAddsUnknownFiles(t *testing.T) {
	m := newModel(buildpipeline.StageCheck)
	m.applyEvent(buildpipeline.Event{File: "new.view", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusDone, Cached: true})
	if len(m.items) != 1 || m.items[0].status != "cached" || !m.items[0].finished {
		t.Fatalf("items = %+v", m.items)
	}
}

func TestViewListsFiles(t *testing.T) {
	m := newModel(buildpipeline.StageCheck, "a.view", "b.view")
	m.applyEvent(buildpipeline.Event{File: "b.view", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusError})
	out := m.View()
	for _, want := range []string{"a.view", "b.view", "queued", "error", "1 of 2 files with errors"} {
		if !strings.Contains(out, want) {
			t.Errorf("view lacks %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("components/very/long/path.view", 12); got != "component..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("日本語.view", 6); got != "日..." {
		t.Errorf("wide truncate = %q", got)
	}
	if got := truncate("short", 20); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}
