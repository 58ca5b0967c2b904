package lsp

import (
	"encoding/json"

	"viewc/internal/diag"
)

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	a := s.analysisFor(params.TextDocument.URI)
	if a == nil {
		return s.sendResponse(msg.ID, []codeAction{})
	}
	return s.sendResponse(msg.ID, buildCodeActions(a, params.Range))
}

// buildCodeActions offers the fixes of every diagnostic of the document
// that overlaps rng.
func buildCodeActions(a *Analysis, rng lspRange) []codeAction {
	from := offsetForPositionInFile(a.File, rng.Start)
	to := offsetForPositionInFile(a.File, rng.End)
	out := []codeAction{}
	for i := range a.Diagnostics {
		d := &a.Diagnostics[i]
		if d.Primary.File != a.File.ID || !d.Primary.HasFile() {
			continue
		}
		if d.Primary.End < from || d.Primary.Start > to {
			continue
		}
		for _, fix := range d.Fixes {
			if action, ok := a.codeActionFor(fix); ok {
				out = append(out, action)
			}
		}
	}
	return out
}

func (a *Analysis) codeActionFor(fix diag.Fix) (codeAction, bool) {
	changes := make(map[string][]textEdit)
	for _, edit := range fix.Edits {
		file := a.fileOf(edit.Span)
		if file == nil {
			return codeAction{}, false
		}
		uri := pathToURI(file.Path)
		changes[uri] = append(changes[uri], textEdit{Range: rangeForSpan(file, edit.Span), NewText: edit.NewText})
	}
	if len(changes) == 0 {
		return codeAction{}, false
	}
	return codeAction{
		Title:       fix.Title,
		Kind:        "quickfix",
		IsPreferred: fix.IsPreferred,
		Edit:        workspaceEdit{Changes: changes},
	}, true
}
