package lsp

import (
	"encoding/json"

	"viewc/internal/ast"
)

func (s *Server) handleFoldingRange(msg *rpcMessage) error {
	var params foldingRangeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	a := s.analysisFor(params.TextDocument.URI)
	if a == nil {
		return s.sendResponse(msg.ID, []foldingRange{})
	}
	return s.sendResponse(msg.ID, buildFoldingRanges(a))
}

// buildFoldingRanges folds every multi-line view! invocation and every
// tag whose closing tag sits on a later line. The closing line stays
// visible.
func buildFoldingRanges(a *Analysis) []foldingRange {
	out := []foldingRange{}
	add := func(startOff, endOff uint32) {
		start, end := lineOf(a.File, startOff), lineOf(a.File, endOff)-1
		if end > start {
			out = append(out, foldingRange{StartLine: start, EndLine: end, Kind: "region"})
		}
	}
	for _, pass := range a.Unit.Passes {
		inv := pass.Invocation
		if !inv.Bare() {
			add(inv.Span.Start, inv.Span.End)
		}
		if pass.View == nil || pass.View.Root == nil {
			continue
		}
		ast.Inspect(pass.View.Root, func(n *ast.Node) bool {
			if n.IsTag() && !n.SelfClosing && n.CloseSpan.End > n.CloseSpan.Start {
				add(n.OpenSpan.Start, n.CloseSpan.Start)
			}
			return true
		})
	}
	return out
}
