package lsp

import (
	"encoding/json"

	"viewc/internal/ast"
)

const inlayKindType = 1

func (s *Server) handleInlayHint(msg *rpcMessage) error {
	var params inlayHintParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	s.mu.Lock()
	enabled := s.bindingHints
	s.mu.Unlock()
	a := s.analysisFor(params.TextDocument.URI)
	if a == nil || !enabled {
		return s.sendResponse(msg.ID, []inlayHint{})
	}
	return s.sendResponse(msg.ID, buildInlayHints(a, params.Range))
}

// buildInlayHints shows the inferred type after each `let:` binding
// within rng. Bindings whose type is unknown get no hint.
func buildInlayHints(a *Analysis, rng lspRange) []inlayHint {
	from := offsetForPositionInFile(a.File, rng.Start)
	to := offsetForPositionInFile(a.File, rng.End)
	out := []inlayHint{}
	for _, pass := range a.Unit.Passes {
		if pass.View == nil || pass.View.Root == nil || pass.Resolved == nil {
			continue
		}
		ast.Inspect(pass.View.Root, func(n *ast.Node) bool {
			for _, b := range pass.Resolved.Of(n).Bindings {
				if b.Type == nil || b.Type.IsUnknown() || b.Span.File != a.File.ID {
					continue
				}
				if b.Span.End < from || b.Span.End > to {
					continue
				}
				out = append(out, inlayHint{
					Position: positionForOffsetInFile(a.File, b.Span.End),
					Label:    ": " + b.Type.String(),
					Kind:     inlayKindType,
				})
			}
			return true
		})
	}
	return out
}
