package lsp

import (
	"encoding/json"

	"viewc/internal/source"
)

func (s *Server) handleDefinition(msg *rpcMessage) error {
	var params textDocumentPositionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	a := s.analysisFor(params.TextDocument.URI)
	if a == nil {
		return s.sendResponse(msg.ID, nil)
	}
	loc := buildDefinition(a, params.Position)
	if loc == nil {
		return s.sendResponse(msg.ID, nil)
	}
	return s.sendResponse(msg.ID, loc)
}

// buildDefinition points a component, slot or prop at the registry entry
// declaring it. Props share their component's declaration.
func buildDefinition(a *Analysis, pos position) *location {
	h := a.locate(offsetForPositionInFile(a.File, pos))
	c := h.component()
	if c == nil || h.binding != nil {
		return nil
	}
	if h.attr != nil {
		if _, ok := c.Prop(h.attr.Name); !ok {
			return nil
		}
	}
	return a.locationOf(c.Decl)
}

func (a *Analysis) locationOf(span source.Span) *location {
	file := a.fileOf(span)
	if file == nil {
		return nil
	}
	return &location{URI: pathToURI(file.Path), Range: rangeForSpan(file, span)}
}
