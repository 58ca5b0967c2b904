package lsp

import "encoding/json"

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.applySettings(params.Settings)
	return nil
}

// applySettings reads the "viewc" section; absent keys keep their value.
func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v := settings.Viewc.InlayHints.BindingTypes; v != nil {
		s.bindingHints = *v
	}
	if v := settings.Viewc.LSP.Trace; v != nil {
		s.traceLSP = *v
	}
}
