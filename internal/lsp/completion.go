package lsp

import (
	"encoding/json"
	"strings"

	"viewc/internal/registry"
)

const (
	completionKindField   = 5
	completionKindClass   = 7
	completionKindKeyword = 14
	completionKindStruct  = 22
)

func (s *Server) handleCompletion(msg *rpcMessage) error {
	var params textDocumentPositionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	a := s.analysisFor(params.TextDocument.URI)
	if a == nil {
		return s.sendResponse(msg.ID, completionList{Items: []completionItem{}})
	}
	return s.sendResponse(msg.ID, buildCompletion(a, params.Position))
}

// tagContext is the partially written tag around the cursor.
type tagContext struct {
	// name is the tag name; empty while it is still being typed.
	name string
	// prefix is the word being typed.
	prefix string
	// keys are attribute keys already present on the tag.
	keys map[string]bool
}

func buildCompletion(a *Analysis, pos position) completionList {
	list := completionList{Items: []completionItem{}}
	off := offsetForPositionInFile(a.File, pos)
	if !a.inInvocation(off) || a.Registry == nil {
		return list
	}
	ctx, ok := scanTag(a.File.Content, int(off))
	if !ok {
		return list
	}
	if ctx.name == "" {
		list.Items = tagItems(a.Registry, ctx.prefix)
		return list
	}
	c, found := a.Registry.Lookup(ctx.name)
	if !found {
		c, found = a.Registry.LookupSlotType(ctx.name)
	}
	if !found {
		list.Items = elementItems(ctx)
		return list
	}
	list.Items = attrItems(c, ctx)
	return list
}

func (a *Analysis) inInvocation(off uint32) bool {
	for _, pass := range a.Unit.Passes {
		if touches(pass.Invocation.Body, off) {
			return true
		}
	}
	return false
}

// scanTag walks back from off to the '<' opening the tag the cursor is in.
// Braced expressions and string literals are skipped.
func scanTag(content []byte, off int) (tagContext, bool) {
	if off > len(content) {
		off = len(content)
	}
	depth := 0
	start := -1
	for i := off - 1; i >= 0 && start < 0; i-- {
		switch content[i] {
		case '}':
			depth++
		case '{':
			if depth == 0 {
				return tagContext{}, false
			}
			depth--
		case '>':
			if depth == 0 {
				return tagContext{}, false
			}
		case '<':
			if depth == 0 {
				start = i
			}
		}
	}
	if start < 0 {
		return tagContext{}, false
	}
	text := string(content[start+1 : off])
	if strings.HasPrefix(text, "/") {
		return tagContext{}, false
	}
	nameEnd := 0
	for nameEnd < len(text) && isKeyByte(text[nameEnd]) {
		nameEnd++
	}
	if nameEnd == len(text) {
		return tagContext{prefix: text}, true
	}
	ctx := tagContext{name: text[:nameEnd], keys: attrKeys(text[nameEnd:])}
	p := len(text)
	for p > nameEnd && isKeyByte(text[p-1]) {
		p--
	}
	ctx.prefix = text[p:]
	delete(ctx.keys, ctx.prefix)
	return ctx, true
}

// attrKeys collects the keys written so far, skipping values.
func attrKeys(text string) map[string]bool {
	keys := make(map[string]bool)
	depth := 0
	var quote byte
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"':
			quote = ch
		case ch == '{':
			depth++
		case ch == '}':
			if depth > 0 {
				depth--
			}
		case depth == 0 && isKeyByte(ch) && (i == 0 || isSpace(text[i-1])):
			j := i
			for j < len(text) && isKeyByte(text[j]) {
				j++
			}
			keys[text[i:j]] = true
			i = j - 1
		}
	}
	return keys
}

func isKeyByte(ch byte) bool {
	return ch == '_' || ch == '-' || ch == ':' ||
		('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9')
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func tagItems(reg *registry.Registry, prefix string) []completionItem {
	items := []completionItem{}
	for _, name := range reg.Names() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		c, _ := reg.Lookup(name)
		items = append(items, completionItem{Label: name, Kind: completionKindClass, Detail: c.Signature()})
	}
	for _, name := range reg.SlotNames() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		c, _ := reg.LookupSlotType(name)
		items = append(items, completionItem{Label: name, Kind: completionKindStruct, Detail: "slot " + c.Signature()})
	}
	return items
}

func attrItems(c *registry.Component, ctx tagContext) []completionItem {
	items := []completionItem{}
	for _, p := range c.Props {
		if ctx.keys[p.Name] || !strings.HasPrefix(p.Name, ctx.prefix) {
			continue
		}
		items = append(items, completionItem{
			Label:      p.Name,
			Kind:       completionKindField,
			Detail:     p.Type.String(),
			InsertText: p.Name + "=",
		})
	}
	keyword := func(label, detail string) {
		if !ctx.keys[label] && strings.HasPrefix(label, ctx.prefix) {
			items = append(items, completionItem{Label: label, Kind: completionKindKeyword, Detail: detail})
		}
	}
	if c.IsSlot {
		keyword("slot", "route this node into the parent's slot field")
	}
	if c.Children.Kind == registry.ChildrenClosure {
		keyword("let:", "bind a children argument")
	}
	keyword("clone:", "clone a captured value into the children")
	return items
}

var elementPrefixes = []struct{ label, detail string }{
	{"on:", "event handler"},
	{"class:", "class toggle"},
	{"style:", "style property"},
	{"prop:", "DOM property"},
	{"use:", "directive"},
}

func elementItems(ctx tagContext) []completionItem {
	items := []completionItem{}
	for _, p := range elementPrefixes {
		if strings.HasPrefix(p.label, ctx.prefix) {
			items = append(items, completionItem{Label: p.label, Kind: completionKindKeyword, Detail: p.detail})
		}
	}
	return items
}
