package lsp

import "unicode/utf8"

// applyChanges replays incremental edits on text. A change without a range
// replaces the whole document.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := offsetForPosition(text, change.Range.Start)
		end := max(offsetForPosition(text, change.Range.End), start)
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

// offsetForPosition is offsetForPositionInFile for a plain string; the
// result is always within [0, len(text)].
func offsetForPosition(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	i := 0
	for line := 0; line < pos.Line; line++ {
		nl := indexByteFrom(text, i, '\n')
		if nl < 0 {
			return len(text)
		}
		i = nl + 1
	}
	units := 0
	for i < len(text) && text[i] != '\n' && units < pos.Character {
		r, size := utf8.DecodeRuneInString(text[i:])
		if units+utf16Len(r) > pos.Character {
			break
		}
		units += utf16Len(r)
		i += size
	}
	return i
}

func indexByteFrom(s string, from int, b byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
