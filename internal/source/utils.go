package source

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
)

// Normalize strips a UTF-8 BOM and folds CRLF to LF, reporting what changed.
func Normalize(content []byte) ([]byte, FileFlags) {
	var flags FileFlags
	content, hadBOM := removeBOM(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return content, flags
}

// normalizeCRLF replaces every \r\n with \n and leaves lone \r alone.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func removeBOM(content []byte) ([]byte, bool) {
	if bytes.HasPrefix(content, utf8BOM) {
		return content[len(utf8BOM):], true
	}
	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i)) // #nosec G115 -- bounded by FileSet.Add
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// binary search for the number of newlines strictly before off
	lo, hi := 0, len(lineIdx)
	for lo < hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	startOff := lineIdx[lo-1] + 1
	return LineCol{Line: uint32(lo + 1), Col: off - startOff + 1} // #nosec G115
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// AbsolutePath returns p as a slash-separated absolute path.
func AbsolutePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return normalizePath(abs), nil
}

// RelativePath renders target relative to baseDir. Targets outside baseDir
// come back absolute so that "../../" chains never reach the output.
func RelativePath(target, baseDir string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absTarget), nil
	}
	return normalizePath(rel), nil
}

func BaseName(p string) string {
	return filepath.Base(p)
}
