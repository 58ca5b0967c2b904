package buildpipeline

import (
	"path/filepath"
	"sort"
	"strings"
)

func filterFilesUnderRoot(files []string, root string) []string {
	if len(files) == 0 || strings.TrimSpace(root) == "" {
		return files
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return files
	}
	absRoot = filepath.Clean(absRoot)
	prefix := absRoot + string(filepath.Separator)
	filtered := make([]string, 0, len(files))
	for _, file := range files {
		if file == "" {
			continue
		}
		absFile, err := filepath.Abs(file)
		if err != nil {
			continue
		}
		absFile = filepath.Clean(absFile)
		if absFile == absRoot || strings.HasPrefix(absFile, prefix) {
			filtered = append(filtered, file)
		}
	}
	return filtered
}

func absBase(baseDir string) string {
	base := strings.TrimSpace(baseDir)
	if base == "" {
		return ""
	}
	if abs, err := filepath.Abs(base); err == nil {
		return abs
	}
	return base
}

// displayPath is file relative to base when it lies under it, with
// forward slashes.
func displayPath(file, base string) string {
	path := filepath.Clean(file)
	if base != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if rel, err := filepath.Rel(base, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

// DisplayFiles returns files as the progress events name them: relative
// to baseDir, deduplicated and sorted.
func DisplayFiles(files []string, baseDir string) []string {
	if len(files) == 0 {
		return files
	}
	normalized := make([]string, 0, len(files))
	seen := make(map[string]struct{}, len(files))
	base := absBase(baseDir)
	for _, file := range files {
		if file == "" {
			continue
		}
		path := displayPath(file, base)
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		normalized = append(normalized, path)
	}
	sort.Strings(normalized)
	return normalized
}
