// Package static maps request paths onto files beneath a public root.
package static

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound covers missing files, directories and paths outside the root.
var ErrNotFound = errors.New("file not found")

// FallbackContentType is used for extensions missing from the table.
const FallbackContentType = "application/octet-stream"

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".txt":  "text/plain; charset=utf-8",
}

// ContentType picks a type from the file extension.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return FallbackContentType
}

// Root is a public directory files may be served from.
type Root struct {
	dir   string
	index string
}

// NewRoot resolves dir to its canonical absolute form. dir need not exist yet;
// until it does every lookup reports ErrNotFound.
func NewRoot(dir, index string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	if index == "" {
		index = "index.html"
	}
	return &Root{dir: abs, index: index}, nil
}

// Dir returns the canonical root directory.
func (r *Root) Dir() string {
	return r.dir
}

// Resolve maps a URL path to a regular file inside the root. "/" maps to the
// index document. The canonical path (symlinks resolved) must stay inside
// the root.
func (r *Root) Resolve(urlPath string) (string, error) {
	if strings.ContainsRune(urlPath, 0) {
		return "", ErrNotFound
	}
	if urlPath == "" || urlPath == "/" {
		urlPath = "/" + r.index
	}

	candidate := filepath.Join(r.dir, filepath.FromSlash(strings.TrimPrefix(urlPath, "/")))
	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", ErrNotFound
	}
	if !r.contains(resolved) {
		return "", ErrNotFound
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return resolved, nil
}

func (r *Root) contains(path string) bool {
	rel, err := filepath.Rel(r.dir, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
