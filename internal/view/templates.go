package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Extensions tried, in order, when resolving a view name to a file.
var templateExts = []string{".html", ".gohtml", ".tmpl"}

var templateFuncs = template.FuncMap{
	"join":  strings.Join,
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
}

// Templates renders html/template files from a directory. View "a/b" maps to
// "<dir>/a/b.html" (or .gohtml/.tmpl). Parsed templates are cached until
// Reload or SetDir.
type Templates struct {
	mu    sync.Mutex
	dir   string
	cache map[string]*template.Template
}

// NewTemplates returns a renderer rooted at dir. An empty dir finds no views,
// which lets a Chain fall through to the built-in registry.
func NewTemplates(dir string) *Templates {
	return &Templates{dir: strings.TrimSpace(dir), cache: map[string]*template.Template{}}
}

func (t *Templates) Dir() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dir
}

// SetDir switches the root directory. It reports whether the directory changed.
func (t *Templates) SetDir(dir string) bool {
	dir = strings.TrimSpace(dir)
	t.mu.Lock()
	defer t.mu.Unlock()
	if dir == t.dir {
		return false
	}
	t.dir = dir
	t.cache = map[string]*template.Template{}
	return true
}

// Reload drops every cached template.
func (t *Templates) Reload() {
	t.mu.Lock()
	t.cache = map[string]*template.Template{}
	t.mu.Unlock()
}

func (t *Templates) Render(_ context.Context, name string, data map[string]any) (string, error) {
	tpl, err := t.lookup(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("view %q: execute: %w", name, err)
	}
	return buf.String(), nil
}

func (t *Templates) lookup(name string) (*template.Template, error) {
	key := normalizeName(name)

	t.mu.Lock()
	defer t.mu.Unlock()

	if tpl, ok := t.cache[key]; ok {
		return tpl, nil
	}
	if t.dir == "" || key == "" {
		return nil, notFound(name)
	}
	rel := filepath.Clean(filepath.FromSlash(key))
	if rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." || filepath.IsAbs(rel) {
		return nil, notFound(name)
	}

	for _, ext := range templateExts {
		path := filepath.Join(t.dir, rel+ext)
		b, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("view %q: %w", name, err)
		}
		tpl, err := template.New(key).Funcs(templateFuncs).Parse(string(b))
		if err != nil {
			return nil, fmt.Errorf("view %q: parse: %w", name, err)
		}
		t.cache[key] = tpl
		return tpl, nil
	}
	return nil, notFound(name)
}
