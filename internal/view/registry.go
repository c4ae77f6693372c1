package view

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/a-h/templ"

	"notifykit/internal/notify"
)

// ComponentFunc builds the component for one render from the view data.
type ComponentFunc func(data map[string]any) templ.Component

// Registry maps view names to templ components.
type Registry struct {
	mu    sync.RWMutex
	views map[string]ComponentFunc
}

// NewRegistry returns a registry with DefaultView already registered.
func NewRegistry() *Registry {
	r := &Registry{views: map[string]ComponentFunc{}}
	r.Register(DefaultView, func(data map[string]any) templ.Component {
		return Notices(groupsFrom(data))
	})
	return r
}

// Register adds or replaces a view.
func (r *Registry) Register(name string, fn ComponentFunc) {
	r.mu.Lock()
	r.views[normalizeName(name)] = fn
	r.mu.Unlock()
}

// Names lists the registered views.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.views))
	for n := range r.views {
		out = append(out, n)
	}
	return out
}

func (r *Registry) Render(ctx context.Context, name string, data map[string]any) (string, error) {
	r.mu.RLock()
	fn, ok := r.views[normalizeName(name)]
	r.mu.RUnlock()
	if !ok || fn == nil {
		return "", notFound(name)
	}
	comp := fn(data)
	if comp == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := comp.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Notices renders one block per message type:
//
//	<div class="notify notify-error"><ul><li>...</li></ul></div>
//
// Types and messages are HTML-escaped. Nothing is written for empty groups.
func Notices(groups notify.Groups) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		for _, g := range groups {
			if len(g.Messages) == 0 {
				continue
			}
			if _, err := io.WriteString(w, `<div class="notify notify-`+templ.EscapeString(g.Type)+`"><ul>`); err != nil {
				return err
			}
			for _, m := range g.Messages {
				if _, err := io.WriteString(w, "<li>"+templ.EscapeString(m)+"</li>"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</ul></div>"); err != nil {
				return err
			}
		}
		return nil
	})
}
