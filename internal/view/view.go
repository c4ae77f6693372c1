// Package view renders named views for the notify store.
//
// Two renderers are provided: Templates loads html/template files from a
// directory (so operators can restyle notices without a rebuild) and Registry
// holds compiled templ components, including the built-in "notify/notify"
// view. Chain tries several renderers in order.
package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"notifykit/internal/notify"
)

// ErrViewNotFound is returned (wrapped) when a renderer has no view of the requested name.
var ErrViewNotFound = errors.New("view not found")

// DefaultView is the name of the built-in notices view.
const DefaultView = "notify/notify"

// Renderer is implemented by every renderer in this package.
type Renderer = notify.Renderer

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrViewNotFound, name)
}

// groupsFrom extracts the notify payload from view data. A plain
// map[string][]string is accepted too; its group order is unspecified.
func groupsFrom(data map[string]any) notify.Groups {
	switch v := data[notify.DataKey].(type) {
	case notify.Groups:
		return v
	case []notify.Group:
		return notify.Groups(v)
	case map[string][]string:
		out := make(notify.Groups, 0, len(v))
		for t, msgs := range v {
			out = append(out, notify.Group{Type: t, Messages: msgs})
		}
		return out
	default:
		return nil
	}
}

type chain []Renderer

// Chain returns a Renderer that tries each renderer in order, moving on only
// when one reports ErrViewNotFound.
func Chain(renderers ...Renderer) Renderer {
	out := make(chain, 0, len(renderers))
	for _, r := range renderers {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (c chain) Render(ctx context.Context, name string, data map[string]any) (string, error) {
	for _, r := range c {
		out, err := r.Render(ctx, name, data)
		if errors.Is(err, ErrViewNotFound) {
			continue
		}
		return out, err
	}
	return "", notFound(name)
}

func normalizeName(name string) string {
	return strings.Trim(strings.TrimSpace(name), "/")
}
