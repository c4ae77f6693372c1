// Package notify accumulates short user-facing messages grouped by type
// ("error", "information", ...) and renders them through a named view.
//
// A Store is an explicit value scoped to one logical request: create it with
// New, attach it to the request context with WithStore, add messages while
// handling the request, then Render at the end. Every setter returns the
// Store so calls chain:
//
//	s := notify.New(defaults, renderer)
//	s.Add("Saved successfully").AddType("Field required", "error")
//	html, err := s.Render(ctx)
package notify
