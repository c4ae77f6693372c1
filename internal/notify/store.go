package notify

import (
	"context"
	"errors"
	"strings"
	"sync"

	"notifykit/internal/eventbus"
	logx "notifykit/pkg/logx"
)

// DataKey is the single view-data key the renderer receives; its value is Groups.
const DataKey = "msgs"

// ErrNoRenderer is returned by Render when the Store was built without a Renderer.
var ErrNoRenderer = errors.New("notify: no renderer")

// Event types published when a bus is attached.
const (
	EventMessageAdded = "notify.message_added"
	EventRendered     = "notify.rendered"
)

// MessageAdded is the Data of an EventMessageAdded event.
type MessageAdded struct {
	Type    string
	Message string
}

// Rendered is the Data of an EventRendered event.
type Rendered struct {
	View     string
	Filter   string
	Messages int
	Err      error
}

// Renderer turns a named view plus data into text. The notify package never
// touches markup itself.
type Renderer interface {
	Render(ctx context.Context, view string, data map[string]any) (string, error)
}

// Store accumulates messages by type. It is safe for concurrent use.
type Store struct {
	renderer Renderer
	defaults Defaults
	log      logx.Logger
	bus      eventbus.Bus
	strict   bool

	mu          sync.Mutex
	order       []string
	msgs        map[string][]string
	defaultType string
	view        string
}

type Option func(*Store)

func WithLogger(log logx.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithBus publishes EventMessageAdded and EventRendered on bus.
func WithBus(bus eventbus.Bus) Option {
	return func(s *Store) { s.bus = bus }
}

// WithStrictFilter makes RenderType return empty output for a type that has no
// messages, instead of falling back to rendering every group.
func WithStrictFilter(enabled bool) Option {
	return func(s *Store) { s.strict = enabled }
}

func New(defaults Defaults, r Renderer, opts ...Option) *Store {
	s := &Store{
		renderer: r,
		defaults: Defaults{
			MessageType: strings.TrimSpace(defaults.MessageType),
			View:        strings.TrimSpace(defaults.View),
		},
		msgs: map[string][]string{},
	}
	s.defaultType = s.defaults.MessageType
	s.view = s.defaults.View
	for _, o := range opts {
		o(s)
	}
	return s
}

// Add stores message under the current default type.
func (s *Store) Add(message string) *Store {
	s.mu.Lock()
	t := s.defaultType
	s.mu.Unlock()
	return s.add(t, message)
}

// AddType stores message under msgType without changing the default type.
func (s *Store) AddType(message, msgType string) *Store {
	return s.add(strings.TrimSpace(msgType), message)
}

func (s *Store) add(msgType, message string) *Store {
	message = strings.TrimSpace(message)

	s.mu.Lock()
	if _, ok := s.msgs[msgType]; !ok {
		s.order = append(s.order, msgType)
	}
	s.msgs[msgType] = append(s.msgs[msgType], message)
	s.mu.Unlock()

	if s.log.Enabled(logx.LevelDebug) {
		s.log.Debug("message added", logx.String("type", msgType), logx.Int("len", len(message)))
	}
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Type: EventMessageAdded, Data: MessageAdded{Type: msgType, Message: message}})
	}
	return s
}

// SetDefaultType changes the type used by Add. Stored messages are untouched.
func (s *Store) SetDefaultType(msgType string) *Store {
	s.mu.Lock()
	s.defaultType = strings.TrimSpace(msgType)
	s.mu.Unlock()
	return s
}

// RestoreDefaultType resets the default type to the configured one.
func (s *Store) RestoreDefaultType() *Store {
	s.mu.Lock()
	s.defaultType = s.defaults.MessageType
	s.mu.Unlock()
	return s
}

// SetView changes the view used by Render.
func (s *Store) SetView(view string) *Store {
	s.mu.Lock()
	s.view = strings.TrimSpace(view)
	s.mu.Unlock()
	return s
}

// Reset drops every stored message. The default type and view are kept.
func (s *Store) Reset() *Store {
	s.mu.Lock()
	s.order = nil
	s.msgs = map[string][]string{}
	s.mu.Unlock()
	return s
}

func (s *Store) DefaultType() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultType
}

func (s *Store) View() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Len is the number of stored messages across all types.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.msgs {
		n += len(m)
	}
	return n
}

// Types lists the stored types in the order they were first added.
func (s *Store) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Messages returns a copy of the messages stored under msgType.
func (s *Store) Messages(msgType string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.msgs[msgType]...)
}

// Snapshot copies every group in order.
func (s *Store) Snapshot() Groups {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupsLocked()
}

func (s *Store) groupsLocked() Groups {
	out := make(Groups, 0, len(s.order))
	for _, t := range s.order {
		out = append(out, Group{Type: t, Messages: append([]string(nil), s.msgs[t]...)})
	}
	return out
}

// Render renders every stored group through the current view.
func (s *Store) Render(ctx context.Context) (string, error) {
	s.mu.Lock()
	view := s.view
	groups := s.groupsLocked()
	s.mu.Unlock()

	return s.render(ctx, view, "", groups)
}

// RenderType renders only the messages of msgType. If msgType has no messages
// every group is rendered, unless the store was built WithStrictFilter, in
// which case the result is empty and the renderer is not called.
//
// msgType is matched as given. Unlike AddType it is not trimmed, so " error "
// does not select the "error" group.
func (s *Store) RenderType(ctx context.Context, msgType string) (string, error) {
	s.mu.Lock()
	view := s.view
	var groups Groups
	if m, ok := s.msgs[msgType]; ok {
		groups = Groups{{Type: msgType, Messages: append([]string(nil), m...)}}
	} else if !s.strict {
		groups = s.groupsLocked()
	}
	s.mu.Unlock()

	if groups == nil {
		if s.log.Enabled(logx.LevelDebug) {
			s.log.Debug("render skipped; no messages for type", logx.String("type", msgType))
		}
		return "", nil
	}
	return s.render(ctx, view, msgType, groups)
}

func (s *Store) render(ctx context.Context, view, filter string, groups Groups) (string, error) {
	if s.renderer == nil {
		return "", ErrNoRenderer
	}
	out, err := s.renderer.Render(ctx, view, map[string]any{DataKey: groups})
	if err != nil {
		s.log.Warn("render failed", logx.String("view", view), logx.String("type", filter), logx.Err(err))
	} else if s.log.Enabled(logx.LevelDebug) {
		s.log.Debug("rendered", logx.String("view", view), logx.String("type", filter), logx.Int("messages", groups.Len()))
	}
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Type: EventRendered, Data: Rendered{View: view, Filter: filter, Messages: groups.Len(), Err: err}})
	}
	return out, err
}
