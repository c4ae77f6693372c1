package notify

import "context"

type storeContextKey struct{}

// WithStore attaches s to ctx.
func WithStore(ctx context.Context, s *Store) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, storeContextKey{}, s)
}

// FromContext returns the Store attached to ctx, or nil.
func FromContext(ctx context.Context) *Store {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(storeContextKey{}).(*Store)
	return s
}
