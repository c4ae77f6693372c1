package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"notifykit/internal/notify"
	"notifykit/internal/view"
	logx "notifykit/pkg/logx"
)

const maxPreviewBody = 64 << 10

// HealthFunc reports extra state for /healthz. It may be nil.
type HealthFunc func() any

// PreviewMessage is one message of a preview request. An empty Type uses the
// store's default type.
type PreviewMessage struct {
	Text string `json:"text"`
	Type string `json:"type,omitempty"`
}

// PreviewRequest drives a request-scoped store: settings are applied first,
// then messages are added in order, then RestoreDefault runs, then the result
// is rendered (filtered by type when Filter is set).
type PreviewRequest struct {
	DefaultType    *string          `json:"default_type,omitempty"`
	View           *string          `json:"view,omitempty"`
	Messages       []PreviewMessage `json:"messages"`
	RestoreDefault bool             `json:"restore_default,omitempty"`
	Filter         *string          `json:"filter,omitempty"`
}

// HeaderDefaultType carries the store's default type after the request ran.
const HeaderDefaultType = "X-Notify-Default-Type"

// Handler returns the routes:
//
//	GET  /healthz
//	POST /notices/preview
func Handler(newStore StoreFactory, health HealthFunc, log logx.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"status": "ok"}
		if health != nil {
			body["runtime"] = health()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})
	mux.Handle("POST /notices/preview", WithStore(newStore, previewHandler(log)))
	return mux
}

func previewHandler(log logx.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := notify.FromContext(r.Context())
		if store == nil {
			http.Error(w, "notify store unavailable", http.StatusServiceUnavailable)
			return
		}

		var req PreviewRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPreviewBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid request: "+err.Error(), http.StatusBadRequest)
			return
		}

		if req.DefaultType != nil {
			store.SetDefaultType(*req.DefaultType)
		}
		if req.View != nil {
			store.SetView(*req.View)
		}
		for _, m := range req.Messages {
			if strings.TrimSpace(m.Type) == "" {
				store.Add(m.Text)
			} else {
				store.AddType(m.Text, m.Type)
			}
		}
		if req.RestoreDefault {
			store.RestoreDefaultType()
		}

		var (
			out string
			err error
		)
		if req.Filter != nil {
			out, err = store.RenderType(r.Context(), *req.Filter)
		} else {
			out, err = store.Render(r.Context())
		}
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, view.ErrViewNotFound) {
				status = http.StatusNotFound
			}
			log.Warn("preview render failed", logx.String("view", store.View()), logx.Err(err))
			http.Error(w, http.StatusText(status), status)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set(HeaderDefaultType, store.DefaultType())
		_, _ = w.Write([]byte(out))
	}
}
