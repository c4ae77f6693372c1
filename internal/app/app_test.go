package app

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"notifykit/internal/config"
	"notifykit/internal/notify"
)

func newTestApp(t *testing.T, body string) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "notifyd.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	a, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = a.logs.Close() })
	return a, path
}

func TestNewStoreUsesConfigDefaults(t *testing.T) {
	a, _ := newTestApp(t, `{"logging":{"level":"error"}}`)
	ctx := context.Background()

	s := a.NewStore()
	if s.DefaultType() != config.DefaultMessageType || s.View() != config.DefaultView {
		t.Fatalf("store defaults = %q / %q", s.DefaultType(), s.View())
	}
	out, err := s.Add("Saved successfully").AddType("Field required", "error").Render(ctx)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, `notify-information"><ul><li>Saved successfully`) ||
		!strings.Contains(out, `notify-error"><ul><li>Field required`) {
		t.Fatalf("Render() = %q", out)
	}

	if a.NewStore().Len() != 0 {
		t.Fatalf("stores share messages")
	}
}

func TestNewStoreStrictFilterAndViewsDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "notify"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notify", "notify.html"), []byte(`{{range .msgs}}{{.Type}}={{len .Messages}};{{end}}`), 0o644); err != nil {
		t.Fatalf("write view: %v", err)
	}
	body := `{"notify":{"strict_filter":true},"views":{"dir":` + quote(dir) + `},"logging":{"level":"error"}}`
	a, _ := newTestApp(t, body)
	ctx := context.Background()

	s := a.NewStore().Add("x").Add("y")
	if out, err := s.Render(ctx); err != nil || out != "information=2;" {
		t.Fatalf("Render() = %q, %v", out, err)
	}
	if out, err := s.RenderType(ctx, "error"); err != nil || out != "" {
		t.Fatalf("strict RenderType(error) = %q, %v", out, err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifyd.json")
	if err := os.WriteFile(path, []byte(`{"http":{"read_timeout":"forever"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := New(path); err == nil {
		t.Fatalf("New() error = nil")
	}
	if _, err := New(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("New(missing) error = nil")
	}
}

func TestApplyReloadedConfig(t *testing.T) {
	a, _ := newTestApp(t, `{"logging":{"level":"error"}}`)
	ctx := context.Background()

	next := config.Default()
	next.Logging.Level = "error"
	next.Notify.DefaultMessageType = "warning"
	next.HTTP.Enabled = true
	next.HTTP.Addr = "127.0.0.1:0"
	a.cfgm.Commit(&next)
	a.apply(ctx, &next)
	t.Cleanup(func() { a.http.Stop(context.Background()) })

	if a.HTTPAddr() == "" {
		t.Fatalf("http listener not started by reload")
	}
	if got := a.NewStore().DefaultType(); got != "warning" {
		t.Fatalf("store default after reload = %q", got)
	}
}

func TestStartStopAndAudit(t *testing.T) {
	a, _ := newTestApp(t, `{"logging":{"level":"error"}}`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	s := a.NewStore()
	s.Add("one")
	if _, err := s.Render(ctx); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	_, _ = s.SetView("missing").Render(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a.stats.added.Load() == 1 && a.stats.rendered.Load() == 1 && a.stats.failed.Load() == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	h, _ := a.health().(map[string]any)
	if h["messages_added"] != uint64(1) || h["renders"] != uint64(1) || h["render_errors"] != uint64(1) {
		t.Fatalf("health = %v", h)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := a.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	select {
	case <-a.Done():
	default:
		t.Fatalf("Done() not closed after Stop")
	}
	if a.Err() != nil {
		t.Fatalf("Err() = %v", a.Err())
	}
}

func TestRendererSeesNotifyPayload(t *testing.T) {
	a, _ := newTestApp(t, `{"logging":{"level":"error"}}`)
	out, err := a.Renderer().Render(context.Background(), "notify/notify", map[string]any{
		notify.DataKey: notify.Groups{{Type: "error", Messages: []string{"boom"}}},
	})
	if err != nil || !strings.Contains(out, "boom") {
		t.Fatalf("Render() = %q, %v", out, err)
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}

func TestStartStopNotifiesSystemd(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: sock, Net: "unixgram"})
	if err != nil {
		t.Skipf("unixgram unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	t.Setenv("NOTIFY_SOCKET", sock)

	read := func() string {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		buf := make([]byte, 256)
		n, _, err := conn.ReadFromUnix(buf)
		if err != nil {
			t.Fatalf("read notify socket: %v", err)
		}
		return string(buf[:n])
	}

	a, _ := newTestApp(t, `{"logging":{"level":"error"}}`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := read(); got != "READY=1" {
		t.Fatalf("after Start got %q, want READY=1", got)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := a.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := read(); got != "STOPPING=1" {
		t.Fatalf("after Stop got %q, want STOPPING=1", got)
	}
}
