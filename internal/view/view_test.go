package view

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"notifykit/internal/notify"
)

func payload(groups notify.Groups) map[string]any {
	return map[string]any{notify.DataKey: groups}
}

func writeView(t *testing.T, dir, rel, body string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write view: %v", err)
	}
}

func TestRegistryDefaultView(t *testing.T) {
	r := NewRegistry()
	out, err := r.Render(context.Background(), DefaultView, payload(notify.Groups{
		{Type: "information", Messages: []string{"Saved <b>ok</b>"}},
		{Type: "error", Messages: []string{"Field required"}},
		{Type: "empty"},
	}))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := `<div class="notify notify-information"><ul><li>Saved &lt;b&gt;ok&lt;/b&gt;</li></ul></div>` +
		`<div class="notify notify-error"><ul><li>Field required</li></ul></div>`
	if out != want {
		t.Fatalf("Render() =\n%s\nwant\n%s", out, want)
	}
}

func TestRegistryUnknownView(t *testing.T) {
	_, err := NewRegistry().Render(context.Background(), "nope", nil)
	if !errors.Is(err, ErrViewNotFound) {
		t.Fatalf("Render(nope) error = %v, want ErrViewNotFound", err)
	}
}

func TestRegistryCustomComponent(t *testing.T) {
	r := NewRegistry()
	r.Register("/plain/", func(data map[string]any) templ.Component {
		return templ.Raw(strings.Join(groupsFrom(data).Types(), ","))
	})
	out, err := r.Render(context.Background(), "plain", payload(notify.Groups{{Type: "a"}, {Type: "b"}}))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "a,b" {
		t.Fatalf("Render() = %q", out)
	}
}

func TestTemplatesRenderFromDir(t *testing.T) {
	dir := t.TempDir()
	writeView(t, dir, "notify/notify.html",
		`{{range .msgs}}[{{upper .Type}}:{{join .Messages ","}}]{{end}}`)

	tpl := NewTemplates(dir)
	out, err := tpl.Render(context.Background(), "notify/notify", payload(notify.Groups{
		{Type: "error", Messages: []string{"a", "<b>"}},
	}))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "[ERROR:a,&lt;b&gt;]" {
		t.Fatalf("Render() = %q", out)
	}
}

func TestTemplatesCacheAndReload(t *testing.T) {
	dir := t.TempDir()
	writeView(t, dir, "v.tmpl", "one")
	tpl := NewTemplates(dir)
	ctx := context.Background()

	if out, _ := tpl.Render(ctx, "v", nil); out != "one" {
		t.Fatalf("first render = %q", out)
	}
	writeView(t, dir, "v.tmpl", "two")
	if out, _ := tpl.Render(ctx, "v", nil); out != "one" {
		t.Fatalf("cached render = %q, want one", out)
	}
	tpl.Reload()
	if out, _ := tpl.Render(ctx, "v", nil); out != "two" {
		t.Fatalf("render after Reload = %q, want two", out)
	}
}

func TestTemplatesSetDir(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeView(t, a, "v.html", "from-a")
	writeView(t, b, "v.html", "from-b")
	tpl := NewTemplates(a)
	ctx := context.Background()

	if out, _ := tpl.Render(ctx, "v", nil); out != "from-a" {
		t.Fatalf("render = %q", out)
	}
	if !tpl.SetDir(b) {
		t.Fatalf("SetDir(b) = false")
	}
	if tpl.SetDir(b) {
		t.Fatalf("SetDir(b) twice should report no change")
	}
	if out, _ := tpl.Render(ctx, "v", nil); out != "from-b" {
		t.Fatalf("render after SetDir = %q", out)
	}
}

func TestTemplatesMissingAndEscaping(t *testing.T) {
	dir := t.TempDir()
	writeView(t, filepath.Dir(dir), "secret.html", "leaked")
	tpl := NewTemplates(dir)
	ctx := context.Background()

	for _, name := range []string{"missing", "", "../secret", "a/../../secret"} {
		if _, err := tpl.Render(ctx, name, nil); !errors.Is(err, ErrViewNotFound) {
			t.Fatalf("Render(%q) error = %v, want ErrViewNotFound", name, err)
		}
	}

	if _, err := NewTemplates("").Render(ctx, "notify/notify", nil); !errors.Is(err, ErrViewNotFound) {
		t.Fatalf("empty dir error = %v", err)
	}
}

func TestTemplatesParseError(t *testing.T) {
	dir := t.TempDir()
	writeView(t, dir, "bad.html", "{{range}")
	_, err := NewTemplates(dir).Render(context.Background(), "bad", nil)
	if err == nil || errors.Is(err, ErrViewNotFound) || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("Render(bad) error = %v", err)
	}
}

func TestChainFallsThroughOnNotFound(t *testing.T) {
	dir := t.TempDir()
	writeView(t, dir, "custom.html", "custom")
	r := Chain(NewTemplates(dir), nil, NewRegistry())
	ctx := context.Background()

	if out, err := r.Render(ctx, "custom", nil); err != nil || out != "custom" {
		t.Fatalf("Render(custom) = %q, %v", out, err)
	}
	out, err := r.Render(ctx, DefaultView, payload(notify.Groups{{Type: "e", Messages: []string{"m"}}}))
	if err != nil || !strings.Contains(out, "notify-e") {
		t.Fatalf("Render(default) = %q, %v", out, err)
	}
	if _, err := r.Render(ctx, "nowhere", nil); !errors.Is(err, ErrViewNotFound) {
		t.Fatalf("Render(nowhere) error = %v", err)
	}
}

func TestChainStopsOnOtherErrors(t *testing.T) {
	dir := t.TempDir()
	writeView(t, dir, "notify/notify.html", "{{.missing.field}")
	_, err := Chain(NewTemplates(dir), NewRegistry()).Render(context.Background(), DefaultView, nil)
	if err == nil || errors.Is(err, ErrViewNotFound) {
		t.Fatalf("Render() error = %v, want parse error from first renderer", err)
	}
}

var betweenTags = regexp.MustCompile(`>\s+<`)

// The shipped views/notify/notify.html must produce the same markup as the
// built-in component once indentation is dropped.
func TestShippedNotifyViewMatchesBuiltin(t *testing.T) {
	dir := filepath.Join("..", "..", "views")
	if _, err := os.Stat(filepath.Join(dir, "notify", "notify.html")); err != nil {
		t.Fatalf("shipped view: %v", err)
	}
	data := payload(notify.Groups{
		{Type: "information", Messages: []string{"Saved <b>ok</b>", "second"}},
		{Type: "error", Messages: []string{"Field required"}},
	})
	ctx := context.Background()

	got, err := Chain(NewTemplates(dir), NewRegistry()).Render(ctx, DefaultView, data)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, "\n") {
		t.Fatalf("output looks like the built-in component, not the file: %q", got)
	}
	want, err := NewRegistry().Render(ctx, DefaultView, data)
	if err != nil {
		t.Fatalf("registry Render() error = %v", err)
	}
	if norm := betweenTags.ReplaceAllString(strings.TrimSpace(got), "><"); norm != want {
		t.Fatalf("file view = %q\nwant      %q", norm, want)
	}
}
