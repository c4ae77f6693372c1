package notify

import (
	"context"
	"testing"
)

type mapSource map[string]string

func (m mapSource) Lookup(key string) string { return m[key] }

func TestDefaultsFromTrimsValues(t *testing.T) {
	d := DefaultsFrom(mapSource{
		KeyDefaultMessageType: " information ",
		KeyView:               "notify/notify\n",
	})
	if d.MessageType != "information" || d.View != "notify/notify" {
		t.Fatalf("DefaultsFrom() = %+v", d)
	}
}

func TestDefaultsFromMissingKeys(t *testing.T) {
	if d := DefaultsFrom(mapSource{}); d != (Defaults{}) {
		t.Fatalf("DefaultsFrom(empty) = %+v", d)
	}
	if d := DefaultsFrom(nil); d != (Defaults{}) {
		t.Fatalf("DefaultsFrom(nil) = %+v", d)
	}
}

func TestStoreContextRoundTrip(t *testing.T) {
	s := New(Defaults{}, nil)
	ctx := WithStore(context.Background(), s)
	if FromContext(ctx) != s {
		t.Fatalf("FromContext() did not return the attached store")
	}
	if FromContext(context.Background()) != nil {
		t.Fatalf("FromContext(empty) should be nil")
	}
	if FromContext(nil) != nil {
		t.Fatalf("FromContext(nil) should be nil")
	}
	if FromContext(WithStore(nil, s)) != s {
		t.Fatalf("WithStore(nil) should still attach the store")
	}
}

func TestGroupsHelpers(t *testing.T) {
	g := Groups{{Type: "a", Messages: []string{"1", "2"}}, {Type: "b", Messages: []string{"3"}}}
	if msgs, ok := g.Get("a"); !ok || len(msgs) != 2 {
		t.Fatalf("Get(a) = %v, %v", msgs, ok)
	}
	if _, ok := g.Get("z"); ok {
		t.Fatalf("Get(z) ok = true")
	}
	if g.Len() != 3 {
		t.Fatalf("Len() = %d", g.Len())
	}
	m := g.Map()
	m["a"][0] = "x"
	if g[0].Messages[0] != "1" {
		t.Fatalf("Map() aliases group slices")
	}
}
