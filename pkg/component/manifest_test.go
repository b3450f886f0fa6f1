package component

import (
	"errors"
	"testing"

	"github.com/opd-ai/sampcore/pkg/core"
)

type fakeComponent struct {
	name      string
	uid       uint64
	loadErr   error
	loaded    bool
	freed     bool
	freeOrder *[]string
}

func (f *fakeComponent) Name() string { return f.name }
func (f *fakeComponent) UID() uint64  { return f.uid }
func (f *fakeComponent) OnLoad(c *core.Core) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = true
	return nil
}
func (f *fakeComponent) OnFree() {
	f.freed = true
	if f.freeOrder != nil {
		*f.freeOrder = append(*f.freeOrder, f.name)
	}
}

func TestManifest_LoadContinuesPastAFailedComponent(t *testing.T) {
	m := NewManifest(nil)
	ok := &fakeComponent{name: "ok"}
	bad := &fakeComponent{name: "bad", loadErr: errors.New("boom")}
	alsoOK := &fakeComponent{name: "also-ok"}

	m.Load(nil, ok, bad, alsoOK)

	if !ok.loaded || !alsoOK.loaded {
		t.Fatal("expected both healthy components to load")
	}
	if bad.loaded {
		t.Fatal("expected the failing component to not be marked loaded")
	}
	loaded := m.Loaded()
	if len(loaded) != 2 || loaded[0].Name() != "ok" || loaded[1].Name() != "also-ok" {
		t.Fatalf("expected only the two healthy components in Loaded(), got %v", loaded)
	}
}

func TestManifest_FreeRunsInReverseLoadOrder(t *testing.T) {
	m := NewManifest(nil)
	var order []string
	a := &fakeComponent{name: "a", freeOrder: &order}
	b := &fakeComponent{name: "b", freeOrder: &order}
	m.Load(nil, a, b)

	m.Free()

	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Fatalf("expected reverse load order b,a — got %v", order)
	}
	if len(m.Loaded()) != 0 {
		t.Fatal("expected Free to clear the loaded list")
	}
}
