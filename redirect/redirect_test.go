package redirect

import (
	"sync"
	"sync/atomic"
	"testing"
)

type mapConfig map[string]string

func (c mapConfig) Get(arena, key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

func TestResolveLiteral(t *testing.T) {
	r := NewResolver(nil)
	ep, source, err := r.Resolve("1.2.3.4:5000")
	if err != nil {
		t.Fatal(err)
	}
	if source != SourceLiteral || ep.Port != 5000 || ep.Arena != "" {
		t.Fatalf("unexpected resolve result: %+v %v", ep, source)
	}
}

func TestResolveLiteralWithArena(t *testing.T) {
	r := NewResolver(nil)
	ep, _, err := r.Resolve("1.2.3.4:5000:hub")
	if err != nil {
		t.Fatal(err)
	}
	if ep.Arena != "hub" {
		t.Fatalf("expected arena hub, got %q", ep.Arena)
	}
}

func TestResolveConfigAliasThenCache(t *testing.T) {
	cfg := mapConfig{"Redirects/hub": "5.6.7.8:7900:hub"}
	r := NewResolver(cfg)

	_, source, err := r.Resolve("hub")
	if err != nil {
		t.Fatal(err)
	}
	if source != SourceConfig {
		t.Fatalf("expected config source, got %v", source)
	}

	_, source, err = r.Resolve("hub")
	if err != nil {
		t.Fatal(err)
	}
	if source != SourceCache {
		t.Fatalf("expected cache source on second lookup, got %v", source)
	}
}

func TestResolveRejectsMalformedLiteral(t *testing.T) {
	r := NewResolver(nil)
	if _, _, err := r.Resolve("not-an-endpoint"); err == nil {
		t.Fatalf("expected error for malformed literal")
	}
}

type countingConfig struct {
	mapConfig
	lookups int64
}

func (c *countingConfig) Get(arena, key string) (string, bool) {
	atomic.AddInt64(&c.lookups, 1)
	return c.mapConfig.Get(arena, key)
}

func TestResolveCollapsesConcurrentAliasLookups(t *testing.T) {
	cfg := &countingConfig{mapConfig: mapConfig{"Redirects/hub": "5.6.7.8:7900:hub"}}
	r := NewResolver(cfg)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := r.Resolve("hub"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt64(&cfg.lookups); n < 1 || n > 20 {
		t.Fatalf("lookups out of expected range: %d", n)
	}
	if _, ok := r.cache["hub"]; !ok {
		t.Fatalf("expected hub to be cached after concurrent resolves")
	}
}
