// Package config implements the Config Store (A1, SPEC_FULL.md §4.12): a
// layered TOML key-value store with per-arena overrides over a global
// default file, reloaded on ConfChanged. Grounded on the teacher's
// ecosystem sibling config.Load pattern (BurntSushi/toml, flat typed
// struct swapped here for a dotted-key map since the canonical key set
// is open-ended and externally defined, not a fixed Go struct).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// Store resolves a canonical key (e.g. "Net/BulletPixels", "VIEnames/probe1")
// against a per-arena override layer, falling back to global defaults.
type Store struct {
	mu       sync.RWMutex
	path     string
	arenaDir string

	global    map[string]any
	overrides map[string]map[string]any
}

// Load reads the global TOML file at path. arenaDir is optional; when set,
// ApplyArenaOverrides looks for "<arenaDir>/<arena>.conf".
func Load(path, arenaDir string) (*Store, error) {
	s := &Store{
		path:      path,
		arenaDir:  arenaDir,
		overrides: make(map[string]map[string]any),
	}
	if err := s.reloadGlobalLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) reloadGlobalLocked() error {
	var raw map[string]any
	if _, err := toml.DecodeFile(s.path, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", s.path, err)
	}
	s.mu.Lock()
	s.global = flatten(raw)
	s.mu.Unlock()
	return nil
}

// Reload implements §4.12's "re-parsed on ConfChanged".
func (s *Store) Reload() error {
	return s.reloadGlobalLocked()
}

// ApplyArenaOverrides loads "<arenaDir>/<arena>.conf" as this arena's
// override layer (§3 "re-derived on ArenaCreate/ConfChanged"). A missing
// file is not an error: the arena simply has no overrides.
func (s *Store) ApplyArenaOverrides(arena string) error {
	if s.arenaDir == "" {
		return nil
	}
	path := filepath.Join(s.arenaDir, arena+".conf")
	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("parse arena config %s: %w", path, err)
	}
	s.mu.Lock()
	s.overrides[arena] = flatten(raw)
	s.mu.Unlock()
	return nil
}

// DropArenaOverrides forgets an arena's override layer on teardown.
func (s *Store) DropArenaOverrides(arena string) {
	s.mu.Lock()
	delete(s.overrides, arena)
	s.mu.Unlock()
}

// Get implements the authgate.Config / redirect.Config seam: a raw string
// lookup with an existence flag, used for string-typed keys like
// VIEnames/<name> and Redirects/<alias>.
func (s *Store) Get(arena, canonicalKey string) (string, bool) {
	v, ok := s.lookup(arena, canonicalKey)
	if !ok {
		return "", false
	}
	return v.String(), true
}

// Lookup returns the typed Value for canonicalKey, falling back from the
// arena override layer to the global default. A missing key yields the
// zero Value, whose accessors return neutral defaults (§7).
func (s *Store) Lookup(arena, canonicalKey string) Value {
	v, _ := s.lookup(arena, canonicalKey)
	return v
}

func (s *Store) lookup(arena, canonicalKey string) (Value, bool) {
	key := normalizeKey(canonicalKey)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if arena != "" {
		if ov, ok := s.overrides[arena]; ok {
			if raw, ok := ov[key]; ok {
				return Value{raw}, true
			}
		}
	}
	if raw, ok := s.global[key]; ok {
		return Value{raw}, true
	}
	return Value{}, false
}

// normalizeKey strips bracket-section notation ("[VIEnames]/probe1" ->
// "VIEnames/probe1") so callers may pass either spec.md's literal
// canonical spelling or the bracket-free form.
func normalizeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		p = strings.TrimPrefix(p, "[")
		p = strings.TrimSuffix(p, "]")
		parts[i] = p
	}
	return strings.Join(parts, "/")
}

// flatten walks a nested TOML table into a dotted-with-slashes map, e.g.
// {"Net": {"BulletPixels": 16}} -> {"Net/BulletPixels": 16}, matching
// spec.md's canonical "/"-separated key spelling.
func flatten(m map[string]any) map[string]any {
	out := make(map[string]any)
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		if sub, ok := v.(map[string]any); ok {
			for k, vv := range sub {
				key := k
				if prefix != "" {
					key = prefix + "/" + k
				}
				walk(key, vv)
			}
			return
		}
		out[prefix] = v
	}
	walk("", m)
	return out
}

// Value is a config entry of unknown static type; its accessors mirror
// §7's "neutral default" rule: missing or mistyped yields the zero value,
// never an error.
type Value struct {
	raw any
}

func (v Value) Present() bool { return v.raw != nil }

func (v Value) String() string {
	switch t := v.raw.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

func (v Value) Int() int {
	switch t := v.raw.(type) {
	case int64:
		return int(t)
	case int:
		return t
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n
	default:
		return 0
	}
}

func (v Value) Float() float64 {
	switch t := v.raw.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	default:
		return 0
	}
}

func (v Value) Bool() bool {
	switch t := v.raw.(type) {
	case bool:
		return t
	case string:
		s := strings.TrimSpace(t)
		return strings.EqualFold(s, "true") || s == "1"
	default:
		return false
	}
}
