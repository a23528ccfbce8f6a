package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLookupFallsBackFromArenaToGlobal(t *testing.T) {
	dir := t.TempDir()
	globalPath := filepath.Join(dir, "global.conf")
	writeFile(t, globalPath, "[Net]\nBulletPixels = 16\n\n[Chat]\nFloodLimit = 10\n")

	arenaDir := filepath.Join(dir, "arenas")
	if err := os.Mkdir(arenaDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(arenaDir, "turf.conf"), "[Chat]\nFloodLimit = 20\n")

	s, err := Load(globalPath, arenaDir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.ApplyArenaOverrides("turf"); err != nil {
		t.Fatalf("apply overrides: %v", err)
	}

	if got := s.Lookup("turf", "Chat/FloodLimit").Int(); got != 20 {
		t.Fatalf("expected arena override 20, got %d", got)
	}
	if got := s.Lookup("other-arena", "Chat/FloodLimit").Int(); got != 10 {
		t.Fatalf("expected global fallback 10, got %d", got)
	}
	if got := s.Lookup("turf", "Net/BulletPixels").Int(); got != 16 {
		t.Fatalf("expected inherited global value 16, got %d", got)
	}
}

func TestLookupMissingKeyReturnsNeutralDefaults(t *testing.T) {
	dir := t.TempDir()
	globalPath := filepath.Join(dir, "global.conf")
	writeFile(t, globalPath, "[Net]\nBulletPixels = 16\n")

	s, err := Load(globalPath, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	v := s.Lookup("", "Misc/DoesNotExist")
	if v.Present() {
		t.Fatalf("expected missing key to report not present")
	}
	if v.Int() != 0 || v.Float() != 0 || v.Bool() != false || v.String() != "" {
		t.Fatalf("expected zero values for missing key, got %+v", v)
	}
}

func TestGetImplementsStringLookupSeam(t *testing.T) {
	dir := t.TempDir()
	globalPath := filepath.Join(dir, "global.conf")
	writeFile(t, globalPath, "[VIEnames]\nprobe1 = \"65.72.\"\n\n[Redirects]\nalpha = \"1.2.3.4:5000:arenaX\"\n")

	s, err := Load(globalPath, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	v, ok := s.Get("", "VIEnames/probe1")
	if !ok || v != "65.72." {
		t.Fatalf("expected VIEnames/probe1 = 65.72., got %q ok=%v", v, ok)
	}
	v, ok = s.Get("", "[Redirects]/alpha")
	if !ok || v != "1.2.3.4:5000:arenaX" {
		t.Fatalf("expected bracket-form key to resolve, got %q ok=%v", v, ok)
	}
	if _, ok := s.Get("", "VIEnames/missing"); ok {
		t.Fatalf("expected missing entry to report not found")
	}
}

func TestReloadPicksUpChangedFile(t *testing.T) {
	dir := t.TempDir()
	globalPath := filepath.Join(dir, "global.conf")
	writeFile(t, globalPath, "[Chat]\nFloodLimit = 10\n")

	s, err := Load(globalPath, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	writeFile(t, globalPath, "[Chat]\nFloodLimit = 99\n")
	if err := s.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := s.Lookup("", "Chat/FloodLimit").Int(); got != 99 {
		t.Fatalf("expected reloaded value 99, got %d", got)
	}
}
