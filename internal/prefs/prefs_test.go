package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p := Load("")
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if len(p.Recent) != 0 {
		t.Fatalf("Recent = %q, want empty", p.Recent)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "karaflog")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	content := "theme = \"Nord\"\nrecent = [\"/var/log/karaf.log\", \"/var/log/karaf.log\", \"/tmp/other.log\"]\n"
	if err := os.WriteFile(prefsFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load("")
	if p.Theme != "Nord" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Nord")
	}
	if !slices.Equal(p.Recent, []string{"/var/log/karaf.log", "/tmp/other.log"}) {
		t.Fatalf("Recent = %q, want duplicates removed", p.Recent)
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "subdir", "prefs.toml")

	p := Prefs{Theme: "Nord", Recent: []string{"/a.log"}}
	if err := Save(prefsFile, p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded := Load(prefsFile)
	if loaded.Theme != "Nord" {
		t.Fatalf("Theme = %q, want %q", loaded.Theme, "Nord")
	}
	if !slices.Equal(loaded.Recent, []string{"/a.log"}) {
		t.Fatalf("Recent = %q, want [/a.log]", loaded.Recent)
	}
}

func TestLoad_EmptyThemeFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if p := Load(prefsFile); p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if p := Load(prefsFile); p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestAddRecent_MovesToFrontAndCaps(t *testing.T) {
	var p Prefs
	for i := range MaxRecent + 3 {
		p.AddRecent(fmt.Sprintf("/logs/%d.log", i))
	}
	if len(p.Recent) != MaxRecent {
		t.Fatalf("len(Recent) = %d, want %d", len(p.Recent), MaxRecent)
	}

	p.AddRecent("/logs/5.log")
	if p.Recent[0] != "/logs/5.log" {
		t.Fatalf("Recent[0] = %q, want /logs/5.log", p.Recent[0])
	}
	if n := len(slices.DeleteFunc(slices.Clone(p.Recent), func(s string) bool { return s != "/logs/5.log" })); n != 1 {
		t.Fatalf("/logs/5.log appears %d times, want 1", n)
	}
	if got := p.LastDir(); got != "/logs" {
		t.Fatalf("LastDir = %q, want /logs", got)
	}
}
