package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseCombo(t *testing.T) {
	cases := []struct {
		combo string
		want  KeySpec
	}{
		{"ctrl+shift+l", KeySpec{Ctrl: true, Shift: true, Char: 'l'}},
		{"shift+ctrl+l", KeySpec{Ctrl: true, Shift: true, Char: 'l'}},
		{"CTRL+ALT+K", KeySpec{Ctrl: true, Alt: true, Char: 'k'}},
		{"win+l", KeySpec{Win: true, Char: 'l'}},
		{"ctrl+shift", KeySpec{Ctrl: true, Shift: true}},
		{"control+windows", KeySpec{Ctrl: true, Win: true}},
	}
	for _, c := range cases {
		got, err := ParseCombo(c.combo)
		if err != nil {
			t.Errorf("ParseCombo(%q) error = %v", c.combo, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseCombo(%q) = %+v, want %+v", c.combo, got, c.want)
		}
	}
}

func TestParseComboRejectsUnknownModifier(t *testing.T) {
	if _, err := ParseCombo("meta+l"); err == nil {
		t.Error("ParseCombo(\"meta+l\") should fail, meta is not a modifier")
	}
	if _, err := ParseCombo("ctrl+foo+l"); err == nil {
		t.Error("ParseCombo(\"ctrl+foo+l\") should fail on the middle part")
	}
}

func TestParseComboRejectsMultiCharKey(t *testing.T) {
	_, err := ParseCombo("ctrl+f1")
	if !errors.Is(err, ErrBadKeyChar) {
		t.Errorf("ParseCombo(\"ctrl+f1\") error = %v, want ErrBadKeyChar", err)
	}
}

func TestKeySpecConflict(t *testing.T) {
	cfg := defaultConfig()
	cfg.Hotkey.Combo = "ctrl+shift+l"
	cfg.Hotkey.VirtualCode = 0x4C

	_, err := cfg.KeySpec()
	if !errors.Is(err, ErrConflictingKeys) {
		t.Errorf("KeySpec() error = %v, want ErrConflictingKeys", err)
	}
}

func TestKeySpecVirtualCodeWithModifierOnlyCombo(t *testing.T) {
	cfg := defaultConfig()
	cfg.Hotkey.Combo = "ctrl+shift"
	cfg.Hotkey.VirtualCode = 0x70 // VK_F1

	spec, err := cfg.KeySpec()
	if err != nil {
		t.Fatalf("KeySpec() error = %v", err)
	}
	if !spec.Ctrl || !spec.Shift {
		t.Errorf("modifiers lost: %+v", spec)
	}
	if spec.VirtualCode != 0x70 || spec.Char != 0 {
		t.Errorf("key = %+v, want virtual code 0x70 and no char", spec)
	}
	if !spec.Configured() {
		t.Error("spec with a virtual code should be configured")
	}
}

func TestKeySpecNoHotkey(t *testing.T) {
	cfg := defaultConfig()

	spec, err := cfg.KeySpec()
	if err != nil {
		t.Fatalf("KeySpec() error = %v", err)
	}
	if spec.Configured() {
		t.Errorf("empty hotkey section should not be configured, got %+v", spec)
	}
}

func TestLoadCreatesDefaultConfig(t *testing.T) {
	t.Setenv("APPDATA", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Lock.GraceMs != 500 {
		t.Errorf("Lock.GraceMs = %d, want 500", cfg.Lock.GraceMs)
	}
	if cfg.Hotkey.Combo != "" {
		t.Errorf("Hotkey.Combo = %q, want empty", cfg.Hotkey.Combo)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file was not written: %v", err)
	}
}

func TestLoadExistingConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APPDATA", dir)

	content := `
[hotkey]
combo = "ctrl+alt+l"

[lock]
disable_native = true
restore_on_exit = true
grace_ms = 250

[web]
enabled = true
port = 9000
`
	cfgDir := filepath.Join(dir, "winlock")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Hotkey.Combo != "ctrl+alt+l" {
		t.Errorf("Hotkey.Combo = %q, want %q", cfg.Hotkey.Combo, "ctrl+alt+l")
	}
	if !cfg.Lock.DisableNative || !cfg.Lock.RestoreOnExit {
		t.Errorf("lock flags = %+v, want both set", cfg.Lock)
	}
	if cfg.Lock.GraceMs != 250 {
		t.Errorf("Lock.GraceMs = %d, want 250", cfg.Lock.GraceMs)
	}
	if !cfg.Web.Enabled || cfg.Web.Port != 9000 {
		t.Errorf("web config = %+v", cfg.Web)
	}
	// Fields absent from the file keep their defaults.
	if !cfg.Journal.Enabled {
		t.Error("Journal.Enabled should default to true")
	}
}
