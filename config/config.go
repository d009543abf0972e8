package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
)

// Validation errors for the hotkey specification.
var (
	// ErrConflictingKeys means both a key character and an explicit
	// virtual-key code were given; the two forms are mutually exclusive.
	ErrConflictingKeys = errors.New("both a key character and a virtual-key code were given")
	// ErrBadKeyChar means the combo's key part is not a single character.
	ErrBadKeyChar = errors.New("the key part of the combo must be a single character (use virtual_code for keys without one)")
)

type Config struct {
	Hotkey  HotkeyConfig  `toml:"hotkey"`
	Lock    LockConfig    `toml:"lock"`
	Journal JournalConfig `toml:"journal"`
	Systray SystrayConfig `toml:"systray"`
	Web     WebConfig     `toml:"web"`
}

type HotkeyConfig struct {
	// Combo is a combination like "ctrl+shift+l". The trailing part, if
	// present, is the key character to resolve against the keyboard layout;
	// leave it off ("ctrl+shift") when virtual_code names the key instead.
	Combo string `toml:"combo"`
	// VirtualCode is an explicit Windows virtual-key code for keys that
	// have no printable character. Mutually exclusive with a combo key.
	VirtualCode uint32 `toml:"virtual_code"`
}

type LockConfig struct {
	// DisableNative turns off the native lock gesture (Win+L) at startup
	// and keeps it off between hotkey presses.
	DisableNative bool `toml:"disable_native"`
	// RestoreOnExit re-enables the native lock gesture when the process
	// terminates, however it terminates.
	RestoreOnExit bool `toml:"restore_on_exit"`
	// GraceMs is how long to wait after a lock action before re-disabling
	// the native gesture, so the lock is serviced while locking is still
	// allowed. Only used with disable_native.
	GraceMs int `toml:"grace_ms"`
}

type JournalConfig struct {
	Enabled bool `toml:"enabled"`
}

type SystrayConfig struct {
	Enabled bool `toml:"enabled"`
}

type WebConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		Hotkey: HotkeyConfig{
			Combo: "",
		},
		Lock: LockConfig{
			DisableNative: false,
			RestoreOnExit: false,
			GraceMs:       500,
		},
		Journal: JournalConfig{Enabled: true},
		Systray: SystrayConfig{Enabled: true},
		Web: WebConfig{
			Enabled: false,
			Port:    8231,
		},
	}
}

// Dir returns the directory holding the config file and the journal,
// creating it if needed.
func Dir() (string, error) {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
	}

	configDir := filepath.Join(appData, "winlock")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// ConfigPath returns the path to the configuration file
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the TOML file
// If the file doesn't exist, it creates it with default values
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := defaultConfig()
		if err := save(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	// Load existing config
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

// save writes the configuration to the TOML file
func save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// KeySpec is the validated hotkey specification. At most one of Char and
// VirtualCode names the key; when both are zero no hotkey is configured.
type KeySpec struct {
	Ctrl  bool
	Shift bool
	Win   bool
	Alt   bool
	// Char is a printable character to resolve against the keyboard layout
	// at registration time.
	Char rune
	// VirtualCode is an explicit virtual-key code.
	VirtualCode uint32
}

// Configured reports whether a key was specified at all. An unconfigured
// spec means the listener never starts, but the lock-policy flags are
// still honored.
func (s KeySpec) Configured() bool {
	return s.Char != 0 || s.VirtualCode != 0
}

// KeySpec validates the hotkey section and folds it into a KeySpec.
// Giving both a combo key character and a virtual_code is an error, never
// a silent preference for one of them.
func (c *Config) KeySpec() (KeySpec, error) {
	var spec KeySpec

	if c.Hotkey.Combo != "" {
		combo, err := ParseCombo(c.Hotkey.Combo)
		if err != nil {
			return KeySpec{}, err
		}
		spec = combo
	}

	if c.Hotkey.VirtualCode != 0 {
		if spec.Char != 0 {
			return KeySpec{}, ErrConflictingKeys
		}
		spec.VirtualCode = c.Hotkey.VirtualCode
	}

	return spec, nil
}

// ParseCombo parses a combination like "ctrl+shift+l" or "ctrl+win". The
// last part may be a single key character; everything else must be a
// modifier name.
func ParseCombo(combo string) (KeySpec, error) {
	var spec KeySpec
	parts := strings.Split(strings.ToLower(combo), "+")

	for i, part := range parts {
		part = strings.TrimSpace(part)

		isModifier := true
		switch part {
		case "ctrl", "control":
			spec.Ctrl = true
		case "shift":
			spec.Shift = true
		case "win", "windows":
			spec.Win = true
		case "alt":
			spec.Alt = true
		default:
			isModifier = false
		}

		// If it's not a modifier and it's the last part, it's the key
		if !isModifier {
			if i != len(parts)-1 {
				return KeySpec{}, fmt.Errorf("unknown modifier: %s", part)
			}
			if utf8.RuneCountInString(part) != 1 {
				return KeySpec{}, ErrBadKeyChar
			}
			spec.Char, _ = utf8.DecodeRuneInString(part)
		}
	}

	return spec, nil
}
