package platform

import (
	"context"
	"strings"
)

// Modifiers is a set of hotkey modifier flags. The bit values match the
// encoding expected by the Windows RegisterHotKey API and must not change.
type Modifiers uint32

const (
	ModAlt     Modifiers = 0x0001
	ModControl Modifiers = 0x0002
	ModShift   Modifiers = 0x0004
	ModWin     Modifiers = 0x0008
	// ModNoRepeat suppresses repeated hotkey notifications while the key is
	// held down. It is a behavioral flag, not a modifier key. Not supported
	// on Windows Vista.
	ModNoRepeat Modifiers = 0x4000
)

// ModifiersFrom builds a modifier set from discrete flags. Repeat
// suppression is always included so a held key fires the hotkey once.
func ModifiersFrom(ctrl, shift, win, alt bool) Modifiers {
	m := ModNoRepeat
	if ctrl {
		m |= ModControl
	}
	if shift {
		m |= ModShift
	}
	if win {
		m |= ModWin
	}
	if alt {
		m |= ModAlt
	}
	return m
}

// Has reports whether all bits of other are set in m.
func (m Modifiers) Has(other Modifiers) bool {
	return m&other == other
}

// String renders the modifier set for logs, e.g. "ctrl+shift".
func (m Modifiers) String() string {
	var parts []string
	if m.Has(ModControl) {
		parts = append(parts, "ctrl")
	}
	if m.Has(ModShift) {
		parts = append(parts, "shift")
	}
	if m.Has(ModWin) {
		parts = append(parts, "win")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Key is a Windows virtual-key code.
// Reference: https://learn.microsoft.com/en-us/windows/win32/inputdev/virtual-key-codes
type Key uint32

// Hotkey is a system-wide key combination. Immutable once registered;
// this process registers at most one hotkey at a time.
type Hotkey struct {
	Modifiers Modifiers
	Key       Key
}

// EventKind classifies a message received from the OS event stream.
type EventKind int

const (
	// EventHotkey means the registered hotkey was pressed.
	EventHotkey EventKind = iota
	// EventOther is an unrelated message; consume and keep listening.
	EventOther
	// EventQuit means the message stream is ending and listening should stop.
	EventQuit
	// EventError means a single read failed; Err carries the native error.
	// Not a reason to stop listening.
	EventError
)

// Event is one classified message from the OS event stream.
type Event struct {
	Kind EventKind
	Err  error
}

// HotkeySource registers a system-wide hotkey and streams the classified
// events it produces. The registration lives until ctx is cancelled; the
// implementation releases the OS registration on every exit path and then
// closes the returned channel.
type HotkeySource interface {
	Listen(ctx context.Context, hk Hotkey) (<-chan Event, error)
}

// Locker locks the user's session. A nil error does not guarantee the
// session visibly locked; Windows documents cases where LockWorkStation
// succeeds without effect, and the call is also a no-op while the native
// lock gesture is disabled.
type Locker interface {
	Lock() error
}

// LockPolicy toggles whether the native session-lock gesture (Win+L and
// programmatic locking) is available at all. The setting is persisted
// outside the process; writes are idempotent overwrites with no
// reconciliation of changes made by other processes.
type LockPolicy interface {
	SetEnabled(enabled bool) error
}

// KeyResolver maps a printable character to the key that produces it under
// the keyboard layout active at call time. The mapping is layout-dependent
// and must be resolved once, right before registration, never cached.
type KeyResolver interface {
	KeyFromChar(c rune) (Key, error)
}
