//go:build !windows

package platform

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by every platform operation on non-Windows
// builds. The agent and its collaborators stay portable for testing; only
// the real OS integrations are Windows-only.
var ErrUnsupported = errors.New("winlock only supports Windows")

type unsupportedHotkeySource struct{}

// NewHotkeySource returns a hotkey source that always fails on this platform.
func NewHotkeySource() HotkeySource { return unsupportedHotkeySource{} }

func (unsupportedHotkeySource) Listen(context.Context, Hotkey) (<-chan Event, error) {
	return nil, ErrUnsupported
}

type unsupportedLocker struct{}

// NewLocker returns a session locker that always fails on this platform.
func NewLocker() Locker { return unsupportedLocker{} }

func (unsupportedLocker) Lock() error { return ErrUnsupported }

type unsupportedLockPolicy struct{}

// NewLockPolicy returns a lock-policy writer that always fails on this platform.
func NewLockPolicy() LockPolicy { return unsupportedLockPolicy{} }

func (unsupportedLockPolicy) SetEnabled(bool) error { return ErrUnsupported }

type unsupportedKeyResolver struct{}

// NewKeyResolver returns a key resolver that always fails on this platform.
func NewKeyResolver() KeyResolver { return unsupportedKeyResolver{} }

func (unsupportedKeyResolver) KeyFromChar(rune) (Key, error) { return 0, ErrUnsupported }
