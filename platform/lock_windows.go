//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const (
	policyKeyPath   = `Software\Microsoft\Windows\CurrentVersion\Policies\System`
	policyValueName = "DisableLockWorkstation"
)

// WindowsLocker locks the session through LockWorkStation.
type WindowsLocker struct{}

// NewLocker creates the Windows session locker.
func NewLocker() Locker {
	return &WindowsLocker{}
}

// Lock asks Windows to lock the interactive session. Per the API docs the
// call can succeed without the session visibly locking, and it fails
// outright while locking is disabled through the policy flag.
func (l *WindowsLocker) Lock() error {
	r, _, err := procLockWorkStation.Call()
	if r == 0 {
		return fmt.Errorf("LockWorkStation failed: %w", err)
	}
	return nil
}

// WindowsLockPolicy persists the DisableLockWorkstation policy value.
type WindowsLockPolicy struct{}

// NewLockPolicy creates the Windows lock-policy writer.
func NewLockPolicy() LockPolicy {
	return &WindowsLockPolicy{}
}

// SetEnabled writes the DisableLockWorkstation DWORD under HKCU. The write
// usually needs elevated privileges; a denied write surfaces as the native
// registry error.
//
// Disabling the gesture right after issuing a lock is racy: the disable can
// land before the lock is serviced, leaving the session unlocked even
// though the lock call succeeded. Callers that keep the gesture disabled
// wait a grace interval after locking before re-disabling.
func (p *WindowsLockPolicy) SetEnabled(enabled bool) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, policyKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open policy key: %w", err)
	}
	defer key.Close()

	var disabled uint32
	if !enabled {
		disabled = 1
	}
	if err := key.SetDWordValue(policyValueName, disabled); err != nil {
		return fmt.Errorf("failed to write %s: %w", policyValueName, err)
	}
	return nil
}
