//go:build windows

package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                = windows.NewLazySystemDLL("user32.dll")
	procRegisterHotKey    = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey  = user32.NewProc("UnregisterHotKey")
	procGetMessage        = user32.NewProc("GetMessageW")
	procPostThreadMessage = user32.NewProc("PostThreadMessageW")
	procVkKeyScan         = user32.NewProc("VkKeyScanW")
	procLockWorkStation   = user32.NewProc("LockWorkStation")
)

const (
	// hotkeyID is the single registration slot this process uses.
	hotkeyID = 0x31710C4

	wmHotkey = 0x0312
	wmQuit   = 0x0012

	errnoHotkeyAlreadyRegistered = syscall.Errno(1409) // ERROR_HOTKEY_ALREADY_REGISTERED
)

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

// WindowsHotkeySource implements HotkeySource with RegisterHotKey and a
// GetMessage pump on a dedicated OS thread.
type WindowsHotkeySource struct{}

// NewHotkeySource creates the Windows hotkey source.
func NewHotkeySource() HotkeySource {
	return &WindowsHotkeySource{}
}

// Listen registers hk system-wide and pumps the thread's message queue into
// the returned channel. RegisterHotKey ties the registration to the calling
// thread, so registration, the blocking reads and UnregisterHotKey all run
// on one locked goroutine; cancelling ctx posts WM_QUIT to that thread,
// which drains the pump and releases the registration before it unwinds.
func (s *WindowsHotkeySource) Listen(ctx context.Context, hk Hotkey) (<-chan Event, error) {
	events := make(chan Event, 10)
	regErr := make(chan error, 1)
	threadID := make(chan uint32, 1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(events)

		r, _, err := procRegisterHotKey.Call(
			0, // NULL hwnd: deliver WM_HOTKEY to this thread's queue
			hotkeyID,
			uintptr(hk.Modifiers),
			uintptr(hk.Key),
		)
		if r == 0 {
			regErr <- registrationError(err)
			return
		}
		defer procUnregisterHotKey.Call(0, hotkeyID)

		threadID <- windows.GetCurrentThreadId()
		regErr <- nil

		// Sends give up once ctx is cancelled so the pump always reaches
		// the deferred UnregisterHotKey, reader or no reader.
		deliver := func(e Event) bool {
			select {
			case events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var m msg
		for {
			ret, _, err := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			switch int32(ret) {
			case 0: // WM_QUIT
				deliver(Event{Kind: EventQuit})
				return
			case -1:
				if !deliver(Event{Kind: EventError, Err: fmt.Errorf("GetMessage failed: %w", err)}) {
					return
				}
				continue
			}
			var kind EventKind
			switch m.message {
			case wmHotkey:
				kind = EventHotkey
			default:
				kind = EventOther
			}
			if !deliver(Event{Kind: kind}) {
				return
			}
		}
	}()

	select {
	case err := <-regErr:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tid := <-threadID
	go func() {
		<-ctx.Done()
		procPostThreadMessage.Call(uintptr(tid), wmQuit, 0, 0)
	}()

	return events, nil
}

// registrationError keeps the native error intact while making the two
// common failures tellable apart in the log.
func registrationError(err error) error {
	switch {
	case errors.Is(err, errnoHotkeyAlreadyRegistered):
		return fmt.Errorf("key combination is already claimed by another application: %w", err)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("insufficient privilege to register a global hotkey: %w", err)
	default:
		return fmt.Errorf("RegisterHotKey failed: %w", err)
	}
}

// WindowsKeyResolver resolves characters against the active keyboard layout.
type WindowsKeyResolver struct{}

// NewKeyResolver creates the Windows key resolver.
func NewKeyResolver() KeyResolver {
	return &WindowsKeyResolver{}
}

// KeyFromChar maps c to the virtual-key code that produces it under the
// current layout, via VkKeyScanW. The low byte holds the key code; a return
// of -1 means no key on this layout emits the character.
func (r *WindowsKeyResolver) KeyFromChar(c rune) (Key, error) {
	ret, _, _ := procVkKeyScan.Call(uintptr(uint16(c)))
	scan := int16(ret)
	if scan == -1 {
		return 0, fmt.Errorf("no key maps to %q in the current keyboard layout", c)
	}
	return Key(scan & 0x00ff), nil
}
