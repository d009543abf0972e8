package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"markestedt/winlock/config"
	"markestedt/winlock/platform"
	"markestedt/winlock/storage"
)

// Journal records lock attempts. Implemented by storage.DB.
type Journal interface {
	SaveLockEvent(*storage.LockEvent) error
}

// Broadcaster pushes lock events to live dashboard clients.
type Broadcaster interface {
	BroadcastLockEvent(storage.LockEvent)
}

// Agent owns the session-lock control loop: it applies the lock policy,
// registers the hotkey and reacts to the event stream until shutdown.
type Agent struct {
	cfg      *config.Config
	hotkeys  platform.HotkeySource
	locker   platform.Locker
	policy   platform.LockPolicy
	resolver platform.KeyResolver

	// Optional collaborators; either may be nil.
	journal     Journal
	broadcaster Broadcaster

	// lockRequests lets the tray trigger the same lock path as the hotkey.
	lockRequests <-chan struct{}

	// sleep is swapped out in tests to observe the grace interval.
	sleep func(time.Duration)
}

// NewAgent creates an agent wired to the real platform services.
func NewAgent(cfg *config.Config) *Agent {
	return &Agent{
		cfg:      cfg,
		hotkeys:  platform.NewHotkeySource(),
		locker:   platform.NewLocker(),
		policy:   platform.NewLockPolicy(),
		resolver: platform.NewKeyResolver(),
		sleep:    time.Sleep,
	}
}

// SetJournal attaches the lock-event journal.
func (a *Agent) SetJournal(j Journal) { a.journal = j }

// SetBroadcaster attaches the live dashboard feed.
func (a *Agent) SetBroadcaster(b Broadcaster) { a.broadcaster = b }

// SetLockRequests attaches an external lock trigger such as the tray menu.
func (a *Agent) SetLockRequests(ch <-chan struct{}) { a.lockRequests = ch }

// Run drives the agent until ctx is cancelled, a quit event arrives, or a
// fatal setup error occurs. Setup errors (bad key specification, failed
// registration) are returned; everything that happens per iteration is
// logged and the loop keeps listening.
func (a *Agent) Run(ctx context.Context) error {
	if a.cfg.Lock.DisableNative {
		a.disableLock()
	}
	if a.cfg.Lock.RestoreOnExit {
		// Runs on every exit path, including setup failures below.
		defer a.enableLock()
	}

	spec, err := a.cfg.KeySpec()
	if err != nil {
		return err
	}
	if !spec.Configured() {
		slog.Info("No hotkey configured, nothing to listen for")
		return nil
	}

	// The character is resolved against the layout active right now, at
	// the same moment the hotkey is registered.
	hk, err := a.resolveHotkey(spec)
	if err != nil {
		return err
	}

	events, err := a.hotkeys.Listen(ctx, hk)
	if err != nil {
		return fmt.Errorf("failed to register the hotkey in the system: %w", err)
	}

	slog.Info("Listening for hotkey", "modifiers", hk.Modifiers.String(), "key", fmt.Sprintf("%#x", uint32(hk.Key)))

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-a.lockRequests:
			a.lockOnce("tray")

		case evt, ok := <-events:
			if !ok {
				return nil
			}
			switch evt.Kind {
			case platform.EventHotkey:
				a.lockOnce("hotkey")
			case platform.EventOther:
				// Unrelated message, keep listening.
			case platform.EventError:
				slog.Error("Failed to read a message from Windows", "error", evt.Err)
			case platform.EventQuit:
				return nil
			}
		}
	}
}

// resolveHotkey turns the validated key specification into a registrable
// hotkey. Repeat suppression is always on.
func (a *Agent) resolveHotkey(spec config.KeySpec) (platform.Hotkey, error) {
	hk := platform.Hotkey{
		Modifiers: platform.ModifiersFrom(spec.Ctrl, spec.Shift, spec.Win, spec.Alt),
	}
	if spec.Char != 0 {
		key, err := a.resolver.KeyFromChar(spec.Char)
		if err != nil {
			return platform.Hotkey{}, fmt.Errorf("failed to map the key to its virtual code: %w", err)
		}
		hk.Key = key
	} else {
		hk.Key = platform.Key(spec.VirtualCode)
	}
	return hk, nil
}

// lockOnce performs one lock action. The native gesture is re-enabled
// first, unconditionally: otherwise our own disable would block the very
// lock we are about to issue. When the gesture is kept disabled by
// default, the re-disable waits out the grace interval so the lock is
// serviced first; the delay is best effort, not a guarantee.
func (a *Agent) lockOnce(source string) {
	start := time.Now()

	a.enableLock()
	err := a.locker.Lock()
	if err != nil {
		slog.Error("Failed to lock the workstation", "error", err)
	}

	a.record(source, time.Since(start), err)

	if a.cfg.Lock.DisableNative {
		a.sleep(a.graceInterval())
		a.disableLock()
	}
}

func (a *Agent) graceInterval() time.Duration {
	if a.cfg.Lock.GraceMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(a.cfg.Lock.GraceMs) * time.Millisecond
}

// enableLock and disableLock write the persisted policy flag. Failures are
// logged and swallowed: a missed write should not end the session-long
// listener. The write is idempotent, so racing the shutdown path is safe.
func (a *Agent) enableLock() {
	if err := a.policy.SetEnabled(true); err != nil {
		slog.Error("Failed to restore native locking", "error", err)
	}
}

func (a *Agent) disableLock() {
	if err := a.policy.SetEnabled(false); err != nil {
		slog.Error("Failed to disable native locking", "error", err)
	}
}

// record journals and broadcasts a lock attempt.
func (a *Agent) record(source string, latency time.Duration, lockErr error) {
	event := storage.LockEvent{
		Timestamp: time.Now(),
		Source:    source,
		LatencyMs: latency.Milliseconds(),
		Success:   lockErr == nil,
	}
	if lockErr != nil {
		event.ErrorMessage = lockErr.Error()
	}

	if a.journal != nil {
		if err := a.journal.SaveLockEvent(&event); err != nil {
			slog.Error("Failed to journal lock event", "error", err)
		}
	}
	if a.broadcaster != nil {
		a.broadcaster.BroadcastLockEvent(event)
	}
}
