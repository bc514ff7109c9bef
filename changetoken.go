package transferkit

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ============================================================================
// ChangeToken Implementations
// ============================================================================

// CallbackChangeToken is a ChangeToken that supports active callbacks.
// Used by drivers that have native file system events (netshare, memory).
type CallbackChangeToken struct {
	mu        sync.RWMutex
	changed   atomic.Bool
	callbacks []func()
}

// NewCallbackChangeToken creates a new ChangeToken that supports active callbacks.
func NewCallbackChangeToken() *CallbackChangeToken {
	return &CallbackChangeToken{}
}

func (t *CallbackChangeToken) HasChanged() bool {
	return t.changed.Load()
}

func (t *CallbackChangeToken) ActiveChangeCallbacks() bool {
	return true
}

func (t *CallbackChangeToken) RegisterChangeCallback(callback func()) (unregister func()) {
	t.mu.Lock()
	t.callbacks = append(t.callbacks, callback)
	index := len(t.callbacks) - 1
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if index < len(t.callbacks) {
			// Set to nil instead of removing to avoid index shifting
			t.callbacks[index] = nil
		}
	}
}

// SignalChange marks the token as changed and invokes all callbacks.
// This should be called by the driver when a change is detected.
func (t *CallbackChangeToken) SignalChange() {
	if t.changed.Swap(true) {
		return // Already changed
	}

	t.mu.RLock()
	callbacks := make([]func(), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.mu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb()
		}
	}
}

// ============================================================================
// Polling ChangeToken
// ============================================================================

// pollingChangeToken is a ChangeToken for backends without native events.
// It polls for changes at a specified interval.
//
// IMPORTANT: To prevent goroutine leaks, you MUST either:
//  1. Cancel the context passed to NewPollingChangeToken, OR
//  2. Call Stop() on the returned token when done
//
// A finalizer is set to clean up if the token is garbage collected without
// being stopped, but you should not rely on this behavior.
type pollingChangeToken struct {
	mu        sync.RWMutex
	changed   atomic.Bool
	callbacks []func()
	cancel    context.CancelFunc
	checkFunc func() bool // Returns true if change detected
	interval  time.Duration
	stopped   atomic.Bool // Tracks if Stop() was called
}

// PollingConfig configures a polling change token.
type PollingConfig struct {
	// Interval between polls (default: 5 seconds)
	Interval time.Duration
	// CheckFunc returns true if a change is detected
	CheckFunc func() bool
}

// NewPollingChangeToken creates a ChangeToken that polls for changes.
// The checkFunc is called periodically and should return true if a change occurred.
//
// Example:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel() // Ensures goroutine cleanup
//
//	token := NewPollingChangeToken(ctx, config)
func NewPollingChangeToken(ctx context.Context, config PollingConfig) ChangeToken {
	if config.Interval == 0 {
		config.Interval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &pollingChangeToken{
		checkFunc: config.CheckFunc,
		interval:  config.Interval,
		cancel:    cancel,
	}

	// Safety net if the token is garbage collected without being stopped.
	// Users should still call Stop() or cancel the context explicitly.
	runtime.SetFinalizer(t, func(token *pollingChangeToken) {
		if !token.stopped.Load() {
			token.Stop()
		}
	})

	go t.poll(ctx)

	return t
}

func (t *pollingChangeToken) poll(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	defer t.stopped.Store(true)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.checkFunc != nil && t.checkFunc() {
				t.signalChange()
				return // Token is now "spent"
			}
		}
	}
}

func (t *pollingChangeToken) signalChange() {
	if t.changed.Swap(true) {
		return
	}

	t.mu.RLock()
	callbacks := make([]func(), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.mu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb()
		}
	}
}

func (t *pollingChangeToken) HasChanged() bool {
	return t.changed.Load()
}

func (t *pollingChangeToken) ActiveChangeCallbacks() bool {
	return true
}

func (t *pollingChangeToken) RegisterChangeCallback(callback func()) (unregister func()) {
	t.mu.Lock()
	t.callbacks = append(t.callbacks, callback)
	index := len(t.callbacks) - 1
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if index < len(t.callbacks) {
			t.callbacks[index] = nil
		}
	}
}

// Stop halts the polling goroutine. Safe to call multiple times.
func (t *pollingChangeToken) Stop() {
	t.cancel()
}
