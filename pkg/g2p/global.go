package g2p

import "sync"

var (
	defaultManager *Manager
	defaultOnce    sync.Once
)

// Default returns the process-wide manager, creating it on first call.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager()
	})
	return defaultManager
}

// SetDefault installs m as the process-wide manager. Only the first call to
// SetDefault or Default has any effect; it returns the manager in use.
func SetDefault(m *Manager) *Manager {
	defaultOnce.Do(func() {
		defaultManager = m
	})
	return defaultManager
}

// ResetDefault releases every factory of the process-wide manager and forgets
// it. Intended for tests only; it is not safe to call concurrently with Default.
func ResetDefault() {
	if defaultManager != nil {
		defaultManager.ClearFactories()
	}
	defaultManager = nil
	defaultOnce = sync.Once{}
}
