package g2p

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/platinummonkey/langmgr/pkg/observability"
	"github.com/sirupsen/logrus"
)

// Registrar is the view of a Manager handed to setup hooks. Factories added
// through it belong to the running Initialize attempt.
type Registrar interface {
	AddFactory(f Factory) error
	Factory(id string) (Factory, bool)
	Has(id string) bool
}

// SetupFunc is a one-time initialization hook run by Initialize.
// It typically registers built-in or discovered factories. Hooks run while
// Initialize holds the init lock, so they must not call Initialize on the
// same manager.
type SetupFunc func(r Registrar) error

// attempt records the factories one Initialize call registered, so a failed
// attempt removes only its own registrations.
type attempt struct {
	m     *Manager
	mu    sync.Mutex
	added []Factory
}

func (a *attempt) AddFactory(f Factory) error {
	if err := a.m.AddFactory(f); err != nil {
		return err
	}
	a.mu.Lock()
	a.added = append(a.added, f)
	a.mu.Unlock()
	return nil
}

func (a *attempt) Factory(id string) (Factory, bool) { return a.m.Factory(id) }

func (a *attempt) Has(id string) bool { return a.m.Has(id) }

func (a *attempt) registered() []Factory {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Factory(nil), a.added...)
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the manager logger
func WithLogger(log *logrus.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithMetrics attaches Prometheus metrics to the manager
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithSetup appends setup hooks run by Initialize, in order
func WithSetup(setup ...SetupFunc) Option {
	return func(m *Manager) {
		m.setup = append(m.setup, setup...)
	}
}

// Manager is the registry of G2P factories keyed by id
type Manager struct {
	mu        sync.RWMutex
	factories map[string]Factory
	order     []string

	initMu      sync.Mutex
	initialized atomic.Bool
	setup       []SetupFunc

	log     *logrus.Logger
	metrics *observability.Metrics
}

// NewManager creates an empty, uninitialized manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		factories: make(map[string]Factory),
		log:       logrus.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize runs the setup hooks once. Calls after a successful
// initialization return nil without running them again. When a hook fails,
// the factories the hooks registered are removed again and the manager stays
// uninitialized, so Initialize may be retried. Factories added concurrently
// by other callers are kept.
func (m *Manager) Initialize() error {
	if m.initialized.Load() {
		m.log.Debug("G2P manager already initialized")
		return nil
	}

	m.initMu.Lock()
	defer m.initMu.Unlock()

	if m.initialized.Load() {
		m.log.Debug("G2P manager already initialized")
		return nil
	}

	run := &attempt{m: m}
	for i, setup := range m.setup {
		if setup == nil {
			continue
		}
		if err := setup(run); err != nil {
			rolledBack := m.rollback(run.registered())
			m.log.Errorf("G2P setup hook %d failed, rolled back %d factories: %v", i, rolledBack, err)
			return fmt.Errorf("%w: %w", ErrInitializationFailed, err)
		}
	}

	m.initialized.Store(true)
	m.log.Infof("G2P manager initialized with %d factories", m.Count())
	return nil
}

// rollback removes the given factories that are still registered as the
// same instance
func (m *Manager) rollback(added []Factory) int {
	m.mu.Lock()
	var released []Factory
	count := len(m.factories)
	for _, f := range added {
		current, ok := m.factories[f.ID()]
		if !ok || !ownedBy(current, f) {
			continue
		}
		count = m.deleteLocked(f.ID())
		released = append(released, current)
	}
	m.mu.Unlock()

	m.metrics.SetG2PFactories(count)
	for _, f := range released {
		m.release(f)
	}
	return len(released)
}

// IsInitialized reports whether Initialize has completed successfully
func (m *Manager) IsInitialized() bool {
	return m.initialized.Load()
}

// Factory returns the factory registered under id. Matching is exact.
func (m *Manager) Factory(id string) (Factory, bool) {
	m.mu.RLock()
	f, ok := m.factories[id]
	m.mu.RUnlock()

	m.metrics.RecordG2PLookup(ok)
	return f, ok
}

// Has checks if a factory id is registered
func (m *Manager) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.factories[id]
	return ok
}

// Count returns the number of registered factories
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.factories)
}

// IDs returns the registered ids in registration order
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.order...)
}

// Factories returns a snapshot of the registered factories in registration
// order. Later registry changes are not reflected in the returned slice.
func (m *Manager) Factories() []Factory {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Factory, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.factories[id])
	}
	return result
}

// AddFactory registers f and takes ownership of it
func (m *Manager) AddFactory(f Factory) error {
	if isNil(f) {
		m.metrics.RecordG2PRegistryOp("add", "invalid")
		return fmt.Errorf("%w: nil factory", ErrInvalidFactory)
	}

	id := f.ID()
	if id == "" {
		m.metrics.RecordG2PRegistryOp("add", "invalid")
		return fmt.Errorf("%w: empty id", ErrInvalidFactory)
	}

	m.mu.Lock()
	if _, exists := m.factories[id]; exists {
		m.mu.Unlock()
		m.metrics.RecordG2PRegistryOp("add", "duplicate")
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	m.factories[id] = f
	m.order = append(m.order, id)
	count := len(m.factories)
	m.mu.Unlock()

	m.metrics.RecordG2PRegistryOp("add", "ok")
	m.metrics.SetG2PFactories(count)
	m.log.Debugf("Registered G2P factory: %s", id)
	return nil
}

// RemoveFactory removes f if that exact instance is registered. A different
// instance registered under the same id is left in place.
func (m *Manager) RemoveFactory(f Factory) error {
	if isNil(f) {
		m.metrics.RecordG2PRegistryOp("remove", "not_found")
		return fmt.Errorf("%w: nil factory", ErrNotFound)
	}

	id := f.ID()

	m.mu.Lock()
	current, exists := m.factories[id]
	if !exists || !sameFactory(current, f) {
		m.mu.Unlock()
		m.metrics.RecordG2PRegistryOp("remove", "not_found")
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	count := m.deleteLocked(id)
	m.mu.Unlock()

	m.finishRemove(id, current, count)
	return nil
}

// RemoveFactoryByID removes the factory registered under id
func (m *Manager) RemoveFactoryByID(id string) error {
	m.mu.Lock()
	current, exists := m.factories[id]
	if !exists {
		m.mu.Unlock()
		m.metrics.RecordG2PRegistryOp("remove", "not_found")
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	count := m.deleteLocked(id)
	m.mu.Unlock()

	m.finishRemove(id, current, count)
	return nil
}

// ClearFactories removes and releases every factory. The initialized state
// is left unchanged.
func (m *Manager) ClearFactories() {
	m.mu.Lock()
	released := make([]Factory, 0, len(m.order))
	for _, id := range m.order {
		released = append(released, m.factories[id])
	}
	m.factories = make(map[string]Factory)
	m.order = nil
	m.mu.Unlock()

	m.metrics.RecordG2PRegistryOp("clear", "ok")
	m.metrics.SetG2PFactories(0)
	for _, f := range released {
		m.release(f)
	}
	m.log.Debugf("Cleared %d G2P factories", len(released))
}

// deleteLocked removes id from the map and order slice. Caller holds mu.
func (m *Manager) deleteLocked(id string) int {
	delete(m.factories, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return len(m.factories)
}

func (m *Manager) finishRemove(id string, f Factory, count int) {
	m.metrics.RecordG2PRegistryOp("remove", "ok")
	m.metrics.SetG2PFactories(count)
	m.release(f)
	m.log.Debugf("Removed G2P factory: %s", id)
}

// release gives up ownership of f. Must be called without holding mu.
func (m *Manager) release(f Factory) {
	u, ok := f.(Unloader)
	if !ok {
		return
	}
	if err := u.Unload(); err != nil {
		m.log.Warnf("Failed to unload G2P factory %s: %v", f.ID(), err)
	}
}

func isNil(f Factory) bool {
	if f == nil {
		return true
	}
	v := reflect.ValueOf(f)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// ownedBy reports whether current is the factory an attempt registered.
// Non-comparable types cannot be told apart, so a matching dynamic type under
// the same id counts as the same registration.
func ownedBy(current, added Factory) bool {
	if sameFactory(current, added) {
		return true
	}
	t := reflect.TypeOf(current)
	return t == reflect.TypeOf(added) && !t.Comparable()
}

// sameFactory reports instance identity. Non-comparable dynamic types are
// never considered identical to avoid a runtime panic on ==.
func sameFactory(a, b Factory) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
