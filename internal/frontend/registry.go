package frontend

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// Handler is a registered extraction handler.
// Op is the canonical operator the source operator maps to.
type Handler struct {
	Op        string
	Extractor Extractor
	Disabled  bool
}

type key struct {
	format string
	op     string
}

// Registry maps (source format, source operator) pairs to handlers.
//
// It is populated during process initialization and sealed before the first
// conversion. After Seal the table never changes, so Resolve takes no lock
// and is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sealed   atomic.Bool
	handlers map[key]Handler
}

// Default is the process-wide registry that format packages populate from init.
var Default = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[key]Handler)}
}

// Register adds a handler for op in format. Registering over an enabled
// handler fails with DuplicateRegistrationError; a disabled one is replaced.
func (r *Registry) Register(format, op string, h Handler) error {
	if h.Extractor == nil {
		return fmt.Errorf("register %s operator %q: nil extractor", format, op)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return fmt.Errorf("register %s operator %q: %w", format, op, ErrRegistrySealed)
	}
	k := key{format, op}
	if old, exists := r.handlers[k]; exists && !old.Disabled {
		return &DuplicateRegistrationError{Format: format, Op: op}
	}
	slog.Debug("Registering extraction handler.", "format", format, "op", op, "canonical", h.Op)
	r.handlers[k] = h
	return nil
}

// MustRegister is Register for init functions: a broken handler set is fatal.
func (r *Registry) MustRegister(format, op string, h Handler) {
	if err := r.Register(format, op, h); err != nil {
		panic(err)
	}
}

// MustRegister registers into Default.
func MustRegister(format, op string, h Handler) {
	Default.MustRegister(format, op, h)
}

// SetEnabled flips the enabled flag of a registered handler.
func (r *Registry) SetEnabled(format, op string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return fmt.Errorf("toggle %s operator %q: %w", format, op, ErrRegistrySealed)
	}
	k := key{format, op}
	h, ok := r.handlers[k]
	if !ok {
		return &UnsupportedOperatorError{Format: format, Op: op}
	}
	h.Disabled = !enabled
	r.handlers[k] = h
	return nil
}

// Seal makes the registry read-only. It is idempotent.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed.Store(true)
}

// readLock holds mu until the returned func runs. A sealed table needs no lock.
func (r *Registry) readLock() func() {
	if r.sealed.Load() {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Resolve returns the enabled handler for op in format.
func (r *Registry) Resolve(format, op string) (Handler, error) {
	h, ok := r.handlers[key{format, op}]
	if !ok || h.Disabled {
		return Handler{}, &UnsupportedOperatorError{Format: format, Op: op}
	}
	return h, nil
}

// Ops returns the source operators with an enabled handler in format, sorted.
func (r *Registry) Ops(format string) []string {
	defer r.readLock()()
	var ops []string
	for k, h := range r.handlers {
		if k.format == format && !h.Disabled {
			ops = append(ops, k.op)
		}
	}
	slices.Sort(ops)
	return ops
}

// Formats returns every format with at least one registration, sorted.
func (r *Registry) Formats() []string {
	defer r.readLock()()
	var formats []string
	for k := range r.handlers {
		if !slices.Contains(formats, k.format) {
			formats = append(formats, k.format)
		}
	}
	slices.Sort(formats)
	return formats
}
