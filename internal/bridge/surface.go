// Package bridge is the client endpoint's RPC glue: it services client.*
// calls from the agent and issues agent-bound calls for the UI layer.
// It never renders anything itself.
package bridge

import (
	"errors"
	"sync"
)

var ErrElementNotFound = errors.New("element not found")

// Surface is the piece of visible UI the remote agent may drive.
type Surface interface {
	// Click activates the element identified by jsID.
	Click(jsID string) error
}

// ElementRegistry is an in-memory Surface: jsID → activation callback.
// The UI layer binds elements at render time and unbinds on teardown.
type ElementRegistry struct {
	mu       sync.Mutex
	elements map[string]func()
}

func NewElementRegistry() *ElementRegistry {
	return &ElementRegistry{elements: make(map[string]func())}
}

func (r *ElementRegistry) Bind(jsID string, activate func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elements[jsID] = activate
}

func (r *ElementRegistry) Unbind(jsID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.elements, jsID)
}

func (r *ElementRegistry) Click(jsID string) error {
	r.mu.Lock()
	activate, ok := r.elements[jsID]
	r.mu.Unlock()
	if !ok {
		return ErrElementNotFound
	}
	activate()
	return nil
}
