// Package tenantcache keeps a bounded arena of per-tenant store handles.
// Multi-tenant deployments open one database per tenant; the arena caps how
// many stay open at once, evicting the least recently used handle and
// closing it.
package tenantcache

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/meridian-grc/keel/pkg/store"
)

// Opener opens the store for a tenant. Typically closes over the DSN
// template for the deployment.
type Opener func(tenantID string) (*store.Store, error)

type entry struct {
	tenantID string
	handle   *store.Store
}

// Arena is the bounded handle cache. Safe for concurrent use.
type Arena struct {
	mu      sync.Mutex
	open    Opener
	maxSize int
	items   map[string]*list.Element
	order   *list.List // front = most recently used
}

// New creates an arena holding at most maxSize open handles.
func New(maxSize int, open Opener) (*Arena, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("tenantcache: maxSize must be positive, got %d", maxSize)
	}
	if open == nil {
		return nil, fmt.Errorf("tenantcache: opener is required")
	}
	return &Arena{
		open:    open,
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}, nil
}

// Get returns the tenant's store handle, opening it on first use and
// evicting the least recently used handle when the arena is full.
func (a *Arena) Get(tenantID string) (*store.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if el, ok := a.items[tenantID]; ok {
		a.order.MoveToFront(el)
		return el.Value.(*entry).handle, nil
	}

	handle, err := a.open(tenantID)
	if err != nil {
		return nil, fmt.Errorf("tenantcache open %q: %w", tenantID, err)
	}

	if a.order.Len() >= a.maxSize {
		a.evictOldestLocked()
	}
	el := a.order.PushFront(&entry{tenantID: tenantID, handle: handle})
	a.items[tenantID] = el
	return handle, nil
}

// Len reports how many handles are currently open.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.order.Len()
}

// Close evicts and closes every handle.
func (a *Arena) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for a.order.Len() > 0 {
		a.evictOldestLocked()
	}
}

func (a *Arena) evictOldestLocked() {
	el := a.order.Back()
	if el == nil {
		return
	}
	e := el.Value.(*entry)
	a.order.Remove(el)
	delete(a.items, e.tenantID)
	_ = e.handle.Close()
}
