package notify

import (
	"slices"
	"sync"
	"time"
)

// Center tracks active toasts and expires each one after its duration.
// Every accepted toast is also handed to the configured renderers.
type Center struct {
	mu        sync.Mutex
	active    []Toast
	timers    map[string]*time.Timer
	renderers []Notifier
	closed    bool
}

func NewCenter(renderers ...Notifier) *Center {
	return &Center{
		timers:    make(map[string]*time.Timer),
		renderers: renderers,
	}
}

// Notify adds t and schedules its removal.
func (c *Center) Notify(t Toast) {
	t = normalize(t)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.active = append(c.active, t)
	id := t.ID
	c.timers[id] = time.AfterFunc(t.Duration, func() { c.Remove(id) })
	renderers := c.renderers
	c.mu.Unlock()

	for _, r := range renderers {
		r.Notify(t)
	}
}

// Remove drops the toast with id, if still active.
func (c *Center) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tm, ok := c.timers[id]; ok {
		tm.Stop()
		delete(c.timers, id)
	}
	c.active = slices.DeleteFunc(c.active, func(t Toast) bool { return t.ID == id })
}

// List returns the active toasts, oldest first.
func (c *Center) List() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.active)
}

func (c *Center) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Close clears the center and ignores later toasts.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
	c.closed = true
}

func (c *Center) clearLocked() {
	for id, tm := range c.timers {
		tm.Stop()
		delete(c.timers, id)
	}
	c.active = nil
}
