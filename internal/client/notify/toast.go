// Package notify carries transient user-facing messages ("toasts") from the
// HTTP layer and the commands to the terminal.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	Success Type = "success"
	Error   Type = "error"
	Warning Type = "warning"
	Info    Type = "info"
)

// DefaultDuration applies to toasts created without an explicit duration.
const DefaultDuration = 5 * time.Second

type Toast struct {
	ID       string
	Type     Type
	Title    string
	Message  string
	Duration time.Duration
}

// Notifier accepts toasts for display.
type Notifier interface {
	Notify(t Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// Discard drops every toast.
var Discard Notifier = NotifierFunc(func(Toast) {})

func normalize(t Toast) Toast {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Duration <= 0 {
		t.Duration = DefaultDuration
	}
	return t
}

// Recorder keeps every toast it receives. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, normalize(t))
	r.mu.Unlock()
}

func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// OfType returns the recorded toasts of type typ.
func (r *Recorder) OfType(typ Type) []Toast {
	var out []Toast
	for _, t := range r.Toasts() {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.toasts = nil
	r.mu.Unlock()
}
