package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#8BC34A")
	colorError   = lipgloss.Color("#E53935")
	colorWarning = lipgloss.Color("#FFC107")
	colorInfo    = lipgloss.Color("#2196F3")
)

// TerminalRenderer prints toasts as single styled lines.
type TerminalRenderer struct {
	mu      sync.Mutex
	w       io.Writer
	title   map[Type]lipgloss.Style
	message lipgloss.Style
}

// NewTerminalRenderer writes to w. Colors are dropped automatically when w
// is not a terminal.
func NewTerminalRenderer(w io.Writer) *TerminalRenderer {
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle().Bold(true)
	return &TerminalRenderer{
		w: w,
		title: map[Type]lipgloss.Style{
			Success: base.Foreground(colorSuccess),
			Error:   base.Foreground(colorError),
			Warning: base.Foreground(colorWarning),
			Info:    base.Foreground(colorInfo),
		},
		message: r.NewStyle(),
	}
}

func icon(t Type) string {
	switch t {
	case Success:
		return "✔"
	case Error:
		return "✖"
	case Warning:
		return "!"
	default:
		return "i"
	}
}

func (r *TerminalRenderer) Notify(t Toast) {
	style, ok := r.title[t.Type]
	if !ok {
		style = r.title[Info]
	}
	head := icon(t.Type)
	if t.Title != "" {
		head += " " + t.Title
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t.Message == "" {
		fmt.Fprintln(r.w, style.Render(head))
		return
	}
	fmt.Fprintf(r.w, "%s: %s\n", style.Render(head), r.message.Render(t.Message))
}
