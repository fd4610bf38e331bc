package control

import (
	"log/slog"
	"sync"

	"in-tune/debug"
	"in-tune/scale"
)

// Target is what control commands act on.
type Target interface {
	SetScale(*scale.Config)
	Stop()
}

// Handler applies control messages to a Target, one at a time.
type Handler struct {
	target Target
	log    *slog.Logger
	mu     sync.Mutex
}

// NewHandler creates a handler. A nil logger uses the process logger.
func NewHandler(t Target, log *slog.Logger) *Handler {
	if log == nil {
		log = debug.Logger()
	}
	return &Handler{target: t, log: log}
}

// Handle parses and applies msg. The response is always empty; failures
// only show up in the log.
func (h *Handler) Handle(msg string) string {
	cmd, err := Parse(msg)
	if err != nil {
		h.log.Warn("control: rejected fields", "msg", msg, "err", err)
	}
	h.Apply(cmd)
	return ""
}

// Apply executes an already parsed command.
func (h *Handler) Apply(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch c := cmd.(type) {
	case Stop:
		h.target.Stop()
	case Set:
		h.target.SetScale(c.Config())
	case Ignored:
		h.log.Debug("control: ignored", "input", c.Input)
	}
}
