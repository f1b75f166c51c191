package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// LogHandler writes every event to a logger at info level.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler. A nil logger uses slog.Default().
func NewLogHandler(logger *slog.Logger) *LogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHandler{logger: logger.With("component", "milestones")}
}

// HandleEvent implements EventHandler.
func (h *LogHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.logger.InfoContext(ctx, "milestone reached",
		"event_type", event.Type,
		"event_id", event.ID,
		"payload", string(event.Payload))
	return nil
}

// Recorder keeps the most recent events in memory, newest first, so a client
// can poll for milestones it has not shown yet.
type Recorder struct {
	mu     sync.Mutex
	limit  int
	events []Event
}

// DefaultRecorderLimit is used when NewRecorder is given a non-positive limit.
const DefaultRecorderLimit = 50

// NewRecorder creates a Recorder holding at most limit events.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultRecorderLimit
	}
	return &Recorder{limit: limit}
}

// HandleEvent implements EventHandler.
func (r *Recorder) HandleEvent(_ context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = slices.Insert(r.events, 0, *event)
	if len(r.events) > r.limit {
		r.events = r.events[:r.limit]
	}
	return nil
}

// Recent returns up to n of the newest events. n <= 0 returns all of them.
func (r *Recorder) Recent(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 || n > len(r.events) {
		n = len(r.events)
	}
	return slices.Clone(r.events[:n])
}
