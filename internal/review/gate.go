package review

import (
	"context"
	"time"

	"github.com/pawdue/pawdue/internal/logger"
	"github.com/pawdue/pawdue/internal/presentation"
)

// Fallbacks for zero-valued constructor arguments.
const (
	// DefaultMinInterval spaces review nudges at least this far apart.
	DefaultMinInterval = 30 * 24 * time.Hour
	// DefaultMinCompleted is how many completed alarms earn a nudge.
	DefaultMinCompleted = 10
)

// Gate rate-limits review prompts. Methods must be called on the run loop.
type Gate struct {
	ctx   context.Context //nolint:containedctx // Loop-bound component, context set once at construction.
	queue *presentation.Queue

	// minInterval is the smallest gap between two nudges.
	minInterval time.Duration
	// minCompleted is the completed-alarm threshold per nudge.
	minCompleted int

	// completed counts terminal alarm responses since the last nudge.
	completed int
	// lastPrompt is when the previous nudge was shown, zero when never.
	lastPrompt time.Time

	// now is the clock source, swappable in tests.
	now func() time.Time
}

// New creates a gate feeding the presentation queue.
func New(ctx context.Context, queue *presentation.Queue, minInterval time.Duration, minCompleted int) *Gate {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}

	if minCompleted <= 0 {
		minCompleted = DefaultMinCompleted
	}

	return &Gate{
		ctx:          logger.WithName(ctx, "review"),
		queue:        queue,
		minInterval:  minInterval,
		minCompleted: minCompleted,
		now:          time.Now,
	}
}

// NoteCompletedAlarm records a terminal alarm response and nudges when both
// thresholds are met. The banner category is suppressible, so a nudge already
// pending is never duplicated.
func (g *Gate) NoteCompletedAlarm() {
	g.completed++

	if g.completed < g.minCompleted {
		return
	}

	if !g.lastPrompt.IsZero() && g.now().Sub(g.lastPrompt) < g.minInterval {
		return
	}

	g.completed = 0
	g.lastPrompt = g.now()

	logger.DebugKV(g.ctx, "Review nudge", "completed_threshold", g.minCompleted)
	g.queue.EnqueueBanner(&presentation.Banner{
		Category: presentation.CategoryReview,
		Text:     "Enjoying pawdue? A review helps a lot.",
	})
}
