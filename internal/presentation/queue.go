package presentation

import (
	"context"
	"time"

	"github.com/pawdue/pawdue/internal/logger"
	"github.com/pawdue/pawdue/internal/runloop"
)

// DefaultHostPollInterval is the fallback retry interval while no host
// surface can present.
const DefaultHostPollInterval = 50 * time.Millisecond

// Queue serializes modal dialogs and shows banners opportunistically.
// All methods must be called on the run loop; the queue is part of the
// single cooperative UI thread and `locked` is a reentrancy guard, not a
// mutex.
type Queue struct {
	// loop is the UI run loop used for poll retries.
	loop *runloop.Loop
	// ctx carries the scoped logger.
	ctx context.Context //nolint:containedctx // Loop-bound component, context set once at construction.

	// host is the current host surface, nil until the UI layer registers one.
	host HostSurface
	// modals is the pending dialog queue in enqueue order.
	modals []*Dialog
	// banners is the pending banner queue in enqueue order.
	banners []*Banner
	// current is the dialog on screen, nil when none.
	current *Dialog
	// locked guards against presenting a second modal before the first
	// reports dismissal.
	locked bool
	// polling dedupes scheduled host-availability retries.
	polling bool
	// pollInterval is the host-availability retry interval.
	pollInterval time.Duration
}

// NewQueue creates a queue bound to the run loop.
func NewQueue(ctx context.Context, loop *runloop.Loop, pollInterval time.Duration) *Queue {
	if pollInterval <= 0 {
		pollInterval = DefaultHostPollInterval
	}

	return &Queue{
		loop:         loop,
		ctx:          logger.WithName(ctx, "presentation"),
		pollInterval: pollInterval,
	}
}

// SetHost registers the current host surface and pumps pending work.
// Passing nil detaches the surface; queued items wait for the next one.
func (q *Queue) SetHost(host HostSurface) {
	q.host = host
	q.pump()
}

// EnqueueModal appends a dialog unless its category is suppressible and an
// instance is already queued or on screen.
func (q *Queue) EnqueueModal(d *Dialog) {
	if d.Category.Suppressible() && q.hasModal(d.Category) {
		logger.DebugKV(q.ctx, "Suppressed duplicate modal", "category", d.Category)

		return
	}

	q.modals = append(q.modals, d)
	q.pump()
}

// EnqueueBanner appends a banner unless its category is suppressible and an
// instance is already pending.
func (q *Queue) EnqueueBanner(b *Banner) {
	if b.Category.Suppressible() && q.hasBanner(b.Category) {
		logger.DebugKV(q.ctx, "Suppressed duplicate banner", "category", b.Category)

		return
	}

	q.banners = append(q.banners, b)
	q.pump()
}

// Dismissed is invoked by the dialog (via the host surface) when it
// finishes; it unlocks the queue and immediately attempts the next item.
func (q *Queue) Dismissed() {
	q.locked = false
	q.current = nil
	q.pump()
}

// Presenting reports whether a modal is currently on screen.
func (q *Queue) Presenting() bool {
	return q.current != nil
}

// pump shows whatever the host can take: banners opportunistically, then
// the head modal if the queue is unlocked. When the host cannot present,
// a bounded-interval retry is scheduled instead of blocking.
func (q *Queue) pump() {
	hostReady := q.host != nil && q.host.CanPresent()

	// Banners never block and never take the lock.
	if hostReady {
		for len(q.banners) > 0 {
			b := q.banners[0]
			q.banners = q.banners[1:]
			q.host.PresentBanner(b)
		}
	}

	if q.locked || len(q.modals) == 0 {
		return
	}

	if !hostReady {
		q.schedulePoll()

		return
	}

	q.locked = true
	q.current = q.modals[0]
	q.modals = q.modals[1:]

	logger.DebugKV(q.ctx, "Presenting modal", "category", q.current.Category, "queued", len(q.modals))
	q.host.PresentModal(q.current)
}

// schedulePoll arms a single retry while the host cannot present.
func (q *Queue) schedulePoll() {
	if q.polling {
		return
	}

	q.polling = true
	q.loop.PostDelayed(q.pollInterval, func() {
		q.polling = false
		q.pump()
	})
}

// hasModal reports whether the category is queued or currently shown.
func (q *Queue) hasModal(c Category) bool {
	if q.current != nil && q.current.Category == c {
		return true
	}

	for _, d := range q.modals {
		if d.Category == c {
			return true
		}
	}

	return false
}

// hasBanner reports whether the category is already pending.
func (q *Queue) hasBanner(c Category) bool {
	for _, b := range q.banners {
		if b.Category == c {
			return true
		}
	}

	return false
}
