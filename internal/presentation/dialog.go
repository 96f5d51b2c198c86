package presentation

// Category classifies a dialog or banner for duplicate suppression.
type Category int

// Dialog categories.
const (
	// CategoryAlarm is a reminder alarm dialog. Never suppressed; every
	// matured reminder gets its own presentation.
	CategoryAlarm Category = iota
	// CategoryServerError is a non-blocking error notice.
	CategoryServerError
	// CategoryLoading is a "contacting server" style indicator.
	CategoryLoading
	// CategoryReview is a review prompt.
	CategoryReview
	// CategoryReleaseNotes is a release notes announcement.
	CategoryReleaseNotes
)

// Suppressible reports whether a second queued or shown instance of this
// category should be silently dropped instead of stacking.
func (c Category) Suppressible() bool {
	switch c {
	case CategoryLoading, CategoryReview, CategoryReleaseNotes:
		return true
	case CategoryAlarm, CategoryServerError:
		return false
	default:
		return false
	}
}

// Choice is a single selectable option on a modal dialog.
type Choice struct {
	// Title is the user-facing label.
	Title string
	// OnSelect runs on the run loop when the user picks this choice.
	OnSelect func()
}

// Dialog is a modal interruption requiring exactly one user choice.
type Dialog struct {
	// Category classifies the dialog for suppression.
	Category Category
	// Title is the dialog headline.
	Title string
	// Message is the dialog body text.
	Message string
	// Choices are the selectable options in display order.
	Choices []Choice
}

// Banner is a transient, non-blocking notice.
type Banner struct {
	// Category classifies the banner for suppression.
	Category Category
	// Text is the banner content.
	Text string
}

// HostSurface is the single UI surface capable of presenting.
// Reassigned only by the UI layer; the queue only checks liveness.
type HostSurface interface {
	// CanPresent reports whether the surface can take a presentation now
	// (attached, not mid-dismissal, nothing already presented).
	CanPresent() bool
	// PresentModal shows a modal dialog. The surface must call the
	// queue's Dismissed once the dialog finishes.
	PresentModal(d *Dialog)
	// PresentBanner shows a transient banner. No callback is required.
	PresentBanner(b *Banner)
}
