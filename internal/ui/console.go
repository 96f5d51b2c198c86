package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pawdue/pawdue/internal/logger"
	"github.com/pawdue/pawdue/internal/presentation"
	"github.com/pawdue/pawdue/internal/runloop"
)

// ConsoleSurface renders presentations on a terminal. One modal at a time;
// while a prompt is awaiting input the surface reports itself busy and the
// queue holds further modals.
type ConsoleSurface struct {
	ctx   context.Context //nolint:containedctx // Loop-bound component, context set once at construction.
	loop  *runloop.Loop
	queue *presentation.Queue

	in  *bufio.Reader
	out io.Writer

	// busy is true while a modal prompt awaits an answer.
	busy bool
}

// NewConsoleSurface creates a surface reading answers from in and rendering
// to out.
func NewConsoleSurface(
	ctx context.Context,
	loop *runloop.Loop,
	queue *presentation.Queue,
	in io.Reader,
	out io.Writer,
) *ConsoleSurface {
	return &ConsoleSurface{
		ctx:   logger.WithName(ctx, "console"),
		loop:  loop,
		queue: queue,
		in:    bufio.NewReader(in),
		out:   out,
	}
}

// CanPresent reports whether no prompt is currently on screen.
func (c *ConsoleSurface) CanPresent() bool {
	return !c.busy
}

// PresentModal renders the dialog and collects the answer on a reader
// goroutine; the selection resumes on the run loop.
func (c *ConsoleSurface) PresentModal(d *presentation.Dialog) {
	c.busy = true

	fmt.Fprintf(c.out, "\n=== %s ===\n%s\n", d.Title, d.Message)

	for i, choice := range d.Choices {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, choice.Title)
	}

	go c.readChoice(d)
}

// PresentBanner renders a one-line notice.
func (c *ConsoleSurface) PresentBanner(b *presentation.Banner) {
	fmt.Fprintf(c.out, "* %s\n", b.Text)
}

// readChoice blocks on stdin until a valid selection arrives, then posts it
// back to the loop.
func (c *ConsoleSurface) readChoice(d *presentation.Dialog) {
	for {
		fmt.Fprintf(c.out, "> ")

		line, err := c.in.ReadString('\n')
		if err != nil {
			logger.WarnKV(c.ctx, "Input closed, dismissing dialog", "error", err)
			c.loop.Post(func() { c.finish(nil) })

			return
		}

		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || n < 1 || n > len(d.Choices) {
			fmt.Fprintf(c.out, "Pick a number between 1 and %d.\n", len(d.Choices))

			continue
		}

		choice := d.Choices[n-1]
		c.loop.Post(func() { c.finish(choice.OnSelect) })

		return
	}
}

// finish runs the selection on the loop and releases the surface.
func (c *ConsoleSurface) finish(onSelect func()) {
	c.busy = false

	if onSelect != nil {
		onSelect()
	}

	c.queue.Dismissed()
}

// ForegroundLifecycle is a lifecycle that is always foregrounded; a terminal
// agent has no background state.
type ForegroundLifecycle struct{}

// IsBackgrounded always reports false.
func (ForegroundLifecycle) IsBackgrounded() bool {
	return false
}
