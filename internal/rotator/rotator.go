// Package rotator cycles a fixed list of content items, showing one at a
// time for that item's own duration, with a manual override that pauses
// the rotation on a chosen item.
package rotator

import (
	"errors"
	"fmt"

	"github.com/kostyay/signboard/internal/model"
)

var (
	// ErrNoItems is returned when creating a rotator without items.
	ErrNoItems = errors.New("rotator needs at least one item")
	// ErrUnknownItem is returned by Select for a label that is not configured.
	ErrUnknownItem = errors.New("unknown content item")
)

// Mode is the rotator's operating mode.
type Mode int

const (
	ModeAuto   Mode = iota // items advance on their own timers
	ModeManual             // a selected item stays on screen
)

// String returns a human-readable name for the Mode.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeManual:
		return "manual"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// Rotator owns the visibility of every item and the one rotation timer.
// A timer is identified by its generation; arming a new one, or cancelling,
// bumps the generation so any earlier tick is ignored when it arrives.
type Rotator struct {
	items   []model.ContentItem
	visible []bool
	current int // index shown by the next tick
	header  string
	mode    Mode
	gen     uint64
	armed   bool
}

// New creates a rotator with every item hidden.
func New(items []model.ContentItem) (*Rotator, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	cp := make([]model.ContentItem, len(items))
	copy(cp, items)
	return &Rotator{
		items:   cp,
		visible: make([]bool, len(cp)),
	}, nil
}

// Start shows the first item and returns the timer to arm.
func (r *Rotator) Start() model.Arm {
	return r.advance()
}

// Tick advances the rotation if gen is the armed timer. It reports false,
// and changes nothing, for stale or cancelled timers.
func (r *Rotator) Tick(gen uint64) (model.Arm, bool) {
	if !r.armed || gen != r.gen || r.mode != ModeAuto {
		return model.Arm{}, false
	}
	return r.advance(), true
}

// SelectAuto cancels any pending timer, hides everything, rewinds to the
// first item and resumes rotating immediately.
func (r *Rotator) SelectAuto() model.Arm {
	r.cancel()
	r.hideAll()
	r.current = 0
	r.mode = ModeAuto
	return r.advance()
}

// Select cancels the pending timer and pins the item with the given label.
// Rotation stays paused until SelectAuto is called.
func (r *Rotator) Select(label string) error {
	idx := r.indexOf(label)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownItem, label)
	}

	r.cancel()
	r.hideAll()
	r.visible[idx] = true
	r.header = r.items[idx].Label
	r.mode = ModeManual
	return nil
}

// Header is the label of the item on screen.
func (r *Rotator) Header() string {
	return r.header
}

// Mode returns the current mode.
func (r *Rotator) Mode() Mode {
	return r.mode
}

// Current returns the index the next automatic tick will show.
func (r *Rotator) Current() int {
	return r.current
}

// Items returns the configured items.
func (r *Rotator) Items() []model.ContentItem {
	return r.items
}

// Visible reports whether item i is shown.
func (r *Rotator) Visible(i int) bool {
	return i >= 0 && i < len(r.visible) && r.visible[i]
}

// Shown returns the indices of all visible items.
func (r *Rotator) Shown() []int {
	var out []int
	for i, v := range r.visible {
		if v {
			out = append(out, i)
		}
	}
	return out
}

// Armed reports whether a rotation timer is outstanding.
func (r *Rotator) Armed() bool {
	return r.armed
}

func (r *Rotator) advance() model.Arm {
	n := len(r.items)
	prev := r.current - 1
	if prev < 0 {
		prev = n - 1
	}
	r.visible[prev] = false

	shown := r.current
	r.visible[shown] = true
	r.header = r.items[shown].Label
	r.current = (r.current + 1) % n

	r.gen++
	r.armed = true
	return model.Arm{Gen: r.gen, After: r.items[shown].Duration}
}

func (r *Rotator) cancel() {
	r.gen++
	r.armed = false
}

func (r *Rotator) hideAll() {
	for i := range r.visible {
		r.visible[i] = false
	}
}

func (r *Rotator) indexOf(label string) int {
	for i, item := range r.items {
		if item.Label == label {
			return i
		}
	}
	return -1
}
