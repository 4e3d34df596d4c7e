package view

// DisclosureState is the visibility of a menu, dropdown or modal.
type DisclosureState string

const (
	Closed DisclosureState = "closed"
	Open   DisclosureState = "open"
)

// DisclosureEvent is an interaction that may change a disclosure.
type DisclosureEvent string

const (
	// EventTrigger is a click on the control that opens the region.
	EventTrigger DisclosureEvent = "trigger"
	// EventClose is a click on the region's close control.
	EventClose DisclosureEvent = "close"
	// EventOutside is a click anywhere outside the region.
	EventOutside DisclosureEvent = "outside"
	// EventNavigate is a click on a navigation link inside the region.
	EventNavigate DisclosureEvent = "navigate"
)

// Valid reports whether e is a known event.
func (e DisclosureEvent) Valid() bool {
	switch e {
	case EventTrigger, EventClose, EventOutside, EventNavigate:
		return true
	}
	return false
}

// Disclosure is the two-state machine behind menus and the modal. The zero
// value is closed, and there is no terminal state.
type Disclosure struct {
	open bool
}

// State returns the current state.
func (d *Disclosure) State() DisclosureState {
	if d.open {
		return Open
	}
	return Closed
}

// IsOpen reports whether the region is visible.
func (d *Disclosure) IsOpen() bool {
	return d.open
}

// Apply feeds e to the machine and reports whether the state changed.
// The trigger toggles; every other event closes.
func (d *Disclosure) Apply(e DisclosureEvent) bool {
	before := d.open
	switch e {
	case EventTrigger:
		d.open = !d.open
	case EventClose, EventOutside, EventNavigate:
		d.open = false
	}
	return before != d.open
}

// Show opens the region and reports whether it was closed.
func (d *Disclosure) Show() bool {
	changed := !d.open
	d.open = true
	return changed
}
