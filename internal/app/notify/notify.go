/*
Package notify drives the transient effects shown to a tab: self-dismissing
notifications with their enter/visible/exit timing, and the trailing-edge
debounce applied to search input.
*/
package notify

import (
	"sync"
	"time"

	"freequilt/internal/pkg/randx"
)

// Kind selects the notification styling.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Phase is the lifecycle stage of a shown notification.
type Phase string

const (
	PhaseEntering Phase = "entering"
	PhaseActive   Phase = "active"
	PhaseLeaving  Phase = "leaving"
	PhaseRemoved  Phase = "removed"
)

// Timings of one notification, measured from the Notify call.
type Timings struct {
	// Enter is the delay before the notification slides in.
	Enter time.Duration
	// Visible is the delay before it starts leaving.
	Visible time.Duration
	// Exit is how long leaving takes before removal.
	Exit time.Duration
}

// DefaultTimings matches the site: in after 100 ms, out after 3 s, gone 300 ms later.
var DefaultTimings = Timings{
	Enter:   100 * time.Millisecond,
	Visible: 3000 * time.Millisecond,
	Exit:    300 * time.Millisecond,
}

// Notification is one message shown to a tab.
type Notification struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// Event reports a phase change of a notification.
type Event struct {
	Notification
	Phase Phase `json:"phase"`
}

// Sink receives notification events. It is called from timer goroutines.
type Sink func(Event)

// Timer is the part of *time.Timer the package uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Notifier shows notifications. Each call is independent: there is no
// de-duplication and no queue, so several may be visible at once.
type Notifier struct {
	timings   Timings
	afterFunc AfterFunc

	mu      sync.Mutex
	pending map[string][]Timer
	stopped bool
}

// NewNotifier creates a Notifier. A nil afterFunc uses time.AfterFunc.
func NewNotifier(timings Timings, afterFunc AfterFunc) *Notifier {
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}
	return &Notifier{
		timings:   timings,
		afterFunc: afterFunc,
		pending:   make(map[string][]Timer),
	}
}

// Notify emits the entering event immediately and schedules the others.
func (n *Notifier) Notify(sink Sink, message string, kind Kind) Notification {
	return n.Show(sink, Notification{Kind: kind, Message: message})
}

// Show is Notify for a notification with a title or a preset id.
func (n *Notifier) Show(sink Sink, note Notification) Notification {
	if note.ID == "" {
		note.ID = randx.MessageID()
	}
	if note.Kind == "" {
		note.Kind = KindInfo
	}

	n.mu.Lock()
	stopped := n.stopped
	n.mu.Unlock()

	if stopped {
		return note
	}

	sink(Event{Notification: note, Phase: PhaseEntering})

	emit := func(phase Phase) func() {
		return func() {
			if phase == PhaseRemoved {
				n.mu.Lock()
				delete(n.pending, note.ID)
				n.mu.Unlock()
			}
			sink(Event{Notification: note, Phase: phase})
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopped {
		return note
	}

	n.pending[note.ID] = []Timer{
		n.afterFunc(n.timings.Enter, emit(PhaseActive)),
		n.afterFunc(n.timings.Visible, emit(PhaseLeaving)),
		n.afterFunc(n.timings.Visible+n.timings.Exit, emit(PhaseRemoved)),
	}

	return note
}

// Pending returns the number of notifications not yet removed.
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}

// Stop abandons every scheduled event. Later calls to Notify are ignored.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopped = true
	for id, timers := range n.pending {
		for _, t := range timers {
			t.Stop()
		}
		delete(n.pending, id)
	}
}
