package console

import (
	"fmt"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultMaxNotices is how many notices are kept before the oldest is dropped.
const DefaultMaxNotices = 5

// NoticeKind is the severity of a notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is a short message for the judge.
type Notice struct {
	ID      string     `json:"id"`
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	At      time.Time  `json:"at"`
}

// Notifier is a bounded queue of notices. Ids are unique per Notifier.
type Notifier struct {
	clock   clockwork.Clock
	max     int
	counter int
	notices []Notice
}

// NewNotifier creates an empty queue holding at most max notices.
func NewNotifier(clock clockwork.Clock, max int) *Notifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if max <= 0 {
		max = DefaultMaxNotices
	}
	return &Notifier{clock: clock, max: max}
}

// Show queues a notice and drops the oldest ones beyond the limit.
func (n *Notifier) Show(kind NoticeKind, message string) Notice {
	n.counter++
	now := n.clock.Now()
	notice := Notice{
		ID:      fmt.Sprintf("notice-%d-%d", n.counter, now.UnixMilli()),
		Kind:    kind,
		Message: message,
		At:      now,
	}
	n.notices = append(n.notices, notice)
	if len(n.notices) > n.max {
		n.notices = slices.Clone(n.notices[len(n.notices)-n.max:])
	}
	return notice
}

// Dismiss removes a notice. Unknown ids are ignored.
func (n *Notifier) Dismiss(id string) bool {
	i := slices.IndexFunc(n.notices, func(x Notice) bool { return x.ID == id })
	if i < 0 {
		return false
	}
	n.notices = slices.Delete(n.notices, i, i+1)
	return true
}

// List returns the queued notices, oldest first.
func (n *Notifier) List() []Notice {
	return slices.Clone(n.notices)
}
