package feed

import (
	"fmt"
	"time"
)

// Status classes, used by front-ends to pick an indicator colour.
const (
	ClassSuccess    = "success"
	ClassWarning    = "warning"
	ClassConnecting = "connecting"
	ClassError      = "error"
	ClassNeutral    = "neutral"
)

// Status summarises feed health for display.
type Status struct {
	Text    string `json:"text"`
	Class   string `json:"class"`
	Healthy bool   `json:"healthy"`
	// Latency is the age of the last message, zero when unknown.
	Latency time.Duration `json:"latency"`
}

// Status derives the connection indicator at now. A connected feed with no
// message for staleAfter is reported as stale.
func (s Snapshot) Status(now time.Time, staleAfter time.Duration) Status {
	switch s.State {
	case StateConnecting:
		return Status{Text: "Connecting...", Class: ClassConnecting}
	case StateConnected:
		if s.LastMessage.IsZero() {
			return Status{Text: "Waiting for data", Class: ClassWarning}
		}
		age := max(now.Sub(s.LastMessage), 0)
		if staleAfter > 0 && age > staleAfter {
			return Status{Text: "No data", Class: ClassWarning, Latency: age}
		}
		return Status{Text: "Connected", Class: ClassSuccess, Healthy: true, Latency: age}
	default:
		if s.LastError != "" {
			return Status{Text: "Disconnected: " + s.LastError, Class: ClassError}
		}
		return Status{Text: "Disconnected", Class: ClassNeutral}
	}
}

// FormatLatency renders d as "120ms" below one second and "1.5s" above.
func FormatLatency(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
