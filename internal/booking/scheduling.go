package booking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Scheduling widget event names. Only a scheduled event is consumed.
const (
	EventScheduled         = "scheduled"
	EventScheduledExternal = "calendly.event_scheduled"
)

// SchedulingNotification is the message the external scheduling widget
// posts to the host page.
type SchedulingNotification struct {
	Event   string            `json:"event"`
	Payload SchedulingPayload `json:"payload"`
}

type SchedulingPayload struct {
	Event SchedulingEvent `json:"event"`
}

type SchedulingEvent struct {
	StartTime string `json:"start_time"`
}

// IsScheduled reports whether the notification announces a booked slot.
func (n SchedulingNotification) IsScheduled() bool {
	return n.Event == EventScheduled || n.Event == EventScheduledExternal
}

// Start parses the ISO-8601 start time.
func (n SchedulingNotification) Start() (time.Time, error) {
	raw := strings.TrimSpace(n.Payload.Event.StartTime)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: missing start_time", ErrInvalidNotification)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start_time %q: %v", ErrInvalidNotification, raw, err)
	}
	return t, nil
}

// ParseSchedulingNotification decodes and checks a notification. Events
// other than scheduled decode fine with ok=false; a scheduled event without
// a usable start time is an error.
func ParseSchedulingNotification(data []byte) (n SchedulingNotification, ok bool, err error) {
	if err := json.Unmarshal(data, &n); err != nil {
		return n, false, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	if strings.TrimSpace(n.Event) == "" {
		return n, false, fmt.Errorf("%w: missing event", ErrInvalidNotification)
	}
	if !n.IsScheduled() {
		return n, false, nil
	}
	if _, err := n.Start(); err != nil {
		return n, false, err
	}
	return n, true, nil
}
