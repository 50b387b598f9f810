// Package notify turns engine events into desktop notifications.
package notify

import (
	"errors"
	"fmt"
	"sync"

	"auctionpauser/internal/core/model"
	"auctionpauser/internal/core/pauser"

	"fyne.io/fyne/v2"
)

// Sender delivers one notification.
type Sender interface {
	SendNotification(notification *fyne.Notification)
}

// Notifier posts notifications for the events the operator cares about.
type Notifier struct {
	mu      sync.Mutex
	sender  Sender
	enabled bool
}

// New returns an enabled Notifier.
func New(sender Sender) *Notifier {
	return &Notifier{sender: sender, enabled: true}
}

// SetEnabled turns notifications on or off.
func (notifier *Notifier) SetEnabled(enabled bool) {
	notifier.mu.Lock()
	notifier.enabled = enabled
	notifier.mu.Unlock()
}

// Handle posts a notification for event if it warrants one.
func (notifier *Notifier) Handle(event pauser.Event) bool {
	notifier.mu.Lock()
	enabled := notifier.enabled
	notifier.mu.Unlock()
	if !enabled || notifier.sender == nil {
		return false
	}
	notification, ok := Message(event)
	if !ok {
		return false
	}
	notifier.sender.SendNotification(notification)
	return true
}

// Message builds the notification for event.
func Message(event pauser.Event) (*fyne.Notification, bool) {
	switch event.Type {
	case pauser.EventPauseIssued:
		return fyne.NewNotification("Auction paused", fmt.Sprintf("Paused with %s left on %s", clock(event), player(event.Nominee))), true
	case pauser.EventPauseFailed:
		if errors.Is(event.Err, model.ErrActionNotFound) {
			return fyne.NewNotification("Pause control not found", "Could not find the timer control. Retrying shortly."), true
		}
		return nil, false
	case pauser.EventEnabled:
		if event.Status.Enabled {
			return fyne.NewNotification("Auto-pause enabled", "Watching the draft timer"), true
		}
		return fyne.NewNotification("Auto-pause disabled", "The timer will not be paused"), true
	default:
		return nil, false
	}
}

func clock(event pauser.Event) string {
	if event.Status.Timer == nil {
		return "little time"
	}
	return event.Status.Timer.String()
}

func player(nominee string) string {
	if nominee == "" {
		return "the current player"
	}
	return nominee
}
