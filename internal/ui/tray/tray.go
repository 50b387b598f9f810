package tray

import (
	"fmt"
	"time"

	"auctionpauser/internal/core/pauser"
	"auctionpauser/internal/ui/status"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnToggleEnabled func()
	OnDisableFor    func(time.Duration)
	OnResetCounters func()
	OnResetState    func()
	OnShowIndicator func()
	OnPreferences   func()
	OnQuit          func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	callbacks   Callbacks
	statusItem  *fyne.MenuItem
	timerItem   *fyne.MenuItem
	nomineeItem *fyne.MenuItem
	clicksItem  *fyne.MenuItem
	lastItem    *fyne.MenuItem
	toggleItem  *fyne.MenuItem
	disableFor  *fyne.MenuItem
	enabled     bool
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		enabled:   true,
	}

	manager.statusItem = infoItem("Status: starting...")
	manager.timerItem = infoItem("Timer: --:--")
	manager.nomineeItem = infoItem("Player: none")
	manager.clicksItem = infoItem("Clicks: 0 pause, 0 live")
	manager.lastItem = infoItem("Last pause: never")

	manager.toggleItem = fyne.NewMenuItem("Turn auto-pause off", func() {
		if manager.callbacks.OnToggleEnabled != nil {
			manager.callbacks.OnToggleEnabled()
		}
	})

	var durations []*fyne.MenuItem
	for _, minutes := range []int{5, 15, 30, 60} {
		duration := time.Duration(minutes) * time.Minute
		durations = append(durations, fyne.NewMenuItem(fmt.Sprintf("%d minutes", minutes), func() {
			if manager.callbacks.OnDisableFor != nil {
				manager.callbacks.OnDisableFor(duration)
			}
		}))
	}
	manager.disableFor = fyne.NewMenuItem("Turn off for...", nil)
	manager.disableFor.ChildMenu = fyne.NewMenu("", durations...)

	manager.refreshMenu()
	return manager
}

// SetStatus renders the engine readout into the menu.
func (manager *Manager) SetStatus(current pauser.Status) {
	lines := status.Render(current, time.Now())
	manager.statusItem.Label = "Status: " + lines.Headline
	manager.timerItem.Label = lines.Timer
	manager.nomineeItem.Label = lines.Nominee
	manager.clicksItem.Label = lines.Clicks
	manager.lastItem.Label = lines.LastPause

	manager.enabled = current.Enabled
	if current.Enabled {
		manager.toggleItem.Label = "Turn auto-pause off"
	} else {
		manager.toggleItem.Label = "Turn auto-pause on"
	}
	manager.disableFor.Disabled = !current.Enabled
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("Auction Pauser",
		manager.statusItem,
		manager.timerItem,
		manager.nomineeItem,
		manager.clicksItem,
		manager.lastItem,
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		manager.disableFor,
		fyne.NewMenuItem("Reset counters", func() {
			if manager.callbacks.OnResetCounters != nil {
				manager.callbacks.OnResetCounters()
			}
		}),
		fyne.NewMenuItem("Forget current player", func() {
			if manager.callbacks.OnResetState != nil {
				manager.callbacks.OnResetState()
			}
		}),
		fyne.NewMenuItem("Show indicator", func() {
			if manager.callbacks.OnShowIndicator != nil {
				manager.callbacks.OnShowIndicator()
			}
		}),
		fyne.NewMenuItem("Preferences", func() {
			if manager.callbacks.OnPreferences != nil {
				manager.callbacks.OnPreferences()
			}
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}

func infoItem(label string) *fyne.MenuItem {
	item := fyne.NewMenuItem(label, nil)
	item.Disabled = true
	return item
}
