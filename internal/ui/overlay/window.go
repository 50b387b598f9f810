// Package overlay shows a small always-available status indicator with the
// on/off toggle and the counter reset next to it.
package overlay

import (
	"image/color"
	"time"

	"auctionpauser/internal/core/controller"
	"auctionpauser/internal/core/pauser"
	"auctionpauser/internal/ui/status"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

var (
	enabledColor  = color.NRGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF}
	disabledColor = color.NRGBA{R: 0xF4, G: 0x43, B: 0x36, A: 0xFF}
	pausedColor   = color.NRGBA{R: 0xE8, G: 0xBE, B: 0x42, A: 0xFF}
)

// Window is the status indicator.
type Window struct {
	window      fyne.Window
	accent      *canvas.Rectangle
	headline    *canvas.Text
	timer       *widget.Label
	nominee     *widget.Label
	clicks      *widget.Label
	lastPause   *widget.Label
	toggle      *widget.Button
	reset       *widget.Button
	onToggle    func()
	onReset     func()
	latest      pauser.Status
	initialised bool
}

// New creates the indicator window. It starts hidden.
func New(app fyne.App) *Window {
	window := app.NewWindow("Auction Pauser")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	accent := canvas.NewRectangle(enabledColor)
	accent.SetMinSize(fyne.NewSize(6, 0))

	headline := canvas.NewText("Waiting for draft room", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	headline.TextStyle = fyne.TextStyle{Bold: true}
	headline.TextSize = 16

	overlay := &Window{
		window:    window,
		accent:    accent,
		headline:  headline,
		timer:     widget.NewLabel("Timer: --:--"),
		nominee:   widget.NewLabel("Player: none"),
		clicks:    widget.NewLabel("Clicks: 0 pause, 0 live"),
		lastPause: widget.NewLabel("Last pause: never"),
	}
	overlay.toggle = widget.NewButton("Auto-Pause: ON", func() {
		if overlay.onToggle != nil {
			overlay.onToggle()
		}
	})
	overlay.reset = widget.NewButton("Reset Counters", func() {
		if overlay.onReset != nil {
			overlay.onReset()
		}
	})

	lines := container.NewVBox(headline, overlay.timer, overlay.nominee, overlay.clicks, overlay.lastPause)
	buttons := container.NewGridWithColumns(2, overlay.reset, overlay.toggle)
	window.SetContent(container.NewBorder(nil, buttons, accent, nil, lines))
	window.Resize(fyne.NewSize(280, 220))
	window.SetCloseIntercept(func() {
		window.Hide()
	})
	return overlay
}

// SetHandlers wires the buttons.
func (overlay *Window) SetHandlers(onToggle, onReset func()) {
	overlay.onToggle = onToggle
	overlay.onReset = onReset
}

// Show brings the indicator up.
func (overlay *Window) Show() {
	overlay.window.Show()
	overlay.window.RequestFocus()
}

// Hide closes the indicator.
func (overlay *Window) Hide() {
	overlay.window.Hide()
}

// SetStatus renders the readout. Call it on the fyne goroutine.
func (overlay *Window) SetStatus(current pauser.Status) {
	overlay.latest = current
	overlay.initialised = true
	overlay.render(time.Now())
}

// Tick refreshes time-relative lines without a new status.
func (overlay *Window) Tick(now time.Time) {
	if overlay.initialised {
		overlay.render(now)
	}
}

func (overlay *Window) render(now time.Time) {
	lines := status.Render(overlay.latest, now)
	overlay.headline.Text = lines.Headline
	overlay.headline.Refresh()
	overlay.timer.SetText(lines.Timer)
	overlay.nominee.SetText(lines.Nominee)
	overlay.clicks.SetText(lines.Clicks)
	overlay.lastPause.SetText(lines.LastPause)

	if overlay.latest.Enabled {
		overlay.toggle.SetText("Auto-Pause: ON")
	} else {
		overlay.toggle.SetText("Auto-Pause: OFF")
	}
	overlay.accent.FillColor = accentColor(overlay.latest)
	overlay.accent.Refresh()
}

func accentColor(current pauser.Status) color.Color {
	if !current.Enabled {
		return disabledColor
	}
	if current.Phase == controller.PhaseDisarmedWaitingResume {
		return pausedColor
	}
	return enabledColor
}
