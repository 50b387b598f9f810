package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window        fyne.Window
	settings      Settings
	onSave        func(Settings)
	threshold     *widget.Entry
	pollInterval  *widget.Entry
	retryDelay    *widget.Entry
	resumeTimeout *widget.Entry
	cooldown      *widget.Entry
	cooldownCheck *widget.Check
	startEnabled  *widget.Check
	notifications *widget.Check
	pauseTargets  *widget.Entry
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Auction Pauser Settings")

	prefs := &Window{
		window:        window,
		onSave:        onSave,
		threshold:     widget.NewEntry(),
		pollInterval:  widget.NewEntry(),
		retryDelay:    widget.NewEntry(),
		resumeTimeout: widget.NewEntry(),
		cooldown:      widget.NewEntry(),
		cooldownCheck: widget.NewCheck("Skip auto-pause right after a nomination", nil),
		startEnabled:  widget.NewCheck("Auto-pause on at launch", nil),
		notifications: widget.NewCheck("Desktop notifications", nil),
		pauseTargets:  widget.NewMultiLineEntry(),
	}
	prefs.pauseTargets.SetPlaceHolder("One CSS selector per line, highest priority first")
	prefs.UpdateSettings(settings)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Auto-pause", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Pause at or below"), prefs.threshold, widget.NewLabel("sec")),
		container.NewHBox(widget.NewLabel("Check the timer every"), prefs.pollInterval, widget.NewLabel("ms")),
		container.NewHBox(widget.NewLabel("Retry a failed pause after"), prefs.retryDelay, widget.NewLabel("sec")),
		container.NewHBox(widget.NewLabel("Give up waiting for resume after"), prefs.resumeTimeout, widget.NewLabel("sec")),
		prefs.cooldownCheck,
		container.NewHBox(widget.NewLabel("Cooldown"), prefs.cooldown, widget.NewLabel("sec")),
		prefs.startEnabled,
		prefs.notifications,
		widget.NewLabelWithStyle("Pause control selectors", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.pauseTargets,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		window.Hide()
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(460, 520))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.threshold.SetText(fmt.Sprintf("%d", int(settings.Threshold.Seconds())))
	prefs.pollInterval.SetText(fmt.Sprintf("%d", settings.PollInterval.Milliseconds()))
	prefs.retryDelay.SetText(fmt.Sprintf("%d", int(settings.RetryDelay.Seconds())))
	prefs.resumeTimeout.SetText(fmt.Sprintf("%d", int(settings.ResumeTimeout.Seconds())))
	prefs.cooldown.SetText(fmt.Sprintf("%d", int(settings.Cooldown.Seconds())))
	prefs.cooldownCheck.SetChecked(settings.CooldownEnabled)
	prefs.startEnabled.SetChecked(settings.StartEnabled)
	prefs.notifications.SetChecked(settings.Notifications)
	prefs.pauseTargets.SetText(strings.Join(settings.PauseTargets, "\n"))
}

func (prefs *Window) handleSave() {
	settings := Apply(prefs.settings, Form{
		Threshold:       prefs.threshold.Text,
		PollInterval:    prefs.pollInterval.Text,
		RetryDelay:      prefs.retryDelay.Text,
		ResumeTimeout:   prefs.resumeTimeout.Text,
		Cooldown:        prefs.cooldown.Text,
		CooldownEnabled: prefs.cooldownCheck.Checked,
		StartEnabled:    prefs.startEnabled.Checked,
		Notifications:   prefs.notifications.Checked,
		PauseTargets:    prefs.pauseTargets.Text,
	})

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

// Form holds the raw widget values.
type Form struct {
	Threshold       string
	PollInterval    string
	RetryDelay      string
	ResumeTimeout   string
	Cooldown        string
	CooldownEnabled bool
	StartEnabled    bool
	Notifications   bool
	PauseTargets    string
}

// Apply merges form values into settings. Invalid numbers keep the
// previous value.
func Apply(settings Settings, form Form) Settings {
	if seconds, ok := parsePositiveInt(form.Threshold); ok && seconds < 60 {
		settings.Threshold = time.Duration(seconds) * time.Second
	}
	if millis, ok := parsePositiveInt(form.PollInterval); ok && millis >= 100 {
		settings.PollInterval = time.Duration(millis) * time.Millisecond
	}
	if seconds, ok := parsePositiveInt(form.RetryDelay); ok {
		settings.RetryDelay = time.Duration(seconds) * time.Second
	}
	if seconds, ok := parsePositiveInt(form.ResumeTimeout); ok {
		settings.ResumeTimeout = time.Duration(seconds) * time.Second
	}
	if seconds, ok := parsePositiveInt(form.Cooldown); ok {
		settings.Cooldown = time.Duration(seconds) * time.Second
	}

	settings.CooldownEnabled = form.CooldownEnabled
	settings.StartEnabled = form.StartEnabled
	settings.Notifications = form.Notifications

	var targets []string
	for _, line := range strings.Split(form.PauseTargets, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			targets = append(targets, line)
		}
	}
	settings.PauseTargets = targets
	return settings
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
