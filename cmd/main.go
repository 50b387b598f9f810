package main

import (
	"context"
	"sync"
	"time"

	"auctionpauser/internal/browser"
	"auctionpauser/internal/cli"
	"auctionpauser/internal/core/controller"
	"auctionpauser/internal/core/pauser"
	"auctionpauser/internal/logging"
	"auctionpauser/internal/platform"
	"auctionpauser/internal/storage"
	"auctionpauser/internal/ui/notify"
	"auctionpauser/internal/ui/overlay"
	"auctionpauser/internal/ui/preferences"
	"auctionpauser/internal/ui/tray"
	"auctionpauser/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	golog "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appName   = "auctionpauser"
	envPrefix = "AUCTIONPAUSER"
)

var (
	log = golog.Logger(appName)
	v   = viper.New()
)

func init() {
	flags := []cli.Flag{
		{Name: "url", DefValue: "", Description: "Draft room URL to open in a new browser"},
		{Name: "remote-url", DefValue: "", Description: "DevTools URL of a running browser to attach to, e.g. ws://127.0.0.1:9222"},
		{Name: "match", DefValue: "fantrax.com", Description: "URL substring picking the tab when attaching"},
		{Name: "headless", DefValue: false, Description: "Launch the browser without a window"},
		{Name: "user-data-dir", DefValue: "", Description: "Browser profile directory (defaults to one under the config dir)"},
		{Name: "no-tray", DefValue: false, Description: "Run without the tray, until interrupted"},
		{Name: "log-debug", DefValue: false, Description: "Enable debug level logging"},
		{Name: "log-json", DefValue: false, Description: "Enable structured logging"},
	}
	cli.CheckErr(cli.ConfigureCLI(v, envPrefix, flags, rootCmd))
}

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Pauses the Fantrax auction timer before it runs out",
	Long: `Watches a Fantrax live auction draft room and clicks the timer's pause
control once per nomination when the countdown drops to the threshold.`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(c *cobra.Command, args []string) {
		err := logging.Setup(logging.Config{
			Debug: v.GetBool("log-debug"),
			JSON:  v.GetBool("log-json"),
		})
		cli.CheckErr(err)
	},
	Run: func(c *cobra.Command, args []string) {
		run()
	},
}

func main() {
	cli.CheckErr(rootCmd.Execute())
}

func run() {
	room := v.GetString("url")
	if v.GetString("remote-url") != "" {
		room = v.GetString("remote-url") + "|" + v.GetString("match")
	}
	guard, err := platform.AcquireSingleInstance(appName, room)
	if err != nil {
		log.Errorf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	dirs := platform.NewDirs(appName)
	store, err := storage.NewStore(dirs)
	cli.CheckErr(err)
	settings, err := store.Load()
	if err != nil {
		log.Warnf("using default settings: %v", err)
	}

	userDataDir := v.GetString("user-data-dir")
	if userDataDir == "" {
		userDataDir, err = dirs.ProfileDir()
		cli.CheckErr(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := browser.Open(ctx, browser.Options{
		URL:         v.GetString("url"),
		RemoteURL:   v.GetString("remote-url"),
		Match:       v.GetString("match"),
		Headless:    v.GetBool("headless"),
		UserDataDir: userDataDir,
	})
	cli.CheckErr(err)
	defer session.Close()

	engine := pauser.New(settings.PauserConfig(), pauser.Options{}, session)
	engine.SetEnabled(settings.StartEnabled)
	events := engine.Subscribe(32)
	engine.Start(ctx)
	defer engine.Stop()

	if v.GetBool("no-tray") {
		runHeadless(ctx, store, engine, events, session)
		return
	}

	fyneApp := app.NewWithID("com.auctionpauser.app")
	fyneApp.SetIcon(resources.MustIcon(resources.IconArmed))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		log.Warn("system tray unsupported on this platform, running headless")
		runHeadless(ctx, store, engine, events, session)
		return
	}

	runTray(ctx, fyneApp, desktopApp, store, settings, engine, events, session)
}

func runHeadless(ctx context.Context, store *storage.Store, engine *pauser.Engine, events <-chan pauser.Event, session *browser.Session) {
	if err := store.Watch(ctx, func(updated preferences.Settings) {
		engine.UpdateConfig(updated.PauserConfig())
	}); err != nil {
		log.Warnf("settings hot reload unavailable: %v", err)
	}

	go func() {
		for event := range events {
			logEvent(event)
		}
	}()

	log.Infof("running without tray, settings at %s", store.Path())
	cli.WaitForTerminateSignal(session.Done())
	log.Info("shutting down")
}

func runTray(
	ctx context.Context,
	fyneApp fyne.App,
	desktopApp desktop.App,
	store *storage.Store,
	settings preferences.Settings,
	engine *pauser.Engine,
	events <-chan pauser.Event,
	session *browser.Session,
) {
	notifier := notify.New(fyneApp)
	notifier.SetEnabled(settings.Notifications)
	indicator := overlay.New(fyneApp)

	applySettings := func(updated preferences.Settings) {
		engine.UpdateConfig(updated.PauserConfig())
		notifier.SetEnabled(updated.Notifications)
	}

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		applySettings(updated)
		if err := store.Save(updated); err != nil {
			log.Errorf("saving settings: %v", err)
		}
	})

	if err := store.Watch(ctx, func(updated preferences.Settings) {
		applySettings(updated)
		fyne.Do(func() {
			prefsWindow.UpdateSettings(updated)
		})
	}); err != nil {
		log.Warnf("settings hot reload unavailable: %v", err)
	}

	var disableMu sync.Mutex
	var reenableTimer *time.Timer
	cancelReenable := func() {
		disableMu.Lock()
		defer disableMu.Unlock()
		if reenableTimer != nil {
			reenableTimer.Stop()
			reenableTimer = nil
		}
	}
	toggle := func() {
		cancelReenable()
		engine.SetEnabled(!engine.Status().Enabled)
	}
	resetCounters := func() {
		engine.ResetCounters()
	}

	indicator.SetHandlers(toggle, resetCounters)

	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnToggleEnabled: toggle,
		OnDisableFor: func(duration time.Duration) {
			cancelReenable()
			engine.SetEnabled(false)
			disableMu.Lock()
			reenableTimer = time.AfterFunc(duration, func() {
				log.Infof("re-enabling auto-pause after %s", duration)
				engine.SetEnabled(true)
			})
			disableMu.Unlock()
		},
		OnResetCounters: resetCounters,
		OnResetState:    engine.Reset,
		OnShowIndicator: indicator.Show,
		OnPreferences:   prefsWindow.Show,
		OnQuit: func() {
			fyneApp.Quit()
		},
	})
	desktopApp.SetSystemTrayIcon(trayIcon(engine.Status()))

	go func() {
		for event := range events {
			logEvent(event)
			status := event.Status
			fyne.Do(func() {
				trayManager.SetStatus(status)
				indicator.SetStatus(status)
				desktopApp.SetSystemTrayIcon(trayIcon(status))
			})
			notifier.Handle(event)
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-session.Done():
				log.Warn("browser tab closed, quitting")
				fyne.Do(fyneApp.Quit)
				return
			case now := <-ticker.C:
				status := engine.Status()
				fyne.Do(func() {
					trayManager.SetStatus(status)
					indicator.Tick(now)
				})
			}
		}
	}()

	indicator.Show()
	fyneApp.Run()
	cancelReenable()
}

func trayIcon(status pauser.Status) fyne.Resource {
	switch {
	case !status.Enabled:
		return resources.MustIcon(resources.IconOff)
	case status.Phase == controller.PhaseDisarmedWaitingResume:
		return resources.MustIcon(resources.IconPaused)
	default:
		return resources.MustIcon(resources.IconArmed)
	}
}

func logEvent(event pauser.Event) {
	switch event.Type {
	case pauser.EventNomination:
		log.Infof("nomination: %s", event.Nominee)
	case pauser.EventPauseIssued:
		log.Infof("paused for %s", event.Nominee)
	case pauser.EventPauseFailed:
		log.Warnf("pause failed: %v", event.Err)
	case pauser.EventRearmed:
		log.Info("re-armed")
	case pauser.EventEnabled:
		log.Infof("auto-pause enabled: %t", event.Status.Enabled)
	}
}
