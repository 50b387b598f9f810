// Package pauser runs the poll loop that ties extraction, state tracking and
// the pause controller together.
//
// A single goroutine owns the tracker and the controller. Poll ticks, resume
// signals, control clicks and operator commands are all delivered to that
// goroutine and handled one at a time, so no handler ever observes a
// half-applied transition.
package pauser

import (
	"context"
	"errors"
	"sync"
	"time"

	"auctionpauser/internal/core/action"
	"auctionpauser/internal/core/controller"
	"auctionpauser/internal/core/extract"
	"auctionpauser/internal/core/model"
	"auctionpauser/internal/core/resume"
	"auctionpauser/internal/core/tracker"

	"github.com/PuerkitoBio/goquery"
	golog "github.com/ipfs/go-log/v2"
)

var log = golog.Logger("pauser")

// Page is the host page the engine observes and acts on.
type Page interface {
	Snapshot(ctx context.Context) (*goquery.Document, error)
	ClickFirst(ctx context.Context, selectors []string) (int, error)
	Subscribe(buffer int) (<-chan struct{}, func())
	Clicks() <-chan model.ControlClick
}

// Options contains runtime options for the Engine.
type Options struct {
	SnapshotTimeout time.Duration
	ActionTimeout   time.Duration
}

// Engine is the poll loop.
type Engine struct {
	mu        sync.Mutex
	config    model.PauserConfig
	options   Options
	page      Page
	extractor *extract.Extractor
	issuer    *action.Issuer

	tracker    *tracker.Tracker
	controller *controller.Controller
	resumes    *resume.Manager

	lifetime context.Context
	cancel   context.CancelFunc
	signals  chan resume.Signal
	commands chan func()
	events   []chan Event
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stopped  bool

	enabled bool
	status  Status
	now     func() time.Time
}

type issuerFunc func(ctx context.Context) (model.PauseResult, error)

func (fn issuerFunc) IssuePause(ctx context.Context) (model.PauseResult, error) {
	return fn(ctx)
}

// New creates an enabled Engine for the page.
func New(config model.PauserConfig, options Options, page Page) *Engine {
	config = config.Normalize()
	if options.SnapshotTimeout <= 0 {
		options.SnapshotTimeout = 5 * time.Second
	}
	if options.ActionTimeout <= 0 {
		options.ActionTimeout = 5 * time.Second
	}

	lifetime, cancel := context.WithCancel(context.Background())
	engine := &Engine{
		config:    config,
		options:   options,
		page:      page,
		extractor: extract.New(config.Selectors),
		issuer:    action.New(page, config.Selectors.PauseTargets),
		lifetime:  lifetime,
		cancel:    cancel,
		signals:   make(chan resume.Signal, 4),
		commands:  make(chan func(), 16),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		enabled:   true,
		now:       time.Now,
	}
	engine.resumes = resume.NewManager(lifetime, page, engine.probe, engine.signals)
	engine.controller = controller.New(config, issuerFunc(engine.issuePause), engine.resumes)
	engine.tracker = tracker.New(engine.controller)
	engine.status = engine.snapshotStatus()
	return engine
}

// Subscribe registers a new observer channel.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	engine.events = append(engine.events, ch)
	engine.mu.Unlock()
	return ch
}

// Start launches the poll loop. An Engine runs at most once; Start after
// Stop is a no-op.
func (engine *Engine) Start(ctx context.Context) {
	engine.mu.Lock()
	if engine.running {
		engine.mu.Unlock()
		return
	}
	if engine.stopped {
		engine.mu.Unlock()
		log.Warn("engine already stopped, not restarting")
		return
	}
	engine.running = true
	engine.mu.Unlock()

	go engine.run(ctx)
}

// Stop terminates the poll loop, cancels outstanding resume watchers and
// closes observers.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	if !engine.running {
		engine.mu.Unlock()
		return
	}
	close(engine.stopCh)
	engine.running = false
	engine.stopped = true
	engine.mu.Unlock()

	<-engine.doneCh
	engine.cancel()

	engine.mu.Lock()
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()
	for _, ch := range events {
		close(ch)
	}
}

// Status returns the latest operator readout.
func (engine *Engine) Status() Status {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.status
}

// SetEnabled flips the gate that decides whether a poll may pause.
func (engine *Engine) SetEnabled(enabled bool) {
	engine.do(func() {
		engine.enabled = enabled
		log.Infof("auto-pause enabled: %t", enabled)
		engine.emit(Event{Type: EventEnabled})
	})
}

// ResetCounters zeroes the per-nominee counters without changing the phase.
func (engine *Engine) ResetCounters() {
	engine.do(func() {
		engine.controller.ResetCounters()
		log.Info("click counters reset")
		engine.emit(Event{Type: EventStatus})
	})
}

// Reset forgets the tracked nominee and timer state and zeroes the counters.
// The next poll rebuilds the state from the page.
func (engine *Engine) Reset() {
	engine.do(func() {
		engine.tracker.Reset()
		engine.controller.ResetCounters()
		log.Info("auction state reset")
		engine.emit(Event{Type: EventStatus})
	})
}

// UpdateConfig applies new settings to the running loop.
func (engine *Engine) UpdateConfig(config model.PauserConfig) {
	config = config.Normalize()
	engine.do(func() {
		engine.mu.Lock()
		engine.config = config
		engine.extractor = extract.New(config.Selectors)
		engine.mu.Unlock()
		engine.issuer = action.New(engine.page, config.Selectors.PauseTargets)
		engine.controller.UpdateConfig(config)
		log.Infof("config updated: poll every %s, pause at %s", config.PollInterval, config.Threshold)
	})
}

// do runs fn on the loop goroutine, or inline when the loop is not running.
func (engine *Engine) do(fn func()) {
	engine.mu.Lock()
	running := engine.running
	engine.mu.Unlock()
	if !running {
		fn()
		return
	}
	select {
	case engine.commands <- fn:
	case <-engine.stopCh:
	}
}

func (engine *Engine) run(ctx context.Context) {
	defer close(engine.doneCh)

	if !engine.bootstrap(ctx) {
		return
	}

	interval := engine.currentConfig().PollInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-engine.stopCh:
			return
		case <-ticker.C:
			engine.poll(ctx)
		case signal := <-engine.signals:
			engine.handleResume(signal)
		case click := <-engine.page.Clicks():
			engine.handleClick(click)
		case fn := <-engine.commands:
			fn()
			if next := engine.currentConfig().PollInterval; next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

// bootstrap waits for the draft room to render, then proceeds regardless
// once the retry budget is spent. It returns false if the loop was stopped.
func (engine *Engine) bootstrap(ctx context.Context) bool {
	config := engine.currentConfig()
	for attempt := 1; attempt <= config.MaxInitRetries; attempt++ {
		doc, err := engine.snapshot(ctx)
		if err == nil && engine.currentExtractor().Ready(doc) {
			log.Infof("draft room ready after %d attempt(s)", attempt)
			engine.setReady()
			return true
		}
		log.Debugf("draft room not ready (attempt %d/%d): %v", attempt, config.MaxInitRetries, err)

		select {
		case <-ctx.Done():
			return false
		case <-engine.stopCh:
			return false
		case <-time.After(config.InitRetryDelay):
		}
	}
	log.Warn("draft room readiness not confirmed, proceeding with current state")
	engine.setReady()
	return true
}

// poll runs one extraction and tracking pass. While the gate is off the
// readout keeps updating but no nomination cooldown starts and no pause is
// considered.
func (engine *Engine) poll(ctx context.Context) {
	doc, err := engine.snapshot(ctx)
	if err != nil {
		log.Debugf("snapshot: %v", err)
		return
	}

	obs := engine.currentExtractor().Extract(doc)
	if issues := obs.Issues(); issues != nil {
		log.Debugf("observation: %v", issues)
	}

	state, detected := engine.tracker.Update(obs)
	switch {
	case detected != nil && engine.enabled:
		log.Infof("new nomination detected: %s", detected.Nominee)
		engine.controller.OnNomination(*detected)
		engine.emit(Event{Type: EventNomination, Nominee: detected.Nominee})
	default:
		engine.controller.SetNominee(state.CurrentNominee)
	}
	engine.controller.ObserveWaiting(obs.Waiting)

	if engine.controller.Expire(state.TimerState) {
		engine.emit(Event{Type: EventRearmed})
	}

	var paused bool
	if engine.enabled {
		actionCtx, cancel := context.WithTimeout(ctx, engine.options.ActionTimeout)
		paused, err = engine.controller.Consider(actionCtx, obs.Timer, obs.Waiting)
		cancel()
	}

	engine.mu.Lock()
	engine.status.Waiting = obs.Waiting
	engine.status.Timer = obs.Timer
	if err != nil {
		engine.status.LastError = err.Error()
	}
	engine.mu.Unlock()

	switch {
	case err != nil:
		engine.emit(Event{Type: EventPauseFailed, Nominee: state.CurrentNominee, Err: err})
	case paused:
		engine.emit(Event{Type: EventPauseIssued, Nominee: state.CurrentNominee})
	default:
		engine.emit(Event{Type: EventStatus})
	}
}

func (engine *Engine) handleResume(signal resume.Signal) {
	if engine.controller.Rearm(signal.CycleID) {
		engine.emit(Event{Type: EventRearmed})
	}
}

func (engine *Engine) handleClick(click model.ControlClick) {
	kind := engine.controller.ObserveClick(click, engine.tracker.State().TimerState)
	if kind != controller.ClickIgnored {
		engine.emit(Event{Type: EventStatus})
	}
}

func (engine *Engine) issuePause(ctx context.Context) (model.PauseResult, error) {
	return engine.issuer.IssuePause(ctx)
}

// probe reads the timer marker state for resume watchers. It runs on
// watcher goroutines and only reads the page.
func (engine *Engine) probe(ctx context.Context) (model.TimerTextState, error) {
	doc, err := engine.snapshot(ctx)
	if err != nil {
		return model.TimerUnknown, err
	}
	return engine.currentExtractor().Extract(doc).TimerText, nil
}

func (engine *Engine) snapshot(ctx context.Context) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, engine.options.SnapshotTimeout)
	defer cancel()
	doc, err := engine.page.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("empty snapshot")
	}
	return doc, nil
}

func (engine *Engine) currentConfig() model.PauserConfig {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.config
}

func (engine *Engine) currentExtractor() *extract.Extractor {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.extractor
}

func (engine *Engine) setReady() {
	engine.mu.Lock()
	engine.status.Ready = true
	engine.mu.Unlock()
}

func (engine *Engine) snapshotStatus() Status {
	state := engine.tracker.State()
	snapshot := engine.controller.Snapshot()
	return Status{
		Enabled:        engine.enabled,
		TimerState:     state.TimerState,
		CurrentNominee: state.CurrentNominee,
		Phase:          snapshot.Phase,
		Counters:       snapshot.Counters,
		LastPauseAt:    snapshot.LastPauseAt,
	}
}

// emit refreshes the status readout and fans the event out without blocking.
func (engine *Engine) emit(event Event) {
	fresh := engine.snapshotStatus()

	engine.mu.Lock()
	fresh.Ready = engine.status.Ready
	fresh.Waiting = engine.status.Waiting
	fresh.Timer = engine.status.Timer
	fresh.LastError = engine.status.LastError
	engine.status = fresh
	event.Status = fresh
	if event.At.IsZero() {
		event.At = engine.now()
	}
	events := append([]chan Event(nil), engine.events...)
	engine.mu.Unlock()

	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
