// Package controller decides when to pause the auction timer and guarantees
// at most one pause per armed cycle.
package controller

import (
	"context"
	"fmt"
	"time"

	"auctionpauser/internal/core/model"

	"github.com/google/uuid"
	golog "github.com/ipfs/go-log/v2"
)

var log = golog.Logger("pauser/controller")

// Issuer performs the pause click on the host page.
type Issuer interface {
	IssuePause(ctx context.Context) (model.PauseResult, error)
}

// ResumeWatcher starts and cancels one-shot watches for the timer going live
// again after a pause cycle.
type ResumeWatcher interface {
	WatchResume(cycleID string)
	CancelResume(cycleID string)
}

// Controller is the pause state machine. It is not safe for concurrent use;
// the poll loop serializes every call.
type Controller struct {
	config  model.PauserConfig
	issuer  Issuer
	watcher ResumeWatcher
	now     func() time.Time
	newID   func() string

	phase         Phase
	counters      Counters
	nominee       string
	latched       bool
	cycleID       string
	retryAt       time.Time
	disarmedAt    time.Time
	cooldownUntil time.Time
	lastPauseAt   time.Time
}

// New creates an armed Controller.
func New(config model.PauserConfig, issuer Issuer, watcher ResumeWatcher) *Controller {
	return &Controller{
		config:  config.Normalize(),
		issuer:  issuer,
		watcher: watcher,
		now:     time.Now,
		newID:   uuid.NewString,
		phase:   PhaseArmed,
	}
}

// SetClock replaces the time source.
func (controller *Controller) SetClock(now func() time.Time) {
	controller.now = now
}

// UpdateConfig swaps thresholds and delays without touching the phase.
func (controller *Controller) UpdateConfig(config model.PauserConfig) {
	controller.config = config.Normalize()
}

// Armed reports whether a new pause cycle may start.
func (controller *Controller) Armed() bool {
	return controller.phase == PhaseArmed
}

// Phase returns the current phase.
func (controller *Controller) Phase() Phase {
	return controller.phase
}

// Snapshot returns a copy of the controller state.
func (controller *Controller) Snapshot() Snapshot {
	return Snapshot{
		Phase:         controller.phase,
		Counters:      controller.counters,
		Nominee:       controller.nominee,
		CycleID:       controller.cycleID,
		Latched:       controller.latched,
		LastPauseAt:   controller.lastPauseAt,
		RetryAt:       controller.retryAt,
		CooldownUntil: controller.cooldownUntil,
	}
}

// SetNominee records the current nominee. A different name starts fresh
// per-nominee counters and releases the pause latch.
func (controller *Controller) SetNominee(nominee string) bool {
	if nominee == controller.nominee {
		return false
	}
	log.Debugf("nominee changed from %q to %q", controller.nominee, nominee)
	controller.nominee = nominee
	controller.counters = Counters{}
	controller.latched = false
	return true
}

// OnNomination handles a detected nomination and starts the optional
// cooldown window.
func (controller *Controller) OnNomination(event model.NominationDetected) {
	controller.SetNominee(event.Nominee)
	if controller.config.Cooldown.Enabled {
		controller.cooldownUntil = controller.now().Add(controller.config.Cooldown.Duration)
	}
}

// ObserveWaiting releases the pause latch once the auction is between
// nominations.
func (controller *Controller) ObserveWaiting(waiting bool) {
	if waiting && controller.latched {
		log.Debug("waiting state observed, releasing pause latch")
		controller.latched = false
	}
}

// ObserveClick counts a human click on a timer control. Synthetic clicks are
// ignored so the pauser never counts its own pause.
func (controller *Controller) ObserveClick(click model.ControlClick, timerState model.TimerTextState) ClickKind {
	if !click.Trusted {
		return ClickIgnored
	}
	kind := Classify(click, timerState)
	switch kind {
	case ClickPause:
		controller.counters.ManualPauses++
		log.Infof("manual pause observed for %q (total %d)", controller.nominee, controller.counters.ManualPauses)
	case ClickLive:
		controller.counters.LiveClicks++
		log.Debugf("live click observed for %q (total %d)", controller.nominee, controller.counters.LiveClicks)
	}
	return kind
}

// ResetCounters zeroes the per-nominee counters and releases the latch
// without changing the phase.
func (controller *Controller) ResetCounters() {
	controller.counters = Counters{}
	controller.latched = false
}

// Consider issues a pause when the controller is armed and the timer is
// inside the threshold window. It reports whether a pause was issued. A
// failed attempt returns an error wrapping model.ErrActionNotFound or the
// issuer's error and stays in flight until the retry delay expires.
func (controller *Controller) Consider(ctx context.Context, timer *model.TimerValue, waiting bool) (bool, error) {
	if controller.phase != PhaseArmed {
		if controller.phase == PhasePauseInFlight && controller.retryAt.IsZero() {
			log.Debugf("skipping pause: %v", model.ErrDuplicatePause)
		}
		return false, nil
	}
	if !controller.eligible(timer, waiting) {
		return false, nil
	}

	now := controller.now()
	controller.phase = PhasePauseInFlight
	controller.cycleID = controller.newID()
	controller.counters.PauseAttempts++
	log.Infof("pausing at %s for %q (cycle %s)", timer, controller.nominee, controller.cycleID)

	result, err := controller.issuer.IssuePause(ctx)
	if err == nil && result == model.PauseSuccess {
		controller.phase = PhaseDisarmedWaitingResume
		controller.disarmedAt = now
		controller.lastPauseAt = now
		controller.latched = true
		if controller.watcher != nil {
			controller.watcher.WatchResume(controller.cycleID)
		}
		return true, nil
	}

	controller.retryAt = now.Add(controller.config.RetryDelay)
	if err != nil {
		err = fmt.Errorf("issue pause: %w", err)
	} else {
		err = fmt.Errorf("issue pause: %w", model.ErrActionNotFound)
	}
	log.Warnf("%v, re-arming in %s", err, controller.config.RetryDelay)
	return false, err
}

// Expire applies the time-boxed recovery edges. A failed attempt re-arms
// after the retry delay. A pause whose resume signal never arrived re-arms
// once the resume timeout passed and the poll loop itself sees the timer live.
func (controller *Controller) Expire(timerState model.TimerTextState) bool {
	now := controller.now()
	switch controller.phase {
	case PhasePauseInFlight:
		if controller.retryAt.IsZero() || now.Before(controller.retryAt) {
			return false
		}
		log.Info("retry delay elapsed, re-armed")
		controller.retryAt = time.Time{}
		controller.phase = PhaseArmed
		return true
	case PhaseDisarmedWaitingResume:
		if timerState != model.TimerLive || now.Sub(controller.disarmedAt) < controller.config.ResumeTimeout {
			return false
		}
		log.Warnf("no resume signal for cycle %s after %s, re-armed from poll", controller.cycleID, controller.config.ResumeTimeout)
		if controller.watcher != nil {
			controller.watcher.CancelResume(controller.cycleID)
		}
		controller.rearm()
		return true
	default:
		return false
	}
}

// Rearm completes a pause cycle when its resume watcher reports the timer
// live again. Signals for other cycles are ignored.
func (controller *Controller) Rearm(cycleID string) bool {
	if controller.phase != PhaseDisarmedWaitingResume || cycleID != controller.cycleID {
		log.Debugf("ignoring stale resume for cycle %s", cycleID)
		return false
	}
	log.Infof("timer live again, re-armed (cycle %s)", cycleID)
	controller.rearm()
	return true
}

func (controller *Controller) rearm() {
	controller.phase = PhaseArmed
	controller.counters = Counters{}
	controller.cycleID = ""
	controller.disarmedAt = time.Time{}
}

func (controller *Controller) eligible(timer *model.TimerValue, waiting bool) bool {
	if timer == nil || waiting {
		return false
	}
	threshold := int(controller.config.Threshold / time.Second)
	if timer.TotalSeconds <= 0 || timer.TotalSeconds > threshold {
		return false
	}
	if controller.counters.ManualPauses > 0 || controller.latched {
		return false
	}
	if controller.config.Cooldown.Enabled && controller.now().Before(controller.cooldownUntil) {
		return false
	}
	return true
}
