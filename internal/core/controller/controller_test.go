package controller

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"auctionpauser/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssuer struct {
	calls   int
	results []model.PauseResult
	err     error
	onIssue func()
}

func (issuer *fakeIssuer) IssuePause(context.Context) (model.PauseResult, error) {
	issuer.calls++
	if issuer.onIssue != nil {
		issuer.onIssue()
	}
	if issuer.err != nil {
		return model.PauseNotFound, issuer.err
	}
	if len(issuer.results) == 0 {
		return model.PauseSuccess, nil
	}
	result := issuer.results[0]
	issuer.results = issuer.results[1:]
	return result, nil
}

type fakeWatcher struct {
	watched   []string
	cancelled []string
}

func (watcher *fakeWatcher) WatchResume(cycleID string) {
	watcher.watched = append(watcher.watched, cycleID)
}
func (watcher *fakeWatcher) CancelResume(cycleID string) {
	watcher.cancelled = append(watcher.cancelled, cycleID)
}

type fakeClock struct {
	now time.Time
}

func (clock *fakeClock) Now() time.Time              { return clock.now }
func (clock *fakeClock) Advance(delta time.Duration) { clock.now = clock.now.Add(delta) }

func newTestController(config model.PauserConfig) (*Controller, *fakeIssuer, *fakeWatcher, *fakeClock) {
	issuer := &fakeIssuer{}
	watcher := &fakeWatcher{}
	clock := &fakeClock{now: time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)}
	controller := New(config, issuer, watcher)
	controller.SetClock(clock.Now)
	ids := 0
	controller.newID = func() string {
		ids++
		return fmt.Sprintf("cycle-%d", ids)
	}
	return controller, issuer, watcher, clock
}

func seconds(total int) *model.TimerValue {
	value, _ := model.NewTimerValue(total/60, total%60)
	return &value
}

func TestThresholdTrigger(t *testing.T) {
	ctx := context.Background()

	for total := 1; total <= 15; total++ {
		t.Run(fmt.Sprintf("%ds pauses", total), func(t *testing.T) {
			controller, issuer, _, _ := newTestController(model.DefaultPauserConfig())
			paused, err := controller.Consider(ctx, seconds(total), false)
			require.NoError(t, err)
			assert.True(t, paused)
			assert.Equal(t, 1, issuer.calls)
			assert.Equal(t, PhaseDisarmedWaitingResume, controller.Phase())
		})
	}

	for _, total := range []int{0, 16, 60} {
		t.Run(fmt.Sprintf("%ds does not pause", total), func(t *testing.T) {
			controller, issuer, _, _ := newTestController(model.DefaultPauserConfig())
			paused, err := controller.Consider(ctx, seconds(total), false)
			require.NoError(t, err)
			assert.False(t, paused)
			assert.Zero(t, issuer.calls)
			assert.True(t, controller.Armed())
		})
	}
}

func TestConsiderSkipsWithoutEligibility(t *testing.T) {
	ctx := context.Background()

	t.Run("absent timer", func(t *testing.T) {
		controller, issuer, _, _ := newTestController(model.DefaultPauserConfig())
		paused, err := controller.Consider(ctx, nil, false)
		require.NoError(t, err)
		assert.False(t, paused)
		assert.Zero(t, issuer.calls)
	})

	t.Run("waiting", func(t *testing.T) {
		controller, issuer, _, _ := newTestController(model.DefaultPauserConfig())
		paused, _ := controller.Consider(ctx, seconds(10), true)
		assert.False(t, paused)
		assert.Zero(t, issuer.calls)
	})

	t.Run("manual pause suppresses", func(t *testing.T) {
		controller, issuer, _, _ := newTestController(model.DefaultPauserConfig())
		controller.SetNominee("Alice")
		kind := controller.ObserveClick(model.ControlClick{Text: "Pause", Trusted: true}, model.TimerLive)
		require.Equal(t, ClickPause, kind)

		paused, _ := controller.Consider(ctx, seconds(10), false)
		assert.False(t, paused)
		assert.Zero(t, issuer.calls)
		assert.True(t, controller.Armed())

		controller.SetNominee("Bob")
		paused, _ = controller.Consider(ctx, seconds(10), false)
		assert.True(t, paused, "suppression is per nominee")
	})
}

func TestAtMostOnePausePerCycle(t *testing.T) {
	ctx := context.Background()
	controller, issuer, watcher, _ := newTestController(model.DefaultPauserConfig())
	controller.SetNominee("Alice")

	for total := 15; total > 0; total-- {
		_, err := controller.Consider(ctx, seconds(total), false)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, issuer.calls)
	assert.Equal(t, []string{"cycle-1"}, watcher.watched)
}

func TestReentrantConsiderIsSuppressed(t *testing.T) {
	ctx := context.Background()
	controller, issuer, _, _ := newTestController(model.DefaultPauserConfig())
	issuer.onIssue = func() {
		assert.Equal(t, PhasePauseInFlight, controller.Phase())
		paused, err := controller.Consider(ctx, seconds(5), false)
		assert.NoError(t, err)
		assert.False(t, paused)
	}

	paused, err := controller.Consider(ctx, seconds(5), false)
	require.NoError(t, err)
	assert.True(t, paused)
	assert.Equal(t, 1, issuer.calls)
}

func TestRearmRoundTrip(t *testing.T) {
	ctx := context.Background()
	controller, _, watcher, clock := newTestController(model.DefaultPauserConfig())
	controller.SetNominee("Alice")
	controller.ObserveClick(model.ControlClick{Text: "Live", Trusted: true}, model.TimerPaused)

	paused, err := controller.Consider(ctx, seconds(12), false)
	require.NoError(t, err)
	require.True(t, paused)

	snapshot := controller.Snapshot()
	assert.Equal(t, PhaseDisarmedWaitingResume, snapshot.Phase)
	assert.Equal(t, 1, snapshot.Counters.PauseAttempts)
	assert.Equal(t, clock.now, snapshot.LastPauseAt)
	require.Len(t, watcher.watched, 1)

	assert.False(t, controller.Rearm("some-other-cycle"))
	assert.Equal(t, PhaseDisarmedWaitingResume, controller.Phase())

	assert.True(t, controller.Rearm(watcher.watched[0]))
	snapshot = controller.Snapshot()
	assert.Equal(t, PhaseArmed, snapshot.Phase)
	assert.Equal(t, Counters{}, snapshot.Counters)
	assert.Empty(t, snapshot.CycleID)

	assert.False(t, controller.Rearm(watcher.watched[0]), "a resume signal is consumed once")
}

func TestOnePausePerNomination(t *testing.T) {
	ctx := context.Background()
	controller, issuer, watcher, _ := newTestController(model.DefaultPauserConfig())
	controller.OnNomination(model.NominationDetected{Nominee: "Alice"})

	paused, _ := controller.Consider(ctx, seconds(10), false)
	require.True(t, paused)
	require.True(t, controller.Rearm(watcher.watched[0]))

	paused, _ = controller.Consider(ctx, seconds(9), false)
	assert.False(t, paused, "same nominee after resume")

	controller.ObserveWaiting(true)
	controller.OnNomination(model.NominationDetected{Nominee: "Bob"})
	paused, _ = controller.Consider(ctx, seconds(9), false)
	assert.True(t, paused)
	assert.Equal(t, 2, issuer.calls)
}

func TestWaitingReleasesLatchWithoutNames(t *testing.T) {
	ctx := context.Background()
	controller, _, watcher, _ := newTestController(model.DefaultPauserConfig())

	paused, _ := controller.Consider(ctx, seconds(10), false)
	require.True(t, paused)
	require.True(t, controller.Rearm(watcher.watched[0]))

	paused, _ = controller.Consider(ctx, seconds(10), false)
	require.False(t, paused)

	controller.ObserveWaiting(true)
	paused, _ = controller.Consider(ctx, seconds(10), false)
	assert.True(t, paused)
}

func TestFailureRecovery(t *testing.T) {
	ctx := context.Background()
	controller, issuer, watcher, clock := newTestController(model.DefaultPauserConfig())
	issuer.results = []model.PauseResult{model.PauseNotFound}

	paused, err := controller.Consider(ctx, seconds(10), false)
	assert.False(t, paused)
	require.ErrorIs(t, err, model.ErrActionNotFound)
	assert.Equal(t, PhasePauseInFlight, controller.Phase())
	assert.Empty(t, watcher.watched)

	paused, err = controller.Consider(ctx, seconds(9), false)
	assert.NoError(t, err)
	assert.False(t, paused)
	assert.Equal(t, 1, issuer.calls, "no retry before the delay")

	clock.Advance(4 * time.Second)
	assert.False(t, controller.Expire(model.TimerLive))
	assert.Equal(t, PhasePauseInFlight, controller.Phase())

	clock.Advance(time.Second)
	assert.True(t, controller.Expire(model.TimerLive))
	assert.True(t, controller.Armed())

	paused, err = controller.Consider(ctx, seconds(4), false)
	require.NoError(t, err)
	assert.True(t, paused)
	assert.Equal(t, 2, issuer.calls)
	assert.Equal(t, 2, controller.Snapshot().Counters.PauseAttempts)
}

func TestIssuerErrorIsWrapped(t *testing.T) {
	controller, issuer, _, _ := newTestController(model.DefaultPauserConfig())
	boom := errors.New("target closed")
	issuer.err = boom

	paused, err := controller.Consider(context.Background(), seconds(10), false)
	assert.False(t, paused)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, model.ErrActionNotFound)
	assert.Equal(t, PhasePauseInFlight, controller.Phase())
}

func TestResumeTimeoutFallback(t *testing.T) {
	config := model.DefaultPauserConfig()
	config.ResumeTimeout = time.Minute
	controller, _, watcher, clock := newTestController(config)

	paused, _ := controller.Consider(context.Background(), seconds(10), false)
	require.True(t, paused)

	clock.Advance(2 * time.Minute)
	assert.False(t, controller.Expire(model.TimerPaused), "still paused on the page")
	assert.Equal(t, PhaseDisarmedWaitingResume, controller.Phase())

	assert.True(t, controller.Expire(model.TimerLive))
	assert.True(t, controller.Armed())
	assert.Equal(t, watcher.watched, watcher.cancelled)
}

func TestCooldown(t *testing.T) {
	ctx := context.Background()
	config := model.DefaultPauserConfig()
	config.Cooldown = model.CooldownConfig{Enabled: true, Duration: 10 * time.Second}
	controller, issuer, _, clock := newTestController(config)

	controller.OnNomination(model.NominationDetected{Nominee: "Alice"})
	paused, _ := controller.Consider(ctx, seconds(12), false)
	assert.False(t, paused)
	assert.Zero(t, issuer.calls)

	clock.Advance(10 * time.Second)
	paused, _ = controller.Consider(ctx, seconds(2), false)
	assert.True(t, paused)
}

func TestCooldownDisabledByDefault(t *testing.T) {
	controller, _, _, _ := newTestController(model.DefaultPauserConfig())
	controller.OnNomination(model.NominationDetected{Nominee: "Alice"})

	paused, _ := controller.Consider(context.Background(), seconds(12), false)
	assert.True(t, paused)
	assert.True(t, controller.Snapshot().CooldownUntil.IsZero())
}

func TestObserveClick(t *testing.T) {
	controller, _, _, _ := newTestController(model.DefaultPauserConfig())

	assert.Equal(t, ClickIgnored, controller.ObserveClick(model.ControlClick{Text: "Pause"}, model.TimerLive))
	assert.Equal(t, ClickPause, controller.ObserveClick(model.ControlClick{Text: "icon", Trusted: true}, model.TimerLive))
	assert.Equal(t, ClickLive, controller.ObserveClick(model.ControlClick{Text: "icon", Trusted: true}, model.TimerPaused))
	assert.Equal(t, ClickLive, controller.ObserveClick(model.ControlClick{LiveHint: true, Trusted: true}, model.TimerLive))

	counters := controller.Snapshot().Counters
	assert.Equal(t, 1, counters.ManualPauses)
	assert.Equal(t, 2, counters.LiveClicks)
}

func TestResetCountersKeepsPhase(t *testing.T) {
	controller, _, _, _ := newTestController(model.DefaultPauserConfig())
	paused, _ := controller.Consider(context.Background(), seconds(10), false)
	require.True(t, paused)
	controller.ObserveClick(model.ControlClick{Text: "Live", Trusted: true}, model.TimerPaused)

	controller.ResetCounters()

	snapshot := controller.Snapshot()
	assert.Equal(t, Counters{}, snapshot.Counters)
	assert.False(t, snapshot.Latched)
	assert.Equal(t, PhaseDisarmedWaitingResume, snapshot.Phase)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		click model.ControlClick
		state model.TimerTextState
		want  ClickKind
	}{
		{name: "pause text", click: model.ControlClick{Text: "Paused"}, state: model.TimerPaused, want: ClickPause},
		{name: "pause class", click: model.ControlClick{PauseHint: true}, state: model.TimerPaused, want: ClickPause},
		{name: "live text", click: model.ControlClick{Text: "LIVE"}, state: model.TimerLive, want: ClickLive},
		{name: "generic while live", click: model.ControlClick{}, state: model.TimerLive, want: ClickPause},
		{name: "generic while paused", click: model.ControlClick{}, state: model.TimerPaused, want: ClickLive},
		{name: "generic while unknown", click: model.ControlClick{}, state: model.TimerUnknown, want: ClickLive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.click, tt.state))
		})
	}
}
