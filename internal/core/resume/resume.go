// Package resume watches the host page for the timer going live again after
// an automatic pause.
package resume

import (
	"context"
	"sync"

	"auctionpauser/internal/core/model"

	golog "github.com/ipfs/go-log/v2"
)

var log = golog.Logger("pauser/resume")

// Signal reports that the timer is live again for a pause cycle.
type Signal struct {
	CycleID string
}

// Feed delivers host page change notifications to subscribers.
type Feed interface {
	Subscribe(buffer int) (<-chan struct{}, func())
}

// Probe reads the current timer marker state from the host page.
type Probe func(ctx context.Context) (model.TimerTextState, error)

// Watcher is a one-shot watch for a single pause cycle.
type Watcher struct {
	cycleID string
	cancel  context.CancelFunc
	done    chan struct{}
}

// Start subscribes to the feed and reports once on notify when the timer
// shows Live without Paused after having left the live state. A page that is
// already paused when the watch starts counts as having left. It returns
// immediately.
func Start(ctx context.Context, cycleID string, feed Feed, probe Probe, notify chan<- Signal) *Watcher {
	ctx, cancel := context.WithCancel(ctx)
	watcher := &Watcher{
		cycleID: cycleID,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	changes, unsubscribe := feed.Subscribe(4)
	go watcher.run(ctx, changes, unsubscribe, probe, notify)
	return watcher
}

// CycleID returns the pause cycle this watcher belongs to.
func (watcher *Watcher) CycleID() string {
	return watcher.cycleID
}

// Stop cancels the watch. It does not wait for the goroutine to exit.
func (watcher *Watcher) Stop() {
	watcher.cancel()
}

// Done is closed once the watcher stopped observing.
func (watcher *Watcher) Done() <-chan struct{} {
	return watcher.done
}

func (watcher *Watcher) run(ctx context.Context, changes <-chan struct{}, unsubscribe func(), probe Probe, notify chan<- Signal) {
	defer close(watcher.done)
	defer unsubscribe()

	// The pause may have rendered before the subscription existed.
	leftLive := false
	if state, err := probe(ctx); err != nil {
		log.Debugf("initial check for cycle %s: %v", watcher.cycleID, err)
	} else {
		leftLive = state != model.TimerLive
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
		}

		state, err := probe(ctx)
		if err != nil {
			log.Debugf("probe for cycle %s: %v", watcher.cycleID, err)
			continue
		}
		if state != model.TimerLive {
			leftLive = true
			continue
		}
		if !leftLive {
			continue
		}

		log.Debugf("live again for cycle %s", watcher.cycleID)
		select {
		case notify <- Signal{CycleID: watcher.cycleID}:
		case <-ctx.Done():
		}
		return
	}
}

// Manager starts one watcher per pause cycle.
type Manager struct {
	ctx    context.Context
	feed   Feed
	probe  Probe
	notify chan<- Signal

	mu       sync.Mutex
	watchers map[string]*Watcher
}

// NewManager creates a Manager whose watchers live no longer than ctx.
func NewManager(ctx context.Context, feed Feed, probe Probe, notify chan<- Signal) *Manager {
	return &Manager{
		ctx:      ctx,
		feed:     feed,
		probe:    probe,
		notify:   notify,
		watchers: make(map[string]*Watcher),
	}
}

// WatchResume starts a watcher for the cycle.
func (manager *Manager) WatchResume(cycleID string) {
	watcher := Start(manager.ctx, cycleID, manager.feed, manager.probe, manager.notify)

	manager.mu.Lock()
	if previous, ok := manager.watchers[cycleID]; ok {
		previous.Stop()
	}
	manager.watchers[cycleID] = watcher
	manager.mu.Unlock()

	go func() {
		<-watcher.Done()
		manager.mu.Lock()
		if manager.watchers[cycleID] == watcher {
			delete(manager.watchers, cycleID)
		}
		manager.mu.Unlock()
	}()
}

// CancelResume stops the cycle's watcher if it is still running.
func (manager *Manager) CancelResume(cycleID string) {
	manager.mu.Lock()
	watcher, ok := manager.watchers[cycleID]
	manager.mu.Unlock()
	if ok {
		watcher.Stop()
	}
}

// Active returns the number of running watchers.
func (manager *Manager) Active() int {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	return len(manager.watchers)
}
