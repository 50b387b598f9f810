// Package browser drives the draft room tab through the Chrome DevTools
// protocol.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auctionpauser/internal/core/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/page"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	golog "github.com/ipfs/go-log/v2"
)

var log = golog.Logger("browser")

// ErrTargetNotFound is returned when no open tab matches when attaching.
var ErrTargetNotFound = errors.New("no matching browser tab")

// DefaultURL is the tab opened when launching without a URL.
const DefaultURL = "https://www.fantrax.com/"

// Options selects how the session reaches the draft room.
type Options struct {
	// URL is navigated to when launching a browser.
	URL string
	// RemoteURL attaches to an already running browser instead, e.g.
	// ws://127.0.0.1:9222.
	RemoteURL string
	// Match picks the tab to attach to by URL substring.
	Match        string
	Headless     bool
	UserDataDir  string
	ControlScope string
}

// Session is one draft room tab.
type Session struct {
	ctx          context.Context
	cancel       context.CancelFunc
	cancelAlloc  context.CancelFunc
	changes      *hub
	clicks       chan model.ControlClick
	controlScope string
}

// Open launches or attaches to a browser and installs the page listeners.
func Open(ctx context.Context, options Options) (*Session, error) {
	session := &Session{
		changes:      newHub(),
		clicks:       make(chan model.ControlClick, 16),
		controlScope: options.ControlScope,
	}

	var err error
	if options.RemoteURL != "" {
		err = session.attach(ctx, options)
	} else {
		err = session.launch(ctx, options)
	}
	if err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}

func (session *Session) launch(ctx context.Context, options Options) error {
	allocOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", options.Headless),
	)
	if options.UserDataDir != "" {
		allocOptions = append(allocOptions, chromedp.UserDataDir(options.UserDataDir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOptions...)
	session.cancelAlloc = cancelAlloc
	session.ctx, session.cancel = chromedp.NewContext(allocCtx)
	session.listen()

	url := options.URL
	if url == "" {
		url = DefaultURL
	}
	log.Infof("launching browser at %s (headless=%t)", url, options.Headless)
	if err := chromedp.Run(session.ctx, session.install(), chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	return nil
}

func (session *Session) attach(ctx context.Context, options Options) error {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, options.RemoteURL)
	session.cancelAlloc = cancelAlloc

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		return fmt.Errorf("connect to %s: %w", options.RemoteURL, err)
	}
	targets, err := chromedp.Targets(browserCtx)
	if err != nil {
		cancelBrowser()
		return fmt.Errorf("list tabs: %w", err)
	}

	match := options.Match
	if match == "" {
		match = "fantrax.com"
	}
	for _, info := range targets {
		if info.Type != "page" || !strings.Contains(info.URL, match) {
			continue
		}
		log.Infof("attaching to tab %q (%s)", info.Title, info.URL)
		session.ctx, session.cancel = chromedp.NewContext(browserCtx, chromedp.WithTargetID(info.TargetID))
		session.listen()
		if err := chromedp.Run(session.ctx, session.install(), chromedp.Evaluate(buildMonitorScript(session.controlScope), nil)); err != nil {
			return fmt.Errorf("attach to tab: %w", err)
		}
		return nil
	}

	cancelBrowser()
	return fmt.Errorf("%w: url containing %q", ErrTargetNotFound, match)
}

// install registers the bindings and the monitor script for every document
// the tab loads from now on.
func (session *Session) install() chromedp.Action {
	script := buildMonitorScript(session.controlScope)
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, name := range []string{changeBinding, clickBinding} {
			if err := cdpruntime.AddBinding(name).Do(ctx); err != nil {
				return fmt.Errorf("add binding %s: %w", name, err)
			}
		}
		if _, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx); err != nil {
			return fmt.Errorf("add monitor script: %w", err)
		}
		return nil
	})
}

func (session *Session) listen() {
	chromedp.ListenTarget(session.ctx, func(ev interface{}) {
		called, ok := ev.(*cdpruntime.EventBindingCalled)
		if !ok {
			return
		}
		switch called.Name {
		case changeBinding:
			session.changes.publish()
		case clickBinding:
			click, err := parseClick(called.Payload)
			if err != nil {
				log.Debugf("click: %v", err)
				return
			}
			select {
			case session.clicks <- click:
			default:
				log.Warn("click feed full, dropping click")
			}
		}
	})
}

// Snapshot returns the current document.
func (session *Session) Snapshot(ctx context.Context) (*goquery.Document, error) {
	runCtx, cancel := session.bind(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// ClickFirst clicks the first element matching one of the selectors in
// priority order and returns its index, or -1 if none matched.
func (session *Session) ClickFirst(ctx context.Context, selectors []string) (int, error) {
	script, err := buildClickFirstScript(selectors)
	if err != nil {
		return -1, err
	}
	runCtx, cancel := session.bind(ctx)
	defer cancel()

	index := -1
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &index)); err != nil {
		return -1, fmt.Errorf("click: %w", err)
	}
	return index, nil
}

// Subscribe returns a channel that receives a value after page mutations.
func (session *Session) Subscribe(buffer int) (<-chan struct{}, func()) {
	return session.changes.subscribe(buffer)
}

// Clicks returns clicks on the timer controls.
func (session *Session) Clicks() <-chan model.ControlClick {
	return session.clicks
}

// Done is closed when the tab or browser goes away.
func (session *Session) Done() <-chan struct{} {
	return session.ctx.Done()
}

// Close detaches from the tab. A launched browser is shut down.
func (session *Session) Close() {
	session.changes.close()
	if session.cancel != nil {
		session.cancel()
	}
	if session.cancelAlloc != nil {
		session.cancelAlloc()
	}
}

// bind derives a chromedp context that also ends with ctx.
func (session *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(session.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
