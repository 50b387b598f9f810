package browser

import (
	"encoding/json"
	"fmt"
	"strings"

	"auctionpauser/internal/core/model"
)

const (
	changeBinding = "__auctionPauserChange"
	clickBinding  = "__auctionPauserClick"

	// DefaultControlScope wraps the draft room's timer controls.
	DefaultControlScope = ".draft__navbar__status"
)

// monitorScript installs the change and click listeners. It is safe to run
// more than once per document.
const monitorScript = `(() => {
  if (window.__auctionPauserInstalled) return;
  window.__auctionPauserInstalled = true;
  const controls = %[1]s;
  const watched = controls + ', draft-timer, .pause-button, .live-button';
  const mark = () => {
    document.querySelectorAll(controls + ' h6 span').forEach((el) => {
      if (el.dataset.clickMonitored !== 'true') el.dataset.clickMonitored = 'true';
    });
  };
  let pending = false;
  const changed = () => {
    mark();
    if (pending) return;
    pending = true;
    setTimeout(() => { pending = false; window.%[2]s(''); }, 50);
  };
  const start = () => {
    new MutationObserver(changed).observe(document.documentElement, {
      childList: true, subtree: true, characterData: true, attributes: true,
    });
    document.addEventListener('click', (event) => {
      const target = event.target instanceof Element ? event.target : null;
      if (!target || !target.closest(watched)) return;
      window.%[3]s(JSON.stringify({
        text: (target.textContent || '').trim().toLowerCase(),
        pauseHint: !!target.closest('.pause-button'),
        liveHint: !!target.closest('.live-button'),
        trusted: event.isTrusted,
      }));
    }, true);
    mark();
  };
  if (document.documentElement) start();
  else document.addEventListener('DOMContentLoaded', start);
})();`

const clickFirstScript = `((selectors) => {
  for (let i = 0; i < selectors.length; i++) {
    const el = document.querySelector(selectors[i]);
    if (el) { el.click(); return i; }
  }
  return -1;
})(%s)`

func buildMonitorScript(controlScope string) string {
	if strings.TrimSpace(controlScope) == "" {
		controlScope = DefaultControlScope
	}
	return fmt.Sprintf(monitorScript, jsString(controlScope), changeBinding, clickBinding)
}

func buildClickFirstScript(selectors []string) (string, error) {
	encoded, err := json.Marshal(selectors)
	if err != nil {
		return "", fmt.Errorf("encode selectors: %w", err)
	}
	return fmt.Sprintf(clickFirstScript, encoded), nil
}

func jsString(value string) string {
	encoded, _ := json.Marshal(value)
	return string(encoded)
}

type clickPayload struct {
	Text      string `json:"text"`
	PauseHint bool   `json:"pauseHint"`
	LiveHint  bool   `json:"liveHint"`
	Trusted   bool   `json:"trusted"`
}

func parseClick(payload string) (model.ControlClick, error) {
	var click clickPayload
	if err := json.Unmarshal([]byte(payload), &click); err != nil {
		return model.ControlClick{}, fmt.Errorf("decode click payload: %w", err)
	}
	return model.ControlClick{
		Text:      click.Text,
		PauseHint: click.PauseHint,
		LiveHint:  click.LiveHint,
		Trusted:   click.Trusted,
	}, nil
}
