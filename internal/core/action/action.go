// Package action clicks the host page's pause control.
package action

import (
	"context"
	"fmt"

	"auctionpauser/internal/core/model"

	golog "github.com/ipfs/go-log/v2"
)

var log = golog.Logger("pauser/action")

// Clicker clicks the first element matching one of the selectors, in order,
// and returns its index, or -1 when none exists.
type Clicker interface {
	ClickFirst(ctx context.Context, selectors []string) (int, error)
}

// Issuer performs the pause click through a prioritized list of targets.
type Issuer struct {
	clicker Clicker
	targets []string
}

// New creates an Issuer. Targets are tried in order: the monitored label,
// the icon, the heading, then the status container itself.
func New(clicker Clicker, targets []string) *Issuer {
	return &Issuer{clicker: clicker, targets: targets}
}

// IssuePause clicks exactly one target. It reports PauseNotFound when no
// target exists on the page.
func (issuer *Issuer) IssuePause(ctx context.Context) (model.PauseResult, error) {
	if len(issuer.targets) == 0 {
		return model.PauseNotFound, nil
	}
	index, err := issuer.clicker.ClickFirst(ctx, issuer.targets)
	if err != nil {
		return model.PauseNotFound, fmt.Errorf("click pause control: %w", err)
	}
	if index < 0 || index >= len(issuer.targets) {
		log.Warn("no clickable element found for timer control")
		return model.PauseNotFound, nil
	}
	log.Infof("clicked pause control %q", issuer.targets[index])
	return model.PauseSuccess, nil
}
