package usecase

import (
	"time"

	"github.com/x-xyz/goauction/domain/auction"
)

// maybeExtend applies the anti-sniping rule to a bid admitted at bidTime.
// Inside the window the deadline moves to bidTime+window until the cap is
// reached; it never moves earlier.
func maybeExtend(cfg auction.Config, a *auction.Auction, bidTime time.Time) auction.Extension {
	ext := auction.Extension{NewEnd: a.CurrentEndTime}

	if !bidTime.Before(a.CurrentEndTime) || a.CurrentEndTime.Sub(bidTime) > cfg.ExtensionWindow {
		return ext
	}

	if a.ExtensionCount >= cfg.MaxExtensions {
		ext.CapReached = true
		return ext
	}

	if newEnd := bidTime.Add(cfg.ExtensionWindow); newEnd.After(a.CurrentEndTime) {
		ext.Extended = true
		ext.NewEnd = newEnd
	}
	return ext
}
