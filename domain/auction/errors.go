package auction

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/domain"
)

var (
	ErrNotFound          = domain.ErrNotFound
	ErrAuctionNotOpen    = errors.New("auction is not open for bidding")
	ErrSelfBidForbidden  = errors.New("seller cannot bid on own auction")
	ErrBidTooLow         = errors.New("bid must exceed the current price")
	ErrIncrementTooSmall = errors.New("bid increment is below the minimum")
	// ErrExtensionCapReached is informational, the bid is still admitted
	ErrExtensionCapReached = errors.New("extension cap reached")
	// ErrFinalizationConflict is returned when finalizing a non-active auction.
	// The outcome returned along with it is the stored one.
	ErrFinalizationConflict  = errors.New("auction is not active, finalization skipped")
	ErrRepositoryUnavailable = domain.ErrRepositoryUnavailable

	ErrVersionConflict    = errors.New("auction was modified concurrently")
	ErrAuctionStillOpen   = errors.New("auction has not reached its end time")
	ErrInvalidTransition  = errors.New("invalid auction status transition")
	ErrProxyCeilingTooLow = errors.New("proxy ceiling too low")
	ErrForbidden          = domain.ErrForbidden
	ErrLockTimeout        = errors.New("timed out waiting for the auction lock")
)

// BidRejection is a validation failure of a bid. It unwraps to one of the
// rejection sentinels.
type BidRejection struct {
	Reason       error
	CurrentPrice decimal.Decimal
	MinimumBid   decimal.Decimal
}

func NewBidRejection(reason error, a *Auction) *BidRejection {
	r := &BidRejection{Reason: reason}
	if a != nil {
		r.CurrentPrice = a.CurrentPrice
		r.MinimumBid = a.MinimumBid()
	}
	return r
}

func (r *BidRejection) Error() string {
	return fmt.Sprintf("%s: current price %s, minimum bid %s", r.Reason, r.CurrentPrice, r.MinimumBid)
}

func (r *BidRejection) Unwrap() error {
	return r.Reason
}

// ErrorData is the response payload of a rejected bid
func (r *BidRejection) ErrorData() interface{} {
	return map[string]interface{}{
		"reason":       RejectionCode(r.Reason),
		"message":      r.Reason.Error(),
		"currentPrice": r.CurrentPrice,
		"minimumBid":   r.MinimumBid,
	}
}

// RejectionCode maps an error to a stable machine readable reason, used in
// responses and metric tags.
func RejectionCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAuctionNotOpen):
		return "auction_not_open"
	case errors.Is(err, ErrSelfBidForbidden):
		return "self_bid_forbidden"
	case errors.Is(err, ErrBidTooLow):
		return "bid_too_low"
	case errors.Is(err, ErrIncrementTooSmall):
		return "increment_too_small"
	case errors.Is(err, ErrProxyCeilingTooLow):
		return "proxy_ceiling_too_low"
	case errors.Is(err, ErrRepositoryUnavailable):
		return "repository_unavailable"
	case errors.Is(err, ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, ErrLockTimeout):
		return "lock_timeout"
	}
	return "internal"
}

// IsRejection reports whether err is a bid validation failure, which must
// never be retried automatically.
func IsRejection(err error) bool {
	var r *BidRejection
	return errors.As(err, &r)
}

// IsTransient reports whether a retry may succeed without new input
func IsTransient(err error) bool {
	return errors.Is(err, ErrRepositoryUnavailable) ||
		errors.Is(err, ErrVersionConflict) ||
		errors.Is(err, ErrLockTimeout)
}
