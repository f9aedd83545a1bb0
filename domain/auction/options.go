package auction

import (
	"time"

	"github.com/x-xyz/goauction/domain"
)

type AuctionSort string

const (
	// AuctionSortId is the stable order used for cursor paging
	AuctionSortId         AuctionSort = "id"
	AuctionSortEndingSoon AuctionSort = "endingSoon"
	AuctionSortNewest     AuctionSort = "newest"
	AuctionSortPriceDesc  AuctionSort = "priceDesc"
	AuctionSortMostBids   AuctionSort = "mostBids"
)

func (s AuctionSort) IsValid() bool {
	switch s {
	case AuctionSortId, AuctionSortEndingSoon, AuctionSortNewest, AuctionSortPriceDesc, AuctionSortMostBids:
		return true
	}
	return false
}

type FindAllOptions struct {
	Status            *Status
	SellerId          *domain.UserId
	Category          *string
	StartTimeLTE      *time.Time
	OriginalEndTimeGT *time.Time
	CurrentEndTimeLTE *time.Time
	IdGT              *string
	Offset            *int32
	Limit             *int32
	Sort              *AuctionSort
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithStatus(status Status) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		if !status.IsValid() {
			return domain.ErrBadParamInput
		}
		options.Status = &status
		return nil
	}
}

func WithSellerId(sellerId domain.UserId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.SellerId = &sellerId
		return nil
	}
}

func WithCategory(category string) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Category = &category
		return nil
	}
}

func WithStartTimeLTE(t time.Time) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.StartTimeLTE = &t
		return nil
	}
}

func WithOriginalEndTimeGT(t time.Time) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.OriginalEndTimeGT = &t
		return nil
	}
}

func WithCurrentEndTimeLTE(t time.Time) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.CurrentEndTimeLTE = &t
		return nil
	}
}

// WithIdGT starts the page after the given id. Results are ordered by id.
func WithIdGT(id string) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.IdGT = &id
		sort := AuctionSortId
		options.Sort = &sort
		return nil
	}
}

func WithPagination(offset int32, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		if offset < 0 || limit < 0 {
			return domain.ErrBadParamInput
		}
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func WithLimit(limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		if limit < 0 {
			return domain.ErrBadParamInput
		}
		options.Limit = &limit
		return nil
	}
}

func WithSort(sort AuctionSort) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		if !sort.IsValid() {
			return domain.ErrBadParamInput
		}
		options.Sort = &sort
		return nil
	}
}

type BidFindAllOptions struct {
	BidderId  *domain.UserId
	IsWinning *bool
	IsActive  *bool
	Order     *BidOrder
	Offset    *int32
	Limit     *int32
}

type BidFindAllOptionsFunc func(*BidFindAllOptions) error

func GetBidFindAllOptions(opts ...BidFindAllOptionsFunc) (BidFindAllOptions, error) {
	res := BidFindAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithBidderId(bidderId domain.UserId) BidFindAllOptionsFunc {
	return func(options *BidFindAllOptions) error {
		options.BidderId = &bidderId
		return nil
	}
}

func WithIsWinning(isWinning bool) BidFindAllOptionsFunc {
	return func(options *BidFindAllOptions) error {
		options.IsWinning = &isWinning
		return nil
	}
}

func WithIsActive(isActive bool) BidFindAllOptionsFunc {
	return func(options *BidFindAllOptions) error {
		options.IsActive = &isActive
		return nil
	}
}

func WithBidOrder(order BidOrder) BidFindAllOptionsFunc {
	return func(options *BidFindAllOptions) error {
		if order != BidOrderAmountDesc && order != BidOrderTimeAsc {
			return domain.ErrBadParamInput
		}
		options.Order = &order
		return nil
	}
}

func WithBidPagination(offset int32, limit int32) BidFindAllOptionsFunc {
	return func(options *BidFindAllOptions) error {
		if offset < 0 || limit < 0 {
			return domain.ErrBadParamInput
		}
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}
