package archive

import (
	"encoding/json"
	"time"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain/auction"
)

// Record is an auction event as stored by the archive
type Record struct {
	EventId    string            `json:"eventId" db:"event_id"`
	AuctionId  string            `json:"auctionId" db:"auction_id"`
	Type       auction.EventType `json:"type" db:"event_type"`
	OccurredAt time.Time         `json:"occurredAt" db:"occurred_at"`
	Payload    json.RawMessage   `json:"payload" db:"payload"`
	ArchivedAt time.Time         `json:"archivedAt" db:"archived_at"`
}

func NewRecord(e *auction.Event, archivedAt time.Time) (*Record, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return &Record{
		EventId:    e.Id,
		AuctionId:  e.AuctionId,
		Type:       e.Type,
		OccurredAt: e.OccurredAt,
		Payload:    payload,
		ArchivedAt: archivedAt,
	}, nil
}

func (r *Record) Event() (*auction.Event, error) {
	e := &auction.Event{}
	if err := json.Unmarshal(r.Payload, e); err != nil {
		return nil, err
	}
	return e, nil
}

type FindAllOptions struct {
	Types  []auction.EventType
	Since  *time.Time
	Offset *int32
	Limit  *int32
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

func WithTypes(types ...auction.EventType) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Types = append(options.Types, types...)
		return nil
	}
}

func WithSince(t time.Time) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Since = &t
		return nil
	}
}

func WithPagination(offset int32, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

type Repo interface {
	// Insert stores r. Inserting an already archived event is a no-op and
	// reports false.
	Insert(ctx ctx.Ctx, r *Record) (bool, error)
	FindAll(ctx ctx.Ctx, auctionId string, opts ...FindAllOptionsFunc) ([]*Record, error)
	Count(ctx ctx.Ctx, auctionId string) (int, error)
}

type UseCase interface {
	Archive(ctx ctx.Ctx, e *auction.Event) error
	History(ctx ctx.Ctx, auctionId string, opts ...FindAllOptionsFunc) ([]*Record, error)
}
