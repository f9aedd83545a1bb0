package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/database/mongoclient"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/service/query"
)

type bidRepoImpl struct {
	q query.Mongo
}

func NewBidRepo(q query.Mongo) auction.BidRepo {
	return &bidRepoImpl{q}
}

func (im *bidRepoImpl) makeQuery(auctionId string, options auction.BidFindAllOptions) bson.M {
	query := bson.M{"auctionId": auctionId}

	if options.BidderId != nil {
		query["bidderId"] = *options.BidderId
	}

	if options.IsWinning != nil {
		query["isWinning"] = *options.IsWinning
	}

	if options.IsActive != nil {
		query["isActive"] = *options.IsActive
	}

	return query
}

func (im *bidRepoImpl) Append(ctx ctx.Ctx, bid *auction.Bid) error {
	if err := im.q.Insert(ctx, domain.TableBids, bid); err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"auctionId": bid.AuctionId,
			"bidId":     bid.Id,
		}).Error("q.Insert failed")
		return wrap("bid.Append", err)
	}
	return nil
}

func (im *bidRepoImpl) FindOne(ctx ctx.Ctx, auctionId, bidId string) (*auction.Bid, error) {
	res := &auction.Bid{}
	if err := im.q.FindOne(ctx, domain.TableBids, bson.M{"_id": bidId, "auctionId": auctionId}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"bidId": bidId,
		}).Error("q.FindOne failed")
		return nil, wrap("bid.FindOne", err)
	}
	return res, nil
}

func (im *bidRepoImpl) FindAll(ctx ctx.Ctx, auctionId string, opts ...auction.BidFindAllOptionsFunc) ([]*auction.Bid, error) {
	options, err := auction.GetBidFindAllOptions(opts...)
	if err != nil {
		ctx.WithField("err", err).Error("auction.GetBidFindAllOptions failed")
		return nil, err
	}

	offset, limit := 0, 0
	if options.Offset != nil {
		offset = int(*options.Offset)
	}
	if options.Limit != nil {
		limit = int(*options.Limit)
	}

	// sequence breaks placedAt ties the same way Bid.Outranks does
	sorts := []string{"sequence"}
	if options.Order != nil && *options.Order == auction.BidOrderAmountDesc {
		sorts = []string{"-amount", "placedAt", "sequence"}
	}

	query := im.makeQuery(auctionId, options)
	res := []*auction.Bid{}
	if err := im.q.SearchNSorts(ctx, domain.TableBids, offset, limit, sorts, query, &res); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": query,
		}).Error("q.SearchNSorts failed")
		return nil, wrap("bid.FindAll", err)
	}
	return res, nil
}

func (im *bidRepoImpl) FindWinning(ctx ctx.Ctx, auctionId string) (*auction.Bid, error) {
	res := &auction.Bid{}
	if err := im.q.FindOne(ctx, domain.TableBids, bson.M{"auctionId": auctionId, "isWinning": true}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"auctionId": auctionId,
		}).Error("q.FindOne failed")
		return nil, wrap("bid.FindWinning", err)
	}
	return res, nil
}

func (im *bidRepoImpl) Update(ctx ctx.Ctx, bidId string, patch auction.BidPatchable) error {
	update, err := mongoclient.MakeBsonM(patch)
	if err != nil {
		ctx.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return err
	}
	if len(update) == 0 {
		return nil
	}

	if err := im.q.Patch(ctx, domain.TableBids, bson.M{"_id": bidId}, update); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"bidId": bidId,
		}).Error("q.Patch failed")
		return wrap("bid.Update", err)
	}
	return nil
}
