package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/xerrors"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/database/mongoclient"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/service/query"
)

type auctionRepoImpl struct {
	q query.Mongo
}

func NewAuctionRepo(q query.Mongo) auction.AuctionRepo {
	return &auctionRepoImpl{q}
}

// wrap translates query errors to domain errors
func wrap(op string, err error) error {
	switch err {
	case nil:
		return nil
	case query.ErrNotFound:
		return domain.ErrNotFound
	case query.ErrDuplicateKey:
		return xerrors.Errorf("%s: %w", op, domain.ErrConflict)
	}
	return domain.NewRepositoryError(op, err)
}

func (im *auctionRepoImpl) makeQuery(options auction.FindAllOptions) bson.M {
	query := bson.M{}

	if options.Status != nil {
		query["status"] = *options.Status
	}

	if options.SellerId != nil {
		query["sellerId"] = *options.SellerId
	}

	if options.Category != nil {
		query["category"] = *options.Category
	}

	if options.StartTimeLTE != nil {
		query["startTime"] = bson.M{"$lte": *options.StartTimeLTE}
	}

	if options.OriginalEndTimeGT != nil {
		query["originalEndTime"] = bson.M{"$gt": *options.OriginalEndTimeGT}
	}

	if options.CurrentEndTimeLTE != nil {
		query["currentEndTime"] = bson.M{"$lte": *options.CurrentEndTimeLTE}
	}

	if options.IdGT != nil {
		query["_id"] = bson.M{"$gt": *options.IdGT}
	}

	return query
}

func sortFields(sort *auction.AuctionSort) []string {
	if sort == nil {
		return []string{"-createdAt", "_id"}
	}
	switch *sort {
	case auction.AuctionSortEndingSoon:
		return []string{"currentEndTime", "_id"}
	case auction.AuctionSortNewest:
		return []string{"-createdAt", "_id"}
	case auction.AuctionSortPriceDesc:
		return []string{"-currentPrice", "_id"}
	case auction.AuctionSortMostBids:
		return []string{"-bidCount", "_id"}
	}
	return []string{"_id"}
}

func (im *auctionRepoImpl) Create(ctx ctx.Ctx, a *auction.Auction) error {
	if err := im.q.Insert(ctx, domain.TableAuctions, a); err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"auctionId": a.Id,
		}).Error("q.Insert failed")
		return wrap("auction.Create", err)
	}
	return nil
}

func (im *auctionRepoImpl) FindOne(ctx ctx.Ctx, id string) (*auction.Auction, error) {
	res := &auction.Auction{}
	if err := im.q.FindOne(ctx, domain.TableAuctions, bson.M{"_id": id}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("q.FindOne failed")
		return nil, wrap("auction.FindOne", err)
	}
	return res, nil
}

func (im *auctionRepoImpl) FindAll(ctx ctx.Ctx, opts ...auction.FindAllOptionsFunc) ([]*auction.Auction, error) {
	options, err := auction.GetFindAllOptions(opts...)
	if err != nil {
		ctx.WithField("err", err).Error("auction.GetFindAllOptions failed")
		return nil, err
	}

	offset, limit := 0, 0
	if options.Offset != nil {
		offset = int(*options.Offset)
	}
	if options.Limit != nil {
		limit = int(*options.Limit)
	}

	query := im.makeQuery(options)
	res := []*auction.Auction{}
	if err := im.q.SearchNSorts(ctx, domain.TableAuctions, offset, limit, sortFields(options.Sort), query, &res); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": query,
		}).Error("q.SearchNSorts failed")
		return nil, wrap("auction.FindAll", err)
	}
	return res, nil
}

func (im *auctionRepoImpl) Count(ctx ctx.Ctx, opts ...auction.FindAllOptionsFunc) (int, error) {
	options, err := auction.GetFindAllOptions(opts...)
	if err != nil {
		ctx.WithField("err", err).Error("auction.GetFindAllOptions failed")
		return 0, err
	}

	query := im.makeQuery(options)
	cnt, err := im.q.Count(ctx, domain.TableAuctions, query)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": query,
		}).Error("q.Count failed")
		return 0, wrap("auction.Count", err)
	}
	return cnt, nil
}

func (im *auctionRepoImpl) CompareAndSwap(ctx ctx.Ctx, id string, expectedVersion int64, patch auction.AuctionPatchable) error {
	set, err := mongoclient.MakeBsonM(patch)
	if err != nil {
		ctx.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return err
	}

	update := bson.M{"$inc": bson.M{"version": 1}}
	if len(set) > 0 {
		update["$set"] = set
	}

	selector := bson.M{"_id": id, "version": expectedVersion}
	if err := im.q.CustomPatch(ctx, domain.TableAuctions, selector, update, false); err == query.ErrNotFound {
		return auction.ErrVersionConflict
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
			"version":   expectedVersion,
		}).Error("q.CustomPatch failed")
		return wrap("auction.CompareAndSwap", err)
	}
	return nil
}

func (im *auctionRepoImpl) IncrementViews(ctx ctx.Ctx, id string, n int64) (int64, error) {
	res := struct {
		ViewCount int64 `bson:"viewCount"`
	}{}
	update := bson.M{"$inc": bson.M{"viewCount": n}}
	if err := im.q.FindOneAndUpdate(ctx, domain.TableAuctions, bson.M{"_id": id}, update, &res); err == query.ErrNotFound {
		return 0, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("q.FindOneAndUpdate failed")
		return 0, wrap("auction.IncrementViews", err)
	}
	return res.ViewCount, nil
}
