package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/service/query"
)

type proxyRepoImpl struct {
	q query.Mongo
}

func NewProxyRepo(q query.Mongo) auction.ProxyRepo {
	return &proxyRepoImpl{q}
}

func (im *proxyRepoImpl) FindOne(ctx ctx.Ctx, auctionId string, bidderId string) (*auction.ProxyCommitment, error) {
	res := &auction.ProxyCommitment{}
	selector := bson.M{"auctionId": auctionId, "bidderId": bidderId}
	if err := im.q.FindOne(ctx, domain.TableProxyCommitments, selector, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
		}).Error("q.FindOne failed")
		return nil, wrap("proxy.FindOne", err)
	}
	return res, nil
}

func (im *proxyRepoImpl) FindActive(ctx ctx.Ctx, auctionId string) ([]*auction.ProxyCommitment, error) {
	res := []*auction.ProxyCommitment{}
	query := bson.M{"auctionId": auctionId, "isActive": true}
	if err := im.q.SearchNSorts(ctx, domain.TableProxyCommitments, 0, 0, []string{"-maxAmount", "createdAt", "_id"}, query, &res); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": query,
		}).Error("q.SearchNSorts failed")
		return nil, wrap("proxy.FindActive", err)
	}
	return res, nil
}

// Upsert replaces the commitment of (auctionId, bidderId). Callers keep the
// id of an existing commitment.
func (im *proxyRepoImpl) Upsert(ctx ctx.Ctx, p *auction.ProxyCommitment) error {
	selector := bson.M{"auctionId": p.AuctionId, "bidderId": p.BidderId}
	if err := im.q.Upsert(ctx, domain.TableProxyCommitments, selector, p); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
		}).Error("q.Upsert failed")
		return wrap("proxy.Upsert", err)
	}
	return nil
}

func (im *proxyRepoImpl) DeactivateAll(ctx ctx.Ctx, auctionId string) error {
	selector := bson.M{"auctionId": auctionId, "isActive": true}
	update := bson.M{"isActive": false}
	if err := im.q.Patch(ctx, domain.TableProxyCommitments, selector, update, query.WithPatchMany(true)); err != nil && err != query.ErrNotFound {
		ctx.WithFields(log.Fields{
			"err":       err,
			"auctionId": auctionId,
		}).Error("q.Patch failed")
		return wrap("proxy.DeactivateAll", err)
	}
	return nil
}
