package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/service/query"
)

var indexes = map[domain.Table][]mongo.IndexModel{
	domain.TableAuctions: {
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "startTime", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "currentEndTime", Value: 1}}},
		{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
	},
	domain.TableBids: {
		{Keys: bson.D{{Key: "auctionId", Value: 1}, {Key: "sequence", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "auctionId", Value: 1}, {Key: "amount", Value: -1}, {Key: "placedAt", Value: 1}}},
		{Keys: bson.D{{Key: "auctionId", Value: 1}, {Key: "isWinning", Value: 1}}},
		{Keys: bson.D{{Key: "bidderId", Value: 1}, {Key: "placedAt", Value: -1}}},
	},
	domain.TableProxyCommitments: {
		{Keys: bson.D{{Key: "auctionId", Value: 1}, {Key: "bidderId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "auctionId", Value: 1}, {Key: "isActive", Value: 1}, {Key: "maxAmount", Value: -1}}},
	},
}

// EnsureIndexes creates the indexes the auction repos query with
func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	for table, models := range indexes {
		if err := q.CreateIndexes(c, table, models); err != nil {
			c.WithFields(log.Fields{"err": err, "table": table}).Error("q.CreateIndexes failed")
			return domain.NewRepositoryError("auction.EnsureIndexes", err)
		}
	}
	return nil
}
