package repository

import (
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/service/query"
)

type transactorImpl struct {
	q query.Mongo
}

// NewTransactor runs auction mutations in a mongo multi-document
// transaction. It needs a replica set.
func NewTransactor(q query.Mongo) auction.Transactor {
	return &transactorImpl{q}
}

func (im *transactorImpl) RunInTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) error {
	var fnErr error
	err := im.q.RunWithTransaction(c, func(txCtx ctx.Ctx) error {
		fnErr = fn(txCtx)
		return fnErr
	})
	if err == nil || err == fnErr {
		return err
	}
	c.WithField("err", err).Error("q.RunWithTransaction failed")
	return domain.NewRepositoryError("auction.RunInTransaction", err)
}
