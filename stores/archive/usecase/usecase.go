package usecase

import (
	"github.com/benbjohnson/clock"
	"golang.org/x/xerrors"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/archive"
	"github.com/x-xyz/goauction/domain/auction"
)

type ArchiveUseCaseCfg struct {
	Clock   clock.Clock
	Repo    archive.Repo
	Metrics metrics.Service
}

type impl struct {
	clock clock.Clock
	repo  archive.Repo
	met   metrics.Service
}

func New(cfg *ArchiveUseCaseCfg) archive.UseCase {
	im := &impl{
		clock: cfg.Clock,
		repo:  cfg.Repo,
		met:   cfg.Metrics,
	}
	if im.clock == nil {
		im.clock = clock.New()
	}
	if im.met == nil {
		im.met = metrics.New("archive")
	}
	return im
}

func (im *impl) Archive(c ctx.Ctx, e *auction.Event) error {
	if e == nil || len(e.Id) == 0 || len(e.AuctionId) == 0 {
		return xerrors.Errorf("incomplete event: %w", domain.ErrBadParamInput)
	}

	r, err := archive.NewRecord(e, im.clock.Now())
	if err != nil {
		c.WithFields(log.Fields{"err": err, "eventId": e.Id}).Error("archive.NewRecord failed")
		return xerrors.Errorf("encode event: %w", domain.ErrBadParamInput)
	}

	inserted, err := im.repo.Insert(c, r)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "eventId": e.Id}).Error("repo.Insert failed")
		im.met.BumpSum("event.failed", 1, "type", string(e.Type))
		return err
	}

	if !inserted {
		c.WithFields(log.Fields{"eventId": e.Id}).Debug("event already archived")
		im.met.BumpSum("event.duplicate", 1, "type", string(e.Type))
		return nil
	}

	im.met.BumpSum("event.archived", 1, "type", string(e.Type))
	return nil
}

func (im *impl) History(c ctx.Ctx, auctionId string, opts ...archive.FindAllOptionsFunc) ([]*archive.Record, error) {
	res, err := im.repo.FindAll(c, auctionId, opts...)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "auctionId": auctionId}).Error("repo.FindAll failed")
		return nil, err
	}
	return res, nil
}
