package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/x-xyz/goauction/app/bootstrap"
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/sweeper"
	hc_delivery "github.com/x-xyz/goauction/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/goauction/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/goauction/stores/healthcheck/usecase"
)

func init() {
	bootstrap.Init(`infra/configs/scheduler.yaml`)
}

func main() {
	defer log.Sync()

	context := ctx.Background()

	_, q := bootstrap.MustMongo(context)

	redisLive := bootstrap.MustRedis(context, "redis_live")
	if redisLive == nil {
		context.Warn("redis_live not configured, auction locks are process local")
	}

	publisher, err := bootstrap.NewPublisher(context, redisLive)
	if err != nil {
		log.Log().WithField("err", err).Panic("init notifier failed")
	}
	defer publisher.Close()

	cfg := bootstrap.AuctionConfig(viper.Sub("auction"))
	auctionUC, err := bootstrap.NewAuctionUseCase(context, bootstrap.AuctionDeps{
		Mongo:     q,
		Redis:     redisLive,
		Publisher: publisher,
		Config:    cfg,
	})
	if err != nil {
		log.Log().WithField("err", err).Panic("init auction usecase failed")
	}

	sw := sweeper.New(&sweeper.Cfg{
		UseCase:     auctionUC,
		Interval:    cfg.SweepInterval,
		PageSize:    cfg.SweepPageSize,
		Concurrency: cfg.SweepConcurrency,
	})
	swCtx, stopSweeper := ctx.WithCancel(context)
	sw.Start(swCtx)

	e := bootstrap.NewEcho()
	hc_delivery.New(e, hc_usecase.New(hc_repo.New(bootstrap.Pingers(q, redisLive, nil))))
	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	bootstrap.WaitSignal()

	// an in-flight sweep finishes its current page before the loop exits
	stopSweeper()
	sw.Wait()

	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown scheduler successfully")
	}
}
