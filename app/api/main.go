package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/x-xyz/goauction/app/bootstrap"
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/sweeper"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/service/query"
	auction_delivery "github.com/x-xyz/goauction/stores/auction/delivery/http"
	auth_delivery "github.com/x-xyz/goauction/stores/auth/delivery/http"
	auth_middleware "github.com/x-xyz/goauction/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/x-xyz/goauction/stores/auth/usecase"
	hc_delivery "github.com/x-xyz/goauction/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/goauction/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/goauction/stores/healthcheck/usecase"
)

func init() {
	bootstrap.Init(`infra/configs/api.yaml`)
}

func main() {
	defer log.Sync()

	e := bootstrap.NewEcho()
	context := ctx.Background()

	var q query.Mongo
	if viper.GetString("store.backend") != "memory" {
		_, q = bootstrap.MustMongo(context)
	}

	// lock, presence and live channel
	redisLive := bootstrap.MustRedis(context, "redis_live")

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

	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"), nil)
	authMiddleware := auth_middleware.New(auth, viper.GetStringSlice("admin.userIds"))

	hc := hc_usecase.New(hc_repo.New(bootstrap.Pingers(q, redisLive, nil)))

	hc_delivery.New(e, hc)
	auth_delivery.New(e, authMiddleware)
	auction_delivery.New(e, auctionUC, authMiddleware)

	var sw *sweeper.LifecycleSweeper
	swCtx, stopSweeper := ctx.WithCancel(context)
	if viper.GetBool("scheduler.embedded") {
		sw = newSweeper(auctionUC, cfg)
		sw.Start(swCtx)
	}

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	bootstrap.WaitSignal()

	stopSweeper()
	if sw != nil {
		sw.Wait()
	}

	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}

func newSweeper(uc auction.UseCase, cfg auction.Config) *sweeper.LifecycleSweeper {
	return sweeper.New(&sweeper.Cfg{
		UseCase:     uc,
		Interval:    cfg.SweepInterval,
		PageSize:    cfg.SweepPageSize,
		Concurrency: cfg.SweepConcurrency,
	})
}
