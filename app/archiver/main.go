package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/x-xyz/goauction/app/bootstrap"
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	archive_delivery "github.com/x-xyz/goauction/stores/archive/delivery/http"
	archive_nats "github.com/x-xyz/goauction/stores/archive/delivery/nats"
	archive_repository "github.com/x-xyz/goauction/stores/archive/repository"
	archive_usecase "github.com/x-xyz/goauction/stores/archive/usecase"
	hc_delivery "github.com/x-xyz/goauction/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/goauction/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/goauction/stores/healthcheck/usecase"
)

func init() {
	bootstrap.Init(`infra/configs/archiver.yaml`)
}

func main() {
	defer log.Sync()

	context := ctx.Background()

	db := bootstrap.MustPostgres(context)
	defer db.Close()
	if err := archive_repository.Migrate(context, db); err != nil {
		log.Log().WithField("err", err).Panic("migrate archive failed")
	}

	archiveUC := archive_usecase.New(&archive_usecase.ArchiveUseCaseCfg{
		Repo: archive_repository.New(db),
	})

	conn := bootstrap.MustNats(context, "goauction-archiver")
	consumer := archive_nats.New(conn, archiveUC, archive_nats.Config{
		SubjectPrefix: viper.GetString("nats.subject"),
		Queue:         viper.GetString("nats.queue"),
		MaxAttempts:   viper.GetInt("archiver.maxAttempts"),
	})
	if err := consumer.Start(context); err != nil {
		log.Log().WithField("err", err).Panic("start archive consumer failed")
	}

	e := bootstrap.NewEcho()
	hc_delivery.New(e, hc_usecase.New(hc_repo.New(bootstrap.Pingers(nil, nil, db))))
	archive_delivery.New(e, archiveUC)
	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	bootstrap.WaitSignal()

	if err := consumer.Close(); err != nil {
		log.Log().WithField("err", err).Error("drain archive subscription failed")
	}
	if err := conn.Drain(); err != nil {
		log.Log().WithField("err", err).Error("drain nats failed")
	}

	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown archiver successfully")
	}
}
