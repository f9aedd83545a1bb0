// Package bootstrap wires configuration and backing services shared by the
// api, scheduler and archiver binaries.
package bootstrap

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/database/mongoclient"
	"github.com/x-xyz/goauction/base/database/pgclient"
	"github.com/x-xyz/goauction/base/database/redisclient"
	"github.com/x-xyz/goauction/base/keylock"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
	bValidator "github.com/x-xyz/goauction/base/validator"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/domain/healthcheck"
	"github.com/x-xyz/goauction/domain/presence"
	mmiddleware "github.com/x-xyz/goauction/middleware"
	"github.com/x-xyz/goauction/service/notifier"
	"github.com/x-xyz/goauction/service/query"
	"github.com/x-xyz/goauction/service/redis"
	"github.com/x-xyz/goauction/stores/auction/locker"
	auction_repository "github.com/x-xyz/goauction/stores/auction/repository"
	"github.com/x-xyz/goauction/stores/auction/repository/memory"
	auction_usecase "github.com/x-xyz/goauction/stores/auction/usecase"
	presencestore "github.com/x-xyz/goauction/stores/presence"
)

// Init reads the yaml file named by --config, defaulting to defaultFile.
// Every key can be overridden by an env var, auction.lockTTL by AUCTION_LOCKTTL.
func Init(defaultFile string) {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	file := fs.String("config", defaultFile, "path of the yaml config file")
	_ = fs.Parse(os.Args[1:])

	if err := Load(*file); err != nil {
		panic(err)
	}

	if err := log.Init(viper.GetString("log.level"), viper.GetBool("log.development")); err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

// Load reads file into the global viper instance
func Load(file string) error {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(file)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	return viper.ReadInConfig()
}

// AuctionConfig reads the auction section, unset keys fall back to
// auction.DefaultConfig.
func AuctionConfig(v *viper.Viper) auction.Config {
	d := auction.DefaultConfig()
	if v == nil {
		return d
	}

	cfg := auction.Config{
		ExtensionWindow:     v.GetDuration("extensionWindow"),
		MaxExtensions:       d.MaxExtensions,
		MinIncrementFloor:   d.MinIncrementFloor,
		MinIncrementPercent: d.MinIncrementPercent,
		SweepInterval:       v.GetDuration("sweepInterval"),
		SweepPageSize:       v.GetInt("sweepPageSize"),
		SweepConcurrency:    v.GetInt("sweepConcurrency"),
		MaxProxyRounds:      v.GetInt("maxProxyRounds"),
		LockTTL:             v.GetDuration("lockTTL"),
		LockWait:            v.GetDuration("lockWait"),
	}
	if v.IsSet("maxExtensions") {
		cfg.MaxExtensions = v.GetInt("maxExtensions")
	}
	if v.IsSet("minIncrementFloor") {
		cfg.MinIncrementFloor = decimal.NewFromFloat(v.GetFloat64("minIncrementFloor"))
	}
	if v.IsSet("minIncrementPercent") {
		cfg.MinIncrementPercent = decimal.NewFromFloat(v.GetFloat64("minIncrementPercent"))
	}
	return cfg.WithDefaults()
}

func MustMongo(c ctx.Ctx) (*mongoclient.Client, query.Mongo) {
	c.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	return mongoClient, query.New(mongoClient, checkIndex)
}

// MustRedis connects the redis section named name, nil when it has no uri
func MustRedis(c ctx.Ctx, name string) redis.Service {
	uri := viper.GetString(name + ".uri")
	if uri == "" {
		return nil
	}
	c.WithField("name", name).Info("init redis")
	pool := redisclient.MustConnectRedis(uri, viper.GetString(name+".password"), redisclient.RedisParam{
		PoolMultiplier: viper.GetFloat64(name + ".poolMultiplier"),
		Retry:          true,
	})
	return redis.New(name, metrics.New(name), &redis.Pools{
		Src: pool,
	})
}

func MustPostgres(c ctx.Ctx) *sql.DB {
	c.Info("init postgres")
	return pgclient.MustConnectPostgres(viper.GetString("postgres.dsn"), pgclient.Param{
		MaxOpenConns:    viper.GetInt("postgres.maxOpenConns"),
		MaxIdleConns:    viper.GetInt("postgres.maxIdleConns"),
		ConnMaxLifetime: viper.GetDuration("postgres.connMaxLifetime"),
	})
}

func MustNats(c ctx.Ctx, name string) *nats.Conn {
	c.Info("init nats")
	conn, err := nats.Connect(viper.GetString("nats.url"),
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Log().WithField("err", err).Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			log.Log().WithField("url", conn.ConnectedUrl()).Info("nats reconnected")
		}),
	)
	if err != nil {
		log.Log().WithField("err", err).Panic("fail to connect nats")
	}
	return conn
}

// NewSink builds the fan-out of the sinks listed in notifier.sinks
func NewSink(c ctx.Ctx, red redis.Service) (notifier.Sink, error) {
	names := viper.GetStringSlice("notifier.sinks")
	if len(names) == 0 {
		names = []string{"log"}
	}

	sinks := []notifier.Sink{}
	for _, name := range names {
		switch name {
		case "log":
			sinks = append(sinks, notifier.NewLog())
		case "nats":
			sinks = append(sinks, notifier.NewNats(MustNats(c, "goauction-notifier"), viper.GetString("nats.subject")))
		case "kafka":
			sinks = append(sinks, notifier.NewKafka(notifier.KafkaConfig{
				Brokers:      viper.GetStringSlice("kafka.brokers"),
				Topic:        viper.GetString("kafka.topic"),
				WriteTimeout: viper.GetDuration("kafka.writeTimeout"),
			}))
		case "redis":
			if red == nil {
				return nil, fmt.Errorf("notifier sink redis needs redis_live")
			}
			sinks = append(sinks, notifier.NewRedis(red))
		default:
			return nil, fmt.Errorf("unknown notifier sink %q", name)
		}
	}
	c.WithField("sinks", names).Info("notifier sinks")
	return notifier.NewMulti(sinks...), nil
}

// NewPublisher wraps the configured sinks into the async pool
func NewPublisher(c ctx.Ctx, red redis.Service) (*notifier.Async, error) {
	sink, err := NewSink(c, red)
	if err != nil {
		return nil, err
	}
	return notifier.NewAsync(sink, notifier.AsyncConfig{
		Workers:     viper.GetInt("notifier.workers"),
		QueueLength: viper.GetInt("notifier.queueLength"),
		MaxAttempts: viper.GetInt("notifier.maxAttempts"),
	}, metrics.New("notifier")), nil
}

type AuctionDeps struct {
	Mongo     query.Mongo
	Redis     redis.Service
	Publisher auction.Publisher
	Config    auction.Config
}

// NewAuctionUseCase picks the store from store.backend ("mongo" or
// "memory") and the lock from the presence of redis.
func NewAuctionUseCase(c ctx.Ctx, deps AuctionDeps) (auction.UseCase, error) {
	cfg := &auction_usecase.AuctionUseCaseCfg{
		Config:    deps.Config,
		Publisher: deps.Publisher,
	}

	switch backend := viper.GetString("store.backend"); backend {
	case "memory":
		store := memory.NewStore()
		cfg.AuctionRepo = store.AuctionRepo()
		cfg.BidRepo = store.BidRepo()
		cfg.ProxyRepo = store.ProxyRepo()
		cfg.Transactor = store.Transactor()
	case "", "mongo":
		if deps.Mongo == nil {
			return nil, fmt.Errorf("store backend mongo needs a mongo client")
		}
		if err := auction_repository.EnsureIndexes(c, deps.Mongo); err != nil {
			return nil, err
		}
		cfg.AuctionRepo = auction_repository.NewAuctionRepo(deps.Mongo)
		cfg.BidRepo = auction_repository.NewBidRepo(deps.Mongo)
		cfg.ProxyRepo = auction_repository.NewProxyRepo(deps.Mongo)
		cfg.Transactor = auction_repository.NewTransactor(deps.Mongo)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}

	presenceCfg := presence.Config{Window: viper.GetDuration("presence.window")}
	if presenceCfg.Window <= 0 {
		presenceCfg = presence.DefaultConfig()
	}

	km := keylock.New()
	if deps.Redis != nil {
		cfg.Locker = locker.NewRedis(deps.Redis, km, locker.RedisConfig{
			TTL:  deps.Config.LockTTL,
			Wait: deps.Config.LockWait,
		})
		cfg.Presence = presencestore.NewRedis(deps.Redis, presenceCfg)
	} else {
		cfg.Locker = locker.NewLocal(km, deps.Config.LockWait)
		cfg.Presence = presencestore.NewMemory(presenceCfg)
	}

	return auction_usecase.New(cfg), nil
}

// Pingers lists the backing services for the health endpoint, nil ones are
// skipped.
func Pingers(q query.Mongo, red redis.Service, db *sql.DB) map[string]healthcheck.Pinger {
	res := map[string]healthcheck.Pinger{}
	if q != nil {
		res["mongo"] = q
	}
	if red != nil {
		res["redis"] = red
	}
	if db != nil {
		res["postgres"] = healthcheck.PingerFunc(func(c ctx.Ctx) error {
			return db.PingContext(c)
		})
	}
	return res
}

func NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(goValidator.New())
	return e
}

// WaitSignal blocks until SIGINT or SIGTERM
func WaitSignal() os.Signal {
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	return sig
}
