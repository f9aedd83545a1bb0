package pgclient

import (
	"context"
	"database/sql"
	"time"

	// postgres driver
	_ "github.com/lib/pq"

	"github.com/x-xyz/goauction/base/log"
)

const (
	pgConnectTimeout = 10 * time.Second
)

type Param struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MustConnectPostgres returns a connection pool or panics
func MustConnectPostgres(dsn string, param ...Param) *sql.DB {
	db, err := ConnectPostgres(dsn, param...)
	if err != nil {
		log.Log().WithField("err", err).Panic("fail to connect postgres")
	}
	return db
}

// ConnectPostgres opens a lib/pq pool and pings it
func ConnectPostgres(dsn string, param ...Param) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Log().WithField("err", err).Error("sql.Open failed")
		return nil, err
	}

	p := Param{MaxOpenConns: 16, MaxIdleConns: 4, ConnMaxLifetime: 30 * time.Minute}
	if len(param) > 0 {
		p = param[0]
	}
	db.SetMaxOpenConns(p.MaxOpenConns)
	db.SetMaxIdleConns(p.MaxIdleConns)
	db.SetConnMaxLifetime(p.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pgConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Log().WithField("err", err).Error("fail to ping postgres")
		db.Close()
		return nil, err
	}

	log.Log().Info("postgres connected")
	return db, nil
}
