package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/archive"
	"github.com/x-xyz/goauction/domain/auction"
)

const schema = `
CREATE TABLE IF NOT EXISTS auction_events (
	event_id    VARCHAR(64) PRIMARY KEY,
	auction_id  VARCHAR(64) NOT NULL,
	event_type  VARCHAR(64) NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	payload     JSONB NOT NULL,
	archived_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_auction_events_auction ON auction_events(auction_id, occurred_at);
`

const (
	insertQuery = `INSERT INTO auction_events (event_id, auction_id, event_type, occurred_at, payload, archived_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (event_id) DO NOTHING`

	selectColumns = `SELECT event_id, auction_id, event_type, occurred_at, payload, archived_at FROM auction_events`
	countQuery    = `SELECT COUNT(*) FROM auction_events WHERE auction_id = $1`
)

type impl struct {
	db *sql.DB
}

func New(db *sql.DB) archive.Repo {
	return &impl{db: db}
}

// Migrate creates the archive table when missing
func Migrate(c ctx.Ctx, db *sql.DB) error {
	if _, err := db.ExecContext(c, schema); err != nil {
		c.WithFields(log.Fields{"err": err}).Error("create archive schema failed")
		return domain.NewRepositoryError("archive.Migrate", err)
	}
	return nil
}

func (im *impl) Insert(c ctx.Ctx, r *archive.Record) (bool, error) {
	res, err := im.db.ExecContext(c, insertQuery,
		r.EventId,
		r.AuctionId,
		string(r.Type),
		r.OccurredAt,
		[]byte(r.Payload),
		r.ArchivedAt,
	)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "eventId": r.EventId}).Error("db.ExecContext failed")
		return false, domain.NewRepositoryError("archive.Insert", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.NewRepositoryError("archive.Insert", err)
	}
	return n > 0, nil
}

func makeQuery(auctionId string, opts archive.FindAllOptions) (string, []interface{}) {
	conds := []string{"auction_id = $1"}
	args := []interface{}{auctionId}

	if len(opts.Types) > 0 {
		types := make([]string, 0, len(opts.Types))
		for _, t := range opts.Types {
			types = append(types, string(t))
		}
		args = append(args, pq.Array(types))
		conds = append(conds, fmt.Sprintf("event_type = ANY($%d)", len(args)))
	}

	if opts.Since != nil {
		args = append(args, *opts.Since)
		conds = append(conds, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}

	q := selectColumns + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY occurred_at ASC, event_id ASC"

	if opts.Limit != nil {
		args = append(args, *opts.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset != nil {
		args = append(args, *opts.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return q, args
}

func (im *impl) FindAll(c ctx.Ctx, auctionId string, opts ...archive.FindAllOptionsFunc) ([]*archive.Record, error) {
	o, err := archive.GetFindAllOptions(opts...)
	if err != nil {
		return nil, err
	}

	q, args := makeQuery(auctionId, o)
	rows, err := im.db.QueryContext(c, q, args...)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "auctionId": auctionId}).Error("db.QueryContext failed")
		return nil, domain.NewRepositoryError("archive.FindAll", err)
	}
	defer rows.Close()

	res := []*archive.Record{}
	for rows.Next() {
		r := &archive.Record{}
		var (
			typ     string
			payload []byte
		)
		if err := rows.Scan(&r.EventId, &r.AuctionId, &typ, &r.OccurredAt, &payload, &r.ArchivedAt); err != nil {
			c.WithFields(log.Fields{"err": err}).Error("rows.Scan failed")
			return nil, domain.NewRepositoryError("archive.FindAll", err)
		}
		r.Type = auction.EventType(typ)
		r.Payload = payload
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRepositoryError("archive.FindAll", err)
	}

	return res, nil
}

func (im *impl) Count(c ctx.Ctx, auctionId string) (int, error) {
	var n int
	if err := im.db.QueryRowContext(c, countQuery, auctionId).Scan(&n); err != nil {
		c.WithFields(log.Fields{"err": err, "auctionId": auctionId}).Error("db.QueryRowContext failed")
		return 0, domain.NewRepositoryError("archive.Count", err)
	}
	return n, nil
}
