package pgstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/educonnectt/web/core"
)

// visitor_state row; one key/value pair of one visitor's durable state.
type row struct {
	VisitorID string    `db:"visitor_id"`
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	ExpiresAt null.Time `db:"expires_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Store is the Postgres-backed core.Store used in production.
type Store struct {
	db *sqlx.DB
}

var _ core.Store = (*Store)(nil)

func Open(conf *core.Config) (*Store, error) {
	db, err := sqlx.Connect("postgres", conf.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}
	return New(db), nil
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sql.DB  { return s.db.DB }
func (s *Store) Close() error { return s.db.Close() }

// wrapErr upgrades connection-level failures to shutdown errors: a store
// that lost its database cannot serve any visitor, so the process should
// stop rather than fail every request.
func wrapErr(err error, msg string) error {
	if err == driver.ErrBadConn || err == sql.ErrConnDone {
		return errors.Wrap(core.NewShutdownError("visitor state database connection lost"), msg)
	}
	return errors.Wrap(err, msg)
}

func (s *Store) Get(ctx context.Context, visitorID, key string) (string, error) {
	var r row
	err := s.db.GetContext(ctx, &r,
		`SELECT visitor_id, "key", value, expires_at, updated_at
		   FROM visitor_state
		  WHERE visitor_id = $1 AND "key" = $2`,
		visitorID, key,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", core.ErrKeyNotFound
		}
		return "", wrapErr(err, "reading visitor state")
	}
	if r.ExpiresAt.Valid && !time.Now().Before(r.ExpiresAt.Time) {
		// lazily drop expired entries
		_ = s.Delete(ctx, visitorID, key)
		return "", core.ErrKeyNotFound
	}
	return r.Value, nil
}

func (s *Store) Set(ctx context.Context, visitorID, key, value string) error {
	return s.set(ctx, visitorID, key, value, null.Time{})
}

// SetExpiring stores a value that lapses on its own, e.g. a credential whose
// token carries an expiry claim.
func (s *Store) SetExpiring(ctx context.Context, visitorID, key, value string, expiresAt time.Time) error {
	return s.set(ctx, visitorID, key, value, null.TimeFrom(expiresAt))
}

func (s *Store) set(ctx context.Context, visitorID, key, value string, expiresAt null.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitor_state (visitor_id, "key", value, expires_at, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (visitor_id, "key")
		 DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = now()`,
		visitorID, key, value, expiresAt,
	)
	return wrapErr(err, "writing visitor state")
}

// Delete removes all given keys in a single statement so a namespace clear
// can never be partial.
func (s *Store) Delete(ctx context.Context, visitorID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM visitor_state WHERE visitor_id = $1 AND "key" = ANY($2)`,
		visitorID, pq.Array(keys),
	)
	return wrapErr(err, "deleting visitor state")
}

// PurgeExpired drops every lapsed entry; run it periodically from the admin CLI.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM visitor_state WHERE expires_at IS NOT NULL AND expires_at <= now()`,
	)
	if err != nil {
		return 0, wrapErr(err, "purging expired visitor state")
	}
	return res.RowsAffected()
}
