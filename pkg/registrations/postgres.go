// pkg/registrations/postgres.go
package registrations

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgStore implements Store backed by PostgreSQL.
type pgStore struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

// NewPostgresStore constructs a PostgreSQL-backed registration store.
func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates the registration table if it does not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS space_app_instances (
  client_id text PRIMARY KEY,
  client_secret text NOT NULL,
  server_url text NOT NULL,
  installed_by text DEFAULT '',
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
ALTER TABLE space_app_instances ADD COLUMN IF NOT EXISTS installed_by text DEFAULT '';
ALTER TABLE space_app_instances ADD COLUMN IF NOT EXISTS updated_at timestamptz NOT NULL DEFAULT NOW();
`)
	return err
}

func (p *pgStore) Upsert(ctx context.Context, reg ClientRegistration) error {
	_, err := p.dbPool.Exec(ctx, `INSERT INTO space_app_instances(client_id,client_secret,server_url,installed_by,updated_at)
	  VALUES ($1,$2,$3,$4,NOW())
	  ON CONFLICT (client_id) DO UPDATE SET client_secret=EXCLUDED.client_secret,server_url=EXCLUDED.server_url,installed_by=EXCLUDED.installed_by,updated_at=NOW()`,
		reg.ClientID, reg.ClientSecret, reg.ServerURL, reg.InstalledBy)
	if err != nil {
		p.log.Errorw("registration upsert", "clientId", reg.ClientID, "err", err)
		return err
	}
	return nil
}

func (p *pgStore) Get(ctx context.Context, clientID string) (ClientRegistration, error) {
	row := p.dbPool.QueryRow(ctx, `SELECT client_id,client_secret,server_url,COALESCE(installed_by,'') FROM space_app_instances WHERE client_id=$1`, clientID)
	var reg ClientRegistration
	if err := row.Scan(&reg.ClientID, &reg.ClientSecret, &reg.ServerURL, &reg.InstalledBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ClientRegistration{}, ErrNotFound
		}
		return ClientRegistration{}, err
	}
	return reg, nil
}
