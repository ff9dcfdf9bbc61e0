package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	q "github.com/ignaciocanosa/Precios-Relativos/data/queries"
)

type Postgres struct {
	db *pgxpool.Pool
}

func GetPostgresConnection(ctx context.Context, connectionString string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("error parsing pgx connection string: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("error making new pgx pool: %w", err)
	}

	return &Postgres{pool}, nil
}

// Migrate creates the history tables if they do not exist yet.
func (pg *Postgres) Migrate(ctx context.Context) error {
	if _, err := pg.db.Exec(ctx, q.Get(q.QueryHelper.Schema.ComparisonRun)); err != nil {
		return fmt.Errorf("error migrating comparison run schema: %w", err)
	}
	return nil
}

func (pg *Postgres) Ping(ctx context.Context) error {
	return pg.db.Ping(ctx)
}

func (pg *Postgres) Close() error {
	pg.db.Close()
	return nil
}

func Query[T any](ctx context.Context, pg *Postgres, query string, args pgx.NamedArgs) ([]*T, error) {
	rows, err := pg.db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("unable to query: %w", err)
	}
	defer rows.Close()

	res, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("error occured while collecting rows in query: %w", err)
	}

	result := make([]*T, len(res))
	for i := range res {
		result[i] = &res[i]
	}

	return result, nil
}
