package squad

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	List(ctx context.Context) ([]*Squad, error)
	// ListByCoach returns the squads the user coaches.
	ListByCoach(ctx context.Context, userID string) ([]*Squad, error)
	GetByID(ctx context.Context, id string) (*Squad, error)
	// Upsert inserts a squad by name, or loads the existing one.
	Upsert(ctx context.Context, s *Squad) error
	// AddCoach links a coach to a squad. Existing links are kept.
	AddCoach(ctx context.Context, squadID, userID string) error
	IsCoach(ctx context.Context, squadID, userID string) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) list(ctx context.Context, builder squirrel.SelectBuilder) ([]*Squad, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list squads query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list squads failed: %w", err)
	}
	defer rows.Close()

	var out []*Squad
	for rows.Next() {
		var s Squad
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan squad failed: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate squads failed: %w", err)
	}
	return out, nil
}

func (r *pgxRepository) List(ctx context.Context) ([]*Squad, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return r.list(ctx, psql.Select("s.id", "s.name", "s.created_at").
		From("public.squads s").
		OrderBy("s.name ASC"))
}

func (r *pgxRepository) ListByCoach(ctx context.Context, userID string) ([]*Squad, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return r.list(ctx, psql.Select("s.id", "s.name", "s.created_at").
		From("public.squads s").
		Join("public.squad_coaches sc ON sc.squad_id = s.id").
		Where(squirrel.Eq{"sc.user_id": userID}).
		OrderBy("s.name ASC"))
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Squad, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "name", "created_at").
		From("public.squads").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get squad query failed: %w", err)
	}

	var s Squad
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get squad failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) Upsert(ctx context.Context, s *Squad) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.squads").
		Columns("name").
		Values(s.Name).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert squad query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("upsert squad failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) AddCoach(ctx context.Context, squadID, userID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.squad_coaches").
		Columns("squad_id", "user_id").
		Values(squadID, userID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build add coach query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("add coach failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) IsCoach(ctx context.Context, squadID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM public.squad_coaches WHERE squad_id = $1 AND user_id = $2)`

	var ok bool
	if err := r.pool.QueryRow(ctx, query, squadID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check coach failed: %w", err)
	}
	return ok, nil
}
