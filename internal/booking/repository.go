package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists bookings and their reserved intervals.
type Store interface {
	// InsertBooking writes the header and sets its ID and CreatedAt.
	InsertBooking(ctx context.Context, b *Booking) error
	// InsertIntervals writes all intervals or none. It returns ErrOverlap when
	// any of them intersects an existing interval on the same resource.
	InsertIntervals(ctx context.Context, intervals []Interval) error
	// DeleteBooking removes a booking and its intervals. Missing ids are not an error.
	DeleteBooking(ctx context.Context, id string) error
	GetBooking(ctx context.Context, id string) (*Booking, error)
	ListBookingIntervals(ctx context.Context, bookingID string) ([]Interval, error)
	// ListIntervals returns the intervals starting in [from, to) with their headers.
	ListIntervals(ctx context.Context, from, to time.Time) ([]IntervalRow, error)

	// HasOverlap is an advisory check; InsertIntervals is the authority.
	HasOverlap(ctx context.Context, resourceID string, start, end time.Time, excludeBookingID string) (bool, error)
}

// Transactor is implemented by stores that can run several writes atomically.
// Calls nest: an inner WithTx that fails rolls back only its own writes.
type Transactor interface {
	WithTx(ctx context.Context, fn func(Store) error) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgxStore is the Postgres Store. Overlaps are rejected by the
// booking_resources_no_overlap exclusion constraint.
type PgxStore struct {
	db querier
}

// NewPgxStore returns a Postgres-backed Store that also implements Transactor.
func NewPgxStore(pool *pgxpool.Pool) *PgxStore {
	return &PgxStore{db: pool}
}

// WithTx runs fn in a transaction, or in a savepoint when already inside one.
func (r *PgxStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&PgxStore{db: tx})
	})
}

func (r *PgxStore) InsertBooking(ctx context.Context, b *Booking) error {
	var seriesID any
	if b.SeriesID != "" {
		seriesID = b.SeriesID
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("squad_id", "created_by", "category", "status", "kind", "notes", "series_id").
		Values(b.SquadID, b.CreatedBy, b.Category, b.Status, b.Kind, b.Notes, seriesID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert booking query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrSquadNotFound
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (r *PgxStore) InsertIntervals(ctx context.Context, intervals []Interval) error {
	if len(intervals) == 0 {
		return nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	builder := psql.Insert("public.booking_resources").
		Columns("booking_id", "resource_id", "start_at", "end_at")
	for _, iv := range intervals {
		builder = builder.Values(iv.BookingID, iv.ResourceID, iv.StartAt, iv.EndAt)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build insert intervals query failed: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.ExclusionViolation:
				return ErrOverlap
			case pgerrcode.ForeignKeyViolation:
				return ErrResourceNotFound
			case pgerrcode.CheckViolation:
				return ErrInvalidTimeRange
			}
		}
		return fmt.Errorf("insert intervals failed: %w", err)
	}
	return nil
}

func (r *PgxStore) DeleteBooking(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	return nil
}

var bookingColumns = []string{
	"b.id", "b.squad_id", "s.name", "b.created_by", "COALESCE(u.display_name, u.email)",
	"b.category", "b.status", "b.kind", "b.notes", "COALESCE(b.series_id::text, '')", "b.created_at",
}

func scanBooking(row pgx.Row, b *Booking, extra ...any) error {
	dest := []any{
		&b.ID, &b.SquadID, &b.SquadName, &b.CreatedBy, &b.CreatorName,
		&b.Category, &b.Status, &b.Kind, &b.Notes, &b.SeriesID, &b.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func (r *PgxStore) GetBooking(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.squads s ON b.squad_id = s.id").
		Join("public.users u ON b.created_by = u.id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	var b Booking
	if err := scanBooking(r.db.QueryRow(ctx, query, args...), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}

func (r *PgxStore) ListBookingIntervals(ctx context.Context, bookingID string) ([]Interval, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("br.booking_id", "br.resource_id", "br.start_at", "br.end_at").
		From("public.booking_resources br").
		Join("public.resources r ON br.resource_id = r.id").
		Where(squirrel.Eq{"br.booking_id": bookingID}).
		OrderBy("br.start_at ASC", "r.sort_order ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list booking intervals query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list booking intervals failed: %w", err)
	}
	defer rows.Close()

	var out []Interval
	for rows.Next() {
		var iv Interval
		if err := rows.Scan(&iv.BookingID, &iv.ResourceID, &iv.StartAt, &iv.EndAt); err != nil {
			return nil, fmt.Errorf("scan interval failed: %w", err)
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intervals failed: %w", err)
	}
	return out, nil
}

func (r *PgxStore) ListIntervals(ctx context.Context, from, to time.Time) ([]IntervalRow, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	cols := append([]string{"br.resource_id", "r.name", "br.start_at", "br.end_at"}, bookingColumns...)
	query, args, err := psql.Select(cols...).
		From("public.booking_resources br").
		Join("public.resources r ON br.resource_id = r.id").
		Join("public.bookings b ON br.booking_id = b.id").
		Join("public.squads s ON b.squad_id = s.id").
		Join("public.users u ON b.created_by = u.id").
		Where(squirrel.GtOrEq{"br.start_at": from}).
		Where(squirrel.Lt{"br.start_at": to}).
		OrderBy("br.start_at ASC", "r.sort_order ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list intervals query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list intervals failed: %w", err)
	}
	defer rows.Close()

	var out []IntervalRow
	for rows.Next() {
		var row IntervalRow
		b := &row.Booking
		if err := rows.Scan(
			&row.ResourceID, &row.ResourceName, &row.StartAt, &row.EndAt,
			&b.ID, &b.SquadID, &b.SquadName, &b.CreatedBy, &b.CreatorName,
			&b.Category, &b.Status, &b.Kind, &b.Notes, &b.SeriesID, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan interval row failed: %w", err)
		}
		row.BookingID = b.ID
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interval rows failed: %w", err)
	}
	return out, nil
}

func (r *PgxStore) HasOverlap(ctx context.Context, resourceID string, start, end time.Time, excludeBookingID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub := psql.Select("1").
		From("public.booking_resources").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Lt{"start_at": end}).
		Where(squirrel.Gt{"end_at": start})
	if excludeBookingID != "" {
		sub = sub.Where(squirrel.NotEq{"booking_id": excludeBookingID})
	}
	query, args, err := sub.ToSql()
	if err != nil {
		return false, fmt.Errorf("build overlap query failed: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS ("+query+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}
