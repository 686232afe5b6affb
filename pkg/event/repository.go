package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	GetAllEvents(ctx context.Context) ([]Event, error)
	// GetEvents returns the events overlapping [from, to], endpoints included.
	// An event without an end counts as the instant of its start.
	GetEvents(ctx context.Context, from, to time.Time) ([]Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
	CountEvents(ctx context.Context) (int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &RepositoryImpl{db: r.db, tx: tx}

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

const eventColumns = `id, title, "start", "end", all_day, type, recurrence, extended_props, created_at, updated_at`

func (r *RepositoryImpl) StoreEvent(ctx context.Context, event Event) (Event, error) {
	query := `INSERT INTO events (id, title, "start", "end", all_day, type, recurrence, extended_props)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + eventColumns

	if event.ExtendedProps == nil {
		event.ExtendedProps = map[string]any{}
	}
	row := r.getQueryer().QueryRow(ctx, query,
		uuid.NewString(),
		event.Title,
		event.Start,
		event.End,
		event.AllDay,
		event.Type,
		event.Recurrence,
		event.ExtendedProps,
	)
	stored, err := scanEvent(row)
	if err != nil {
		err := fmt.Errorf("could not store event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return stored, nil
}

func (r *RepositoryImpl) GetEvent(ctx context.Context, id string) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.getQueryer().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, ErrEventNotFound
		}
		err := fmt.Errorf("could not get event %s: %w", id, err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) GetAllEvents(ctx context.Context) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY "start", id`
	return r.queryEvents(ctx, query)
}

func (r *RepositoryImpl) GetEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	// Closed-interval overlap with the event end collapsing to its start when missing:
	// 1. the event starts no later than the end of the window
	// 2. AND its (effective) end is no earlier than the start of the window
	query := `SELECT ` + eventColumns + `
			  FROM events
			  WHERE "start" <= $2
			    AND COALESCE("end", "start") >= $1
			  ORDER BY "start", id`
	return r.queryEvents(ctx, query, from, to)
}

func (r *RepositoryImpl) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	query := `UPDATE events
			  SET title = $2, "start" = $3, "end" = $4, all_day = $5, type = $6,
			      recurrence = $7, extended_props = $8, updated_at = now()
			  WHERE id = $1
			  RETURNING ` + eventColumns

	if event.ExtendedProps == nil {
		event.ExtendedProps = map[string]any{}
	}
	row := r.getQueryer().QueryRow(ctx, query,
		event.Id,
		event.Title,
		event.Start,
		event.End,
		event.AllDay,
		event.Type,
		event.Recurrence,
		event.ExtendedProps,
	)
	updated, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, ErrEventNotFound
		}
		err := fmt.Errorf("could not update event %s: %w", event.Id, err)
		log.Error(err)
		return Event{}, err
	}
	return updated, nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, id string) error {
	tag, err := r.getQueryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete event %s: %w", id, err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *RepositoryImpl) CountEvents(ctx context.Context) (int, error) {
	var count int
	if err := r.getQueryer().QueryRow(ctx, `SELECT count(*) FROM events`).Scan(&count); err != nil {
		err := fmt.Errorf("could not count events: %w", err)
		log.Error(err)
		return 0, err
	}
	return count, nil
}

func (r *RepositoryImpl) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.getQueryer().Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("could not read events: %w", err)
		log.Error(err)
		return nil, err
	}
	return events, nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var event Event
	var end *time.Time
	err := row.Scan(
		&event.Id,
		&event.Title,
		&event.Start,
		&end,
		&event.AllDay,
		&event.Type,
		&event.Recurrence,
		&event.ExtendedProps,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return Event{}, err
	}
	event.Start = event.Start.UTC()
	if end != nil {
		utcEnd := end.UTC()
		event.End = &utcEnd
	}
	event.CreatedAt = event.CreatedAt.UTC()
	event.UpdatedAt = event.UpdatedAt.UTC()
	if event.ExtendedProps == nil {
		event.ExtendedProps = map[string]any{}
	}
	return event, nil
}
