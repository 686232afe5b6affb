package rsvp

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// Upsert stores the attendee, replacing the status of an earlier answer.
	Upsert(ctx context.Context, attendee Attendee) (Attendee, error)
	GetAttendees(ctx context.Context, eventId string) ([]Attendee, error)
	DeleteAttendee(ctx context.Context, eventId string, userUid string) error
	DeleteEventAttendees(ctx context.Context, eventId string) (int, error)
	// GoingEvents returns the events the user is going to, ordered by start.
	GoingEvents(ctx context.Context, userUid string) ([]GoingEvent, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const attendeeColumns = `event_id, user_uid, status, created_at, updated_at`

func (r *RepositoryImpl) Upsert(ctx context.Context, attendee Attendee) (Attendee, error) {
	query := `INSERT INTO event_attendees (event_id, user_uid, status)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (event_id, user_uid) DO UPDATE SET status = EXCLUDED.status, updated_at = now()
			  RETURNING ` + attendeeColumns

	stored, err := scanAttendee(r.db.QueryRow(ctx, query, attendee.EventId, attendee.UserUid, string(attendee.Status)))
	if err != nil {
		err := fmt.Errorf("could not store rsvp of %s for event %s: %w", attendee.UserUid, attendee.EventId, err)
		log.Error(err)
		return Attendee{}, err
	}
	return stored, nil
}

func (r *RepositoryImpl) GetAttendees(ctx context.Context, eventId string) ([]Attendee, error) {
	query := `SELECT ` + attendeeColumns + ` FROM event_attendees WHERE event_id = $1 ORDER BY created_at, user_uid`

	rows, err := r.db.Query(ctx, query, eventId)
	if err != nil {
		err := fmt.Errorf("could not query attendees of event %s: %w", eventId, err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	attendees := make([]Attendee, 0)
	for rows.Next() {
		attendee, err := scanAttendee(rows)
		if err != nil {
			err := fmt.Errorf("could not scan attendee: %w", err)
			log.Error(err)
			return nil, err
		}
		attendees = append(attendees, attendee)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("could not read attendees: %w", err)
		log.Error(err)
		return nil, err
	}
	return attendees, nil
}

func (r *RepositoryImpl) DeleteAttendee(ctx context.Context, eventId string, userUid string) error {
	query := `DELETE FROM event_attendees WHERE event_id = $1 AND user_uid = $2`

	result, err := r.db.Exec(ctx, query, eventId, userUid)
	if err != nil {
		err := fmt.Errorf("could not delete rsvp of %s for event %s: %w", userUid, eventId, err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAttendeeNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteEventAttendees(ctx context.Context, eventId string) (int, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM event_attendees WHERE event_id = $1`, eventId)
	if err != nil {
		err := fmt.Errorf("could not delete attendees of event %s: %w", eventId, err)
		log.Error(err)
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

func (r *RepositoryImpl) GoingEvents(ctx context.Context, userUid string) ([]GoingEvent, error) {
	query := `SELECT e.id, e.title, e."start", e."end"
			  FROM event_attendees a
			  JOIN events e ON e.id = a.event_id
			  WHERE a.user_uid = $1 AND a.status = 'going'
			  ORDER BY e."start", e.id`

	rows, err := r.db.Query(ctx, query, userUid)
	if err != nil {
		err := fmt.Errorf("could not query going events of %s: %w", userUid, err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]GoingEvent, 0)
	for rows.Next() {
		var event GoingEvent
		if err := rows.Scan(&event.EventId, &event.Title, &event.Start, &event.End); err != nil {
			err := fmt.Errorf("could not scan going event: %w", err)
			log.Error(err)
			return nil, err
		}
		event.Start = event.Start.UTC()
		if event.End != nil {
			end := event.End.UTC()
			event.End = &end
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("could not read going events: %w", err)
		log.Error(err)
		return nil, err
	}
	return events, nil
}

func (r *RepositoryImpl) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, count(*) FROM event_attendees GROUP BY status`)
	if err != nil {
		err := fmt.Errorf("could not count rsvps: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int, len(Statuses))
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			err := fmt.Errorf("could not scan rsvp count: %w", err)
			log.Error(err)
			return nil, err
		}
		counts[Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("could not read rsvp counts: %w", err)
		log.Error(err)
		return nil, err
	}
	return counts, nil
}

func scanAttendee(row pgx.Row) (Attendee, error) {
	var attendee Attendee
	var status string
	err := row.Scan(&attendee.EventId, &attendee.UserUid, &status, &attendee.CreatedAt, &attendee.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Attendee{}, ErrAttendeeNotFound
		}
		return Attendee{}, err
	}
	attendee.Status = Status(status)
	attendee.CreatedAt = attendee.CreatedAt.UTC()
	attendee.UpdatedAt = attendee.UpdatedAt.UTC()
	return attendee, nil
}
