package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
	"recruitbot/internal/ports/output"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var _ output.EventRepository = (*EventRepository)(nil)

// EventRepository implements output.EventRepository on PostgreSQL with pgx.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	withDefaults(event, time.Now())
	_, err := r.pool.Exec(ctx,
		`INSERT INTO events (message_id, channel_id, guild_id, owner_id, title, date_str, location,
			required_num, status, start_at, notification_sent, tier, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		event.ID, event.ChannelID, event.GuildID, event.OwnerID, event.Title, event.DateString, event.Location,
		event.RequiredNum, event.Status, timeToPgtypeTimestamptz(event.StartAt), event.NotificationSent,
		string(event.Tier), event.CreatedAt,
	)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return domain.ErrEventExists
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (*entities.Event, error) {
	e, err := scanPgEvent(r.pool.QueryRow(ctx,
		`SELECT `+pgEventColumns+` FROM events WHERE message_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := r.attachParticipants(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) attachParticipants(ctx context.Context, e *entities.Event) error {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM participants WHERE event_id = $1 ORDER BY joined_at, user_id`, e.ID)
	if err != nil {
		return fmt.Errorf("get participants: %w", err)
	}
	users, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("scan participants: %w", err)
	}
	e.Participants = users
	return nil
}

func (r *EventRepository) AddParticipant(ctx context.Context, id, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO participants (event_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (event_id, user_id) DO NOTHING`, id, userID)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return false, domain.ErrEventNotFound
		}
		return false, fmt.Errorf("add participant: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *EventRepository) RemoveParticipant(ctx context.Context, id, userID string) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM participants WHERE event_id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	return nil
}

func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM participants WHERE event_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM events WHERE message_id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (r *EventRepository) ListDueEvents(ctx context.Context) ([]entities.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+pgEventColumns+` FROM events
		 WHERE start_at IS NOT NULL AND notification_sent = FALSE
		 ORDER BY start_at`)
	if err != nil {
		return nil, fmt.Errorf("list due events: %w", err)
	}
	defer rows.Close()

	var out []entities.Event
	for rows.Next() {
		e, err := scanPgEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventRepository) MarkNotified(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx,
		`UPDATE events SET notification_sent = TRUE WHERE message_id = $1`, id); err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

func (r *EventRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE events SET status = $2 WHERE message_id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) GetGuildNotifyMinutes(ctx context.Context, guildID string) (int, error) {
	var minutes int
	err := r.pool.QueryRow(ctx,
		`SELECT notify_minutes FROM guild_settings WHERE guild_id = $1`, guildID).Scan(&minutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entities.DefaultNotifyMinutes, nil
		}
		return 0, fmt.Errorf("get guild notify minutes: %w", err)
	}
	return minutes, nil
}

func (r *EventRepository) SetGuildNotifyMinutes(ctx context.Context, guildID string, minutes int) error {
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO guild_settings (guild_id, notify_minutes) VALUES ($1, $2)
		 ON CONFLICT (guild_id) DO UPDATE SET notify_minutes = EXCLUDED.notify_minutes`,
		guildID, minutes); err != nil {
		return fmt.Errorf("set guild notify minutes: %w", err)
	}
	return nil
}
