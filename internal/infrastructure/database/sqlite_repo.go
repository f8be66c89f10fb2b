package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
	"recruitbot/internal/ports/output"
)

var _ output.EventRepository = (*SQLiteEventRepository)(nil)

// SQLiteEventRepository implements output.EventRepository on a local SQLite file.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func isSQLiteConstraint(err error, code sqlite3.ErrNoExtended) bool {
	var sqlErr sqlite3.Error
	return errors.As(err, &sqlErr) && sqlErr.ExtendedCode == code
}

func (r *SQLiteEventRepository) Create(ctx context.Context, event *entities.Event) error {
	withDefaults(event, time.Now())
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (message_id, channel_id, guild_id, owner_id, title, date_str, location,
			required_num, status, start_at_ms, notification_sent, tier, created_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.ChannelID, event.GuildID, event.OwnerID, event.Title, event.DateString, event.Location,
		event.RequiredNum, event.Status, timeToMillis(event.StartAt), event.NotificationSent,
		string(event.Tier), event.CreatedAt.UnixMilli(),
	)
	if err != nil {
		if isSQLiteConstraint(err, sqlite3.ErrConstraintPrimaryKey) {
			return domain.ErrEventExists
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) Get(ctx context.Context, id string) (*entities.Event, error) {
	e, err := scanSQLiteEvent(r.db.QueryRowContext(ctx,
		`SELECT `+sqliteEventColumns+` FROM events WHERE message_id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM participants WHERE event_id = ? ORDER BY joined_at_ms, rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("get participants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var user string
		if err := rows.Scan(&user); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		e.Participants = append(e.Participants, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get participants: %w", err)
	}
	return &e, nil
}

func (r *SQLiteEventRepository) AddParticipant(ctx context.Context, id, userID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("add participant: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM events WHERE message_id = ?`, id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrEventNotFound
		}
		return false, fmt.Errorf("add participant: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO participants (event_id, user_id, joined_at_ms) VALUES (?, ?, ?)
		 ON CONFLICT (event_id, user_id) DO NOTHING`, id, userID, time.Now().UnixMilli())
	if err != nil {
		return false, fmt.Errorf("add participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add participant: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("add participant: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteEventRepository) RemoveParticipant(ctx context.Context, id, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM participants WHERE event_id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) DeleteEvent(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE event_id = ?`, id); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE message_id = ?`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return tx.Commit()
}

func (r *SQLiteEventRepository) ListDueEvents(ctx context.Context) ([]entities.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteEventColumns+` FROM events
		 WHERE start_at_ms IS NOT NULL AND notification_sent = 0
		 ORDER BY start_at_ms`)
	if err != nil {
		return nil, fmt.Errorf("list due events: %w", err)
	}
	defer rows.Close()

	var out []entities.Event
	for rows.Next() {
		e, err := scanSQLiteEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteEventRepository) MarkNotified(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE events SET notification_sent = 1 WHERE message_id = ?`, id); err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE events SET status = ? WHERE message_id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *SQLiteEventRepository) GetGuildNotifyMinutes(ctx context.Context, guildID string) (int, error) {
	var minutes int
	err := r.db.QueryRowContext(ctx,
		`SELECT notify_minutes FROM guild_settings WHERE guild_id = ?`, guildID).Scan(&minutes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.DefaultNotifyMinutes, nil
		}
		return 0, fmt.Errorf("get guild notify minutes: %w", err)
	}
	return minutes, nil
}

func (r *SQLiteEventRepository) SetGuildNotifyMinutes(ctx context.Context, guildID string, minutes int) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO guild_settings (guild_id, notify_minutes) VALUES (?, ?)
		 ON CONFLICT (guild_id) DO UPDATE SET notify_minutes = excluded.notify_minutes`,
		guildID, minutes); err != nil {
		return fmt.Errorf("set guild notify minutes: %w", err)
	}
	return nil
}
