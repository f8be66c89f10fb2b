package database

import (
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
)

// pgtypeTimestamptzToTime returns t.Time when Valid, else zero time.
func pgtypeTimestamptzToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

func timeToPgtypeTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func millisToTime(ms sql.NullInt64) time.Time {
	if !ms.Valid {
		return time.Time{}
	}
	return time.UnixMilli(ms.Int64)
}

func timeToMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

// scanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const pgEventColumns = `message_id, channel_id, guild_id, owner_id, title, date_str, location,
	required_num, status, start_at, notification_sent, tier, created_at`

func scanPgEvent(row scanner) (entities.Event, error) {
	var (
		e         entities.Event
		tier      string
		startAt   pgtype.Timestamptz
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(&e.ID, &e.ChannelID, &e.GuildID, &e.OwnerID, &e.Title, &e.DateString, &e.Location,
		&e.RequiredNum, &e.Status, &startAt, &e.NotificationSent, &tier, &createdAt)
	if err != nil {
		return entities.Event{}, err
	}
	e.Tier = entities.Tier(tier)
	e.StartAt = pgtypeTimestamptzToTime(startAt)
	e.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	return e, nil
}

const sqliteEventColumns = `message_id, channel_id, guild_id, owner_id, title, date_str, location,
	required_num, status, start_at_ms, notification_sent, tier, created_at_ms`

func scanSQLiteEvent(row scanner) (entities.Event, error) {
	var (
		e         entities.Event
		tier      string
		startAt   sql.NullInt64
		createdAt int64
	)
	err := row.Scan(&e.ID, &e.ChannelID, &e.GuildID, &e.OwnerID, &e.Title, &e.DateString, &e.Location,
		&e.RequiredNum, &e.Status, &startAt, &e.NotificationSent, &tier, &createdAt)
	if err != nil {
		return entities.Event{}, err
	}
	e.Tier = entities.Tier(tier)
	e.StartAt = millisToTime(startAt)
	e.CreatedAt = time.UnixMilli(createdAt)
	return e, nil
}

// withDefaults fills the columns that have a schema default so the caller's
// copy matches what is stored.
func withDefaults(e *entities.Event, now time.Time) {
	if e.Status == "" {
		e.Status = domain.StatusRecruiting
	}
	if e.Tier == "" {
		e.Tier = entities.TierNormal
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
}
