package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sealnote/sealnote/auth"
)

// EventLog is the pgx implementation of auth.EventLog. Rows are only ever
// inserted; there is no update or delete path.
type EventLog struct {
	pool *pgxpool.Pool
}

// NewEventLog creates an event log backed by the given pool.
func NewEventLog(pool *pgxpool.Pool) *EventLog {
	return &EventLog{pool: pool}
}

func (s *EventLog) Append(ctx context.Context, event auth.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO auth_events (id, event_type, details, account_id, created_at, source_ip)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, string(event.Type), event.Details, event.AccountID, event.CreatedAt, event.SourceIP)
	return err
}

func (s *EventLog) CountSince(ctx context.Context, eventType auth.EventType, accountID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM auth_events
		WHERE account_id = $1 AND event_type = $2 AND created_at >= $3`,
		accountID, string(eventType), since).Scan(&count)
	return count, err
}
