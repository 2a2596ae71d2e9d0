package webhook

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// LedgerEntry is the durable dedup record for a processed delivery. The
// primary key on event_id is what makes concurrent deliveries of the
// same event collapse into a single applied mutation.
type LedgerEntry struct {
	bun.BaseModel `bun:"table:webhook_events,alias:whe"`

	EventID     string     `bun:"event_id,pk" json:"event_id"`
	Provider    string     `bun:"provider,notnull" json:"provider"`
	EventType   string     `bun:"event_type,notnull" json:"event_type"`
	Payload     string     `bun:"payload,notnull" json:"payload"`
	ReceivedAt  time.Time  `bun:"received_at,notnull" json:"received_at"`
	ProcessedAt *time.Time `bun:"processed_at" json:"processed_at,omitempty"`
}

// claimEvent inserts the ledger row for an event inside the caller's
// transaction. It returns false when the row already exists, meaning a
// previous delivery (or a concurrent one that committed first) already
// owns the mutation.
func claimEvent(ctx context.Context, tx bun.IDB, entry *LedgerEntry) (bool, error) {
	res, err := tx.NewInsert().
		Model(entry).
		On("CONFLICT (event_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
