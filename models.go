package donate

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the local user record. The Subject column holds the identity
// provider's stable subject for users created through the sync flow.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email          string         `bun:"email,notnull,unique" json:"email,omitempty"`
	Name           string         `bun:"name" json:"name,omitempty"`
	Subject        string         `bun:"idp_subject,nullzero,unique" json:"idp_subject,omitempty"`
	IsAdmin        bool           `bun:"is_admin,notnull,default:false" json:"is_admin,omitempty"`
	Suspended      bool           `bun:"is_suspended,notnull,default:false" json:"is_suspended,omitempty"`
	PasswordHash   string         `bun:"password_hash" json:"-"`
	LoginAttempts  int            `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time     `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time     `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	Metadata       map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt      *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Principal builds the request-facing identity from the stored record.
func (u *User) Principal() *Principal {
	return &Principal{
		ID:      u.ID,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
	}
}

// Session is a server-issued login context referenced by an opaque cookie
// value. The ID column is the cookie value itself; it never reaches logs.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:ses"`
	ID            string    `bun:"id,pk" json:"-"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
	ExpiresAt     time.Time `bun:"expires_at,notnull" json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Campaign is a fundraising campaign; the webhook pipeline is the only
// writer of the raised/donation counters.
type Campaign struct {
	bun.BaseModel `bun:"table:campaigns,alias:cmp"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	GoalAmount    int64      `bun:"goal_amount,notnull" json:"goal_amount,omitempty"`
	RaisedAmount  int64      `bun:"raised_amount,notnull,default:0" json:"raised_amount"`
	DonationCount int64      `bun:"donation_count,notnull,default:0" json:"donation_count"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// PaymentStatus is the payment's settlement status
type PaymentStatus = string

const (
	// PaymentPending is a checkout that has not been confirmed yet
	PaymentPending PaymentStatus = "pending"
	// PaymentSettled is a payment confirmed by the provider
	PaymentSettled PaymentStatus = "settled"
	// PaymentFailed is a payment the provider reported as failed
	PaymentFailed PaymentStatus = "failed"
)

// Payment tracks one checkout with the payment provider. ProviderRef is the
// provider-side identifier webhook payloads reference; EventID records which
// webhook event settled it.
type Payment struct {
	bun.BaseModel `bun:"table:payments,alias:pay"`
	ID            uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	CampaignID    uuid.UUID     `bun:"campaign_id,notnull,type:uuid" json:"campaign_id,omitempty"`
	Amount        int64         `bun:"amount,notnull" json:"amount,omitempty"`
	Status        PaymentStatus `bun:"status,notnull,default:'pending'" json:"status,omitempty"`
	ProviderRef   string        `bun:"provider_ref,notnull,unique" json:"provider_ref,omitempty"`
	EventID       string        `bun:"event_id,nullzero" json:"event_id,omitempty"`
	SettledAt     *time.Time    `bun:"settled_at,nullzero" json:"settled_at,omitempty"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
