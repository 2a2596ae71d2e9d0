package donate

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.TransactionManager
	Users() Users
	Sessions() SessionStore
	Campaigns() repository.Repository[*Campaign]
	Payments() repository.Repository[*Payment]
}

func NewCampaignsRepository(db *bun.DB) repository.Repository[*Campaign] {
	handlers := repository.ModelHandlers[*Campaign]{
		NewRecord: func() *Campaign {
			return &Campaign{}
		},
		GetID: func(record *Campaign) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Campaign, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "title"
		},
	}
	return repository.NewRepository(db, handlers)
}

func NewPaymentsRepository(db *bun.DB) repository.Repository[*Payment] {
	handlers := repository.ModelHandlers[*Payment]{
		NewRecord: func() *Payment {
			return &Payment{}
		},
		GetID: func(record *Payment) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Payment, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "provider_ref"
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db        *bun.DB
	users     Users
	sessions  SessionStore
	campaigns repository.Repository[*Campaign]
	payments  repository.Repository[*Payment]
}

func NewRepositoryManager(db *bun.DB, opts ...SessionStoreOption) RepositoryManager {
	return &mngr{
		db:        db,
		users:     NewUsersRepository(db),
		sessions:  NewSessionStore(db, opts...),
		campaigns: NewCampaignsRepository(db),
		payments:  NewPaymentsRepository(db),
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Sessions() SessionStore {
	return m.sessions
}

func (m mngr) Campaigns() repository.Repository[*Campaign] {
	return m.campaigns
}

func (m mngr) Payments() repository.Repository[*Payment] {
	return m.payments
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return m.db.RunInTx(ctx, opts, f)
}
