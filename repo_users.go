package donate

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var SetAdminSQL = `UPDATE "users" AS "usr"
SET
	"is_admin" = TRUE,
	"updated_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

type Users interface {
	repository.Repository[*User]

	GetBySubject(ctx context.Context, subject string) (*User, error)
	GetByUserID(ctx context.Context, id uuid.UUID) (*User, error)

	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	GetOrRegister(ctx context.Context, record *User) (*User, error)
	GetOrRegisterTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)

	SetAdmin(ctx context.Context, id uuid.UUID) (*User, error)
	SetAdminTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	CountAdmins(ctx context.Context) (int, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
	_ UserFinder                   = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

// GetByUserID looks a user up by primary key. The embedded repository's
// GetByID keeps its string-identifier signature.
func (a *users) GetByUserID(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to load user")
	}

	return record, nil
}

func (a *users) GetBySubject(ctx context.Context, subject string) (*User, error) {
	if subject == "" {
		return nil, ErrIdentityNotFound
	}

	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.idp_subject = ?", subject).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to load user by subject")
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

// GetOrRegister finds a user by identity-provider subject, falling back to
// email, and registers a new record when neither matches. The sync flow is
// the only caller.
func (a *users) GetOrRegister(ctx context.Context, record *User) (*User, error) {
	return a.GetOrRegisterTx(ctx, a.db, record)
}

func (a *users) GetOrRegisterTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	if record.Subject != "" {
		user, err := a.GetBySubject(ctx, record.Subject)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrIdentityNotFound) {
			return nil, err
		}
	}

	if record.Email != "" {
		user, err := a.Repository.GetByIdentifierTx(ctx, tx, record.Email)
		if err == nil {
			return user, nil
		}
		if !repository.IsRecordNotFound(err) {
			return nil, err
		}
	}

	return a.RegisterTx(ctx, tx, record)
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	loggedInAt := time.Now()
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, loggedInAt, user.ID).Exec(ctx)

	return err
}

func (a *users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	criteria := []repository.UpdateCriteria{
		repository.UpdateByID(user.ID.String()),
	}

	record := &User{}
	record.ID = user.ID
	record.LoginAttempts = user.LoginAttempts + 1
	now := time.Now()
	record.LoginAttemptAt = &now

	_, err := a.Repository.UpdateTx(ctx, a.db, record, criteria...)

	return err
}

func (a *users) SetAdmin(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.SetAdminTx(ctx, a.db, id)
}

func (a *users) SetAdminTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, SetAdminSQL, time.Now(), id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func (a *users) CountAdmins(ctx context.Context) (int, error) {
	return a.db.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.is_admin = ?", true).
		Count(ctx)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
