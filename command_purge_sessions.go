package donate

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// PurgeExpiredSessionsMessage asks the reaper to drop expired session rows.
// Expired sessions are already invisible to Get; the reaper only keeps the
// table from growing without bound.
type PurgeExpiredSessionsMessage struct{}

func (e PurgeExpiredSessionsMessage) Type() string { return "auth.purge_expired_sessions" }

// PurgeExpiredSessionsHandler is meant to run on a schedule.
type PurgeExpiredSessionsHandler struct {
	sessions SessionStore
	logger   Logger
}

func NewPurgeExpiredSessionsHandler(sessions SessionStore) *PurgeExpiredSessionsHandler {
	return &PurgeExpiredSessionsHandler{
		sessions: sessions,
		logger:   defLogger{},
	}
}

func (h *PurgeExpiredSessionsHandler) WithLogger(logger Logger) *PurgeExpiredSessionsHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *PurgeExpiredSessionsHandler) Execute(ctx context.Context, event PurgeExpiredSessionsMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	reaped, err := h.sessions.DeleteExpired(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "session purge failed")
	}

	if reaped > 0 {
		h.logger.Info("purged %d expired sessions", reaped)
	}

	return nil
}
