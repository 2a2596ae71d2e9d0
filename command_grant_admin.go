package donate

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// GrantAdminMessage carries one privilege escalation request.
type GrantAdminMessage struct {
	RequesterToken string    `json:"-"`
	TargetUserID   uuid.UUID `json:"target_user_id"`
}

func (e GrantAdminMessage) Type() string { return "auth.grant_admin" }

// GrantAdminHandler runs escalation requests through the AdminGate.
type GrantAdminHandler struct {
	gate *AdminGate
}

func NewGrantAdminHandler(gate *AdminGate) *GrantAdminHandler {
	return &GrantAdminHandler{gate: gate}
}

func (h *GrantAdminHandler) Execute(ctx context.Context, event GrantAdminMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during admin grant",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *GrantAdminHandler) execute(ctx context.Context, event GrantAdminMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if _, err := h.gate.GrantAdmin(ctx, event.RequesterToken, event.TargetUserID); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "admin grant failed")
	}

	return nil
}
