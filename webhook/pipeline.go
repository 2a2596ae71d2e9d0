// Package webhook ingests payment provider callbacks. Deliveries are
// authenticated by a shared-secret HMAC signature, deduplicated by
// event identifier through a durable ledger, and applied as a single
// idempotent transaction against payment and campaign records.
package webhook

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	donate "github.com/goliatone/go-donate"
)

// State tracks a delivery through the pipeline.
type State string

const (
	StateReceived State = "received"
	StateVerified State = "verified"
	StateApplied  State = "applied"
	StateRejected State = "rejected"
)

// Receipt reports the terminal disposition of one delivery. Duplicate
// deliveries are benign: the receipt carries StateApplied with
// Duplicate set and no error.
type Receipt struct {
	EventID   string
	State     State
	Duplicate bool
}

// Delivery is one inbound provider callback, carried exactly as
// received. Payload must be the raw request bytes the provider signed.
type Delivery struct {
	Payload   []byte
	Timestamp string
	Signature string
}

// Pipeline verifies and applies provider callbacks. Verification
// failures are terminal, the provider's own redelivery handles retries
// for those. Storage failures during apply are retried a bounded number
// of times before surfacing as a processing error.
type Pipeline struct {
	db          *bun.DB
	secret      string
	provider    string
	maxAttempts int
	maxSkew     time.Duration
	logger      donate.Logger
	now         func() time.Time
}

func NewPipeline(db *bun.DB, secret string, opts ...func(*Pipeline)) *Pipeline {
	p := &Pipeline{
		db:          db,
		secret:      secret,
		provider:    "default",
		maxAttempts: 3,
		now:         time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	if p.logger == nil {
		p.logger = donate.DefaultLogger()
	}

	return p
}

func WithLogger(logger donate.Logger) func(*Pipeline) {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithProvider(name string) func(*Pipeline) {
	return func(p *Pipeline) {
		if name != "" {
			p.provider = name
		}
	}
}

func WithMaxAttempts(n int) func(*Pipeline) {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithMaxSkew enables rejection of deliveries whose timestamp is older
// or newer than the given tolerance. Zero disables the check.
func WithMaxSkew(d time.Duration) func(*Pipeline) {
	return func(p *Pipeline) {
		p.maxSkew = d
	}
}

func WithClock(now func() time.Time) func(*Pipeline) {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Process runs one delivery through verification, dedup, and apply.
// The returned receipt always carries a terminal state; the error is
// non-nil for rejections and for processing failures that the provider
// should redeliver.
func (p *Pipeline) Process(ctx context.Context, delivery Delivery) (*Receipt, error) {
	receipt := &Receipt{State: StateReceived}

	if !VerifySignature(p.secret, delivery.Timestamp, delivery.Payload, delivery.Signature) {
		receipt.State = StateRejected
		p.logger.Warn("webhook delivery rejected: signature mismatch")
		return receipt, ErrInvalidSignature.Clone()
	}

	if err := p.checkSkew(delivery.Timestamp); err != nil {
		receipt.State = StateRejected
		p.logger.Warn("webhook delivery rejected: %s", err)
		return receipt, err
	}

	evt, err := DecodeEvent(delivery.Payload)
	if err != nil {
		receipt.State = StateRejected
		p.logger.Warn("webhook delivery rejected: %s", err)
		return receipt, err
	}

	receipt.EventID = evt.EventID
	receipt.State = StateVerified

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		duplicate, err := p.apply(ctx, evt, delivery.Payload)
		if err == nil {
			receipt.State = StateApplied
			receipt.Duplicate = duplicate
			if duplicate {
				p.logger.Info("webhook event %s already applied, skipping", evt.EventID)
			}
			return receipt, nil
		}

		if isTerminal(err) {
			receipt.State = StateRejected
			return receipt, err
		}

		lastErr = err
		p.logger.Warn("webhook apply attempt %d/%d for event %s failed: %s",
			attempt, p.maxAttempts, evt.EventID, err)

		if attempt < p.maxAttempts {
			select {
			case <-ctx.Done():
				return receipt, errors.Wrap(ctx.Err(), errors.CategoryOperation, "webhook processing canceled").
					WithCode(errors.CodeInternal)
			case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
			}
		}
	}

	return receipt, ErrStorageFailure.Clone().WithMetadata(map[string]any{
		"event_id": evt.EventID,
		"attempts": p.maxAttempts,
		"cause":    lastErr.Error(),
	})
}

func (p *Pipeline) checkSkew(timestamp string) error {
	if p.maxSkew <= 0 {
		return nil
	}

	secs, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrStaleDelivery.Clone()
	}

	drift := p.now().Sub(time.Unix(secs, 0))
	if drift < 0 {
		drift = -drift
	}

	if drift > p.maxSkew {
		return ErrStaleDelivery.Clone()
	}

	return nil
}

// apply claims the event in the dedup ledger and performs the mutation
// in a single transaction. Two concurrent deliveries of the same event
// race on the ledger's primary key: exactly one claims it and mutates,
// the other observes a duplicate.
func (p *Pipeline) apply(ctx context.Context, evt *Event, payload []byte) (bool, error) {
	duplicate := false

	err := p.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		now := p.now()
		claimed, err := claimEvent(ctx, tx, &LedgerEntry{
			EventID:     evt.EventID,
			Provider:    p.provider,
			EventType:   evt.Type,
			Payload:     string(payload),
			ReceivedAt:  now,
			ProcessedAt: &now,
		})
		if err != nil {
			return err
		}

		if !claimed {
			duplicate = true
			return nil
		}

		switch evt.Type {
		case EventPaymentSettled:
			return p.settlePayment(ctx, tx, evt, now)
		case EventPaymentFailed:
			return p.failPayment(ctx, tx, evt)
		default:
			return ErrUnknownEventType.Clone().WithMetadata(map[string]any{
				"event_type": evt.Type,
			})
		}
	})

	return duplicate, err
}

func (p *Pipeline) settlePayment(ctx context.Context, tx bun.Tx, evt *Event, now time.Time) error {
	paymentID, err := uuid.Parse(evt.PaymentID)
	if err != nil {
		return ErrMalformedPayload.Clone()
	}

	campaignID, err := uuid.Parse(evt.CampaignID)
	if err != nil {
		return ErrMalformedPayload.Clone()
	}

	res, err := tx.NewUpdate().
		Model((*donate.Payment)(nil)).
		Set("status = ?", donate.PaymentSettled).
		Set("event_id = ?", evt.EventID).
		Set("settled_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", paymentID).
		Where("status = ?", donate.PaymentPending).
		Exec(ctx)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	// The compare-and-set guards the counter increment: a payment that
	// is no longer pending was already counted, so the totals must not
	// move again.
	if affected == 0 {
		return p.requirePayment(ctx, tx, paymentID)
	}

	_, err = tx.NewUpdate().
		Model((*donate.Campaign)(nil)).
		Set("raised_amount = raised_amount + ?", evt.Amount).
		Set("donation_count = donation_count + 1").
		Set("updated_at = ?", now).
		Where("id = ?", campaignID).
		Exec(ctx)

	return err
}

func (p *Pipeline) failPayment(ctx context.Context, tx bun.Tx, evt *Event) error {
	paymentID, err := uuid.Parse(evt.PaymentID)
	if err != nil {
		return ErrMalformedPayload.Clone()
	}

	res, err := tx.NewUpdate().
		Model((*donate.Payment)(nil)).
		Set("status = ?", donate.PaymentFailed).
		Set("event_id = ?", evt.EventID).
		Set("updated_at = ?", p.now()).
		Where("id = ?", paymentID).
		Where("status = ?", donate.PaymentPending).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err != nil {
		return err
	} else if affected == 0 {
		return p.requirePayment(ctx, tx, paymentID)
	}

	return nil
}

// requirePayment distinguishes an already-transitioned payment, which
// is fine, from one that does not exist, which rolls the claim back so
// the delivery surfaces as a rejection.
func (p *Pipeline) requirePayment(ctx context.Context, tx bun.Tx, paymentID uuid.UUID) error {
	exists, err := tx.NewSelect().
		Model((*donate.Payment)(nil)).
		Where("id = ?", paymentID).
		Exists(ctx)
	if err != nil {
		return err
	}

	if !exists {
		return ErrMalformedPayload.Clone().WithMetadata(map[string]any{
			"payment_id": paymentID.String(),
		})
	}

	return nil
}

// isTerminal reports whether an apply error should not be retried.
// Rejections are terminal; raw storage errors are worth another try.
func isTerminal(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}

	switch richErr.Category {
	case errors.CategoryBadInput, errors.CategoryValidation, errors.CategoryAuth:
		return true
	}

	return false
}
