package webhook

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// Event types accepted by the pipeline.
const (
	EventPaymentSettled = "payment.settled"
	EventPaymentFailed  = "payment.failed"
)

// Event is the decoded body of a provider callback. It exists only for
// the duration of processing a single delivery.
type Event struct {
	EventID    string `json:"eventId"`
	Type       string `json:"type"`
	PaymentID  string `json:"paymentId"`
	CampaignID string `json:"campaignId"`
	Amount     int64  `json:"amount"`
}

func (e Event) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.EventID, validation.Required),
		validation.Field(&e.Type, validation.Required, validation.In(
			EventPaymentSettled,
			EventPaymentFailed,
		)),
		validation.Field(&e.PaymentID, validation.Required, is.UUIDv4),
		validation.Field(&e.CampaignID, validation.Required, is.UUIDv4),
		validation.Field(&e.Amount, validation.Min(int64(0))),
	)
}

// DecodeEvent parses and validates the raw delivery body. The raw bytes
// are what the signature was computed over, decoding happens only after
// verification.
func DecodeEvent(payload []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, ErrMalformedPayload.Clone().WithMetadata(map[string]any{
			"parse_error": err.Error(),
		})
	}

	if err := evt.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "webhook payload failed validation").
			WithTextCode(TextCodeMalformedPayload).
			WithCode(errors.CodeBadRequest)
	}

	return &evt, nil
}
