package webhook_test

import (
	"fmt"
	"testing"

	"github.com/goliatone/go-donate/webhook"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventBody(eventID, eventType, paymentID, campaignID string, amount int64) []byte {
	return []byte(fmt.Sprintf(
		`{"eventId":%q,"type":%q,"paymentId":%q,"campaignId":%q,"amount":%d}`,
		eventID, eventType, paymentID, campaignID, amount,
	))
}

func TestDecodeEvent(t *testing.T) {
	paymentID := uuid.New().String()
	campaignID := uuid.New().String()

	evt, err := webhook.DecodeEvent(eventBody("evt_1", webhook.EventPaymentSettled, paymentID, campaignID, 500))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", evt.EventID)
	assert.Equal(t, webhook.EventPaymentSettled, evt.Type)
	assert.Equal(t, paymentID, evt.PaymentID)
	assert.Equal(t, campaignID, evt.CampaignID)
	assert.Equal(t, int64(500), evt.Amount)
}

func TestDecodeEventRejectsBadInput(t *testing.T) {
	paymentID := uuid.New().String()
	campaignID := uuid.New().String()

	tests := []struct {
		name    string
		payload []byte
	}{
		{
			name:    "not json",
			payload: []byte("definitely not json"),
		},
		{
			name:    "missing event id",
			payload: eventBody("", webhook.EventPaymentSettled, paymentID, campaignID, 500),
		},
		{
			name:    "unknown event type",
			payload: eventBody("evt_1", "payment.exploded", paymentID, campaignID, 500),
		},
		{
			name:    "payment id is not a uuid",
			payload: eventBody("evt_1", webhook.EventPaymentSettled, "pay_123", campaignID, 500),
		},
		{
			name:    "negative amount",
			payload: eventBody("evt_1", webhook.EventPaymentSettled, paymentID, campaignID, -5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := webhook.DecodeEvent(tt.payload)
			assert.Error(t, err)
		})
	}
}
