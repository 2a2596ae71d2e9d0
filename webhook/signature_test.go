package webhook_test

import (
	"testing"

	"github.com/goliatone/go-donate/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "s3cr3t"
	testTimestamp = "1700000000"
	testPayload   = `{"eventId":"evt_1","amount":500}`
)

func TestVerifySignatureAcceptsComputedDigest(t *testing.T) {
	signature := webhook.ComputeSignature(testSecret, testTimestamp, []byte(testPayload))
	require.NotEmpty(t, signature)

	assert.True(t, webhook.VerifySignature(testSecret, testTimestamp, []byte(testPayload), signature))
}

func TestVerifySignatureIsDeterministic(t *testing.T) {
	first := webhook.ComputeSignature(testSecret, testTimestamp, []byte(testPayload))
	second := webhook.ComputeSignature(testSecret, testTimestamp, []byte(testPayload))
	assert.Equal(t, first, second)
}

func TestVerifySignatureRejectsTamperedPayload(t *testing.T) {
	signature := webhook.ComputeSignature(testSecret, testTimestamp, []byte(testPayload))

	// Flipping any single byte of the payload must break verification.
	for i := range []byte(testPayload) {
		tampered := []byte(testPayload)
		tampered[i] ^= 0x01
		assert.False(t,
			webhook.VerifySignature(testSecret, testTimestamp, tampered, signature),
			"payload tampered at byte %d still verified", i)
	}
}

func TestVerifySignatureRejectsTamperedTimestamp(t *testing.T) {
	signature := webhook.ComputeSignature(testSecret, testTimestamp, []byte(testPayload))

	assert.False(t, webhook.VerifySignature(testSecret, "1700000001", []byte(testPayload), signature))
	assert.False(t, webhook.VerifySignature(testSecret, "", []byte(testPayload), signature))
}

func TestVerifySignatureRejectsWrongSignature(t *testing.T) {
	other := webhook.ComputeSignature(testSecret, testTimestamp, []byte(`{"eventId":"evt_2","amount":500}`))

	assert.False(t, webhook.VerifySignature(testSecret, testTimestamp, []byte(testPayload), other))
	assert.False(t, webhook.VerifySignature(testSecret, testTimestamp, []byte(testPayload), "not-base64!!"))
	assert.False(t, webhook.VerifySignature(testSecret, testTimestamp, []byte(testPayload), "c2hvcnQ="))
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	signature := webhook.ComputeSignature(testSecret, testTimestamp, []byte(testPayload))

	assert.False(t, webhook.VerifySignature("wrong", testTimestamp, []byte(testPayload), signature))
}

func TestVerifySignatureNeverVerifiesWithoutSecretOrSignature(t *testing.T) {
	signature := webhook.ComputeSignature(testSecret, testTimestamp, []byte(testPayload))

	// A misconfigured secret must present exactly like a forgery.
	assert.False(t, webhook.VerifySignature("", testTimestamp, []byte(testPayload), signature))
	assert.False(t, webhook.VerifySignature(testSecret, testTimestamp, []byte(testPayload), ""))
	emptySig := webhook.ComputeSignature("", testTimestamp, []byte(testPayload))
	assert.False(t, webhook.VerifySignature("", testTimestamp, []byte(testPayload), emptySig))
}
