package webhook

import "github.com/goliatone/go-errors"

const (
	TextCodeInvalidSignature = "INVALID_SIGNATURE"
	TextCodeStaleDelivery    = "STALE_DELIVERY"
	TextCodeMalformedPayload = "MALFORMED_PAYLOAD"
	TextCodeUnknownEventType = "UNKNOWN_EVENT_TYPE"
	TextCodeStorageFailure   = "STORAGE_FAILURE"
)

var (
	// ErrInvalidSignature covers a missing, malformed, or mismatched
	// delivery signature. Callers respond with a generic 400 and never
	// echo which check failed.
	ErrInvalidSignature = errors.New("webhook signature verification failed", errors.CategoryAuth).
				WithTextCode(TextCodeInvalidSignature).
				WithCode(errors.CodeBadRequest)

	ErrStaleDelivery = errors.New("webhook delivery timestamp outside tolerance", errors.CategoryAuth).
				WithTextCode(TextCodeStaleDelivery).
				WithCode(errors.CodeBadRequest)

	ErrMalformedPayload = errors.New("webhook payload could not be decoded", errors.CategoryBadInput).
				WithTextCode(TextCodeMalformedPayload).
				WithCode(errors.CodeBadRequest)

	ErrUnknownEventType = errors.New("webhook event type is not handled", errors.CategoryBadInput).
				WithTextCode(TextCodeUnknownEventType).
				WithCode(errors.CodeBadRequest)

	ErrStorageFailure = errors.New("webhook event could not be persisted", errors.CategoryOperation).
				WithTextCode(TextCodeStorageFailure).
				WithCode(errors.CodeInternal)
)
