package webhook

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"

	donate "github.com/goliatone/go-donate"
)

// Delivery headers set by the payment provider.
const (
	HeaderSignature = "X-Webhook-Signature"
	HeaderTimestamp = "X-Webhook-Timestamp"
)

// DefaultRoute is where provider callbacks are mounted.
const DefaultRoute = "/webhooks/payments"

// Controller terminates provider callbacks. It deliberately skips the
// identity middleware: webhooks are server-to-server and authenticate
// by signature alone.
type Controller struct {
	Route    string
	pipeline *Pipeline
	logger   donate.Logger
}

type ControllerOption func(*Controller)

func WithControllerLogger(logger donate.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithRoute(route string) ControllerOption {
	return func(c *Controller) {
		if route != "" {
			c.Route = route
		}
	}
}

func NewController(pipeline *Pipeline, opts ...ControllerOption) *Controller {
	c := &Controller{
		Route:    DefaultRoute,
		pipeline: pipeline,
		logger:   donate.DefaultLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.pipeline == nil {
		panic("webhook controller requires a Pipeline")
	}

	return c
}

// RegisterWebhookRoutes mounts the callback endpoint on the given router.
func RegisterWebhookRoutes[T any](app router.Router[T], pipeline *Pipeline, opts ...ControllerOption) *Controller {
	controller := NewController(pipeline, opts...)

	app.Post(controller.Route, controller.IngestPost).
		SetName("webhook.ingest")

	return controller
}

// IngestPost handles one provider delivery. The body is passed through
// verbatim: re-serializing it would break signature verification.
// Rejections all present as the same generic 400 so a probing caller
// cannot tell a forged signature from a misconfigured secret.
func (c *Controller) IngestPost(ctx router.Context) error {
	delivery := Delivery{
		Payload:   ctx.Body(),
		Timestamp: ctx.Header(HeaderTimestamp),
		Signature: ctx.Header(HeaderSignature),
	}

	receipt, err := c.pipeline.Process(ctx.Context(), delivery)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Code == errors.CodeBadRequest {
			c.logger.Warn("webhook delivery rejected: %s", richErr.TextCode)
			return ctx.JSON(router.StatusBadRequest, map[string]any{
				"error": "verification failed",
			})
		}

		c.logger.Error("webhook processing failed: %s", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]any{
			"error": "processing failed, retry later",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"event_id":  receipt.EventID,
		"state":     receipt.State,
		"duplicate": receipt.Duplicate,
	})
}
