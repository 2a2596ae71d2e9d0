package donate

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// AuthControllerRoutes holds the mount points for the auth endpoints.
type AuthControllerRoutes struct {
	Login      string
	Logout     string
	Sync       string
	GrantAdmin string
}

// AuthController exposes the session lifecycle and the admin grant over
// HTTP. Webhook ingestion is registered separately (see the webhook
// package); it never goes through these routes or the Resolver.
type AuthController struct {
	Logger       Logger
	Config       Config
	Provider     *UserProvider
	Sessions     SessionStore
	Sync         *IdentitySync
	GrantAdmin   *GrantAdminHandler
	Routes       *AuthControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if cfg != nil {
			c.Config = cfg
		}
		return c
	}
}

func WithUserProvider(provider *UserProvider) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Provider = provider
		return c
	}
}

func WithSessions(sessions SessionStore) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Sessions = sessions
		return c
	}
}

func WithIdentitySync(sync *IdentitySync) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Sync = sync
		return c
	}
}

func WithGrantAdminHandler(handler *GrantAdminHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.GrantAdmin = handler
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		Config:       DefaultConfig(),
		ErrorHandler: RespondError,
		Routes: &AuthControllerRoutes{
			Login:      "/login",
			Logout:     "/logout",
			Sync:       "/auth/sync",
			GrantAdmin: "/admin/grants",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Sessions == nil {
		panic("Missing SessionStore in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the auth endpoints on the given router.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login")
	app.Post(controller.Routes.Logout, controller.LogoutPost).
		SetName("auth.logout")
	app.Post(controller.Routes.Sync, controller.SyncPost).
		SetName("auth.sync")
	app.Post(controller.Routes.GrantAdmin, controller.GrantAdminPost).
		SetName("auth.grant-admin")

	return controller
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginPost verifies local credentials and issues a session cookie.
func (a *AuthController) LoginPost(ctx router.Context) error {
	if a.Provider == nil {
		return a.ErrorHandler(ctx, ErrBadRequest)
	}

	payload := new(LoginRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, ErrBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"validation": err.Error(),
		})
	}

	user, err := a.Provider.VerifyIdentity(ctx.Context(), payload.Identifier, payload.Password)
	if err != nil {
		logErrorDetails(a.Logger, "login failed", err)
		return a.ErrorHandler(ctx, err)
	}

	session, err := a.Sessions.Create(ctx.Context(), user.ID)
	if err != nil {
		logErrorDetails(a.Logger, "session create failed", err)
		return a.ErrorHandler(ctx, err)
	}

	SetSessionCookie(ctx, a.Config, session)

	return ctx.JSON(router.StatusOK, user.Principal())
}

// LogoutPost destroys the current session. Logging out without a session is
// not an error.
func (a *AuthController) LogoutPost(ctx router.Context) error {
	id := ctx.Cookies(a.Config.GetSessionCookieName())

	if err := a.Sessions.Delete(ctx.Context(), id); err != nil {
		logErrorDetails(a.Logger, "session delete failed", err)
		return a.ErrorHandler(ctx, err)
	}

	ClearSessionCookie(ctx, a.Config)

	return ctx.Status(router.StatusNoContent).SendString("")
}

// SyncPost exchanges an identity-provider bearer token for a local session.
func (a *AuthController) SyncPost(ctx router.Context) error {
	if a.Sync == nil {
		return a.ErrorHandler(ctx, ErrBadRequest)
	}

	raw := bearerFromHeader(ctx)

	user, session, err := a.Sync.Sync(ctx.Context(), raw)
	if err != nil {
		logErrorDetails(a.Logger, "identity sync failed", err)
		return a.ErrorHandler(ctx, err)
	}

	SetSessionCookie(ctx, a.Config, session)

	return ctx.JSON(router.StatusOK, user.Principal())
}

// GrantAdminRequest payload
type GrantAdminRequest struct {
	TargetUserID string `form:"target_user_id" json:"target_user_id"`
}

// Validate will run validation rules
func (r GrantAdminRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.TargetUserID,
			validation.Required,
			is.UUIDv4,
		),
	)
}

// GrantAdminPost elevates the target user. The requester's bearer token is
// re-verified inside the gate; the session cookie is ignored on this path.
func (a *AuthController) GrantAdminPost(ctx router.Context) error {
	if a.GrantAdmin == nil {
		return a.ErrorHandler(ctx, ErrBadRequest)
	}

	payload := new(GrantAdminRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, ErrBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"validation": err.Error(),
		})
	}

	targetID, err := uuid.Parse(payload.TargetUserID)
	if err != nil {
		return a.ErrorHandler(ctx, ErrBadRequest)
	}

	msg := GrantAdminMessage{
		RequesterToken: bearerFromHeader(ctx),
		TargetUserID:   targetID,
	}

	if err := a.GrantAdmin.Execute(ctx.Context(), msg); err != nil {
		logErrorDetails(a.Logger, "grant admin failed", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"status":         "granted",
		"target_user_id": targetID.String(),
	})
}
