package rolesync

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteReconciler exposes the reconciliation engine over HTTP routes. A
// login request runs one pass; accepted passes mint a session cookie.
type RouteReconciler struct {
	engine           Reconciler
	tokens           TokenService
	cfg              TokenConfig
	cookieDuration   time.Duration
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
	ErrorHandler     func(c router.Context, err error) error
}

func NewHTTPReconciler(engine Reconciler, tokens TokenService, cfg TokenConfig) (*RouteReconciler, error) {
	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	a := &RouteReconciler{
		engine:         engine,
		tokens:         tokens,
		cfg:            cfg,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a RouteReconciler) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// Login runs a reconciliation pass for the payload's credentials and, on
// acceptance, sets the session cookie. Rejections map to the generic login
// messages so gateway internals never reach the browser.
func (a *RouteReconciler) Login(ctx router.Context, payload LoginPayload) error {
	result, err := a.engine.Reconcile(ctx.Context(), Credentials{
		Username: payload.GetUsername(),
		Password: payload.GetPassword(),
	})

	if err != nil {
		a.Logger.Error("Login error: %s", err)
		if IsGatewayUnavailable(err) || IsGatewayProtocol(err) {
			return errors.Wrap(err, errors.CategoryAuth, MsgGatewayLoginFailed).
				WithCode(errors.CodeUnauthorized)
		}
		if IsNotAuthorized(err) {
			return errors.Wrap(err, errors.CategoryAuth, MsgInvalidLogin).
				WithCode(errors.CodeUnauthorized)
		}
		return err
	}

	if !result.Accepted() || result.User == nil {
		return ErrNotAuthorized
	}

	token, err := a.tokens.Generate(NewIdentityFromUser(result.User))
	if err != nil {
		a.Logger.Error("Login token error: %s", err)
		return err
	}

	a.setCookieToken(ctx, token, a.cookieDuration)
	return nil
}

func (a *RouteReconciler) Logout(ctx router.Context) {
	a.cookieDel(ctx, a.cfg.GetContextKey())
}

func (a *RouteReconciler) GetRedirect(ctx router.Context, def ...string) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	r := ctx.Cookies(rejectedRoute)
	if r == "" {
		return def[0]
	}
	a.cookieDel(ctx, rejectedRoute)
	return r
}

func (a *RouteReconciler) GetRedirectOrDefault(ctx router.Context) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	refererHeader := string(ctx.Referer())

	r := ctx.Cookies(rejectedRoute, refererHeader)
	if r == "" {
		r = a.cfg.GetRejectedRouteDefault()
	}
	a.cookieDel(ctx, rejectedRoute)
	return r
}

func (a *RouteReconciler) SetRedirect(ctx router.Context) {
	rejectedRoute := a.cfg.GetRejectedRouteKey()

	a.Logger.Info("Setting redirect cookie key=%s path=%s", rejectedRoute, ctx.OriginalURL())

	ctx.Cookie(&router.Cookie{
		Name:     rejectedRoute,
		Value:    ctx.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteReconciler) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteReconciler) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteReconciler) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error, redirecting to login: error=%s text_code=%s path=%s",
		richErr.Message,
		richErr.TextCode,
		c.OriginalURL(),
	)

	a.SetRedirect(c)

	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect("/login", statusCode)
}

func (a *RouteReconciler) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler: error=%s category=%s details=%s",
		richErr.Message,
		richErr.Category,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		return c.Status(richErr.Code).Render("errors/500", router.ViewContext{
			"error": richErr,
		})
	}
}
