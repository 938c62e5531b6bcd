package router

import (
	"crypto/subtle"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"researchnett/internal/auth"
	"researchnett/internal/config"
	"researchnett/internal/errors"
	"researchnett/internal/handler"
	"researchnett/internal/logger"
	"researchnett/internal/metrics"
	"researchnett/internal/session"
)

// APIKeyHeader carries the public API key when one is configured.
const APIKeyHeader = "apikey"

// Auth endpoints allow authRate requests per second per client IP.
const (
	authRate  = rate.Limit(5)
	authBurst = 10
)

// Deps are the shared components the middleware needs.
type Deps struct {
	JWT      *auth.JWTService
	Tokens   auth.TokenStoreInterface
	Resolver *session.Resolver
	Metrics  *metrics.Metrics
}

// Handlers groups every HTTP handler.
type Handlers struct {
	Auth         *handler.AuthHandler
	Profile      *handler.ProfileHandler
	Call         *handler.CallHandler
	Notification *handler.NotificationHandler
	Ad           *handler.AdHandler
	Feedback     *handler.FeedbackHandler
	Founder      *handler.FounderHandler
	Admin        *handler.AdminHandler
	Seed         *handler.SeedHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, deps Deps, h Handlers) {
	e.IPExtractor = ipExtractor(cfg.TrustedProxies)
	e.Use(middleware.RequestID())
	e.Use(requestContext)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.LogRequest(c.Request().Context(), v.Method, v.URI, v.Status, v.Latency, v.RemoteIP)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			APIKeyHeader,
			handler.ClientIDHeader,
		},
	}))
	e.Use(deps.Metrics.Middleware())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	if cfg.PublicAPIKey != "" {
		api.Use(apiKey(cfg.PublicAPIKey))
	}

	// Public routes
	public := api.Group("/auth", middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      authRate,
			Burst:     authBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
				Error: "too many requests",
				Code:  "RATE_LIMITED",
			})
		},
	}))
	public.POST("/signup", h.Auth.SignUp)
	public.POST("/login", h.Auth.Login)
	public.POST("/callback", h.Auth.Callback)
	public.POST("/refresh", h.Auth.Refresh)
	public.POST("/password-reset", h.Auth.PasswordReset)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:    deps.JWT.Secret(),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		TokenLookup:   "header:" + echo.HeaderAuthorization + ":Bearer ",
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(auth.Claims) },
		ErrorHandler: func(c echo.Context, err error) error {
			return unauthorized("invalid or missing token")
		},
	}), identity(deps))

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.POST("/auth/password", h.Auth.UpdatePassword)
	secured.GET("/me", h.Auth.Me)

	secured.GET("/profiles/me", h.Profile.GetMine)
	secured.PUT("/profiles/me", h.Profile.SaveMine)
	secured.GET("/profiles/:user_id", h.Profile.Get)

	secured.GET("/calls", h.Call.List)
	secured.POST("/calls", h.Call.Create)
	secured.GET("/calls/:id", h.Call.Get)
	secured.PUT("/calls/:id", h.Call.Update)
	secured.DELETE("/calls/:id", h.Call.Delete)
	secured.POST("/calls/:id/interest", h.Call.Interest)
	secured.POST("/calls/:id/bookmark", h.Call.Bookmark)
	secured.GET("/history", h.Call.History)

	secured.GET("/notifications", h.Notification.List)
	secured.GET("/notifications/summary", h.Notification.Summary)
	secured.POST("/notifications/seen", h.Notification.Seen)

	secured.GET("/ads", h.Ad.List)
	secured.POST("/ads", h.Ad.Create)

	secured.POST("/feedback", h.Feedback.Submit)

	secured.POST("/founders", h.Founder.Submit)
	secured.GET("/founders/me", h.Founder.Mine)

	// Admin routes
	admin := secured.Group("/admin", requireAdmin)
	admin.GET("", h.Admin.Dashboard)
	admin.GET("/feedback", h.Feedback.List)
	admin.DELETE("/feedback/:id", h.Feedback.Delete)
	admin.GET("/founders", h.Founder.List)
	admin.POST("/founders/:id/approve", h.Founder.Approve)
	admin.POST("/founders/:id/reject", h.Founder.Reject)
	admin.DELETE("/founders/:id", h.Founder.Remove)
	admin.POST("/seed", h.Seed.Seed)
}

// ipExtractor takes the client IP from the connection. X-Forwarded-For is
// only read when the connection comes from one of the trusted proxy ranges.
func ipExtractor(trusted []string) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trusted {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// requestContext copies the request id onto the request context so that
// service logs carry it.
func requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Response().Header().Get(echo.HeaderXRequestID)
		req := c.Request()
		c.SetRequest(req.WithContext(logger.ContextWithRequestID(req.Context(), id)))
		return next(c)
	}
}

func apiKey(key string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "header:" + APIKeyHeader,
		Validator: func(got string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return unauthorized("invalid api key")
		},
	})
}

// identity turns the verified token into a session.Identity. Refresh tokens
// and blacklisted access tokens are rejected.
func identity(deps Deps) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return unauthorized("invalid token")
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.TokenType != auth.TokenTypeAccess {
				return unauthorized("invalid token")
			}

			ctx := c.Request().Context()
			revoked, err := deps.Tokens.IsAccessTokenBlacklisted(ctx, claims.ID)
			if err != nil {
				logger.Warn(ctx, "blacklist lookup failed", zap.Error(err))
			}
			if revoked {
				return unauthorized("token has been revoked")
			}

			id, err := deps.Resolver.Resolve(ctx, claims)
			if err != nil {
				logger.Warn(ctx, "resolve identity failed", zap.Error(err))
				return unauthorized("invalid token")
			}
			c.SetRequest(c.Request().WithContext(session.WithIdentity(ctx, id)))
			return next(c)
		}
	}
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := session.FromContext(c.Request().Context())
		if !ok || !id.IsAdmin {
			httpErr := errors.MapErrorToHTTP(errors.ErrForbidden)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		return next(c)
	}
}

func unauthorized(message string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
