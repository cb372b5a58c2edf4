// Package fakeapi is an in-memory implementation of the Dokan Load Remote
// API. It backs the end-to-end tests and the fakeapi binary used for local
// development of the storefront client.
package fakeapi

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dokanload/internal/client/models"
	"github.com/dmitrijs2005/dokanload/internal/logging"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Options struct {
	// Prefix is prepended to every route. Default "/api".
	Prefix   string
	Secret   []byte
	TokenTTL time.Duration
	Logger   logging.Logger
}

type user struct {
	ID           string
	Email        string
	Username     string
	Role         string
	Bio          string
	AvatarURL    string
	PasswordHash []byte
}

type asset struct {
	models.Asset
	payload []byte
}

type Server struct {
	prefix string
	secret []byte
	ttl    time.Duration
	log    logging.Logger
	echo   *echo.Echo

	mu         sync.RWMutex
	users      map[string]*user // by email
	assets     []*asset
	nextID     int64
	categories []models.Category
	purchases  map[string]map[int64]bool
	revoked    map[string]bool
}

func New(opts Options) *Server {
	if opts.Prefix == "" {
		opts.Prefix = "/api"
	}
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("dokan-dev-secret")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	s := &Server{
		prefix:    "/" + strings.Trim(opts.Prefix, "/"),
		secret:    opts.Secret,
		ttl:       opts.TokenTTL,
		log:       opts.Logger.With("component", "fakeapi"),
		users:     map[string]*user{},
		nextID:    1,
		purchases: map[string]map[int64]bool{},
		revoked:   map[string]bool{},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(s.requestLogger)
	s.routes(e)
	s.echo = e
	return s
}

func (s *Server) routes(e *echo.Echo) {
	api := e.Group(s.prefix)

	api.POST("/auth/login", s.login)
	api.POST("/auth/register", s.register)

	api.GET("/Asset", s.listAssets)
	api.GET("/Asset/:id", s.getAsset)
	api.GET("/Category", s.listCategories)

	api.GET("/User/profile", s.getProfile, s.requireAuth)
	api.PUT("/User/profile", s.updateProfile, s.requireAuth)
	api.POST("/Asset/upload", s.uploadAsset, s.requireAuth)
	api.POST("/Asset/:id/purchase", s.purchase, s.requireAuth)
	api.GET("/Asset/:id/download", s.download, s.requireAuth)
}

func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Start(addr string) error { return s.echo.Start(addr) }

func (s *Server) Shutdown(ctx context.Context) error { return s.echo.Shutdown(ctx) }

// Revoke makes every later call carrying token fail with 401.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		ctx := c.Request().Context()
		status := c.Response().Status
		args := []any{
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		}
		switch {
		case status >= 500:
			s.log.Error(ctx, "request completed", append(args, "error", err)...)
		case status >= 400:
			s.log.Warn(ctx, "request completed", args...)
		default:
			s.log.Debug(ctx, "request completed", args...)
		}
		return nil
	}
}

const userKey = "user"

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		if !ok || raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := ParseToken(raw, s.secret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		s.mu.RLock()
		revoked := s.revoked[raw]
		u := s.users[claims.Email]
		s.mu.RUnlock()
		if revoked || u == nil || u.ID != claims.UserID {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(userKey, u)
		return next(c)
	}
}

func currentUser(c echo.Context) *user {
	u, _ := c.Get(userKey).(*user)
	return u
}
