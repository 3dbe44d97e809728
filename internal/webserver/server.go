package webserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/talkincode/farmstock/internal/app"
	"github.com/talkincode/farmstock/internal/metrics"
	"go.uber.org/zap"
)

const (
	ApiPrefix     = "/api/v1"
	AppContextKey = "appCtx"
)

var server *AdminServer

type AdminServer struct {
	root   *echo.Echo
	api    *echo.Group
	appCtx app.AppContext
	auth   *Authenticator
}

// Init builds the admin server for appCtx and makes it the target of the Api* registration helpers.
func Init(appCtx app.AppContext) *AdminServer {
	server = NewAdminServer(appCtx)
	return server
}

// Server returns the server created by Init
func Server() *AdminServer {
	return server
}

func NewAdminServer(appCtx app.AppContext) *AdminServer {
	cfg := appCtx.Config()
	s := &AdminServer{
		root:   echo.New(),
		appCtx: appCtx,
		auth:   NewAuthenticator(cfg.Web),
	}
	s.root.HideBanner = true
	s.root.HidePort = true
	s.root.Debug = cfg.System.Debug
	s.root.JSONSerializer = &JSONSerializer{}
	s.root.Validator = NewValidator()
	s.root.HTTPErrorHandler = s.httpErrorHandler
	if cfg.System.Debug {
		s.root.Logger.SetLevel(log.DEBUG)
	} else {
		s.root.Logger.SetLevel(log.INFO)
	}

	store := sessions.NewCookieStore([]byte(cfg.Web.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Web.TokenExpire * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s.root.Use(middleware.Recover())
	s.root.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	s.root.Use(requestLogger())
	s.root.Use(metricsMiddleware)
	s.root.Use(session.Middleware(store))
	s.root.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, s.appCtx)
			return next(c)
		}
	})

	s.root.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok"})
	})
	s.root.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	s.api = s.root.Group(ApiPrefix)
	return s
}

// Echo exposes the underlying echo instance (used by tests with httptest)
func (s *AdminServer) Echo() *echo.Echo {
	return s.root
}

func (s *AdminServer) Auth() *Authenticator {
	return s.auth
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *AdminServer) Start(ctx context.Context) error {
	addr := s.appCtx.Config().Web.Addr()
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("admin server listening", zap.String("namespace", "webserver"), zap.String("addr", addr))
		errCh <- s.root.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		zap.L().Info("admin server shutting down", zap.String("namespace", "webserver"))
		return s.root.Shutdown(shutdownCtx)
	}
}

func (s *AdminServer) protect(m []echo.MiddlewareFunc) []echo.MiddlewareFunc {
	return append([]echo.MiddlewareFunc{s.auth.RequireOperator}, m...)
}

// ApiGET registers an authenticated GET route under /api/v1
func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, server.protect(m)...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, server.protect(m)...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, server.protect(m)...)
}

// PublicPOST registers a POST route under /api/v1 that needs no operator
func PublicPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func (s *AdminServer) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	} else {
		zap.L().Error("unhandled request error",
			zap.String("namespace", "webserver"),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err))
	}

	body := map[string]interface{}{
		"code":  code,
		"error": errorCode(code),
		"msg":   msg,
	}
	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, body)
	}
	if werr != nil {
		zap.L().Error("write error response", zap.Error(werr))
	}
}

// errorCode turns an HTTP status into the upper snake case code used in the envelope
func errorCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_" + strconv.Itoa(status)
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}
