package webserver

import (
	"encoding/gob"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/talkincode/farmstock/config"
	"github.com/talkincode/farmstock/internal/app"
	"github.com/talkincode/farmstock/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	OperatorContextKey = "operator"

	sessionUserKey  = "username"
	sessionFlashKey = "_flashes"
)

// Flash levels
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notification shown on the next page the operator loads
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func init() {
	gob.Register([]Flash{})
}

// OperatorClaims are carried in bearer tokens issued at login
type OperatorClaims struct {
	Username string `json:"username"`
	Level    string `json:"level"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret      []byte
	sessionName string
	expire      time.Duration
}

func NewAuthenticator(cfg config.WebConfig) *Authenticator {
	expire := time.Duration(cfg.TokenExpire) * time.Hour
	if expire <= 0 {
		expire = 12 * time.Hour
	}
	return &Authenticator{
		secret:      []byte(cfg.Secret),
		sessionName: cfg.SessionName,
		expire:      expire,
	}
}

// IssueToken signs an HS256 token for the operator
func (a *Authenticator) IssueToken(opr *domain.SysOpr) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(a.expire)
	claims := OperatorClaims{
		Username: opr.Username,
		Level:    opr.Level,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   opr.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "farmstock",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return token, expiresAt, nil
}

func (a *Authenticator) ParseToken(token string) (*OperatorClaims, error) {
	claims := &OperatorClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireOperator admits requests carrying a valid bearer token or a logged-in session
// whose operator still exists and is enabled.
func (a *Authenticator) RequireOperator(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var username string
		if auth := c.Request().Header.Get(echo.HeaderAuthorization); auth != "" {
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer"))
			claims, err := a.ParseToken(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token").SetInternal(err)
			}
			username = claims.Username
		} else {
			username = a.SessionOperator(c)
		}
		if username == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Login required")
		}

		if err := a.checkOperator(c, username); err != nil {
			return err
		}
		c.Set(OperatorContextKey, username)
		return next(c)
	}
}

// checkOperator reloads the operator so that disabling or removing an account
// takes effect on the next request.
func (a *Authenticator) checkOperator(c echo.Context, username string) error {
	appCtx, ok := c.Get(AppContextKey).(app.AppContext)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Application context unavailable")
	}

	var opr domain.SysOpr
	err := appCtx.DB().WithContext(c.Request().Context()).
		Where("username = ?", username).First(&opr).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusUnauthorized, "Operator no longer exists")
	case err != nil:
		zap.L().Error("query operator failed",
			zap.String("namespace", "webserver"),
			zap.String("username", username),
			zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify operator")
	case opr.Status != domain.ENABLED:
		return echo.NewHTTPError(http.StatusForbidden, "Operator account is disabled")
	}
	return nil
}

func (a *Authenticator) session(c echo.Context) (*sessions.Session, error) {
	return session.Get(a.sessionName, c)
}

// SessionOperator returns the username stored in the session cookie, if any
func (a *Authenticator) SessionOperator(c echo.Context) string {
	sess, err := a.session(c)
	if err != nil {
		return ""
	}
	username, _ := sess.Values[sessionUserKey].(string)
	return username
}

// Login records the operator in the session cookie
func (a *Authenticator) Login(c echo.Context, username string) error {
	sess, err := a.session(c)
	if err != nil {
		return err
	}
	sess.Values[sessionUserKey] = username
	return sess.Save(c.Request(), c.Response())
}

// Logout expires the session cookie
func (a *Authenticator) Logout(c echo.Context) error {
	sess, err := a.session(c)
	if err != nil {
		return err
	}
	delete(sess.Values, sessionUserKey)
	delete(sess.Values, sessionFlashKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// AddFlash queues a notification for the next page load; failures are logged only.
func (a *Authenticator) AddFlash(c echo.Context, level, message string) {
	sess, err := a.session(c)
	if err != nil {
		zap.L().Warn("session unavailable for flash", zap.String("namespace", "webserver"), zap.Error(err))
		return
	}
	flashes, _ := sess.Values[sessionFlashKey].([]Flash)
	sess.Values[sessionFlashKey] = append(flashes, Flash{Level: level, Message: message})
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		zap.L().Warn("save flash failed", zap.String("namespace", "webserver"), zap.Error(err))
	}
}

// PopFlashes returns and clears the queued notifications
func (a *Authenticator) PopFlashes(c echo.Context) []Flash {
	sess, err := a.session(c)
	if err != nil {
		return []Flash{}
	}
	flashes, _ := sess.Values[sessionFlashKey].([]Flash)
	if len(flashes) == 0 {
		return []Flash{}
	}
	delete(sess.Values, sessionFlashKey)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		zap.L().Warn("clear flashes failed", zap.String("namespace", "webserver"), zap.Error(err))
	}
	return flashes
}

// CurrentOperator returns the username set by RequireOperator
func CurrentOperator(c echo.Context) string {
	username, _ := c.Get(OperatorContextKey).(string)
	return username
}
