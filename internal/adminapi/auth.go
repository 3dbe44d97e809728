package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/farmstock/internal/app"
	"github.com/talkincode/farmstock/internal/domain"
	"github.com/talkincode/farmstock/internal/webserver"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginPayload struct {
	Username string `json:"username" form:"username" validate:"required,max=64"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
}

func registerAuthRoutes() {
	webserver.PublicPOST("/login", login)
	webserver.PublicPOST("/logout", logout)
	webserver.ApiGET("/messages", popMessages)
}

// login checks the operator credentials, opens a session and returns a bearer token for API clients
func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login parameters", nil)
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var opr domain.SysOpr
	err := GetDB(c).Where("username = ?", payload.Username).First(&opr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	} else if err != nil {
		zap.L().Error("query operator failed", zap.String("namespace", "adminapi"), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operator", nil)
	}
	if !app.CheckPassword(opr.Password, payload.Password) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}
	if opr.Status != domain.ENABLED {
		return fail(c, http.StatusForbidden, "OPERATOR_DISABLED", "Operator account is disabled", nil)
	}

	auth := webserver.Server().Auth()
	token, expiresAt, err := auth.IssueToken(&opr)
	if err != nil {
		zap.L().Error("issue token failed", zap.String("namespace", "adminapi"), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", nil)
	}
	if err := auth.Login(c, opr.Username); err != nil {
		zap.L().Error("open session failed", zap.String("namespace", "adminapi"), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to open session", nil)
	}

	if err := GetDB(c).Model(&domain.SysOpr{}).Where("id = ?", opr.ID).Update("last_login", time.Now()).Error; err != nil {
		zap.L().Warn("update last login failed", zap.String("namespace", "adminapi"), zap.Error(err))
	}

	return ok(c, map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt,
		"username":   opr.Username,
		"level":      opr.Level,
	})
}

func logout(c echo.Context) error {
	if err := webserver.Server().Auth().Logout(c); err != nil {
		zap.L().Error("close session failed", zap.String("namespace", "adminapi"), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to close session", nil)
	}
	return ok(c, nil)
}

// popMessages returns the queued success notifications and clears them
func popMessages(c echo.Context) error {
	return ok(c, webserver.Server().Auth().PopFlashes(c))
}
