package app

import (
	"errors"
	"strings"
	"time"

	"github.com/talkincode/farmstock/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	superUsername   = "admin"
	defaultPassword = "farmstock"
)

// HashPassword returns the bcrypt hash stored in sys_opr.password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plain password with a stored bcrypt hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateOperator adds an enabled operator with the given credentials.
func (a *Application) CreateOperator(username, password, level string) (*domain.SysOpr, error) {
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	opr := &domain.SysOpr{
		ID:        a.NextID(),
		Realname:  username,
		Username:  username,
		Password:  hashed,
		Level:     level,
		Status:    domain.ENABLED,
		LastLogin: time.Now(),
	}
	if err := a.gormDB.Create(opr).Error; err != nil {
		return nil, err
	}
	return opr, nil
}

// checkSuper makes sure the default super operator exists and is usable
func (a *Application) checkSuper() {
	var operator domain.SysOpr
	err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if _, err := a.CreateOperator(superUsername, defaultPassword, "super"); err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.Password) == ""
	resetLevel := !strings.EqualFold(operator.Level, "super")
	resetStatus := !strings.EqualFold(operator.Status, domain.ENABLED)

	if !resetPassword && !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		hashed, err := HashPassword(defaultPassword)
		if err != nil {
			zap.L().Error("failed to hash default password", zap.Error(err))
			return
		}
		updates["password"] = hashed
	}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = domain.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

// insecureDefaults lists the built-in credentials still in effect.
func (a *Application) insecureDefaults() []string {
	var found []string
	if a.appConfig.Web.UsesDefaultSecret() {
		found = append(found, "web.secret")
	}
	var operator domain.SysOpr
	if err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error; err == nil &&
		CheckPassword(operator.Password, defaultPassword) {
		found = append(found, "admin password")
	}
	return found
}

func (a *Application) warnInsecureDefaults() {
	for _, item := range a.insecureDefaults() {
		zap.L().Warn("default credential in use, change it before exposing the server",
			zap.String("namespace", "app"),
			zap.String("setting", item))
	}
}
