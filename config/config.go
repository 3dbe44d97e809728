package config

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// DBConfig Database config
type DBConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// SysConfig System config
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig Web admin api config
type WebConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Secret      string `yaml:"secret"`
	SessionName string `yaml:"session_name"`
	TokenExpire int    `yaml:"token_expire"` // hours
}

// LogConfig Log config
type LogConfig struct {
	Mode       string `yaml:"mode"` // development or production
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system"`
	Web      WebConfig `yaml:"web"`
	Database DBConfig  `yaml:"database"`
	Logger   LogConfig `yaml:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

// InitDirs creates the working directories used for logs and the sqlite database.
func (c *AppConfig) InitDirs() error {
	for _, dir := range []string{c.GetLogDir(), c.GetDataDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create dir %s", dir)
		}
	}
	return nil
}

// Addr returns the listen address of the web server.
func (c WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN builds the connection string for the configured database type.
// For sqlite, Name is a file path relative to dataDir unless it is absolute or ":memory:".
func (d DBConfig) DSN(dataDir string) string {
	switch strings.ToLower(d.Type) {
	case "sqlite":
		if d.Name == ":memory:" || path.IsAbs(d.Name) {
			return d.Name
		}
		return path.Join(dataDir, d.Name)
	default:
		sslmode := d.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Passwd, d.Name, sslmode)
	}
}

// DefaultWebSecret signs sessions and tokens until web.secret is configured.
const DefaultWebSecret = "9b6de5cc-farmstock-0c1d-secret"

// UsesDefaultSecret reports whether sessions and tokens are signed with the built-in secret.
func (c WebConfig) UsesDefaultSecret() bool {
	return c.Secret == "" || c.Secret == DefaultWebSecret
}

func NewDefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "FarmStock",
			Location: "Local",
			Workdir:  "/var/farmstock",
			Debug:    true,
		},
		Web: WebConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			Secret:      DefaultWebSecret,
			SessionName: "farmstock_session",
			TokenExpire: 12,
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "farmstock",
			User:     "postgres",
			Passwd:   "myroot",
			MaxConn:  100,
			IdleConn: 10,
			Debug:    false,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/farmstock/logs/farmstock.log",
		},
	}
}

// LoadConfig reads the yaml file at cfile when it exists, falls back to the
// built-in defaults otherwise, and then applies FARMSTOCK_* environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := NewDefaultAppConfig()
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", cfile)
			}
		case os.IsNotExist(err):
		default:
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
	}

	setEnvValue("FARMSTOCK_SYSTEM_WORKER_DIR", &cfg.System.Workdir)
	setEnvValue("FARMSTOCK_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("FARMSTOCK_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("FARMSTOCK_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("FARMSTOCK_WEB_PORT", &cfg.Web.Port)
	setEnvValue("FARMSTOCK_WEB_SECRET", &cfg.Web.Secret)
	setEnvIntValue("FARMSTOCK_WEB_TOKEN_EXPIRE", &cfg.Web.TokenExpire)

	setEnvValue("FARMSTOCK_DB_TYPE", &cfg.Database.Type)
	setEnvValue("FARMSTOCK_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("FARMSTOCK_DB_PORT", &cfg.Database.Port)
	setEnvValue("FARMSTOCK_DB_NAME", &cfg.Database.Name)
	setEnvValue("FARMSTOCK_DB_USER", &cfg.Database.User)
	setEnvValue("FARMSTOCK_DB_PWD", &cfg.Database.Passwd)
	setEnvValue("FARMSTOCK_DB_SSLMODE", &cfg.Database.SSLMode)
	setEnvBoolValue("FARMSTOCK_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("FARMSTOCK_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("FARMSTOCK_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("FARMSTOCK_LOGGER_FILENAME", &cfg.Logger.Filename)

	return cfg, nil
}

func setEnvValue(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := os.Getenv(name); v != "" {
		if b, err := cast.ToBoolE(v); err == nil {
			*val = b
		}
	}
}

func setEnvIntValue(name string, val *int) {
	if v := os.Getenv(name); v != "" {
		if i, err := cast.ToIntE(v); err == nil {
			*val = i
		}
	}
}
