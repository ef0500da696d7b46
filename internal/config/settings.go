package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CatalogMode selects where the catalog is read from.
type CatalogMode string

// Catalog modes.
const (
	CatalogPersisted CatalogMode = "persisted"
	CatalogMemory    CatalogMode = "memory"
)

// ErrInvalidSetting is returned when a configured value cannot be used.
var ErrInvalidSetting = errors.New("invalid setting")

// Defaults applied before the config file and environment are read.
const (
	DefaultDatabasePath = "$HOME/.local/share/qapish/qapish.db"
	DefaultServerAddr   = ":8081"
	DefaultStaticDir    = "./web/dist"
	DefaultCertDir      = "$HOME/.config/qapish/certs"
	DefaultRedisTTL     = 30 * time.Second
)

// Settings holds the typed configuration of the service.
type Settings struct {
	DatabasePath string
	ServerAddr   string
	StaticDir    string
	CertDir      string
	CatalogMode  CatalogMode
	RedisURL     string
	LogLevel     string
	LogFormat    string
	RedisTTL     time.Duration
	TLS          bool
}

// SetDefaults registers default values and environment bindings on v.
// PORT is honoured for compatibility with container platforms.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("server.static_dir", DefaultStaticDir)
	v.SetDefault("server.tls", false)
	v.SetDefault("server.cert_dir", DefaultCertDir)
	v.SetDefault("catalog.mode", string(CatalogPersisted))
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", DefaultRedisTTL)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("server.port", "PORT")
}

// Load reads typed settings from v and validates them.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		ServerAddr:   v.GetString("server.addr"),
		StaticDir:    ExpandPath(v.GetString("server.static_dir")),
		TLS:          v.GetBool("server.tls"),
		CertDir:      ExpandPath(v.GetString("server.cert_dir")),
		CatalogMode:  CatalogMode(strings.ToLower(v.GetString("catalog.mode"))),
		RedisURL:     v.GetString("redis.url"),
		RedisTTL:     v.GetDuration("redis.ttl"),
		LogLevel:     v.GetString("logging.level"),
		LogFormat:    v.GetString("logging.format"),
	}

	if port := strings.TrimSpace(v.GetString("server.port")); port != "" {
		s.ServerAddr = ":" + port
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks settings that would otherwise fail late at runtime.
func (s *Settings) Validate() error {
	switch s.CatalogMode {
	case CatalogPersisted:
		if s.DatabasePath == "" {
			return fmt.Errorf("%w: database.path is required in persisted mode", ErrInvalidSetting)
		}
	case CatalogMemory:
	default:
		return fmt.Errorf("%w: catalog.mode %q (want persisted or memory)", ErrInvalidSetting, s.CatalogMode)
	}

	if s.ServerAddr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidSetting)
	}

	if s.TLS && s.CertDir == "" {
		return fmt.Errorf("%w: server.cert_dir is required with server.tls", ErrInvalidSetting)
	}

	if s.RedisURL != "" {
		u, err := url.Parse(s.RedisURL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			return fmt.Errorf("%w: redis.url must be a redis:// or rediss:// URL", ErrInvalidSetting)
		}
		if s.RedisTTL <= 0 {
			return fmt.Errorf("%w: redis.ttl must be positive", ErrInvalidSetting)
		}
	}

	return nil
}
