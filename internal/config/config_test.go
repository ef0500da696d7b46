package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("QAPISH_TEST_DIR", "/srv/qapish")

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "~", want: home},
		{input: "~/data/qapish.db", want: filepath.Join(home, "data/qapish.db")},
		{input: "$QAPISH_TEST_DIR/qapish.db", want: "/srv/qapish/qapish.db"},
		{input: "/abs/path", want: "/abs/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	v := viper.New()
	SetDefaults(v)

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerAddr, s.ServerAddr)
	assert.Equal(t, CatalogPersisted, s.CatalogMode)
	assert.Equal(t, DefaultRedisTTL, s.RedisTTL)
	assert.Equal(t, "info", s.LogLevel)
	assert.NotContains(t, s.DatabasePath, "$HOME")
	assert.False(t, s.TLS)
	assert.Contains(t, s.CertDir, filepath.Join(".config", "qapish", "certs"))
}

func TestLoad_PortOverride(t *testing.T) {
	t.Setenv("PORT", "9090")
	v := viper.New()
	SetDefaults(v)

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":9090", s.ServerAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "")
	v := viper.New()
	SetDefaults(v)
	v.Set("catalog.mode", "MEMORY")
	v.Set("redis.url", "redis://localhost:6379/0")
	v.Set("redis.ttl", "2m")

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, CatalogMemory, s.CatalogMode)
	assert.Equal(t, 2*time.Minute, s.RedisTTL)
}

func TestValidate(t *testing.T) {
	valid := Settings{
		DatabasePath: "/tmp/q.db",
		ServerAddr:   ":8081",
		CatalogMode:  CatalogPersisted,
		RedisTTL:     time.Second,
	}

	tests := []struct {
		mutate func(*Settings)
		name   string
	}{
		{name: "unknown mode", mutate: func(s *Settings) { s.CatalogMode = "remote" }},
		{name: "no database in persisted mode", mutate: func(s *Settings) { s.DatabasePath = "" }},
		{name: "empty address", mutate: func(s *Settings) { s.ServerAddr = "" }},
		{name: "bad redis scheme", mutate: func(s *Settings) { s.RedisURL = "http://cache" }},
		{name: "zero ttl", mutate: func(s *Settings) { s.RedisURL = "redis://cache"; s.RedisTTL = 0 }},
		{name: "tls without cert dir", mutate: func(s *Settings) { s.TLS = true }},
	}

	require.NoError(t, valid.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSetting)
		})
	}

	t.Run("memory mode needs no database", func(t *testing.T) {
		s := valid
		s.CatalogMode = CatalogMemory
		s.DatabasePath = ""
		assert.NoError(t, s.Validate())
	})
}
