package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"go.minekube.com/mcwire/pkg/util/configutil"
)

func TestDefaultConfig_Valid(t *testing.T) {
	c := DefaultConfig
	warns, errs := c.Validate()
	assert.Empty(t, errs)
	assert.Empty(t, warns)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig.Bind, cfg.Bind)
	assert.Equal(t, DefaultConfig.ReadTimeout, cfg.ReadTimeout)
	assert.Equal(t, DefaultConfig.Status.Motd, cfg.Status.Motd)
	assert.Equal(t, DefaultConfig.Quota, cfg.Quota)
	assert.Equal(t, DefaultConfig.PingCache, cfg.PingCache)
	assert.Equal(t, DefaultConfig.MaxFrameSize, cfg.MaxFrameSize)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
bind: 127.0.0.1:25577
proxyProtocol: true
readTimeout: 1m
status:
  motd:
    - "&aFirst"
    - '{"text":"Second"}'
  maxPlayers: 50
  samplePlayers: [Notch, jeb_]
quota:
  enabled: false
metrics:
  enabled: true
  bind: 127.0.0.1:9100
`), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:25577", cfg.Bind)
	assert.True(t, cfg.ProxyProtocol)
	assert.Equal(t, time.Minute, cfg.ReadTimeout.D())
	assert.Equal(t, configutil.SingleOrMulti[string]{"&aFirst", `{"text":"Second"}`}, cfg.Status.Motd)
	assert.Equal(t, 50, cfg.Status.MaxPlayers)
	assert.Equal(t, []string{"Notch", "jeb_"}, cfg.Status.SamplePlayers)
	assert.False(t, cfg.Quota.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	// untouched defaults
	assert.Equal(t, DefaultConfig.ConnectionTimeout, cfg.ConnectionTimeout)
	assert.Equal(t, DefaultConfig.Status.VersionName, cfg.Status.VersionName)

	_, err = NewValid(cfg)
	require.NoError(t, err)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("MCWIRE_STATUS_MAXPLAYERS", "7")
	t.Setenv("MCWIRE_BIND", "0.0.0.0:25599")
	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Status.MaxPlayers)
	assert.Equal(t, "0.0.0.0:25599", cfg.Bind)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(t.TempDir(), "missing.yml"))
	_, err := LoadConfig(v)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := DefaultConfig
	c.Bind = "no-port"
	c.MaxFrameSize = 0
	c.Status.MaxPlayers = -1
	c.Status.Protocol = -5
	c.Quota.Burst = 0
	c.Health.Enabled = true
	c.Metrics.Enabled = true
	c.Metrics.Bind = c.Health.Bind
	c.Metrics.Path = "metrics"

	_, errs := c.Validate()
	assert.Len(t, errs, 7)

	_, err := NewValid(&c)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "there are 7 config validation errors")
}

func TestValidate_Warnings(t *testing.T) {
	c := DefaultConfig
	c.ReadTimeout = 0
	c.Status.Motd = nil
	c.Status.Protocol = 123456
	c.Status.Favicon = filepath.Join(t.TempDir(), "missing.png")

	warns, errs := c.Validate()
	assert.Empty(t, errs)
	assert.Len(t, warns, 4)
}

func TestValidate_Nil(t *testing.T) {
	var c *Config
	_, errs := c.Validate()
	assert.Len(t, errs, 1)
}

func TestDefaultYAML(t *testing.T) {
	b, err := DefaultYAML()
	require.NoError(t, err)
	assert.Contains(t, string(b), "bind: 0.0.0.0:25565")
	assert.Contains(t, string(b), "readTimeout: 30s")

	var out Config
	require.NoError(t, yaml.Unmarshal(b, &out))
	assert.Equal(t, DefaultConfig.Bind, out.Bind)
	assert.Equal(t, DefaultConfig.ReadTimeout, out.ReadTimeout)
	assert.Equal(t, DefaultConfig.Status.Motd, out.Status.Motd)
	assert.Equal(t, DefaultConfig.Metrics, out.Metrics)
}
