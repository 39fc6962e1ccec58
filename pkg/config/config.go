// Package config is the configuration of the mcwire status server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"go.minekube.com/mcwire/pkg/ping"
	"go.minekube.com/mcwire/pkg/proto/codec"
	"go.minekube.com/mcwire/pkg/proto/version"
	"go.minekube.com/mcwire/pkg/util/configutil"
	"go.minekube.com/mcwire/pkg/util/favicon"
	"go.minekube.com/mcwire/pkg/util/validation"
)

// DefaultConfig is the default configuration.
var DefaultConfig = Config{
	Bind:              "0.0.0.0:25565",
	ReadTimeout:       configutil.Duration(30 * time.Second),
	ConnectionTimeout: configutil.Duration(5 * time.Second),
	MaxFrameSize:      codec.DefaultMaxFrameSize,
	Status: Status{
		Motd:        configutil.SingleOrMulti[string]{"§bA mcwire status server"},
		MaxPlayers:  1000,
		VersionName: "mcwire",
	},
	Quota: Quota{
		Enabled:    true,
		OPS:        5,
		Burst:      10,
		MaxEntries: 1000,
	},
	Health: Health{
		Bind: "0.0.0.0:9090",
	},
	Metrics: Metrics{
		Bind: "0.0.0.0:9464",
		Path: "/metrics",
	},
	PingCache: PingCache{
		TTL: configutil.Duration(10 * time.Second),
	},
}

// Config is the configuration read in from files and environment variables with Viper.
type Config struct {
	Bind          string `yaml:"bind"` // The address to listen for connections.
	Debug         bool   `yaml:"debug"`
	ProxyProtocol bool   `yaml:"proxyProtocol"` // ha-proxy compatibility

	ReadTimeout       configutil.Duration `yaml:"readTimeout"`
	ConnectionTimeout configutil.Duration `yaml:"connectionTimeout"` // Write and dial timeout
	// MaxFrameSize limits the length of received frames in bytes.
	MaxFrameSize int `yaml:"maxFrameSize"`

	Status    Status    `yaml:"status"`
	Quota     Quota     `yaml:"quota"`
	Health    Health    `yaml:"health"`
	Metrics   Metrics   `yaml:"metrics"`
	PingCache PingCache `yaml:"pingCache"`
}

type (
	// Status is the server list ping response of the server.
	Status struct {
		// Motd is legacy ('§' or '&') or json text, one is picked at random per ping.
		Motd          configutil.SingleOrMulti[string] `yaml:"motd"`
		MaxPlayers    int                              `yaml:"maxPlayers"`
		OnlinePlayers int                              `yaml:"onlinePlayers"`
		VersionName   string                           `yaml:"versionName"`
		// Protocol to announce, 0 echoes the client's protocol.
		Protocol int `yaml:"protocol"`
		// Favicon is a data uri or path of a png, jpeg or gif image.
		Favicon         string   `yaml:"favicon"`
		SamplePlayers   []string `yaml:"samplePlayers"`
		LogPingRequests bool     `yaml:"logPingRequests"`
	}
	// Quota limits new connections per second, per IP block.
	Quota struct {
		Enabled    bool    `yaml:"enabled"`    // If false, there is no such limiting.
		OPS        float32 `yaml:"ops"`        // Allowed operations/events per second, per IP block
		Burst      int     `yaml:"burst"`      // The maximum events at once, per block; the size of the token bucket
		MaxEntries int     `yaml:"maxEntries"` // Maximum number of IP blocks to keep track of in cache
	}
	// Health is the grpc health probe service for use with Kubernetes pods.
	// (https://github.com/grpc-ecosystem/grpc-health-probe)
	Health struct {
		Enabled bool   `yaml:"enabled"`
		Bind    string `yaml:"bind"`
	}
	// Metrics serves prometheus metrics over http.
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Bind    string `yaml:"bind"`
		Path    string `yaml:"path"`
	}
	// PingCache caches results of the ping command's pinger.
	PingCache struct {
		TTL configutil.Duration `yaml:"ttl"`
	}
)

// SetDefaults sets Config defaults to use with Viper.
func SetDefaults(i configutil.SetDefault) {
	c := DefaultConfig
	i.SetDefault("bind", c.Bind)
	i.SetDefault("debug", c.Debug)
	i.SetDefault("proxyProtocol", c.ProxyProtocol)
	i.SetDefault("readTimeout", c.ReadTimeout.String())
	i.SetDefault("connectionTimeout", c.ConnectionTimeout.String())
	i.SetDefault("maxFrameSize", c.MaxFrameSize)

	i.SetDefault("status.motd", []string(c.Status.Motd))
	i.SetDefault("status.maxPlayers", c.Status.MaxPlayers)
	i.SetDefault("status.onlinePlayers", c.Status.OnlinePlayers)
	i.SetDefault("status.versionName", c.Status.VersionName)
	i.SetDefault("status.protocol", c.Status.Protocol)
	i.SetDefault("status.favicon", c.Status.Favicon)
	i.SetDefault("status.samplePlayers", c.Status.SamplePlayers)
	i.SetDefault("status.logPingRequests", c.Status.LogPingRequests)

	// Default quotas should never affect legitimate operations,
	// but rate limits aggressive behaviours.
	i.SetDefault("quota.enabled", c.Quota.Enabled)
	i.SetDefault("quota.ops", c.Quota.OPS)
	i.SetDefault("quota.burst", c.Quota.Burst)
	i.SetDefault("quota.maxEntries", c.Quota.MaxEntries)

	i.SetDefault("health.enabled", c.Health.Enabled)
	i.SetDefault("health.bind", c.Health.Bind)

	i.SetDefault("metrics.enabled", c.Metrics.Enabled)
	i.SetDefault("metrics.bind", c.Metrics.Bind)
	i.SetDefault("metrics.path", c.Metrics.Path)

	i.SetDefault("pingCache.ttl", c.PingCache.TTL.String())
}

// LoadConfig reads the config file of v, if any, and returns
// the config with defaults applied. Environment variables
// prefixed MCWIRE_ override file values, e.g. MCWIRE_STATUS_MAXPLAYERS.
func LoadConfig(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("mcwire")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %q: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg := new(Config)
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
	)))
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}

// DefaultYAML returns the default config as yaml document.
func DefaultYAML() ([]byte, error) {
	return yaml.Marshal(&DefaultConfig)
}

// Validate validates the config and returns warnings and errors.
func (c *Config) Validate() (warns []error, errs []error) {
	e := func(m string, args ...any) { errs = append(errs, fmt.Errorf(m, args...)) }
	w := func(m string, args ...any) { warns = append(warns, fmt.Errorf(m, args...)) }

	if c == nil {
		e("config must not be nil")
		return
	}

	if len(c.Bind) == 0 {
		e("bind is empty")
	} else if err := validation.ValidHostPort(c.Bind); err != nil {
		e("invalid bind %q: %v", c.Bind, err)
	}

	if c.ReadTimeout < 0 {
		e("readTimeout must not be negative: %s", c.ReadTimeout)
	} else if c.ReadTimeout == 0 {
		w("readTimeout is disabled, idle connections are never closed")
	}
	if c.ConnectionTimeout < 0 {
		e("connectionTimeout must not be negative: %s", c.ConnectionTimeout)
	}
	if c.MaxFrameSize < 1 || c.MaxFrameSize > codec.DefaultMaxFrameSize {
		e("invalid maxFrameSize %d: must be 1..%d", c.MaxFrameSize, codec.DefaultMaxFrameSize)
	}

	if len(c.Status.Motd) == 0 {
		w("status.motd is empty")
	}
	for _, motd := range c.Status.Motd {
		if _, err := ping.ParseText(version.MaximumVersion.Protocol, motd); err != nil {
			e("invalid status.motd %q: %v", motd, err)
		}
	}
	if c.Status.MaxPlayers < 0 {
		e("status.maxPlayers must not be negative: %d", c.Status.MaxPlayers)
	}
	if c.Status.OnlinePlayers < 0 {
		e("status.onlinePlayers must not be negative: %d", c.Status.OnlinePlayers)
	}
	if !validation.ValidProtocol(c.Status.Protocol) {
		e("invalid status.protocol %d", c.Status.Protocol)
	} else if c.Status.Protocol != 0 && version.Protocol(c.Status.Protocol).Unknown() {
		w("status.protocol %d is not a known Minecraft version", c.Status.Protocol)
	}
	if c.Status.Favicon != "" {
		if _, err := favicon.Parse(c.Status.Favicon); err != nil {
			w("status.favicon is not used: %v", err)
		}
	}

	if c.Quota.Enabled {
		if c.Quota.OPS <= 0 {
			e("Invalid quota ops %v, use a number > 0", c.Quota.OPS)
		}
		if c.Quota.Burst < 1 {
			e("Invalid quota burst %d, use a number >= 1", c.Quota.Burst)
		}
		if c.Quota.MaxEntries < 1 {
			e("Invalid quota max entries %d, use a number >= 1", c.Quota.MaxEntries)
		}
	}

	if c.Health.Enabled {
		if err := validation.ValidHostPort(c.Health.Bind); err != nil {
			e("Invalid health probe bind address %q: %v", c.Health.Bind, err)
		}
	}
	if c.Metrics.Enabled {
		if err := validation.ValidHostPort(c.Metrics.Bind); err != nil {
			e("Invalid metrics bind address %q: %v", c.Metrics.Bind, err)
		}
		if c.Metrics.Path == "" || c.Metrics.Path[0] != '/' {
			e("Invalid metrics path %q, must start with /", c.Metrics.Path)
		}
		if c.Health.Enabled && c.Health.Bind == c.Metrics.Bind {
			e("health and metrics must not share bind address %q", c.Metrics.Bind)
		}
	}

	if c.PingCache.TTL < 0 {
		e("pingCache.ttl must not be negative: %s", c.PingCache.TTL)
	}
	return
}

// ErrInvalid is returned by NewValid if the config has validation errors.
var ErrInvalid = errors.New("invalid config")

// NewValid validates c and returns the warnings or
// an error joining ErrInvalid with all validation errors.
func NewValid(c *Config) (warns []error, err error) {
	warns, errs := c.Validate()
	if len(errs) != 0 {
		a, s := "are", "s"
		if len(errs) == 1 {
			a, s = "is", ""
		}
		return warns, fmt.Errorf("%w: there %s %d config validation error%s: %w",
			ErrInvalid, a, len(errs), s, errors.Join(errs...))
	}
	return warns, nil
}
