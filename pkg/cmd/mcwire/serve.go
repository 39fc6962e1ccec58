package mcwire

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robinbraemer/event"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"

	"go.minekube.com/mcwire/pkg/config"
	"go.minekube.com/mcwire/pkg/server"
	"go.minekube.com/mcwire/pkg/telemetry"
	"go.minekube.com/mcwire/pkg/util/interrupt"
)

const defaultConfigFile = "config.yml"

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the status server",
		Description: `Run a status server answering server list pings
with the status configured in the config file.

	mcwire serve --config config.yml --bind 0.0.0.0:25565`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage: `Config file path (default "config.yml" if present).
Supports: yaml/yml, json, toml, hcl, ini, prop/properties/props, env/dotenv`,
				EnvVars: []string{"MCWIRE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "bind",
				Aliases: []string{"b"},
				Usage:   "The address to listen for connections, overrides the config",
			},
		},
		Action: func(c *cli.Context) error {
			log := logr.FromContextOrDiscard(c.Context)

			cfg, err := loadConfig(c)
			if err != nil {
				return cli.Exit(err, 1)
			}
			warns, err := config.NewValid(cfg)
			for _, w := range warns {
				log.Info("config warning", "warning", w.Error())
			}
			if err != nil {
				return cli.Exit(err, 1)
			}

			var metrics *telemetry.Metrics
			if cfg.Metrics.Enabled {
				metrics = telemetry.NewMetrics(prometheus.DefaultRegisterer)
			}

			ctx, cancel := interrupt.TerminationContext(c.Context)
			defer cancel()

			s, err := server.New(ctx, server.Options{
				Config:   cfg,
				EventMgr: event.New(log.WithName("event")),
				Metrics:  metrics,
			})
			if err != nil {
				return cli.Exit(err, 1)
			}
			if err = s.Start(ctx); err != nil {
				return cli.Exit(fmt.Errorf("error running server: %w", err), 1)
			}
			log.Info("server stopped")
			return nil
		},
	}
}

// loadConfig loads the config file from the --config flag
// or config.yml if present and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	log := logr.FromContextOrDiscard(c.Context)
	v := viper.New()
	if file := c.String("config"); file != "" {
		v.SetConfigFile(file)
	} else if _, err := os.Stat(defaultConfigFile); err == nil {
		v.SetConfigFile(defaultConfigFile)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading %s: %w", defaultConfigFile, err)
	}

	cfg, err := config.LoadConfig(v)
	if err != nil {
		return nil, err
	}
	if f := v.ConfigFileUsed(); f != "" {
		log.Info("using config file", "config", f)
	}
	if c.IsSet("bind") {
		cfg.Bind = c.String("bind")
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	return cfg, nil
}
