// Package mcwire is the command line interface of mcwire.
package mcwire

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.minekube.com/mcwire/pkg/internal/suggest"
	"go.minekube.com/mcwire/pkg/version"
)

// Execute runs App() and calls os.Exit when finished.
func Execute() {
	if err := App().Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// App returns the mcwire cli application.
func App() *cli.App {
	app := cli.NewApp()
	app.Name = "mcwire"
	app.Usage = "Minecraft handshake and server list ping toolkit."
	app.Description = `A status server answering Minecraft server list pings
and a client querying the status of any Minecraft server.

Visit the documentation with "mcwire help <command>".`
	app.Version = version.String()
	app.EnableBashCompletion = true

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Enable debug mode and highest log verbosity",
			EnvVars: []string{"MCWIRE_DEBUG"},
		},
		&cli.IntFlag{
			Name:    "verbosity",
			Aliases: []string{"v"},
			Usage:   "The higher the verbosity the more logs are shown",
			EnvVars: []string{"MCWIRE_VERBOSITY"},
		},
	}
	app.Before = func(c *cli.Context) error {
		log, err := newLogger(c.Bool("debug"), c.Int("verbosity"))
		if err != nil {
			return cli.Exit(fmt.Errorf("error creating logger: %w", err), 1)
		}
		c.Context = logr.NewContext(c.Context, log)
		return nil
	}
	app.CommandNotFound = func(c *cli.Context, command string) {
		msg := fmt.Sprintf("unknown command %q", command)
		var names []string
		for _, cmd := range c.App.Commands {
			names = append(names, cmd.Names()...)
		}
		if similar := suggest.Similar(command, names, 0.5); len(similar) != 0 {
			msg += fmt.Sprintf(", did you mean %q?", similar[0])
		}
		_, _ = fmt.Fprintln(c.App.ErrWriter, msg)
	}
	app.Commands = []*cli.Command{
		serveCommand(),
		pingCommand(),
		configCommand(),
	}
	return app
}

// newLogger returns a zap backed logr.Logger.
func newLogger(debug bool, verbosity int) (l logr.Logger, err error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// zapr maps logr V(n) to zap level -n
	if debug {
		verbosity = max(verbosity, 2)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i != -1 {
		return s[:i]
	}
	return s
}
