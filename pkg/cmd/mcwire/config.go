package mcwire

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"go.minekube.com/mcwire/pkg/config"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Output default configuration file",
		Description: `Output the default configuration file to stdout or a file.
You can redirect to a file or use the --write flag:

	mcwire config > config.yml
	mcwire config --write              # Writes to config.yml`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Write config to config.yml instead of stdout",
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: "The file written with --write",
				Value: defaultConfigFile,
			},
		},
		Action: func(c *cli.Context) error {
			configBytes, err := config.DefaultYAML()
			if err != nil {
				return cli.Exit(fmt.Errorf("error encoding config: %w", err), 1)
			}

			if c.Bool("write") {
				outputFile := c.String("file")
				if err = os.WriteFile(outputFile, configBytes, 0o644); err != nil {
					return cli.Exit(fmt.Errorf("error writing config to %q: %w", outputFile, err), 1)
				}
				_, _ = fmt.Fprintf(c.App.Writer, "Configuration written to %s\n", outputFile)
				return nil
			}

			if _, err = c.App.Writer.Write(configBytes); err != nil {
				return cli.Exit(fmt.Errorf("error writing config: %w", err), 1)
			}
			return nil
		},
	}
}
