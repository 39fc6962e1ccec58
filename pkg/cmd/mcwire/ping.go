package mcwire

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go.minekube.com/mcwire/pkg/client"
	"go.minekube.com/mcwire/pkg/internal/suggest"
	"go.minekube.com/mcwire/pkg/ping"
	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/version"
)

func pingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "Query the status of Minecraft servers",
		ArgsUsage: "<address> [address...]",
		Description: `Run a server list ping against one or more servers.
The port defaults to 25565.

	mcwire ping localhost play.example.com:25566
	mcwire ping --json --protocol 1.20.4 localhost`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "protocol",
				Aliases: []string{"p"},
				Usage:   "The version name or protocol number sent in the handshake",
				Value:   version.MaximumVersion.LastName(),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "Timeout of a single ping",
				Value:   5 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the raw status json",
			},
			&cli.BoolFlag{
				Name:  "no-latency",
				Usage: "Skip the ping pong exchange measuring latency",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("at least one address is required", 1)
			}
			protocol, err := parseProtocol(c.String("protocol"))
			if err != nil {
				return cli.Exit(err, 1)
			}

			pinger := client.NewPinger(&client.Dialer{
				Timeout:     c.Duration("timeout"),
				SkipLatency: c.Bool("no-latency"),
			}, time.Minute)
			defer pinger.Close()

			addrs := c.Args().Slice()
			results := make([]*client.Result, len(addrs))
			pingErrs := make([]error, len(addrs))
			var eg errgroup.Group
			for i, addr := range addrs {
				eg.Go(func() error {
					results[i], pingErrs[i] = pinger.Ping(c.Context, addr, protocol)
					return nil
				})
			}
			_ = eg.Wait()

			var failed int
			for i, addr := range addrs {
				if pingErrs[i] != nil {
					failed++
					_, _ = fmt.Fprintf(c.App.ErrWriter, "%s %s: %v\n", color.Red.Sprint("✗"), addr, pingErrs[i])
					continue
				}
				if c.Bool("json") {
					_, _ = fmt.Fprintln(c.App.Writer, results[i].Raw)
					continue
				}
				printResult(c.App.Writer, addr, results[i])
			}
			if failed != 0 {
				return cli.Exit(fmt.Sprintf("%d of %d pings failed", failed, len(addrs)), 1)
			}
			return nil
		},
	}
}

// parseProtocol parses a version name or protocol number
// and suggests similar version names on error.
func parseProtocol(s string) (proto.Protocol, error) {
	p, err := version.Parse(s)
	if err == nil {
		return p, nil
	}
	var names []string
	for _, v := range version.Versions {
		names = append(names, v.Names...)
	}
	if similar := suggest.Similar(s, names, 0.6); len(similar) != 0 {
		return 0, fmt.Errorf("%w, did you mean %s?", err, strings.Join(similar, ", "))
	}
	return 0, err
}

func printResult(w io.Writer, addr string, res *client.Result) {
	p := res.Ping
	motd, err := ping.MarshalPlain(p.Description)
	if err != nil {
		motd = ""
	}
	var players string
	if p.Players != nil {
		players = fmt.Sprintf("%d/%d", p.Players.Online, p.Players.Max)
	} else {
		players = "?/?"
	}
	latency := "-"
	if res.Latency > 0 {
		latency = res.Latency.Round(time.Millisecond).String()
	}
	_, _ = fmt.Fprintf(w, "%s %s %s %s %s\n  %s\n",
		color.Green.Sprint("✓"),
		color.Bold.Sprint(addr),
		color.Cyan.Sprintf("%s (%d)", p.Version.Name, p.Version.Protocol),
		color.Yellow.Sprint(players),
		color.Gray.Sprint(latency),
		firstLine(motd),
	)
}
