package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli"
)

var swapoutCommand = cli.Command{
	Name:      "swapout",
	Usage:     "force a process's memory into swap by temporarily capping it in a cgroup",
	ArgsUsage: "PID",
	Flags: []cli.Flag{
		cli.Int64Flag{
			Name:  "limit-mb, m",
			Value: 8,
			Usage: "memory limit during swapout, in MB",
		},
		cli.Int64Flag{
			Name:  "target-rss-kb, r",
			Value: 16384,
			Usage: "target RSS to reach before stopping, in kB",
		},
		cli.Float64Flag{
			Name:  "interval, i",
			Value: 1.0,
			Usage: "poll interval in seconds",
		},
		cli.IntFlag{
			Name:  "max-iter, n",
			Value: 60,
			Usage: "maximum iterations before giving up",
		},
		cli.BoolFlag{
			Name:  "quiet, q",
			Usage: "less verbose output",
		},
	},
	Action: func(ctx *cli.Context) error {
		if len(ctx.Args()) < 1 {
			return fmt.Errorf("missing PID argument")
		}
		pid, err := strconv.Atoi(ctx.Args().First())
		if err != nil || pid <= 0 {
			return fmt.Errorf("invalid PID: %s", ctx.Args().First())
		}
		return forceSwapout(ctx, pid)
	},
}

var swapmonCommand = cli.Command{
	Name:  "swapmon",
	Usage: "show processes that have pages in swap",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "full, f",
			Usage: "extended table with RSS and VSZ columns",
		},
		cli.BoolFlag{
			Name:  "json, j",
			Usage: "JSON snapshot",
		},
		cli.BoolFlag{
			Name:  "top, t",
			Usage: "continuously refreshing top-like view",
		},
		cli.Float64Flag{
			Name:  "delay, d",
			Value: 2.0,
			Usage: "refresh interval for top mode, in seconds",
		},
		cli.IntFlag{
			Name:  "count, n",
			Usage: "number of top-mode refreshes, 0 means run until interrupted",
		},
	},
	Action: runSwapmon,
}

var kernmemCommand = cli.Command{
	Name:  "kernmem",
	Usage: "estimate kernel memory usage from System.map, meminfo and modules",
	Action: func(*cli.Context) error {
		return runKernmem()
	},
}

var clipitCommand = cli.Command{
	Name:      "clipit",
	Usage:     "copy text to the terminal clipboard using OSC52; reads FILE or stdin",
	ArgsUsage: "[FILE]",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "no-term, n",
			Usage: "do not send the OSC52 terminator (rarely needed)",
		},
	},
	Action: runClipit,
}
