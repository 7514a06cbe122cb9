package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const usage = `small Linux memory utilities: force a process into swap, watch
swapped processes, estimate kernel memory usage and copy text through the
terminal clipboard`

func main() {
	app := cli.NewApp()
	app.Name = "memtools"
	app.Usage = usage
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config",
			Usage:  "YAML file with default settings",
			EnvVar: "MEMTOOLS_CONFIG",
		},
	}

	app.Commands = []cli.Command{
		swapoutCommand,
		swapmonCommand,
		kernmemCommand,
		clipitCommand,
	}

	app.Before = func(ctx *cli.Context) error {
		log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
		// data goes to stdout, narration to stderr.
		log.SetOutput(os.Stderr)
		return loadDefaults(ctx.String("config"))
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
