package main

import (
	"io"
	"os"

	"memtools/clip"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

func runClipit(ctx *cli.Context) error {
	var in io.Reader = os.Stdin
	if len(ctx.Args()) > 0 {
		f, err := os.Open(ctx.Args().First())
		if err != nil {
			return errors.Wrapf(err, "open %s", ctx.Args().First())
		}
		defer f.Close()
		in = f
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		log.Warnf("stdout is not a terminal, the clipboard escape will likely be ignored")
	}

	return clip.Copy(os.Stdout, in, !ctx.Bool("no-term"))
}
