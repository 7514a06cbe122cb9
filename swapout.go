package main

import (
	"time"

	"memtools/swapout"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func forceSwapout(ctx *cli.Context, pid int) error {
	if ctx.Bool("quiet") {
		log.SetLevel(log.WarnLevel)
	}

	cfg := swapout.Config{
		Pid:         pid,
		LimitMB:     flagInt64(ctx, "limit-mb", defaults.Swapout.LimitMB),
		TargetRSSKB: flagInt64(ctx, "target-rss-kb", defaults.Swapout.TargetRSSKB),
		Interval:    secondsToDuration(flagFloat64(ctx, "interval", defaults.Swapout.Interval)),
		MaxIter:     flagInt(ctx, "max-iter", defaults.Swapout.MaxIter),
	}

	log.Infof("swapout: targeting PID %d", pid)
	log.Infof("limit_mb=%d, target_rss_kb=%d, interval=%s, max_iter=%d",
		cfg.LimitMB, cfg.TargetRSSKB, cfg.Interval, cfg.MaxIter)

	sw := &swapout.Swapper{}
	outcome, err := sw.Run(cfg)
	if err != nil {
		return err
	}

	log.Infof("swapout complete: %s", outcome)
	return nil
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
