package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"memtools/proc"

	"github.com/benbjohnson/clock"
	"github.com/elastic/gosigar"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// swapSnapshot is the JSON shape of one scan.
type swapSnapshot struct {
	SwapTotalKB int64       `json:"swap_total_kb"`
	SwapFreeKB  int64       `json:"swap_free_kb"`
	Processes   []proc.Info `json:"processes"`
}

func runSwapmon(ctx *cli.Context) error {
	if ctx.Bool("json") && ctx.Bool("top") {
		return fmt.Errorf("cannot use --json and --top together")
	}

	if ctx.Bool("top") {
		delay := ctx.Float64("delay")
		if delay <= 0 {
			delay = 1.0
		}
		top := &swapTop{
			Full:  ctx.Bool("full"),
			Delay: secondsToDuration(delay),
			Count: ctx.Int("count"),
		}
		return top.run()
	}

	list, err := proc.Scan(proc.DefaultRoot)
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		total, free := systemSwapKB()
		snap := swapSnapshot{SwapTotalKB: total, SwapFreeKB: free, Processes: list}
		if snap.Processes == nil {
			snap.Processes = []proc.Info{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(snap), "encode snapshot")
	}

	renderSwapTable(os.Stdout, list, ctx.Bool("full"))
	return nil
}

// swapTop redraws the table every Delay until Count refreshes have been
// shown (Count 0 runs until interrupted). The zero value targets the real
// procfs and stdout with a real clock.
type swapTop struct {
	ProcRoot string      // defaults to proc.DefaultRoot
	Clock    clock.Clock // defaults to the wall clock
	Out      io.Writer   // defaults to os.Stdout

	Full  bool
	Delay time.Duration
	Count int
}

func (st *swapTop) run() error {
	procRoot := st.ProcRoot
	if procRoot == "" {
		procRoot = proc.DefaultRoot
	}
	clk := st.Clock
	if clk == nil {
		clk = clock.New()
	}
	out := st.Out
	if out == nil {
		out = os.Stdout
	}

	for iter := 1; ; iter++ {
		list, err := proc.Scan(procRoot)
		if err != nil {
			return err
		}
		total, free := systemSwapKB()

		// clear screen, cursor home.
		fmt.Fprint(out, "\033[H\033[J")
		fmt.Fprintf(out, "swapmon - processes with swapped pages   %s\n", clk.Now().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "System swap: used %d kB / total %d kB\n\n", total-free, total)
		renderSwapTable(out, list, st.Full)

		if st.Count > 0 && iter >= st.Count {
			return nil
		}
		clk.Sleep(st.Delay)
	}
}

func renderSwapTable(w io.Writer, list []proc.Info, full bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if full {
		fmt.Fprintln(tw, "PID\tSWAP(kB)\tRSS(kB)\tVSZ(kB)\tCMD")
		for _, p := range list {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\n", p.Pid, p.SwapKB, p.RSSKB, p.VszKB, p.Cmd)
		}
	} else {
		fmt.Fprintln(tw, "PID\tSWAP(kB)\tCMD")
		for _, p := range list {
			fmt.Fprintf(tw, "%d\t%d\t%s\n", p.Pid, p.SwapKB, p.Cmd)
		}
	}
	_ = tw.Flush()
}

func systemSwapKB() (total, free int64) {
	var swap gosigar.Swap
	if err := swap.Get(); err != nil {
		log.Warnf("read system swap stats error: %v", err)
		return 0, 0
	}
	return int64(swap.Total / 1024), int64(swap.Free / 1024)
}
