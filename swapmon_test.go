package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"memtools/proc"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

var sampleInfos = []proc.Info{
	{Pid: 100, Name: "hog", SwapKB: 900, RSSKB: 50000, VszKB: 90000, Cmd: "hog serve"},
	{Pid: 200, Name: "idle", SwapKB: 10, RSSKB: 100, VszKB: 400, Cmd: "idle"},
}

func TestRenderSwapTable(t *testing.T) {
	var out bytes.Buffer
	renderSwapTable(&out, sampleInfos, false)

	got := out.String()
	require.Contains(t, got, "PID")
	require.Contains(t, got, "SWAP(kB)")
	require.NotContains(t, got, "RSS(kB)")
	require.Contains(t, got, "hog serve")
}

func TestRenderSwapTableFull(t *testing.T) {
	var out bytes.Buffer
	renderSwapTable(&out, sampleInfos, true)

	got := out.String()
	require.Contains(t, got, "RSS(kB)")
	require.Contains(t, got, "VSZ(kB)")
	require.Contains(t, got, "90000")
}

func TestSwapSnapshotJSONShape(t *testing.T) {
	snap := swapSnapshot{SwapTotalKB: 2048, SwapFreeKB: 1024, Processes: sampleInfos}
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, float64(2048), decoded["swap_total_kb"])
	require.Equal(t, float64(1024), decoded["swap_free_kb"])

	procs, ok := decoded["processes"].([]interface{})
	require.True(t, ok)
	require.Len(t, procs, 2)
	first, ok := procs[0].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, float64(100), first["pid"])
	require.Equal(t, "hog", first["name"])
	require.Equal(t, float64(900), first["swap_kb"])
}

func TestRunSwapmonJSONAndTopExclusive(t *testing.T) {
	set := flag.NewFlagSet("swapmon", flag.ContinueOnError)
	set.Bool("json", true, "")
	set.Bool("top", true, "")
	ctx := cli.NewContext(nil, set, nil)

	err := runSwapmon(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot use --json and --top together")
}

func fakeSwapProcRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "100")
	require.NoError(t, os.MkdirAll(dir, 0755))
	status := "Name:\thog\nVmSize:\t90000 kB\nVmRSS:\t50000 kB\nVmSwap:\t900 kB\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "status"), []byte(status), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdline"), []byte("hog\x00serve\x00"), 0644))
	return root
}

func TestSwapTopStopsAfterCount(t *testing.T) {
	var out bytes.Buffer
	top := &swapTop{
		ProcRoot: fakeSwapProcRoot(t),
		Out:      &out,
		Delay:    time.Microsecond,
		Count:    3,
	}
	require.NoError(t, top.run())

	// exactly three refreshes, then the loop returns on its own.
	require.Equal(t, 3, strings.Count(out.String(), "swapmon - "))
	require.Contains(t, out.String(), "hog serve")
}

func TestSecondsToDuration(t *testing.T) {
	require.Equal(t, 1500*time.Millisecond, secondsToDuration(1.5))
	require.Equal(t, time.Second, secondsToDuration(1.0))
}
