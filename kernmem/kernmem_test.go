package kernmem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const symbolTable = `ffffffff81000000 T _text
ffffffff81a00000 T _etext
ffffffff81c00000 D _sdata
ffffffff81d00000 D _edata
ffffffff81e00000 B __bss_start
ffffffff81f00000 B __bss_stop
`

const meminfo = `MemTotal:       16309564 kB
MemFree:         1234567 kB
Slab:             524288 kB
PageTables:        40960 kB
VmallocUsed:      102400 kB
KernelStack:       16384 kB
`

const modules = `nvidia 6291456 1 - Live 0xffffffffc0000000
ext4 1048576 2 mbcache,jbd2, Live 0xffffffffc1000000
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func fixtureOptions(t *testing.T) Options {
	dir := t.TempDir()
	return Options{
		SystemMapPath: filepath.Join(dir, "System.map-missing"),
		KallsymsPath:  writeFixture(t, dir, "kallsyms", symbolTable),
		MeminfoPath:   writeFixture(t, dir, "meminfo", meminfo),
		ModulesPath:   writeFixture(t, dir, "modules", modules),
	}
}

func TestCollect(t *testing.T) {
	r := Collect(fixtureOptions(t))

	require.NotNil(t, r.Sections)
	require.Equal(t, uint64(0xa00000/1024), r.Sections.TextKB)
	require.Equal(t, uint64(0x100000/1024), r.Sections.DataKB)
	require.Equal(t, uint64(0x100000/1024), r.Sections.BssKB)
	require.Equal(t, uint64(12288), r.Sections.TotalKB())

	require.Equal(t, int64(524288), r.SlabKB)
	require.Equal(t, int64(40960), r.PageTablesKB)
	require.Equal(t, int64(102400), r.VmallocKB)
	require.Equal(t, int64(16384), r.KernelStackKB)
	require.Equal(t, int64(684032), r.DynamicTotalKB())

	require.Equal(t, int64((6291456+1048576)/1024), r.ModulesKB)
	require.Equal(t, int64(12288+684032+7168), r.GrandTotalKB())
}

func TestCollectPrefersSystemMap(t *testing.T) {
	opts := fixtureOptions(t)
	dir := filepath.Dir(opts.KallsymsPath)
	// System.map reports a bigger .text; it must win over kallsyms.
	opts.SystemMapPath = writeFixture(t, dir, "System.map", `ffffffff81000000 T _text
ffffffff82000000 T _etext
ffffffff82100000 D _sdata
ffffffff82200000 D _edata
ffffffff82300000 B __bss_start
ffffffff82400000 B __bss_stop
`)

	r := Collect(opts)
	require.NotNil(t, r.Sections)
	require.Equal(t, uint64(0x1000000/1024), r.Sections.TextKB)
}

func TestCollectFallsBackToKallsymsOnPartialSystemMap(t *testing.T) {
	opts := fixtureOptions(t)
	dir := filepath.Dir(opts.KallsymsPath)
	// _etext missing: the partial map is discarded entirely.
	opts.SystemMapPath = writeFixture(t, dir, "System.map", "ffffffff81000000 T _text\n")

	r := Collect(opts)
	require.NotNil(t, r.Sections)
	require.Equal(t, uint64(0xa00000/1024), r.Sections.TextKB)
}

func TestCollectSectionsUnavailable(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		SystemMapPath: filepath.Join(dir, "nope1"),
		// unprivileged kallsyms: all addresses read as zero.
		KallsymsPath: writeFixture(t, dir, "kallsyms", "0000000000000000 T _text\n0000000000000000 T _etext\n"),
		MeminfoPath:  filepath.Join(dir, "nope2"),
		ModulesPath:  filepath.Join(dir, "nope3"),
	}

	r := Collect(opts)
	require.Nil(t, r.Sections)
	require.Equal(t, int64(-1), r.SlabKB)
	require.Equal(t, int64(-1), r.ModulesKB)
	require.Zero(t, r.DynamicTotalKB())
	require.Zero(t, r.GrandTotalKB())
}
