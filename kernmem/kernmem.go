// Package kernmem estimates how much memory the running kernel occupies,
// combining the static ELF section sizes resolved from the symbol table with
// the dynamic allocation counters in /proc/meminfo and the module sizes in
// /proc/modules.
package kernmem

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"memtools/proc"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// sectionSymbols are the boundary symbols the kernel exports for its ELF
// layout; each adjacent pair delimits one section.
var sectionSymbols = []string{"_text", "_etext", "_sdata", "_edata", "__bss_start", "__bss_stop"}

// Sections holds the static section sizes in kB.
type Sections struct {
	TextKB uint64
	DataKB uint64
	BssKB  uint64
}

func (s Sections) TotalKB() uint64 {
	return s.TextKB + s.DataKB + s.BssKB
}

// Report aggregates one kernel memory estimate. Dynamic fields are -1 when
// the kernel does not report them.
type Report struct {
	Sections *Sections // nil when no usable System.map/kallsyms

	SlabKB        int64
	PageTablesKB  int64
	VmallocKB     int64
	KernelStackKB int64

	ModulesKB int64 // -1 when /proc/modules is unreadable
}

// DynamicTotalKB sums the positive meminfo contributions.
func (r *Report) DynamicTotalKB() int64 {
	var total int64
	for _, v := range []int64{r.SlabKB, r.PageTablesKB, r.VmallocKB, r.KernelStackKB} {
		if v > 0 {
			total += v
		}
	}
	return total
}

// GrandTotalKB is the overall estimate: static sections, dynamic
// allocations and module memory, counting only what was available.
func (r *Report) GrandTotalKB() int64 {
	total := r.DynamicTotalKB()
	if r.Sections != nil {
		total += int64(r.Sections.TotalKB())
	}
	if r.ModulesKB > 0 {
		total += r.ModulesKB
	}
	return total
}

// Options point the collector at alternate input files; zero values mean
// the real kernel interfaces.
type Options struct {
	SystemMapPath string // defaults to /boot/System.map-<uname -r>
	KallsymsPath  string // defaults to /proc/kallsyms
	MeminfoPath   string // defaults to /proc/meminfo
	ModulesPath   string // defaults to /proc/modules
}

func (o *Options) fillDefaults() {
	if o.SystemMapPath == "" {
		if release, err := kernelRelease(); err == nil {
			o.SystemMapPath = "/boot/System.map-" + release
		}
	}
	if o.KallsymsPath == "" {
		o.KallsymsPath = "/proc/kallsyms"
	}
	if o.MeminfoPath == "" {
		o.MeminfoPath = "/proc/meminfo"
	}
	if o.ModulesPath == "" {
		o.ModulesPath = "/proc/modules"
	}
}

func kernelRelease() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", errors.Wrap(err, "uname")
	}
	return unix.ByteSliceToString(uts.Release[:]), nil
}

// Collect gathers the estimate. Individual inputs being unavailable is not
// an error; the report marks them and the totals skip them.
func Collect(opts Options) *Report {
	opts.fillDefaults()

	r := &Report{SlabKB: -1, PageTablesKB: -1, VmallocKB: -1, KernelStackKB: -1, ModulesKB: -1}
	r.Sections = staticSections(opts.SystemMapPath, opts.KallsymsPath)

	fields, err := proc.MeminfoFields(opts.MeminfoPath, "Slab", "PageTables", "VmallocUsed", "KernelStack")
	if err == nil {
		if v, ok := fields["Slab"]; ok {
			r.SlabKB = v
		}
		if v, ok := fields["PageTables"]; ok {
			r.PageTablesKB = v
		}
		if v, ok := fields["VmallocUsed"]; ok {
			r.VmallocKB = v
		}
		if v, ok := fields["KernelStack"]; ok {
			r.KernelStackKB = v
		}
	}

	if kb, err := modulesKB(opts.ModulesPath); err == nil {
		r.ModulesKB = kb
	}
	return r
}

// staticSections resolves the section sizes, preferring System.map and
// falling back to kallsyms when any boundary symbol is missing (kallsyms
// shows zero addresses without enough privilege, which also counts as
// missing).
func staticSections(systemMap, kallsyms string) *Sections {
	syms := readSymbols(systemMap)
	if !complete(syms) {
		syms = readSymbols(kallsyms)
	}
	if !complete(syms) {
		return nil
	}
	return &Sections{
		TextKB: (syms["_etext"] - syms["_text"]) / 1024,
		DataKB: (syms["_edata"] - syms["_sdata"]) / 1024,
		BssKB:  (syms["__bss_stop"] - syms["__bss_start"]) / 1024,
	}
}

// readSymbols scans a System.map/kallsyms-format file ("addr type name")
// for the section boundary symbols.
func readSymbols(path string) map[string]uint64 {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	wanted := make(map[string]bool, len(sectionSymbols))
	for _, name := range sectionSymbols {
		wanted[name] = true
	}

	syms := make(map[string]uint64, len(sectionSymbols))
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || !wanted[fields[2]] {
			continue
		}
		addr, err := strconv.ParseUint(fields[0], 16, 64)
		if err != nil {
			continue
		}
		syms[fields[2]] = addr
	}
	return syms
}

func complete(syms map[string]uint64) bool {
	for _, name := range sectionSymbols {
		if syms[name] == 0 {
			return false
		}
	}
	return true
}

// modulesKB sums the size column of /proc/modules (bytes) into kB.
func modulesKB(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var totalBytes int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		size, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		totalBytes += size
	}
	if err := scanner.Err(); err != nil {
		return 0, errors.Wrapf(err, "read %s", path)
	}
	return totalBytes / 1024, nil
}
