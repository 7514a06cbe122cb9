package proc

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Info describes one process holding swapped pages.
type Info struct {
	Pid    int    `json:"pid"`
	Name   string `json:"name"`
	SwapKB int64  `json:"swap_kb"`
	RSSKB  int64  `json:"rss_kb"`
	VszKB  int64  `json:"vsz_kb"`
	Cmd    string `json:"cmd"`
}

// Scan walks root and returns every process with VmSwap > 0, sorted by swap
// usage descending, pid ascending on ties.
func Scan(root string) ([]Info, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", root)
	}

	var list []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		info, err := readInfo(root, pid)
		if err != nil {
			// processes vanish mid-scan all the time; skip quietly.
			continue
		}
		if info.SwapKB <= 0 {
			continue
		}
		list = append(list, info)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].SwapKB != list[j].SwapKB {
			return list[i].SwapKB > list[j].SwapKB
		}
		return list[i].Pid < list[j].Pid
	})
	return list, nil
}

func readInfo(root string, pid int) (Info, error) {
	f, err := os.Open(StatusPath(root, pid))
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	info := Info{Pid: pid}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Name:"):
			info.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
		case strings.HasPrefix(line, "VmSwap:"):
			info.SwapKB = firstInt(line)
		case strings.HasPrefix(line, "VmRSS:"):
			info.RSSKB = firstInt(line)
		case strings.HasPrefix(line, "VmSize:"):
			info.VszKB = firstInt(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Info{}, err
	}

	info.Cmd = cmdline(root, pid)
	if info.Cmd == "" {
		// kernel threads have an empty cmdline.
		info.Cmd = info.Name
	}
	return info, nil
}

// cmdline renders root/<pid>/cmdline with the NUL separators turned into
// spaces.
func cmdline(root string, pid int) string {
	data, err := os.ReadFile(filepath.Join(root, strconv.Itoa(pid), "cmdline"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(string(data), "\x00", " "))
}
