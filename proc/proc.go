package proc

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultRoot is where procfs lives.
const DefaultRoot = "/proc"

// ErrNotFound reports that a pid has no status record anymore, i.e. the
// process exited. The poll loop treats this as a normal stop condition.
var ErrNotFound = errors.New("process not found")

// Sample is a point-in-time view of one process's memory placement.
type Sample struct {
	Pid    int
	RSSKB  int64
	SwapKB int64
}

// ReadSample parses VmRSS and VmSwap out of root/<pid>/status. Fields the
// kernel omits (e.g. VmSwap on a host without swap accounting) read as 0.
func ReadSample(root string, pid int) (Sample, error) {
	f, err := os.Open(StatusPath(root, pid))
	if err != nil {
		if os.IsNotExist(err) {
			return Sample{}, ErrNotFound
		}
		return Sample{}, errors.Wrapf(err, "open status for pid %d", pid)
	}
	defer f.Close()

	s := Sample{Pid: pid}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "VmRSS:"):
			s.RSSKB = firstInt(line)
		case strings.HasPrefix(line, "VmSwap:"):
			s.SwapKB = firstInt(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Sample{}, errors.Wrapf(err, "read status for pid %d", pid)
	}
	return s, nil
}

// StatusPath returns root/<pid>/status.
func StatusPath(root string, pid int) string {
	return filepath.Join(root, strconv.Itoa(pid), "status")
}

// Exists reports whether a pid directory is present under root.
func Exists(root string, pid int) bool {
	_, err := os.Stat(filepath.Join(root, strconv.Itoa(pid)))
	return err == nil
}

// firstInt extracts the first embedded decimal integer from a line like
// "VmRSS:     1234 kB". Lines with no digits yield 0.
func firstInt(line string) int64 {
	start := -1
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c >= '0' && c <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			v, _ := strconv.ParseInt(line[start:i], 10, 64)
			return v
		}
	}
	if start >= 0 {
		v, _ := strconv.ParseInt(line[start:], 10, 64)
		return v
	}
	return 0
}
