package proc

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// MeminfoFields returns the values in kB of the requested meminfo fields,
// named without the trailing colon. Fields the kernel does not report are
// simply absent from the result.
func MeminfoFields(path string, fields ...string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	wanted := make(map[string]bool, len(fields))
	for _, field := range fields {
		wanted[field] = true
	}

	out := make(map[string]int64, len(fields))
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.IndexByte(line, ':')
		if idx < 0 || !wanted[line[:idx]] {
			continue
		}
		out[line[:idx]] = firstInt(line[idx:])
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return out, nil
}
