// Package swapout drives a process's resident pages into swap by confining
// the process to a temporary cgroup with a small memory limit, polling its
// memory counters, and restoring the prior state no matter how the run ends.
package swapout

import (
	"time"

	"memtools/cgroups"
	"memtools/proc"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Config carries the knobs for one run. Non-positive values are replaced by
// the documented defaults.
type Config struct {
	Pid         int
	LimitMB     int64         // memory limit while constrained
	TargetRSSKB int64         // stop once RSS drops to or below this
	Interval    time.Duration // pause between polls
	MaxIter     int           // give up after this many samples
}

const (
	DefaultLimitMB     = 8
	DefaultTargetRSSKB = 16384
	DefaultInterval    = time.Second
	DefaultMaxIter     = 60
)

func (cfg *Config) sanitize() {
	if cfg.LimitMB <= 0 {
		cfg.LimitMB = DefaultLimitMB
	}
	if cfg.TargetRSSKB <= 0 {
		cfg.TargetRSSKB = DefaultTargetRSSKB
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = DefaultMaxIter
	}
}

// Outcome says how the poll loop stopped. All three are successful
// completions as far as the tool is concerned; giving up is not an error.
type Outcome int

const (
	// TargetReached means the process RSS dropped to or below the target.
	TargetReached Outcome = iota + 1
	// ProcessGone means the target process exited while we were polling.
	ProcessGone
	// IterExhausted means the iteration budget ran out before the target.
	IterExhausted
)

func (o Outcome) String() string {
	switch o {
	case TargetReached:
		return "target RSS reached"
	case ProcessGone:
		return "target process exited"
	case IterExhausted:
		return "gave up after max iterations"
	}
	return "unknown"
}

// sampleFn is swapped in tests to script the observed memory values;
// restoreFn and destroyFn to watch the rollback order.
var (
	sampleFn  = proc.ReadSample
	restoreFn = (*cgroups.CgroupManager).Restore
	destroyFn = (*cgroups.CgroupManager).Destroy
)

// Swapper runs one constrain-poll-restore cycle against a single pid. The
// zero value targets the real cgroupfs and procfs with a real clock.
type Swapper struct {
	CgroupRoot string      // defaults to cgroups.DefaultMountRoot
	ProcRoot   string      // defaults to proc.DefaultRoot
	Clock      clock.Clock // defaults to the wall clock
}

// Run executes the full cycle and reports how the poll loop stopped. A nil
// error means the run completed, including restore and cleanup; an error
// means a fatal setup failure, after which whatever rollback was safe for
// the progress made has already been attempted.
func (s *Swapper) Run(cfg Config) (Outcome, error) {
	cfg.sanitize()

	root := s.CgroupRoot
	if root == "" {
		root = cgroups.DefaultMountRoot
	}
	procRoot := s.ProcRoot
	if procRoot == "" {
		procRoot = proc.DefaultRoot
	}
	clk := s.Clock
	if clk == nil {
		clk = clock.New()
	}

	if !proc.Exists(procRoot, cfg.Pid) {
		return 0, errors.Errorf("no such process: %d", cfg.Pid)
	}

	version := cgroups.Detect(root)
	if version == cgroups.VersionNone {
		return 0, errors.Errorf("no cgroup v1/v2 memory controller detected under %s", root)
	}

	cm := cgroups.NewCgroupManager(root, version, cfg.Pid)
	log.Infof("cgroup %s detected, using %s", version, cm.GroupDir)

	if err := cm.Create(); err != nil {
		return 0, err
	}
	// Deferred LIFO: Restore (registered later, only once the limit stage is
	// reached) runs before Destroy, on every exit path below this point.
	defer destroyFn(cm)

	if err := cm.Apply(cfg.Pid); err != nil {
		return 0, err
	}

	cm.Backup()
	defer restoreFn(cm)

	if err := cm.Set(cfg.LimitMB); err != nil {
		return 0, err
	}

	log.Infof("forcing swap on pid %d, polling memory usage", cfg.Pid)

	for iter := 1; ; iter++ {
		sample, err := sampleFn(procRoot, cfg.Pid)
		if err != nil {
			if errors.Is(err, proc.ErrNotFound) {
				log.Infof("process %d no longer exists, stopping", cfg.Pid)
			} else {
				log.Warnf("cannot sample pid %d (%v), treating process as gone", cfg.Pid, err)
			}
			return ProcessGone, nil
		}

		log.Infof("iter %2d: RSS=%d kB, SWAP=%d kB", iter, sample.RSSKB, sample.SwapKB)

		if sample.RSSKB <= cfg.TargetRSSKB {
			log.Infof("target RSS reached (<= %d kB), stopping", cfg.TargetRSSKB)
			return TargetReached, nil
		}
		if iter >= cfg.MaxIter {
			log.Infof("max iterations (%d) reached without hitting target RSS, restoring anyway", cfg.MaxIter)
			return IterExhausted, nil
		}
		clk.Sleep(cfg.Interval)
	}
}
