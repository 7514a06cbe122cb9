package cgroups

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// scopeName is the fixed parent directory under which per-pid cgroups are
// created, i.e. <root>[/memory]/swapout/<pid>.
const scopeName = "swapout"

const (
	dirPerm  = 0755
	filePerm = 0644
)

// CgroupManager owns the scoped cgroup for a single target pid: it creates
// the directory, moves the pid in, juggles the memory limit and tears
// everything down again. One value per run, never reused.
type CgroupManager struct {
	Version Version
	Pid     int

	// GroupDir is the pid-named cgroup directory; ProcsPath and LimitPath
	// are the membership and memory-limit files inside it.
	GroupDir  string
	ProcsPath string
	LimitPath string

	backupLimit string
	hasBackup   bool
}

// NewCgroupManager derives the version-specific paths for pid under root.
func NewCgroupManager(root string, version Version, pid int) *CgroupManager {
	lay := version.layout()
	dir := filepath.Join(root, lay.controllerDir, scopeName, strconv.Itoa(pid))
	return &CgroupManager{
		Version:   version,
		Pid:       pid,
		GroupDir:  dir,
		ProcsPath: filepath.Join(dir, "cgroup.procs"),
		LimitPath: filepath.Join(dir, lay.limitFile),
	}
}

// Create makes the pid-named cgroup directory. The shared parent is created
// on demand, but a pre-existing pid directory is an error: it belongs to
// another run, or to a previous one that failed to clean up, and must not be
// silently reused.
func (c *CgroupManager) Create() error {
	if err := os.MkdirAll(filepath.Dir(c.GroupDir), dirPerm); err != nil {
		return errors.Wrapf(err, "create cgroup parent for %s", c.GroupDir)
	}
	if err := os.Mkdir(c.GroupDir, dirPerm); err != nil {
		if os.IsExist(err) {
			return errors.Errorf("cgroup %s already exists, refusing to reuse it", c.GroupDir)
		}
		return errors.Wrapf(err, "create cgroup %s", c.GroupDir)
	}
	return nil
}

// Apply moves pid into the cgroup. Once the kernel accepts this write the
// process's memory accounting belongs to the new group.
func (c *CgroupManager) Apply(pid int) error {
	if err := os.WriteFile(c.ProcsPath, []byte(strconv.Itoa(pid)+"\n"), filePerm); err != nil {
		return errors.Wrapf(err, "move pid %d into cgroup %s", pid, c.GroupDir)
	}
	log.Infof("moved PID %d into %s", pid, c.GroupDir)
	return nil
}

// Backup snapshots the current limit so Restore can put it back. An
// unreadable limit file is not fatal; Restore falls back to the version's
// unlimited value.
func (c *CgroupManager) Backup() {
	data, err := os.ReadFile(c.LimitPath)
	if err != nil {
		c.hasBackup = false
		log.Warnf("cannot read original limit at %s, will restore %q instead: %v",
			c.LimitPath, c.Version.layout().unlimited, err)
		return
	}
	c.backupLimit = strings.TrimRight(string(data), " \t\r\n")
	c.hasBackup = true
	log.Infof("original limit at %s: %q", c.LimitPath, c.backupLimit)
}

// Set caps the cgroup memory at limitMB megabytes.
func (c *CgroupManager) Set(limitMB int64) error {
	val := strconv.FormatInt(limitMB*1024*1024, 10)
	log.Infof("applying temporary limit %s to %s", val, c.LimitPath)
	if err := os.WriteFile(c.LimitPath, []byte(val+"\n"), filePerm); err != nil {
		return errors.Wrapf(err, "set memory limit at %s", c.LimitPath)
	}
	return nil
}

// Restore writes back the value captured by Backup, or the unlimited value
// when there was nothing to capture. Failures are logged, never fatal: the
// run still has to proceed to Destroy.
func (c *CgroupManager) Restore() {
	val := c.backupLimit
	if !c.hasBackup || val == "" {
		val = c.Version.layout().unlimited
	}
	log.Infof("restoring limit at %s to %q", c.LimitPath, val)
	if err := os.WriteFile(c.LimitPath, []byte(val+"\n"), filePerm); err != nil {
		log.Errorf("restore limit at %s error: %v", c.LimitPath, err)
	}
}

// Destroy removes the cgroup directory. Best effort: the kernel can hold on
// to the group for a while after the pid leaves, so a failed removal is only
// logged.
func (c *CgroupManager) Destroy() {
	if err := os.RemoveAll(c.GroupDir); err != nil {
		log.Warnf("remove cgroup %s error: %v", c.GroupDir, err)
		return
	}
	log.Infof("removed cgroup %s", c.GroupDir)
}
