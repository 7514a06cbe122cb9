package cgroups

import (
	"os"
	"path/filepath"
)

// DefaultMountRoot is where cgroupfs is mounted on essentially every distro.
const DefaultMountRoot = "/sys/fs/cgroup"

// Version tells the two incompatible cgroup control-file layouts apart.
type Version int

const (
	// VersionNone means no usable memory controller was found.
	VersionNone Version = iota
	// V1 is the legacy per-controller hierarchy.
	V1
	// V2 is the unified hierarchy.
	V2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	}
	return "none"
}

// Detect probes which cgroup memory controller the host exposes under root.
// The unified hierarchy wins when both are visible.
func Detect(root string) Version {
	if pathExists(filepath.Join(root, "cgroup.controllers")) {
		return V2
	}
	if pathExists(filepath.Join(root, "memory")) {
		return V1
	}
	return VersionNone
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// v1MaxBytes is the largest byte count memory.limit_in_bytes accepts
// (LLONG_MAX rounded down to a page).
const v1MaxBytes = "9223372036854771712"

// layout carries the version-specific facts so nothing downstream has to
// branch on the version again.
type layout struct {
	controllerDir string // hierarchy subdir holding the memory controller
	limitFile     string
	unlimited     string // limit-file value meaning "no limit"
}

func (v Version) layout() layout {
	switch v {
	case V1:
		return layout{controllerDir: "memory", limitFile: "memory.limit_in_bytes", unlimited: v1MaxBytes}
	case V2:
		return layout{limitFile: "memory.high", unlimited: "max"}
	}
	return layout{}
}
