//go:build linux
// +build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific implementation for thread identity and CPU affinity.

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const supportedPlatform = true

// cpuSetSize mirrors glibc CPU_SETSIZE, the capacity of unix.CPUSet.
const cpuSetSize = 1024

// setAffinityPlatform sets thread affinity to a given CPU for Linux.
// sched_setaffinity with pid 0 applies to the calling thread only.
func setAffinityPlatform(cpuID int) error {
	var set unix.CPUSet
	if cpuID >= cpuSetSize {
		return fmt.Errorf("%w: %d", ErrInvalidCPU, cpuID)
	}
	set.Zero()
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: sched_setaffinity cpu %d: %w", cpuID, err)
	}
	return nil
}

func threadIDPlatform() int {
	return unix.Gettid()
}
