// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for OS thread identity and CPU affinity. Platform-specific
// implementations are located in separate files guarded by build tags.

package affinity

import (
	"errors"
	"fmt"

	"github.com/momentics/hioload-affine/api"
)

var (
	ErrNotSupported = errors.New("affinity: not supported on this platform")
	ErrInvalidCPU   = errors.New("affinity: invalid cpu index")
)

// SetAffinity pins current OS thread to a given logical CPU/core on supported platforms.
// The caller must have locked its goroutine to the thread.
func SetAffinity(cpuID int) error {
	if cpuID < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCPU, cpuID)
	}
	return setAffinityPlatform(cpuID)
}

// ThreadID returns the kernel id of the calling OS thread, or 0 when unknown.
func ThreadID() int {
	return threadIDPlatform()
}

// Supported reports whether SetAffinity is implemented here.
func Supported() bool {
	return supportedPlatform
}

// OS is the api.Affinity backed by the host operating system.
type OS struct{}

var _ api.Affinity = OS{}

func (OS) Pin(cpuID int) error { return SetAffinity(cpuID) }
func (OS) ThreadID() int       { return ThreadID() }
func (OS) Supported() bool     { return Supported() }
