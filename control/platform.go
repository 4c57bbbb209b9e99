// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Platform debug probes.

package control

import (
	"runtime"

	"github.com/momentics/hioload-affine/affinity"
)

// RegisterPlatformProbes sets host-level debug probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.os", func() any {
		return runtime.GOOS + "/" + runtime.GOARCH
	})
	dp.RegisterProbe("platform.affinity", func() any {
		return affinity.Supported()
	})
	dp.RegisterProbe("platform.goroutines", func() any {
		return runtime.NumGoroutine()
	})
}
