// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-affine/api"
)

// domains maps an exclusive domain key to the name of its owning executor.
var domains sync.Map

func claimDomain(key, owner string) error {
	if key == "" {
		return nil
	}
	if prev, loaded := domains.LoadOrStore(key, owner); loaded {
		return fmt.Errorf("%w: %q held by %q", api.ErrDomainBusy, key, prev)
	}
	return nil
}

func releaseDomain(key string) {
	if key != "" {
		domains.Delete(key)
	}
}
