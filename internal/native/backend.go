package native

import (
	"sort"
	"sync"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

// BackendFactory builds a kernel backend seeded for its random kernels.
type BackendFactory func(seed uint64) tensor.Backend

var (
	backendsMu sync.RWMutex
	backends   = make(map[tensor.DeviceType]BackendFactory)
)

// RegisterBackend makes a backend available for a device family. It is
// called from the init function of backend packages.
func RegisterBackend(device tensor.DeviceType, f BackendFactory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	if _, ok := backends[device]; ok {
		panic("backend: backend already registered")
	}

	backends[device] = f
}

// RegisteredBackends lists the device families with a registered backend.
func RegisteredBackends() []tensor.DeviceType {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	out := make([]tensor.DeviceType, 0, len(backends))
	for dt := range backends {
		out = append(out, dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
