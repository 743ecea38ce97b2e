// Package parallel splits element loops across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how loops are split.
type Config struct {
	Workers  int // Goroutines per loop; 1 or less runs sequentially.
	MinChunk int // Minimum indices per goroutine.
}

// DefaultConfig uses every available processor and chunks large enough that
// per-element kernels outweigh the goroutine start cost.
func DefaultConfig() Config {
	return Config{
		Workers:  runtime.GOMAXPROCS(0),
		MinChunk: 4096,
	}
}

// Sequential runs every loop on the calling goroutine.
var Sequential = Config{Workers: 1}

// For calls f(i) for every i in [0, n). Each index is visited exactly once.
//
// Kernels report errors by panicking, so a panic raised in any chunk is
// re-raised on the calling goroutine once every chunk has stopped.
func For(n int, cfg Config, f func(i int)) {
	if cfg.Workers <= 1 || n < 2*max(cfg.MinChunk, 1) {
		for i := range n {
			f(i)
		}
		return
	}

	chunk := max((n+cfg.Workers-1)/cfg.Workers, cfg.MinChunk)
	var (
		wg     sync.WaitGroup
		once   sync.Once
		caught any
	)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					once.Do(func() { caught = r })
				}
			}()
			for i := start; i < end; i++ {
				f(i)
			}
		}()
	}
	wg.Wait()
	if caught != nil {
		panic(caught)
	}
}
