// Package parallel splits independent per-sample work across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how work is chunked.
type Config struct {
	Workers  int // Maximum number of concurrent chunks.
	MinChunk int // Minimum items per chunk; smaller inputs run inline.
}

// DefaultConfig uses one worker per CPU.
func DefaultConfig() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		MinChunk: 256,
	}
}

// Range calls f over consecutive [lo, hi) chunks covering [0, n).
//
// Chunks run concurrently when n spans more than one chunk. f must only
// touch items in its own range. The error of the lowest failing chunk is
// returned.
func Range(n int, cfg Config, f func(lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	workers := max(cfg.Workers, 1)
	chunk := max((n+workers-1)/workers, cfg.MinChunk, 1)
	if chunk >= n {
		return f(0, n)
	}

	chunks := (n + chunk - 1) / chunk
	errs := make([]error, chunks)
	var wg sync.WaitGroup
	for c := 0; c < chunks; c++ {
		lo := c * chunk
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func(c, lo, hi int) {
			defer wg.Done()
			errs[c] = f(lo, hi)
		}(c, lo, hi)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
