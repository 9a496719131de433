package dynamo

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// ParallelFor calls fn once for every index in [0, n). Up to GOMAXPROCS
// workers pull indices from a shared counter, so slow items do not hold
// up a whole chunk.
func ParallelFor(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := min(runtime.GOMAXPROCS(0), n)
	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1) - 1)
				if i >= n {
					return
				}
				fn(i)
			}
		}()
	}
	wg.Wait()
}
