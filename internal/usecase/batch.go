package usecase

import "sync"

// runBatches calls fn(i) for every i in [0,n), size at a time. Calls inside a
// batch run concurrently; batch k+1 starts only after batch k has returned.
func runBatches(n, size int, fn func(i int)) {
	if size < 1 {
		size = 1
	}
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				fn(i)
			}(i)
		}
		wg.Wait()
	}
}
