package probe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/bassosimone/errclass"
)

// ProgressFunc is called after each probe of a batch with the number of
// probes completed so far.
type ProgressFunc func(done, total int, res Result)

// CheckAll probes every URL with at most concurrency probes in flight. Results
// are returned in input order. URLs not probed because ctx ended report not
// found with the context's error class.
func CheckAll(ctx context.Context, c Checker, urls []string, concurrency int, onProgress ProgressFunc) []Result {
	if concurrency <= 0 {
		concurrency = 1
	}
	total := len(urls)
	results := make([]Result, total)

	sem := make(chan struct{}, concurrency)
	var processed int64
	report := func(res Result) {
		count := atomic.AddInt64(&processed, 1)
		if onProgress != nil {
			onProgress(int(count), total, res)
		}
	}

	var wg sync.WaitGroup
	for i, u := range urls {
		select {
		case <-ctx.Done():
			results[i] = Result{URL: u, ErrClass: errclass.New(ctx.Err())}
			report(results[i])
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = c.Probe(ctx, u)
			report(results[i])
		}(i, u)
	}
	wg.Wait()
	return results
}
