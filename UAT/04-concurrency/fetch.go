// Package concurrency fans calls out over goroutines.
package concurrency

import (
	"sync"
)

// Fetcher fetches the size of a document.
type Fetcher interface {
	Fetch(url string) (int, error)
}

// Result is the outcome of one fetch.
type Result struct {
	Size int
	Err  error
}

// FetchAll fetches every url with the given number of workers.
func FetchAll(f Fetcher, urls []string, workers int) map[string]Result {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Result, len(urls))
		queue   = make(chan string)
	)

	for range max(1, workers) {
		wg.Go(func() {
			for url := range queue {
				size, err := f.Fetch(url)

				mu.Lock()
				results[url] = Result{Size: size, Err: err}
				mu.Unlock()
			}
		})
	}

	for _, url := range urls {
		queue <- url
	}

	close(queue)
	wg.Wait()

	return results
}
