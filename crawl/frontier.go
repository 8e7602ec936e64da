package crawl

import (
	"sync"

	"github.com/fwojciec/docseek"
	"github.com/fwojciec/docseek/bloom"
)

// Compile-time interface verification.
var _ docseek.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO URL queue with Bloom filter deduplication.
// Pages are visited breadth-first in discovery order.
// It is safe for concurrent use by multiple goroutines.
//
// A Bloom filter false positive silently drops a URL, so Frontier is only
// suitable where skipping a page is harmless, such as cache warming.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue []string
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen: bloom.NewFilter(n, fpRate),
	}
}

// Push adds a URL to the frontier.
// Returns false if the URL has already been seen.
// URL fragments are stripped before deduplication - URLs differing only by fragment
// are considered duplicates.
func (f *Frontier) Push(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	url := docseek.StripFragment(rawURL)
	if f.seen.TestAndAdd(url) {
		return false
	}
	f.queue = append(f.queue, url)
	return true
}

// Pop returns the oldest queued URL.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	return url, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been processed or queued.
// URL fragments are stripped before checking.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(docseek.StripFragment(rawURL))
}
