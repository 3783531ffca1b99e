// Package proxy rotates upstream proxies and benches the ones that keep
// failing. Health is re-checked lazily at selection time; there are no
// background timers to leak.
package proxy

import (
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	url            string
	errorCount     int
	unhealthySince time.Time
}

func (e *entry) unhealthy() bool {
	return !e.unhealthySince.IsZero()
}

type Pool struct {
	mu        sync.Mutex
	entries   []*entry
	next      int
	maxErrors int
	recovery  time.Duration
	logger    *slog.Logger
}

// NewPool builds a pool over the given proxy URLs. A proxy is benched
// after maxErrors consecutive failures and comes back after the
// recovery window has passed.
func NewPool(urls []string, maxErrors int, recovery time.Duration) *Pool {
	if maxErrors <= 0 {
		maxErrors = 3
	}
	if recovery <= 0 {
		recovery = 10 * time.Minute
	}
	entries := make([]*entry, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		entries = append(entries, &entry{url: u})
	}
	return &Pool{
		entries:   entries,
		maxErrors: maxErrors,
		recovery:  recovery,
		logger:    slog.Default().With("component", "proxy_pool"),
	}
}

// Next returns the next healthy proxy round-robin. ok is false when the
// pool is empty or every proxy is benched; callers then go direct.
func (p *Pool) Next() (url string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for range p.entries {
		e := p.entries[p.next%len(p.entries)]
		p.next++

		if e.unhealthy() {
			if time.Since(e.unhealthySince) < p.recovery {
				continue
			}
			// recovery window elapsed, give it another chance
			e.unhealthySince = time.Time{}
			e.errorCount = 0
			p.logger.Info("proxy recovered", "proxy", e.url)
		}
		return e.url, true
	}
	return "", false
}

// ReportError counts a failure against a proxy and benches it once the
// threshold is hit.
func (p *Pool) ReportError(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range p.entries {
		if e.url != url {
			continue
		}
		e.errorCount++
		if e.errorCount >= p.maxErrors && !e.unhealthy() {
			e.unhealthySince = time.Now()
			p.logger.Warn("proxy benched", "proxy", url, "errors", e.errorCount)
		}
		return
	}
}

// ReportSuccess clears the failure streak of a proxy.
func (p *Pool) ReportSuccess(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range p.entries {
		if e.url == url {
			e.errorCount = 0
			return
		}
	}
}

// Len reports how many proxies the pool manages, healthy or not.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
