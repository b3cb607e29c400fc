package renderer

import (
	"sync"
	"time"
)

// domainEntry records whether a host needed the browser, with a TTL.
type domainEntry struct {
	needsBrowser bool
	expiresAt    time.Time
}

// domainMemory remembers, per host, whether the HTTP fast path was enough or
// the browser was required, so repeated renders of the same documentation
// site skip the probe. Entries expire after the configured TTL.
type domainMemory struct {
	store sync.Map // host (string) -> *domainEntry
	ttl   time.Duration
	done  chan struct{}
}

// newDomainMemory creates a domainMemory and starts a background goroutine
// that prunes expired entries every hour.
func newDomainMemory(ttl time.Duration) *domainMemory {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	dm := &domainMemory{
		ttl:  ttl,
		done: make(chan struct{}),
	}
	go dm.cleanupLoop()
	return dm
}

// NeedsBrowser reports whether the host is remembered as browser-only.
// Unknown or expired hosts report false, so the fast path is probed again.
func (dm *domainMemory) NeedsBrowser(host string) bool {
	val, ok := dm.store.Load(host)
	if !ok {
		return false
	}
	entry := val.(*domainEntry)
	if time.Now().After(entry.expiresAt) {
		dm.store.Delete(host)
		return false
	}
	return entry.needsBrowser
}

// Remember records the outcome of a fetch-mode decision for a host.
func (dm *domainMemory) Remember(host string, needsBrowser bool) {
	dm.store.Store(host, &domainEntry{
		needsBrowser: needsBrowser,
		expiresAt:    time.Now().Add(dm.ttl),
	})
}

// Stop terminates the background cleanup goroutine.
func (dm *domainMemory) Stop() {
	close(dm.done)
}

// cleanupLoop runs every hour, deleting expired entries.
func (dm *domainMemory) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-dm.done:
			return
		case <-ticker.C:
			now := time.Now()
			dm.store.Range(func(key, value any) bool {
				entry := value.(*domainEntry)
				if now.After(entry.expiresAt) {
					dm.store.Delete(key)
				}
				return true
			})
		}
	}
}
