// Package doccache holds extracted documents between the extraction
// endpoint and the analysis endpoints. Entries are keyed by session ID
// with a bounded TTL, so concurrent users never share state.
package doccache

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"resumelift/internal/errors"
	"resumelift/internal/types"
)

type entry struct {
	doc       *types.ExtractedDocument
	expiresAt time.Time
}

// Cache is a TTL cache of extracted documents keyed by session ID
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	logger  *errors.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a cache and starts its eviction janitor. sweep <= 0 disables
// the janitor; expired entries are then only dropped on access.
func New(ttl, sweep time.Duration, logger *errors.Logger) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		logger:  logger,
		stop:    make(chan struct{}),
	}
	if sweep > 0 {
		go c.janitor(sweep)
	}
	return c
}

// Put stores a document and returns the session ID the client must present
// to retrieve it
func (c *Cache) Put(doc *types.ExtractedDocument) string {
	id := uuid.NewString()

	c.mu.Lock()
	c.entries[id] = entry{doc: doc, expiresAt: time.Now().Add(c.ttl)}
	size := len(c.entries)
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("Cached extracted document", "session_id", id, "entries", size)
	}
	return id
}

// Get returns the document for a session ID. Expired or unknown sessions
// yield a SESSION_NOT_FOUND error.
func (c *Cache) Get(sessionID string) (*types.ExtractedDocument, error) {
	c.mu.RLock()
	e, ok := c.entries[sessionID]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		if ok {
			c.Delete(sessionID)
		}
		return nil, errors.NewValidationError(errors.ErrCodeSessionNotFound,
			"Session not found or expired; re-upload the document", nil)
	}
	return e.doc, nil
}

// Delete removes a session entry. Unknown IDs are a no-op.
func (c *Cache) Delete(sessionID string) {
	c.mu.Lock()
	delete(c.entries, sessionID)
	c.mu.Unlock()
}

// Len reports the current number of cached sessions
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the eviction janitor
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) janitor(sweep time.Duration) {
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired(time.Now())
		}
	}
}

func (c *Cache) evictExpired(now time.Time) {
	c.mu.Lock()
	evicted := 0
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
			evicted++
		}
	}
	remaining := len(c.entries)
	c.mu.Unlock()

	if evicted > 0 && c.logger != nil {
		c.logger.Debug("Evicted expired sessions", "evicted", evicted, "remaining", remaining)
	}
}
