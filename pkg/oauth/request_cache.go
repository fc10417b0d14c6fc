package oauth

import (
	"sync"
	"time"
)

// AuthorizationRequest is a login flow waiting for the provider callback.
type AuthorizationRequest struct {
	Provider    string
	RedirectURI string
	CreatedAt   time.Time
}

// RequestCache keeps pending authorization requests keyed by state.
// Entries older than the TTL are treated as absent and removed by Sweep.
type RequestCache struct {
	mu    sync.Mutex
	items map[string]AuthorizationRequest
	ttl   time.Duration
	now   func() time.Time
}

func NewRequestCache(ttl time.Duration) *RequestCache {
	return &RequestCache{
		items: make(map[string]AuthorizationRequest),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *RequestCache) Save(state string, req AuthorizationRequest) {
	if state == "" {
		return
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = c.now()
	}
	c.mu.Lock()
	c.items[state] = req
	c.mu.Unlock()
}

// Load returns the request for state without removing it.
func (c *RequestCache) Load(state string) (AuthorizationRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.items[state]
	if !ok || c.expired(req) {
		return AuthorizationRequest{}, false
	}
	return req, true
}

// Take returns and removes the request for state. A state can be taken once.
func (c *RequestCache) Take(state string) (AuthorizationRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.items[state]
	if !ok {
		return AuthorizationRequest{}, false
	}
	delete(c.items, state)
	if c.expired(req) {
		return AuthorizationRequest{}, false
	}
	return req, true
}

func (c *RequestCache) Remove(state string) {
	c.mu.Lock()
	delete(c.items, state)
	c.mu.Unlock()
}

// Sweep evicts expired entries and returns how many were removed.
func (c *RequestCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for state, req := range c.items {
		if c.expired(req) {
			delete(c.items, state)
			removed++
		}
	}
	return removed
}

func (c *RequestCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *RequestCache) expired(req AuthorizationRequest) bool {
	return c.now().Sub(req.CreatedAt) > c.ttl
}
