// Copyright 2019 the Drone Authors. All rights reserved.
// Use of this source code is governed by the Blue Oak Model License
// that can be found in the LICENSE file.

package lastpass

import (
	"sync"
	"time"
)

// healthCache holds one memoized boolean with an expiry. The mutex guards
// the fields only; two callers missing at once both probe the tool.
type healthCache struct {
	mu     sync.Mutex
	ttl    time.Duration
	value  bool
	stored time.Time
	valid  bool
}

func (c *healthCache) get(now time.Time) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid || now.Sub(c.stored) >= c.ttl {
		return false, false
	}
	return c.value, true
}

func (c *healthCache) set(value bool, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.stored = now
	c.valid = true
}

func (c *healthCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}
