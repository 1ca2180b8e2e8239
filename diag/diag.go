// Copyright (C) 2024 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package diag provides a tiny injectable logger used by the stress
// tests in this module. It exists so tests can report
// allocation/release counters without pulling a logging framework into
// a library that otherwise has no logging surface at all.
package diag

import "sync"

// Logger is the minimal interface this package requires; *testing.T
// and *testing.B both satisfy it via their Logf method.
type Logger interface {
	Logf(format string, args ...interface{})
}

// Counters tracks buffer allocation and release counts across
// goroutines, for use in stress tests that allocate and free many
// buffers concurrently (see the Independence and Release properties).
type Counters struct {
	mu       sync.Mutex
	allocs   int
	releases int
	out      Logger
}

// NewCounters returns a Counters that reports to out whenever Report is
// called. out may be nil, in which case Report is a no-op.
func NewCounters(out Logger) *Counters {
	return &Counters{out: out}
}

func (c *Counters) Alloc() {
	c.mu.Lock()
	c.allocs++
	c.mu.Unlock()
}

func (c *Counters) Release() {
	c.mu.Lock()
	c.releases++
	c.mu.Unlock()
}

// Outstanding returns allocs - releases.
func (c *Counters) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocs - c.releases
}

// Report logs current counts, if a Logger was provided.
func (c *Counters) Report(label string) {
	if c.out == nil {
		return
	}
	c.mu.Lock()
	a, r := c.allocs, c.releases
	c.mu.Unlock()
	c.out.Logf("%s: %d allocs, %d releases, %d outstanding", label, a, r, a-r)
}
