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

// Package spsc implements a single-producer/single-consumer byte queue
// on top of a mring.Buffer. mring itself carries no cursors or
// synchronization by design; this package is the kind of consumer that
// composes them on top, as described in the mring package doc.
package spsc

import (
	"fmt"
	"sync/atomic"

	"github.com/vbuf/mring"
)

// Queue is a lock-free byte queue for exactly one producer goroutine
// and one consumer goroutine. The producer calls Unused/Advance (or
// Write); the consumer calls Content/Consume (or Read). Any other usage
// pattern — two producers, two consumers, or a goroutine doing both
// roles from different call sites — is not safe.
type Queue struct {
	buf  *mring.Buffer
	head atomic.Uintptr // next byte the producer will write
	tail atomic.Uintptr // next byte the consumer will read
}

// New builds a queue over a freshly allocated buffer of the given
// capacity. The caller owns the returned Queue and must call Close when
// done with it.
func New(capacity uintptr) (*Queue, error) {
	buf, err := mring.New(capacity)
	if err != nil {
		return nil, err
	}
	return &Queue{buf: buf}, nil
}

// Close releases the underlying buffer. Only safe once the producer
// and consumer have both stopped using the queue.
func (q *Queue) Close() error {
	return q.buf.Close()
}

func (q *Queue) filled() uintptr {
	return q.head.Load() - q.tail.Load()
}

// Unused returns the contiguous free region the producer may write
// into. Its length is Cap() minus the number of unread bytes; writing
// past it corrupts unread data.
func (q *Queue) Unused() []byte {
	free := q.buf.Len() - q.filled()
	return q.buf.From(q.head.Load())[:free]
}

// Advance tells the queue that n bytes written into the slice returned
// by Unused are now part of the queue's readable content. Producer-side
// only.
func (q *Queue) Advance(n uintptr) error {
	if n > q.buf.Len()-q.filled() {
		return fmt.Errorf("spsc: advance %d exceeds free space", n)
	}
	q.head.Add(n)
	return nil
}

// Write is Unused+Advance in one call: f is handed the free region and
// returns how many bytes it actually produced.
func (q *Queue) Write(f func(buffer []byte) (produced uintptr, err error)) (uintptr, error) {
	n, err := f(q.Unused())
	if err != nil {
		return 0, err
	}
	if err := q.Advance(n); err != nil {
		return 0, err
	}
	return n, nil
}

// Content returns the contiguous readable region. Consumer-side only.
func (q *Queue) Content() []byte {
	return q.buf.From(q.tail.Load())[:q.filled()]
}

// Consume tells the queue that n bytes of the slice returned by
// Content have been read and may be overwritten by the producer.
// Consumer-side only.
func (q *Queue) Consume(n uintptr) error {
	if n > q.filled() {
		return fmt.Errorf("spsc: consume %d exceeds filled space", n)
	}
	q.tail.Add(n)
	return nil
}

// Read is Content+Consume in one call: f is handed the readable region
// and returns how many bytes it actually consumed.
func (q *Queue) Read(f func(buffer []byte) (consumed uintptr, err error)) (uintptr, error) {
	n, err := f(q.Content())
	if err != nil {
		return 0, err
	}
	if err := q.Consume(n); err != nil {
		return 0, err
	}
	return n, nil
}

// Cap returns the queue's fixed capacity.
func (q *Queue) Cap() uintptr {
	return q.buf.Len()
}
