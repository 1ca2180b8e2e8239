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

package mring

import (
	"runtime"
	"unsafe"
)

// Buffer is a fixed-capacity byte buffer whose backing memory is
// mapped twice, back to back, in the process address space. It is the
// sole owner of that mapping; there is no reference counting.
//
// A *Buffer may be passed between goroutines freely. Concurrent reads
// of disjoint byte ranges are safe. Buffer imposes no ordering or
// atomicity on concurrent writes, or on a read racing a write: callers
// that need that discipline compose it on top, the way spsc does.
type Buffer struct {
	base uintptr
	len  uintptr
	mask uintptr
}

// New allocates a buffer with exactly len bytes of logical capacity.
// len must be nonzero, a power of two, and a multiple of MinLen(); any
// other value fails validation before any system call is made.
func New(len uintptr) (*Buffer, error) {
	if len == 0 {
		return nil, invalidLength("len must be greater than zero")
	}
	if len&(len-1) != 0 {
		return nil, invalidLength("len %d is not a power of two", len)
	}
	g := minLen()
	if len%g != 0 {
		return nil, invalidLength("len %d is not a multiple of the platform granularity %d", len, g)
	}

	base, err := allocMapping(len)
	if err != nil {
		return nil, err
	}

	b := &Buffer{base: base, len: len, mask: len - 1}
	runtime.SetFinalizer(b, (*Buffer).finalize)
	return b, nil
}

// MinLen returns the platform's allocation-granularity unit: the value
// that any len passed to New must divide.
func MinLen() uintptr {
	return minLen()
}

// Len returns the buffer's logical capacity N.
func (b *Buffer) Len() uintptr {
	return b.len
}

// Close releases both virtual mappings and the physical backing. No
// address derived from b remains valid afterward. Close is idempotent;
// a *Buffer has a single owner, so there is nothing to coordinate with
// other holders.
func (b *Buffer) Close() error {
	if b.base == 0 {
		return nil
	}
	freeMapping(b.base, b.len)
	b.base = 0
	runtime.SetFinalizer(b, nil)
	return nil
}

// finalize is the GC backstop for a Buffer whose owner forgot to call
// Close. It is not a substitute for Close: relying on the GC to run a
// finalizer promptly is not guaranteed, so Close should always be
// called explicitly (e.g. via defer) when the buffer goes out of scope.
func (b *Buffer) finalize() {
	if b.base != 0 {
		freeMapping(b.base, b.len)
		b.base = 0
	}
}

func (b *Buffer) byteAt(offset uintptr) *byte {
	return (*byte)(unsafe.Pointer(b.base + offset))
}

func (b *Buffer) sliceAt(offset, n uintptr) []byte {
	return unsafe.Slice(b.byteAt(offset), int(n))
}

// At returns the byte at logical offset i. Any i >= 0 is valid; the
// offset is reduced modulo Len().
func (b *Buffer) At(i uintptr) byte {
	return *b.byteAt(i & b.mask)
}

// SetAt writes v at logical offset i. Any i >= 0 is valid.
func (b *Buffer) SetAt(i uintptr, v byte) {
	*b.byteAt(i&b.mask) = v
}

// Slice returns the contiguous [a, end) byte range as one slice. If
// a > end the result is an empty slice. It panics if end-a exceeds
// Len(): that range could not be satisfied by a single mapping even
// with the doubled address space.
func (b *Buffer) Slice(a, end uintptr) []byte {
	if a > end {
		return nil
	}
	n := end - a
	if n > b.len {
		panic("mring: range exceeds buffer capacity")
	}
	return b.sliceAt(a&b.mask, n)
}

// To returns the Len() bytes ending at logical offset end, i.e. the
// range [end-Len(), end). end must be >= Len(); this is the shape a
// caller holding a write cursor uses to get "everything up to here" as
// one contiguous slice.
func (b *Buffer) To(end uintptr) []byte {
	if end < b.len {
		panic("mring: end precedes buffer capacity")
	}
	return b.sliceAt((end-b.len)&b.mask, b.len)
}

// ToInclusive returns the Len() bytes ending at and including logical
// offset end, i.e. the range [end-Len()+1, end]. end must be >= Len()-1.
func (b *Buffer) ToInclusive(end uintptr) []byte {
	if end+1 < b.len {
		panic("mring: end precedes buffer capacity")
	}
	return b.sliceAt((end-b.len+1)&b.mask, b.len)
}

// From returns the Len() bytes starting at logical offset start.
func (b *Buffer) From(start uintptr) []byte {
	return b.sliceAt(start&b.mask, b.len)
}

// Full returns all Len() bytes of the buffer, starting at offset 0.
func (b *Buffer) Full() []byte {
	return b.sliceAt(0, b.len)
}

// Bytes is an alias for Full, matching the Bytes() []byte convention
// used elsewhere for byte-buffer accessors.
func (b *Buffer) Bytes() []byte {
	return b.Full()
}
