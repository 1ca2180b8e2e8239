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

//go:build linux || darwin

package mring

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// backingFD creates an anonymous, initially empty physical backing and
// returns a file descriptor for it; allocMapping then sizes it to n
// bytes with ftruncate. The descriptor is only needed long
// enough to install both views; mmap keeps the pages alive afterward.
// Implemented per-OS in mmap_linux.go and mmap_darwin.go.

func minLen() uintptr {
	return uintptr(unix.Getpagesize())
}

// allocMapping realizes the abstract sequence from the platform
// backend design: create the backing, reserve 2*n of address space in
// one atomic mmap (eliminating the steal-the-upper-half race described
// for POSIX backends, since nothing else can land inside a reservation
// this process already holds), then replace each half in place with a
// MAP_FIXED mapping of the backing.
func allocMapping(n uintptr) (uintptr, error) {
	fd, err := backingFD(n)
	if err != nil {
		return 0, &Error{Kind: BackingCreationFailed, Op: "alloc", Err: err}
	}
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, int64(n)); err != nil {
		return 0, &Error{Kind: BackingCreationFailed, Op: "alloc", Err: fmt.Errorf("ftruncate: %w", err)}
	}

	placeholder, err := unix.MmapPtr(-1, 0, nil, 2*n, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, &Error{Kind: AddressReservationFailed, Op: "alloc", Err: fmt.Errorf("reserve 2n window: %w", err)}
	}
	base := uintptr(placeholder)

	if _, err := unix.MmapPtr(fd, 0, placeholder, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_FIXED); err != nil {
		unix.MunmapPtr(placeholder, 2*n)
		return 0, &Error{Kind: MappingFailed, Op: "alloc", Err: fmt.Errorf("map first half: %w", err)}
	}
	second := unsafe.Pointer(base + n)
	if _, err := unix.MmapPtr(fd, 0, second, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_FIXED); err != nil {
		unix.MunmapPtr(placeholder, 2*n)
		return 0, &Error{Kind: MappingFailed, Op: "alloc", Err: fmt.Errorf("map second half: %w", err)}
	}

	return base, nil
}

func freeMapping(base, n uintptr) {
	unix.MunmapPtr(unsafe.Pointer(base), 2*n)
}
