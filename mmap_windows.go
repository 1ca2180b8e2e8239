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

//go:build windows

package mring

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func minLen() uintptr {
	var info windows.SystemInfo
	windows.GetSystemInfo(&info)
	return uintptr(info.AllocationGranularity)
}

// allocMapping follows the placeholder-splitting sequence Windows 10
// 1803+ added specifically to make this trick race-free: reserve a 2n
// placeholder with VirtualAlloc2, split it into two n placeholders with
// VirtualFree(MEM_PRESERVE_PLACEHOLDER), then MapViewOfFile3 a section
// into each half with MEM_REPLACE_PLACEHOLDER. Nothing else in the
// process can land inside a placeholder this process already holds, so
// unlike the classic reserve/release/remap dance there is no window in
// which another allocator could steal the upper half.
func allocMapping(n uintptr) (uintptr, error) {
	section, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, uint32(uint64(n)>>32), uint32(n), nil)
	if err != nil {
		return 0, &Error{Kind: BackingCreationFailed, Op: "alloc", Err: fmt.Errorf("CreateFileMapping: %w", err)}
	}
	defer windows.CloseHandle(section)

	base, err := windows.VirtualAlloc2(0, 0, 2*n,
		windows.MEM_RESERVE|windows.MEM_RESERVE_PLACEHOLDER, windows.PAGE_NOACCESS, nil, 0)
	if err != nil {
		return 0, &Error{Kind: AddressReservationFailed, Op: "alloc", Err: fmt.Errorf("VirtualAlloc2(reserve 2n): %w", err)}
	}

	if err := windows.VirtualFree(base, n, windows.MEM_RELEASE|windows.MEM_PRESERVE_PLACEHOLDER); err != nil {
		windows.VirtualFree(base, 0, windows.MEM_RELEASE)
		return 0, &Error{Kind: AddressReservationFailed, Op: "alloc", Err: fmt.Errorf("split placeholder: %w", err)}
	}

	if _, err := windows.MapViewOfFile3(section, 0, base, 0, n,
		windows.MEM_REPLACE_PLACEHOLDER, windows.PAGE_READWRITE, nil, 0); err != nil {
		windows.VirtualFree(base, 0, windows.MEM_RELEASE)
		windows.VirtualFree(base+n, 0, windows.MEM_RELEASE)
		return 0, &Error{Kind: MappingFailed, Op: "alloc", Err: fmt.Errorf("MapViewOfFile3(first half): %w", err)}
	}
	if _, err := windows.MapViewOfFile3(section, 0, base+n, 0, n,
		windows.MEM_REPLACE_PLACEHOLDER, windows.PAGE_READWRITE, nil, 0); err != nil {
		windows.UnmapViewOfFile(base)
		windows.VirtualFree(base+n, 0, windows.MEM_RELEASE)
		return 0, &Error{Kind: MappingFailed, Op: "alloc", Err: fmt.Errorf("MapViewOfFile3(second half): %w", err)}
	}

	return base, nil
}

func freeMapping(base, n uintptr) {
	windows.UnmapViewOfFile(base)
	windows.UnmapViewOfFile(base + n)
}
