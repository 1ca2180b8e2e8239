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

//go:build linux

package mring

import "golang.org/x/sys/unix"

// backingFD uses memfd_create: a named-but-unlinked anonymous memory
// object that supports being mapped more than once. The name is purely
// for /proc/<pid>/maps debugging; it has no other effect.
func backingFD(n uintptr) (int, error) {
	return unix.MemfdCreate("mring", unix.MFD_CLOEXEC)
}
