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

//go:build darwin

package mring

import (
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

var darwinBackingSeq uint64

// backingFD has no memfd_create on Darwin, so it fakes one: create a
// file under O_EXCL, unlink it immediately, and keep the descriptor.
// The inode (and its pages) stay alive as long as the descriptor or a
// mapping of it is open, with no path left on disk for anything else
// to open concurrently.
func backingFD(n uintptr) (int, error) {
	name := fmt.Sprintf("/tmp/.mring-%d-%d", os.Getpid(), atomic.AddUint64(&darwinBackingSeq, 1))
	fd, err := unix.Open(name, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL, 0600)
	if err != nil {
		return -1, fmt.Errorf("open backing file: %w", err)
	}
	if err := unix.Unlink(name); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("unlink backing file: %w", err)
	}
	return fd, nil
}
