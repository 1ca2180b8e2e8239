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

// Package mring provides a fixed-capacity byte buffer backed by two
// virtual-memory mappings of the same physical region, placed back to
// back so that any contiguous span of up to Len() bytes starting
// anywhere in [0, 2*Len()) is addressable as one uninterrupted slice.
//
// This is the classic "magic ring buffer" trick: allocate N bytes of
// physical backing once, then map it twice into a 2N virtual window.
// A write at logical offset i is simultaneously visible at i+N, so
// callers never need to special-case a wrap around the end of the
// buffer. mring itself carries no head/tail cursors or synchronization;
// see the spsc subpackage for a minimal queue built on top of it.
package mring
