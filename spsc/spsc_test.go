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

package spsc

import (
	"bytes"
	"testing"
)

func TestWriteThenRead(t *testing.T) {
	q, err := New(1 << 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer q.Close()

	msg := []byte("hello, magic ring buffer")
	n, err := q.Write(func(buf []byte) (uintptr, error) {
		return uintptr(copy(buf, msg)), nil
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != uintptr(len(msg)) {
		t.Fatalf("Write produced %d, want %d", n, len(msg))
	}

	var got []byte
	_, err = q.Read(func(buf []byte) (uintptr, error) {
		got = append(got, buf...)
		return uintptr(len(buf)), nil
	})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Fatalf("Read got %q, want %q", got, msg)
	}
}

func TestWrapsAcrossCapacity(t *testing.T) {
	const capacity = 1 << 16
	q, err := New(capacity)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer q.Close()

	chunk := bytes.Repeat([]byte{0xAA}, capacity-16)
	if _, err := q.Write(func(buf []byte) (uintptr, error) {
		return uintptr(copy(buf, chunk)), nil
	}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := q.Read(func(buf []byte) (uintptr, error) {
		return uintptr(len(buf)), nil
	}); err != nil {
		t.Fatalf("first read: %v", err)
	}

	// second write straddles the physical end of the underlying
	// buffer; this only works contiguously because of the double
	// mapping mring.Buffer provides.
	second := bytes.Repeat([]byte{0xBB}, 64)
	n, err := q.Write(func(buf []byte) (uintptr, error) {
		return uintptr(copy(buf, second)), nil
	})
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if n != uintptr(len(second)) {
		t.Fatalf("second write produced %d, want %d", n, len(second))
	}

	var got []byte
	if _, err := q.Read(func(buf []byte) (uintptr, error) {
		got = append(got, buf...)
		return uintptr(len(buf)), nil
	}); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if !bytes.Equal(got, second) {
		t.Fatalf("wrapped read mismatch: got %d bytes, want %d matching 0xBB", len(got), len(second))
	}
}

func TestAdvancePastFreeSpaceFails(t *testing.T) {
	q, err := New(1 << 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer q.Close()

	if err := q.Advance(q.Cap() + 1); err == nil {
		t.Fatalf("Advance beyond capacity did not fail")
	}
}

func TestConsumePastFilledFails(t *testing.T) {
	q, err := New(1 << 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer q.Close()

	if err := q.Consume(1); err == nil {
		t.Fatalf("Consume on empty queue did not fail")
	}
}
