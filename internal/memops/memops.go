// Copyright (C) 2023 Sneller, Inc.
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

// Package memops implements small memory-alignment primitives used by
// the wire-format parser to produce typed views over a byte buffer.
package memops

import "unsafe"

// Aligned reports whether off is a valid base offset for a typed view
// of elements of size elemSize within buf, i.e. whether a slice header
// built from &buf[off] would satisfy the platform's alignment
// requirement for that element size.
func Aligned(buf []byte, off int, elemSize int) bool {
	if off < 0 || off > len(buf) {
		return false
	}
	if off == len(buf) {
		return true
	}
	return uintptr(unsafe.Pointer(&buf[off]))%uintptr(elemSize) == 0
}

// Float64View returns a []float64 view over buf[off:off+n*8]. If the
// offset is not 8-byte aligned the bytes are copied into a freshly
// allocated, aligned slice; otherwise the returned slice aliases buf.
func Float64View(buf []byte, off, n int) []float64 {
	if n == 0 {
		return nil
	}
	if Aligned(buf, off, 8) {
		return unsafe.Slice((*float64)(unsafe.Pointer(&buf[off])), n)
	}
	out := make([]float64, n)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), n*8), buf[off:off+n*8])
	return out
}

// Uint32View returns a []uint32 view over buf[off:off+n*4], copying to
// an aligned buffer when necessary, exactly as Float64View does for
// 8-byte elements.
func Uint32View(buf []byte, off, n int) []uint32 {
	if n == 0 {
		return nil
	}
	if Aligned(buf, off, 4) {
		return unsafe.Slice((*uint32)(unsafe.Pointer(&buf[off])), n)
	}
	out := make([]uint32, n)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), n*4), buf[off:off+n*4])
	return out
}

// Int32View is Uint32View's signed counterpart.
func Int32View(buf []byte, off, n int) []int32 {
	u := Uint32View(buf, off, n)
	if u == nil {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&u[0])), n)
}
