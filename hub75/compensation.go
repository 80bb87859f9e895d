// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub75

import (
	"errors"
	"math"
)

// compensation computes the hold time of each bit plane so the light
// emitted for a row stays at the configured on ratio whatever the bit depth.
//
// Each plane costs a fixed overhead to shift and latch 64 columns. With
// Bits planes per row, the overhead grows with the depth while the useful
// hold does not, and the panel gets darker. h scales the holds with the
// depth to counter it.
type compensation struct {
	bits uint8
	h    uint32
}

func newCompensation(bits uint8, onRatio float64) (compensation, error) {
	if !(onRatio > 0 && onRatio < 1) {
		return compensation{}, errors.New("hub75: on ratio must be strictly between 0 and 1")
	}
	if bits < 1 || bits > 8 {
		return compensation{}, errors.New("hub75: bits must be between 1 and 8")
	}
	p := float64(2*bits + 1)
	h := math.Floor(p * onRatio / (1 - onRatio))
	if h > math.MaxUint32 {
		h = math.MaxUint32
	}
	return compensation{bits: bits, h: uint32(h)}, nil
}

// duration returns floor(2^mask * h / (2^bits - 1)).
func (c *compensation) duration(mask uint8) uint32 {
	return uint32((uint64(1) << mask) * uint64(c.h) / (uint64(1)<<c.bits - 1))
}
