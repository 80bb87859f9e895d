// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub75

import (
	"fmt"
	"image/color"
)

// RGB565 is a 16 bit color: 5 bits of red, 6 bits of green and 5 bits of
// blue, red in the most significant bits.
type RGB565 uint16

// NewRGB565 packs the channels. r and b are in [0, 31], g in [0, 63]; extra
// bits are dropped.
func NewRGB565(r, g, b uint8) RGB565 {
	return RGB565(uint16(r&0x1f)<<11 | uint16(g&0x3f)<<5 | uint16(b&0x1f))
}

// R returns the 5 bit red channel.
func (c RGB565) R() uint8 {
	return uint8(c>>11) & 0x1f
}

// G returns the 6 bit green channel.
func (c RGB565) G() uint8 {
	return uint8(c>>5) & 0x3f
}

// B returns the 5 bit blue channel.
func (c RGB565) B() uint8 {
	return uint8(c) & 0x1f
}

// RGBA implements color.Color.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r8 := uint32(c.R())<<3 | uint32(c.R())>>2
	g8 := uint32(c.G())<<2 | uint32(c.G())>>4
	b8 := uint32(c.B())<<3 | uint32(c.B())>>2
	return r8 * 0x101, g8 * 0x101, b8 * 0x101, 0xffff
}

func (c RGB565) String() string {
	return fmt.Sprintf("RGB565(%d, %d, %d)", c.R(), c.G(), c.B())
}

// RGB565Model converts any color to RGB565 by truncating each channel.
// Alpha is ignored.
var RGB565Model = color.ModelFunc(convertRGB565)

func convertRGB565(c color.Color) color.Color {
	if c, ok := c.(RGB565); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return RGB565(uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11))
}

var _ color.Color = RGB565(0)
