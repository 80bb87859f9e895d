// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub75

import "time"

// ColorPins controls the color lines of one half of the panel.
type ColorPins interface {
	// SetColor sets the lines to bit (mask + 8 - bits) of each channel of c.
	SetColor(c Cell, mask, bits uint8) error
}

// RowPins controls the row address lines shared by both halves.
type RowPins interface {
	// SetRow selects row 0-15.
	SetRow(row uint8) error
}

// DataPins controls the transfer of shifted data to the panel.
type DataPins interface {
	// Shift clocks one column into the shift registers.
	Shift(d Delayer) error
	// Latch commits the shifted columns to the output drivers.
	Latch(d Delayer) error
	// Show lights the latched row for hold.
	Show(d Delayer, hold time.Duration) error
}

// Delayer blocks the caller for a short time.
//
// Implementations must be accurate in the microsecond range for a stable
// image.
type Delayer interface {
	Delay(d time.Duration)
}

// colorBit returns bit (mask + 8 - bits) of v.
func colorBit(v, mask, bits uint8) bool {
	return (v>>(mask+8-bits))&1 == 1
}
