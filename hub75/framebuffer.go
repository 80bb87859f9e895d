// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub75

import "image"

const (
	// Width is the number of columns of the panel.
	Width = 64
	// Height is the number of rows of the panel.
	Height = 32
	// Rows is the number of row addresses; each address lights one row of
	// both halves.
	Rows = Height / 2
)

// Cell is one gamma corrected pixel of the framebuffer.
type Cell struct {
	R, G, B uint8
}

// Pixel is a single pixel write.
type Pixel struct {
	Point image.Point
	Color RGB565
}

// half is 16 rows of the panel.
type half [Rows][Width]Cell

// framebuffer holds the upper rows 0-15 and the lower rows 16-31.
type framebuffer struct {
	upper half
	lower half
}

// cell returns the cell at p, or nil when p is outside the panel.
func (f *framebuffer) cell(p image.Point) *Cell {
	if p.X < 0 || p.X >= Width || p.Y < 0 || p.Y >= Height {
		return nil
	}
	if p.Y < Rows {
		return &f.upper[p.Y][p.X]
	}
	return &f.lower[p.Y-Rows][p.X]
}

func (f *framebuffer) set(p image.Point, c RGB565) {
	if dst := f.cell(p); dst != nil {
		*dst = quantize(c)
	}
}

func (f *framebuffer) wipe() {
	f.upper = half{}
	f.lower = half{}
}
