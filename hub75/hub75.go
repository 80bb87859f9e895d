// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub75

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"iter"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Bits:    4,
	OnRatio: 0.5,
}

// Opts defines the options for the device.
type Opts struct {
	// Bits is the color depth scanned per channel, from 1 to 8. Only the Bits
	// most significant bits of each gamma corrected channel are displayed.
	// Each extra bit doubles the time of a refresh.
	Bits uint8
	// OnRatio is the proportion of a refresh during which the LEDs are lit,
	// strictly between 0 and 1. Higher is brighter but lowers the refresh
	// rate.
	OnRatio float64
}

// Dev is a 64x32 panel with two halves written at a time.
//
// Dev is not safe for concurrent use. Draw between calls to Output.
type Dev struct {
	upper ColorPins
	lower ColorPins
	rows  RowPins
	data  DataPins

	bits uint8
	ftc  compensation
	fb   framebuffer
}

// New returns a Dev with a black framebuffer.
//
// upper drives R1 G1 B1, lower drives R2 G2 B2. opts may be nil, in which
// case DefaultOpts is used.
func New(upper, lower ColorPins, rows RowPins, data DataPins, opts *Opts) (*Dev, error) {
	if upper == nil || lower == nil || rows == nil || data == nil {
		return nil, errors.New("hub75: all pin groups are required")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	ftc, err := newCompensation(opts.Bits, opts.OnRatio)
	if err != nil {
		return nil, err
	}
	return &Dev{
		upper: upper,
		lower: lower,
		rows:  rows,
		data:  data,
		bits:  opts.Bits,
		ftc:   ftc,
	}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("hub75.Dev{%dx%d, %d bits}", Width, Height, d.bits)
}

// Bits returns the color depth being scanned.
func (d *Dev) Bits() uint8 {
	return d.bits
}

// Hold returns the time bit plane mask is displayed for on each row.
func (d *Dev) Hold(mask uint8) time.Duration {
	return time.Duration(d.ftc.duration(mask)) * time.Microsecond
}

// Output displays the framebuffer once.
//
// Every row is selected in turn and each of its bit planes is shifted,
// latched and shown, least significant plane first. The panel is dark
// between calls, so this function is time sensitive and should be called as
// often as possible.
//
// The first error returned by a pin group aborts the refresh and is returned
// as is.
func (d *Dev) Output(dl Delayer) error {
	for row := range uint8(Rows) {
		if err := d.rows.SetRow(row); err != nil {
			return err
		}
		upper := &d.fb.upper[row]
		lower := &d.fb.lower[row]
		for mask := range d.bits {
			for col := range Width {
				if err := d.upper.SetColor(upper[col], mask, d.bits); err != nil {
					return err
				}
				if err := d.lower.SetColor(lower[col], mask, d.bits); err != nil {
					return err
				}
				if err := d.data.Shift(dl); err != nil {
					return err
				}
			}
			if err := d.data.Latch(dl); err != nil {
				return err
			}
			if err := d.data.Show(dl, d.Hold(mask)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Wipe sets the framebuffer to black.
//
// The panel is updated on the next call to Output.
func (d *Dev) Wipe() {
	d.fb.wipe()
}

// Halt implements conn.Resource.
//
// It wipes the framebuffer and halts the data pins when they support it,
// which turns the panel off.
func (d *Dev) Halt() error {
	d.fb.wipe()
	if r, ok := d.data.(conn.Resource); ok {
		return r.Halt()
	}
	return nil
}

// DrawPixels writes the pixels to the framebuffer in order.
//
// Pixels outside Bounds() are ignored. When a point appears more than once,
// the last write wins.
func (d *Dev) DrawPixels(px ...Pixel) {
	for _, p := range px {
		d.fb.set(p.Point, p.Color)
	}
}

// DrawSeq writes a stream of pixels to the framebuffer, like DrawPixels.
func (d *Dev) DrawSeq(seq iter.Seq[Pixel]) {
	for p := range seq {
		d.fb.set(p.Point, p.Color)
	}
}

// Set writes a single pixel, converting c with RGB565Model.
func (d *Dev) Set(x, y int, c color.Color) {
	d.fb.set(image.Pt(x, y), RGB565Model.Convert(c).(RGB565))
}

// At returns the gamma corrected cell at x, y. It is black outside Bounds().
func (d *Dev) At(x, y int) Cell {
	if c := d.fb.cell(image.Pt(x, y)); c != nil {
		return *c
	}
	return Cell{}
}

// ColorModel implements display.Drawer.
//
// Colors are truncated to RGB565 before gamma correction.
func (d *Dev) ColorModel() color.Model {
	return RGB565Model
}

// Bounds implements display.Drawer. It is always 64x32 at the origin.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// Draw implements display.Drawer.
//
// It only updates the framebuffer; nothing is sent to the panel until the
// next Output.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	clipped := r.Intersect(d.Bounds())
	if clipped.Empty() {
		return nil
	}
	sp = sp.Add(clipped.Min.Sub(r.Min))
	srcR := src.Bounds()
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			s := image.Pt(x-clipped.Min.X+sp.X, y-clipped.Min.Y+sp.Y)
			if !s.In(srcR) {
				continue
			}
			d.fb.set(image.Pt(x, y), RGB565Model.Convert(src.At(s.X, s.Y)).(RGB565))
		}
	}
	return nil
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
