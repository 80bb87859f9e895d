// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub75sim

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Console prints images on a terminal using ANSI color codes, one character
// per pixel.
type Console struct {
	w       io.Writer
	palette ansi256.Palette
	buf     bytes.Buffer
}

// NewConsole returns a Console writing to w, or to stdout when w is nil.
// palette may be nil to use ansi256.Default.
func NewConsole(w io.Writer, palette *ansi256.Palette) *Console {
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	if palette == nil {
		palette = ansi256.Default
	}
	return &Console{w: w, palette: *palette}
}

func (c *Console) String() string {
	return "hub75sim.Console"
}

// Render prints img over the previous image.
//
// The cursor is moved back to the top left corner first, so successive calls
// animate in place.
func (c *Console) Render(img image.Image) error {
	// buf is reused across calls.
	c.buf.Reset()
	_, _ = c.buf.WriteString("\033[H\033[0m")
	r := img.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			_, _ = io.WriteString(&c.buf, c.palette.Block(color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)))
		}
		_, _ = c.buf.WriteString("\033[0m\n")
	}
	_, err := c.buf.WriteTo(c.w)
	return err
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (c *Console) Halt() error {
	_, err := c.w.Write([]byte("\033[0m\n"))
	return err
}
