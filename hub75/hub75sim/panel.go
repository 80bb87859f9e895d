// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hub75sim emulates a HUB75 panel in memory.
//
// Panel implements the pin groups of package hub75 and rebuilds the image
// the LEDs would show from the bits shifted, latched and displayed. The
// image can be printed on a terminal with Console or served over HTTP with
// Handler.
//
// Useful to develop animations on a workstation, and to test code driving
// hub75.Dev without a panel.
package hub75sim

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/GermanBionicSystems/ledmatrix/hub75"
)

// ErrInjected is returned by the operation selected with Opts.FailAfter.
var ErrInjected = errors.New("hub75sim: injected failure")

// Opts represents the options available for the panel.
type Opts struct {
	// Bits must match the hub75.Opts.Bits of the driver.
	Bits uint8
	// FailAfter makes the FailAfter-th pin operation return ErrInjected.
	// Zero disables it.
	FailAfter int

	_ struct{}
}

// Stats counts the operations received by a Panel.
type Stats struct {
	Rows    int
	Shifts  int
	Latches int
	Shows   int
	// Lit is the total time the LEDs were enabled.
	Lit time.Duration
}

// lines is the state of the R, G and B lines of one half.
type lines [3]bool

// Panel is an emulated 64x32 panel.
type Panel struct {
	mu        sync.Mutex
	bits      uint8
	failAfter int
	ops       int

	row    uint8
	plane  uint8
	in     [2]lines
	shift  [2][hub75.Width]lines
	latch  [2][hub75.Width]lines
	next   [2][hub75.Width]hub75.Cell
	frame  [hub75.Height][hub75.Width]hub75.Cell
	frames int
	stats  Stats
}

// New returns a black Panel. opts may be nil, in which case the panel
// matches hub75.DefaultOpts.
func New(opts *Opts) (*Panel, error) {
	if opts == nil {
		opts = &Opts{Bits: hub75.DefaultOpts.Bits}
	}
	if opts.Bits < 1 || opts.Bits > 8 {
		return nil, errors.New("hub75sim: bits must be between 1 and 8")
	}
	return &Panel{bits: opts.Bits, failAfter: opts.FailAfter}, nil
}

func (p *Panel) String() string {
	return fmt.Sprintf("hub75sim.Panel{%d bits}", p.bits)
}

// Halt implements conn.Resource. It clears the panel.
func (p *Panel) Halt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frame = [hub75.Height][hub75.Width]hub75.Cell{}
	p.next = [2][hub75.Width]hub75.Cell{}
	return nil
}

// Upper returns the color lines of rows 0-15.
func (p *Panel) Upper() hub75.ColorPins {
	return &half{p: p, i: 0}
}

// Lower returns the color lines of rows 16-31.
func (p *Panel) Lower() hub75.ColorPins {
	return &half{p: p, i: 1}
}

// SetRow implements hub75.RowPins.
func (p *Panel) SetRow(row uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.opLocked(); err != nil {
		return err
	}
	if row >= hub75.Rows {
		return fmt.Errorf("hub75sim: invalid row %d", row)
	}
	p.row = row
	p.plane = 0
	p.next = [2][hub75.Width]hub75.Cell{}
	p.stats.Rows++
	return nil
}

// Shift implements hub75.DataPins.
//
// The chain is fed from the right: after 64 shifts the first column shifted
// is in column 0.
func (p *Panel) Shift(d hub75.Delayer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.opLocked(); err != nil {
		return err
	}
	for i := range p.shift {
		copy(p.shift[i][:], p.shift[i][1:])
		p.shift[i][hub75.Width-1] = p.in[i]
	}
	p.stats.Shifts++
	return nil
}

// Latch implements hub75.DataPins.
func (p *Panel) Latch(d hub75.Delayer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.opLocked(); err != nil {
		return err
	}
	p.latch = p.shift
	p.stats.Latches++
	return nil
}

// Show implements hub75.DataPins.
//
// Each call is the next bit plane of the selected row. The row is copied to
// the frame once its most significant plane is shown.
func (p *Panel) Show(d hub75.Delayer, hold time.Duration) error {
	p.mu.Lock()
	if err := p.opLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	if p.plane < p.bits {
		shift := p.plane + 8 - p.bits
		for i := range p.latch {
			for x, l := range p.latch[i] {
				c := &p.next[i][x]
				c.R |= bit(l[0]) << shift
				c.G |= bit(l[1]) << shift
				c.B |= bit(l[2]) << shift
			}
		}
	}
	p.plane++
	if p.plane == p.bits {
		p.frame[p.row] = p.next[0]
		p.frame[p.row+hub75.Rows] = p.next[1]
		if p.row == hub75.Rows-1 {
			p.frames++
		}
	}
	p.stats.Shows++
	p.stats.Lit += hold
	p.mu.Unlock()
	d.Delay(hold)
	return nil
}

// Stats returns the operations counted so far.
func (p *Panel) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Frames returns the number of complete refreshes received.
func (p *Panel) Frames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// At returns the color displayed at x, y, truncated to the scanned bits.
func (p *Panel) At(x, y int) hub75.Cell {
	if x < 0 || x >= hub75.Width || y < 0 || y >= hub75.Height {
		return hub75.Cell{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame[y][x]
}

// Image returns a copy of what the panel displays.
func (p *Panel) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, hub75.Width, hub75.Height))
	p.mu.Lock()
	defer p.mu.Unlock()
	for y := range p.frame {
		for x, c := range p.frame[y] {
			img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return img
}

// opLocked counts an operation and returns ErrInjected when it is the one
// selected to fail.
func (p *Panel) opLocked() error {
	p.ops++
	if p.failAfter != 0 && p.ops == p.failAfter {
		return ErrInjected
	}
	return nil
}

// half is the color lines of one half.
type half struct {
	p *Panel
	i int
}

// SetColor implements hub75.ColorPins.
func (h *half) SetColor(c hub75.Cell, mask, bits uint8) error {
	h.p.mu.Lock()
	defer h.p.mu.Unlock()
	if err := h.p.opLocked(); err != nil {
		return err
	}
	s := mask + 8 - bits
	h.p.in[h.i] = lines{(c.R>>s)&1 == 1, (c.G>>s)&1 == 1, (c.B>>s)&1 == 1}
	return nil
}

func bit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

var _ hub75.RowPins = &Panel{}
var _ hub75.DataPins = &Panel{}
var _ hub75.ColorPins = &half{}
