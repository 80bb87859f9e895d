// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub75

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// pulse is the width of the clock and latch pulses.
const pulse = time.Microsecond

// RGBPins are the three color lines of one half of the panel.
type RGBPins struct {
	R, G, B gpio.PinOut
}

// SetColor implements ColorPins.
func (p *RGBPins) SetColor(c Cell, mask, bits uint8) error {
	if err := p.R.Out(gpio.Level(colorBit(c.R, mask, bits))); err != nil {
		return err
	}
	if err := p.G.Out(gpio.Level(colorBit(c.G, mask, bits))); err != nil {
		return err
	}
	return p.B.Out(gpio.Level(colorBit(c.B, mask, bits)))
}

func (p *RGBPins) String() string {
	return fmt.Sprintf("RGBPins{%s, %s, %s}", p.R, p.G, p.B)
}

// AddrPins are the four row address lines; A is the least significant bit.
type AddrPins struct {
	A, B, C, D gpio.PinOut
}

// SetRow implements RowPins.
func (p *AddrPins) SetRow(row uint8) error {
	for i, l := range [...]gpio.PinOut{p.A, p.B, p.C, p.D} {
		if err := l.Out(gpio.Level((row>>i)&1 == 1)); err != nil {
			return err
		}
	}
	return nil
}

func (p *AddrPins) String() string {
	return fmt.Sprintf("AddrPins{%s, %s, %s, %s}", p.A, p.B, p.C, p.D)
}

// ControlPins are the clock, latch and output enable lines.
//
// OE is active low: the LEDs are lit while it is Low.
type ControlPins struct {
	CLK, LAT, OE gpio.PinOut
}

// Shift implements DataPins.
func (p *ControlPins) Shift(d Delayer) error {
	if err := p.CLK.Out(gpio.High); err != nil {
		return err
	}
	d.Delay(pulse)
	if err := p.CLK.Out(gpio.Low); err != nil {
		return err
	}
	d.Delay(pulse)
	return nil
}

// Latch implements DataPins.
func (p *ControlPins) Latch(d Delayer) error {
	if err := p.LAT.Out(gpio.High); err != nil {
		return err
	}
	d.Delay(pulse)
	return p.LAT.Out(gpio.Low)
}

// Show implements DataPins.
func (p *ControlPins) Show(d Delayer, hold time.Duration) error {
	if err := p.OE.Out(gpio.Low); err != nil {
		return err
	}
	d.Delay(hold)
	return p.OE.Out(gpio.High)
}

// Halt implements conn.Resource.
//
// It disables the output so the panel goes dark.
func (p *ControlPins) Halt() error {
	return p.OE.Out(gpio.High)
}

func (p *ControlPins) String() string {
	return fmt.Sprintf("ControlPins{%s, %s, %s}", p.CLK, p.LAT, p.OE)
}

var _ ColorPins = &RGBPins{}
var _ RowPins = &AddrPins{}
var _ DataPins = &ControlPins{}
var _ conn.Resource = &ControlPins{}
