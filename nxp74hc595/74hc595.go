// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// The 74HC595 is a serial shift register. It converts a serial stream to a
// parallel output, so an SPI port can drive eight output lines.
//
// Some HUB75 driver boards wire the A B C D row address lines of the panel
// to a 74HC595 to save GPIOs. Dev implements hub75.RowPins for them and
// writes a row address in a single SPI transaction. The remaining outputs
// are available as gpio.PinOut.
//
// # Datasheet
//
// https://www.nexperia.com/product/74HC595D
package nxp74hc595

import (
	"errors"
	"fmt"
	"sync"

	"github.com/GermanBionicSystems/ledmatrix/hub75"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	devName = "74HC595"
	numPins = 8
)

var (
	ErrNotImplemented = errors.New("nxp74hc595: not implemented")
)

// DefaultOpts wires the row address to Q0 (A) through Q3 (D).
var DefaultOpts = Opts{RowOffset: 0}

// Opts defines the options for the device.
type Opts struct {
	// RowOffset is the output connected to the A line; B, C and D follow.
	// From 0 to 4.
	RowOffset int
}

// Dev represents a 74hc595 device.
type Dev struct {
	// Pins are the Q0 to Q7 outputs.
	Pins []gpio.PinOut

	mu        sync.Mutex
	conn      spi.Conn
	value     byte
	written   bool
	rowOffset int
}

// NewSPI connects to the 74HC595 on p.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("nxp74hc595: %w", err)
	}
	return New(c, opts)
}

// New returns a Dev using an already connected spi.Conn. opts may be nil.
func New(conn spi.Conn, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.RowOffset < 0 || opts.RowOffset > numPins-4 {
		return nil, fmt.Errorf("nxp74hc595: invalid row offset %d", opts.RowOffset)
	}
	dev := &Dev{conn: conn, rowOffset: opts.RowOffset, Pins: make([]gpio.PinOut, numPins)}
	for ix := range numPins {
		dev.Pins[ix] = &Pin{number: ix, name: fmt.Sprintf("%s_Q%d", devName, ix), dev: dev}
	}
	return dev, nil
}

// SetRow implements hub75.RowPins.
//
// Only the four address outputs change.
func (dev *Dev) SetRow(row uint8) error {
	if row > 15 {
		return fmt.Errorf("nxp74hc595: invalid row %d", row)
	}
	return dev.write(row<<dev.rowOffset, 0x0f<<dev.rowOffset)
}

// write updates the outputs selected by mask. The first write always goes
// out, later ones only when the outputs change.
func (dev *Dev) write(value, mask byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.conn == nil {
		return errors.New("nxp74hc595: halted")
	}
	next := dev.value&^mask | value&mask
	if dev.written && next == dev.value {
		return nil
	}
	if err := dev.conn.Tx([]byte{next}, nil); err != nil {
		return err
	}
	dev.value = next
	dev.written = true
	return nil
}

// Halt implements conn.Resource.
//
// The device can not be used afterward.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.conn = nil
	return nil
}

func (dev *Dev) String() string {
	return devName
}

var _ hub75.RowPins = &Dev{}
