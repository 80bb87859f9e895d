// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub75

import (
	"time"

	"periph.io/x/host/v3/cpu"
)

// SpinDelay busy loops for the requested time.
//
// It is accurate to about a microsecond on a Raspberry Pi but keeps a CPU
// core busy. It is the Delayer to use for a real panel.
type SpinDelay struct{}

// Delay implements Delayer.
func (SpinDelay) Delay(d time.Duration) {
	cpu.Nanospin(d)
}

// SleepDelay yields to the scheduler.
//
// The Go runtime does not sleep for less than tens of microseconds, so the
// low bit planes are held much longer than requested and colors are off.
// Useful with hub75sim or to lower the CPU usage of a mostly static image.
type SleepDelay struct{}

// Delay implements Delayer.
func (SleepDelay) Delay(d time.Duration) {
	time.Sleep(d)
}

var _ Delayer = SpinDelay{}
var _ Delayer = SleepDelay{}
