// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub75sim

import (
	"sync/atomic"
	"time"

	"github.com/GermanBionicSystems/ledmatrix/hub75"
)

// Clock is a hub75.Delayer that returns immediately and adds up the time it
// was asked to wait.
type Clock struct {
	total atomic.Int64
}

// Delay implements hub75.Delayer.
func (c *Clock) Delay(d time.Duration) {
	c.total.Add(int64(d))
}

// Elapsed returns the sum of all the delays.
func (c *Clock) Elapsed() time.Duration {
	return time.Duration(c.total.Load())
}

var _ hub75.Delayer = &Clock{}
