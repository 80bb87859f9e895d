// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ledmatrix is a container for LED matrix panel drivers.
//
// hub75 drives 64x32 RGB panels, hub75/hub75sim emulates them and
// nxp74hc595 drives the row address lines of boards using a shift register.
package ledmatrix
