// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hub75 drives 64x32 RGB LED matrix panels with a HUB75 connector.
//
// The panel is two 64x16 halves scanned in parallel: each column clock
// shifts one bit of red, green and blue for the upper half and one for the
// lower half, four address lines select which of the 16 row pairs is lit.
// Nothing on the panel holds an image, so the host has to keep refreshing it.
//
// Colors are rendered with binary-coded modulation: for every row, each bit
// plane of the quantized color is shifted in and displayed for a time
// proportional to its binary weight. The per-plane hold is compensated so
// that the perceived brightness does not change with the selected bit depth.
//
// # Usage
//
// Draw into the framebuffer with Draw, Set or DrawPixels, then call Output
// in a tight loop. Output is synchronous and time sensitive; the panel is
// only lit while it runs.
//
// # Wiring
//
// R1 G1 B1 carry the upper half, R2 G2 B2 the lower half. A B C D select the
// row. CLK shifts a column, LAT latches the shifted row and OE (active low)
// turns the LEDs on.
//
// # Reference
//
// https://github.com/david-sawatzke/hub75-rs
package hub75
