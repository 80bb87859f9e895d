// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub75

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/display/displaytest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

var errBus = errors.New("bus failure")

type opKind int

const (
	opSetRow opKind = iota
	opUpper
	opLower
	opShift
	opLatch
	opShow
)

type op struct {
	kind opKind
	row  uint8
	cell Cell
	mask uint8
	hold time.Duration
}

// recorder fakes every pin group of a panel and tracks the scan position.
type recorder struct {
	ops []op

	// Position of the scan.
	row, plane, col int

	// fail returns the error to report for the operation about to be
	// recorded, or nil.
	fail func(r *recorder, kind opKind) error
}

type colorView struct {
	r    *recorder
	kind opKind
}

func (v colorView) SetColor(c Cell, mask, bits uint8) error {
	return v.r.record(op{kind: v.kind, cell: c, mask: mask})
}

func (r *recorder) record(o op) error {
	if r.fail != nil {
		if err := r.fail(r, o.kind); err != nil {
			r.ops = append(r.ops, o)
			return err
		}
	}
	r.ops = append(r.ops, o)
	return nil
}

func (r *recorder) SetRow(row uint8) error {
	r.row, r.plane, r.col = int(row), 0, 0
	return r.record(op{kind: opSetRow, row: row})
}

func (r *recorder) Shift(d Delayer) error {
	err := r.record(op{kind: opShift})
	r.col++
	return err
}

func (r *recorder) Latch(d Delayer) error {
	r.col = 0
	return r.record(op{kind: opLatch})
}

func (r *recorder) Show(d Delayer, hold time.Duration) error {
	err := r.record(op{kind: opShow, hold: hold})
	r.plane++
	return err
}

func (r *recorder) count(kind opKind) int {
	n := 0
	for _, o := range r.ops {
		if o.kind == kind {
			n++
		}
	}
	return n
}

type nopDelay struct{}

func (nopDelay) Delay(time.Duration) {}

func newTestDev(t *testing.T, bits uint8) (*Dev, *recorder) {
	r := &recorder{}
	d, err := New(colorView{r, opUpper}, colorView{r, opLower}, r, r, &Opts{Bits: bits, OnRatio: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	return d, r
}

func TestNew(t *testing.T) {
	r := &recorder{}
	d, err := New(colorView{r, opUpper}, colorView{r, opLower}, r, r, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Bits() != DefaultOpts.Bits {
		t.Errorf("Bits() = %d, want %d", d.Bits(), DefaultOpts.Bits)
	}
	if s := d.String(); !strings.Contains(s, "64x32") {
		t.Errorf("String() = %q", s)
	}
	if diff := cmp.Diff(d.Bounds(), image.Rect(0, 0, 64, 32)); diff != "" {
		t.Errorf("Bounds() difference (-got +want):\n%s", diff)
	}
	if d.fb != (framebuffer{}) {
		t.Error("framebuffer is not black")
	}
	if len(r.ops) != 0 {
		t.Errorf("New() touched the pins: %d ops", len(r.ops))
	}
}

func TestNewInvalid(t *testing.T) {
	r := &recorder{}
	for _, tc := range []struct {
		name string
		opts Opts
	}{
		{"ratio 0", Opts{Bits: 4, OnRatio: 0}},
		{"ratio 1", Opts{Bits: 4, OnRatio: 1}},
		{"ratio negative", Opts{Bits: 4, OnRatio: -0.1}},
		{"ratio above 1", Opts{Bits: 4, OnRatio: 1.5}},
		{"bits 0", Opts{Bits: 0, OnRatio: 0.5}},
		{"bits 9", Opts{Bits: 9, OnRatio: 0.5}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(colorView{r, opUpper}, colorView{r, opLower}, r, r, &tc.opts); err == nil {
				t.Error("New() succeeded")
			}
		})
	}
	if _, err := New(nil, colorView{r, opLower}, r, r, nil); err == nil {
		t.Error("New() succeeded without upper pins")
	}
}

func TestDrawPixels(t *testing.T) {
	d, _ := newTestDev(t, 8)

	d.DrawPixels(Pixel{Point: image.Pt(0, 0), Color: 0})
	if got, want := d.fb.upper[0][0], (Cell{R: gamma8[7], G: gamma8[3], B: gamma8[7]}); got != want {
		t.Errorf("(0,0) = %+v, want %+v", got, want)
	}

	white := NewRGB565(31, 63, 31)
	d.DrawPixels(Pixel{Point: image.Pt(63, 31), Color: white})
	if got, want := d.fb.lower[15][63], (Cell{255, 255, 255}); got != want {
		t.Errorf("lower[15][63] = %+v, want %+v", got, want)
	}
	if got := d.At(63, 31); got != (Cell{255, 255, 255}) {
		t.Errorf("At(63, 31) = %+v", got)
	}

	d.DrawPixels(Pixel{Point: image.Pt(5, 16), Color: white})
	if got := d.fb.lower[0][5]; got != (Cell{255, 255, 255}) {
		t.Errorf("row 16 went to %+v instead of lower[0]", got)
	}
	if got := d.fb.upper[15][5]; got != (Cell{}) {
		t.Errorf("upper[15][5] = %+v, want black", got)
	}
}

func TestDrawPixelsOutside(t *testing.T) {
	d, _ := newTestDev(t, 4)
	before := d.fb
	white := NewRGB565(31, 63, 31)
	d.DrawPixels(
		Pixel{Point: image.Pt(64, 0), Color: white},
		Pixel{Point: image.Pt(0, 32), Color: white},
		Pixel{Point: image.Pt(-1, 0), Color: white},
		Pixel{Point: image.Pt(0, -1), Color: white},
		Pixel{Point: image.Pt(-100, 100), Color: white},
	)
	if d.fb != before {
		t.Error("out of bounds writes modified the framebuffer")
	}
	if got := d.At(64, 0); got != (Cell{}) {
		t.Errorf("At(64, 0) = %+v", got)
	}
}

func TestDrawPixelsLastWins(t *testing.T) {
	d, _ := newTestDev(t, 4)
	d.DrawPixels(
		Pixel{Point: image.Pt(3, 20), Color: NewRGB565(31, 0, 0)},
		Pixel{Point: image.Pt(1, 1), Color: NewRGB565(0, 63, 0)},
		Pixel{Point: image.Pt(3, 20), Color: NewRGB565(0, 0, 31)},
	)
	if got, want := d.At(3, 20), (Cell{B: 255}); got != want {
		t.Errorf("At(3, 20) = %+v, want %+v", got, want)
	}
	if got, want := d.At(1, 1), (Cell{G: 255}); got != want {
		t.Errorf("At(1, 1) = %+v, want %+v", got, want)
	}
}

func TestDrawSeq(t *testing.T) {
	d, _ := newTestDev(t, 4)
	px := []Pixel{
		{Point: image.Pt(63, 0), Color: NewRGB565(31, 0, 0)},
		{Point: image.Pt(64, 0), Color: NewRGB565(31, 0, 0)},
		{Point: image.Pt(63, 0), Color: NewRGB565(0, 0, 31)},
	}
	d.DrawSeq(slices.Values(px))
	if got := d.At(63, 0); got != (Cell{B: 255}) {
		t.Errorf("At(63, 0) = %+v", got)
	}
}

func TestWipe(t *testing.T) {
	d, r := newTestDev(t, 4)
	d.Draw(d.Bounds(), &image.Uniform{C: color.White}, image.Point{})
	if d.At(10, 25) != (Cell{255, 255, 255}) {
		t.Fatal("Draw() did not fill the framebuffer")
	}
	d.Wipe()
	for y := range Height {
		for x := range Width {
			if c := d.At(x, y); c != (Cell{}) {
				t.Fatalf("At(%d, %d) = %+v after Wipe()", x, y, c)
			}
		}
	}
	if len(r.ops) != 0 {
		t.Errorf("Wipe() touched the pins: %d ops", len(r.ops))
	}
}

func TestDraw(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	src.Set(2, 3, color.RGBA{R: 0xff, A: 0xff})
	src.Set(5, 5, color.RGBA{G: 0xff, A: 0xff})

	t.Run("offset", func(t *testing.T) {
		d, _ := newTestDev(t, 4)
		if err := d.Draw(image.Rect(10, 10, 20, 20), src, image.Pt(2, 3)); err != nil {
			t.Fatal(err)
		}
		if got := d.At(10, 10); got != (Cell{R: 255}) {
			t.Errorf("At(10, 10) = %+v", got)
		}
		if got := d.At(13, 12); got != (Cell{G: 255}) {
			t.Errorf("At(13, 12) = %+v", got)
		}
		// Beyond the source image.
		if got := d.At(19, 19); got != (Cell{}) {
			t.Errorf("At(19, 19) = %+v", got)
		}
	})

	t.Run("clipped", func(t *testing.T) {
		d, _ := newTestDev(t, 4)
		if err := d.Draw(image.Rect(-3, -2, 5, 6), src, image.Point{}); err != nil {
			t.Fatal(err)
		}
		if got := d.At(8, 4); got != (Cell{}) {
			t.Errorf("At(8, 4) = %+v", got)
		}
		if got := d.At(2, 3); got != (Cell{G: 255}) {
			t.Errorf("At(2, 3) = %+v", got)
		}
	})

	t.Run("outside", func(t *testing.T) {
		d, _ := newTestDev(t, 4)
		if err := d.Draw(image.Rect(64, 0, 80, 8), src, image.Point{}); err != nil {
			t.Fatal(err)
		}
		if d.fb != (framebuffer{}) {
			t.Error("framebuffer modified")
		}
	})

	t.Run("draw.Draw", func(t *testing.T) {
		d, _ := newTestDev(t, 4)
		img := image.NewRGBA(d.Bounds())
		draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{B: 0xff, A: 0xff}}, image.Point{}, draw.Src)
		if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
			t.Fatal(err)
		}
		if got := d.At(63, 31); got != (Cell{B: 255}) {
			t.Errorf("At(63, 31) = %+v", got)
		}
	})
}

// TestDrawMatchesDrawer checks the clipping of Draw against the reference
// fake drawer.
func TestDrawMatchesDrawer(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := range 40 {
		for x := range 40 {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 6), B: uint8(x ^ y), A: 255})
		}
	}
	for _, tc := range []struct {
		r  image.Rectangle
		sp image.Point
	}{
		{image.Rect(0, 0, 64, 32), image.Point{}},
		{image.Rect(-4, -4, 20, 12), image.Pt(2, 3)},
		{image.Rect(50, 20, 90, 60), image.Pt(10, 0)},
		{image.Rect(30, 10, 64, 32), image.Pt(20, 20)},
	} {
		d, _ := newTestDev(t, 4)
		ref := &displaytest.Drawer{Img: image.NewNRGBA(d.Bounds())}
		if err := d.Draw(tc.r, src, tc.sp); err != nil {
			t.Fatal(err)
		}
		if err := ref.Draw(tc.r, src, tc.sp); err != nil {
			t.Fatal(err)
		}
		for y := range Height {
			for x := range Width {
				want := quantize(RGB565Model.Convert(ref.Img.At(x, y)).(RGB565))
				if got := d.At(x, y); got != want {
					t.Fatalf("Draw(%v, %v): At(%d, %d) = %+v, want %+v", tc.r, tc.sp, x, y, got, want)
				}
			}
		}
	}
}

func TestSet(t *testing.T) {
	d, _ := newTestDev(t, 4)
	d.Set(7, 30, color.RGBA{R: 0xff, G: 0xff, A: 0xff})
	if got := d.At(7, 30); got != (Cell{R: 255, G: 255}) {
		t.Errorf("At(7, 30) = %+v", got)
	}
	d.Set(70, 30, color.White)
	if got := d.At(70, 30); got != (Cell{}) {
		t.Errorf("At(70, 30) = %+v", got)
	}
}

func TestOutputCounts(t *testing.T) {
	d, r := newTestDev(t, 4)
	if err := d.Output(nopDelay{}); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		kind opKind
		want int
	}{
		{opSetRow, 16},
		{opUpper, 16 * 4 * 64},
		{opLower, 16 * 4 * 64},
		{opShift, 16 * 4 * 64},
		{opLatch, 16 * 4},
		{opShow, 16 * 4},
	} {
		if got := r.count(tc.kind); got != tc.want {
			t.Errorf("count(%d) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestOutputSequence(t *testing.T) {
	d, r := newTestDev(t, 4)
	if err := d.Output(nopDelay{}); err != nil {
		t.Fatal(err)
	}
	var rows []uint8
	var holds []time.Duration
	var want []time.Duration
	for range Rows {
		for mask := range uint8(4) {
			want = append(want, d.Hold(mask))
		}
	}
	for i, o := range r.ops {
		switch o.kind {
		case opSetRow:
			rows = append(rows, o.row)
		case opShow:
			holds = append(holds, o.hold)
			if r.ops[i-1].kind != opLatch {
				t.Fatalf("op %d: show not preceded by a latch", i)
			}
		case opLatch:
			if r.ops[i-1].kind != opShift {
				t.Fatalf("op %d: latch not preceded by a shift", i)
			}
		}
	}
	if diff := cmp.Diff(rows, []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}); diff != "" {
		t.Errorf("rows difference (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(holds, want); diff != "" {
		t.Errorf("holds difference (-got +want):\n%s", diff)
	}
	// 0.5 on ratio at 4 bits: h = 9, holds 0 1 2 4 µs.
	if diff := cmp.Diff(want[:4], []time.Duration{0, time.Microsecond, 2 * time.Microsecond, 4 * time.Microsecond}); diff != "" {
		t.Errorf("Hold() difference (-got +want):\n%s", diff)
	}
}

func TestOutputCells(t *testing.T) {
	d, r := newTestDev(t, 2)
	red := NewRGB565(31, 0, 0)
	blue := NewRGB565(0, 0, 31)
	d.DrawPixels(Pixel{Point: image.Pt(5, 3), Color: red}, Pixel{Point: image.Pt(60, 19), Color: blue})
	if err := d.Output(nopDelay{}); err != nil {
		t.Fatal(err)
	}
	row, col := -1, 0
	for _, o := range r.ops {
		switch o.kind {
		case opSetRow:
			row = int(o.row)
		case opLatch:
			col = 0
		case opShift:
			col++
		case opUpper:
			want := Cell{}
			if row == 3 && col == 5 {
				want = Cell{R: 255}
			}
			if o.cell != want {
				t.Fatalf("upper row %d col %d = %+v, want %+v", row, col, o.cell, want)
			}
		case opLower:
			want := Cell{}
			if row == 3 && col == 60 {
				want = Cell{B: 255}
			}
			if o.cell != want {
				t.Fatalf("lower row %d col %d = %+v, want %+v", row, col, o.cell, want)
			}
		}
	}
}

func TestOutputFailFast(t *testing.T) {
	d, r := newTestDev(t, 4)
	r.fail = func(r *recorder, kind opKind) error {
		if kind == opShift && r.row == 5 && r.plane == 2 && r.col == 30 {
			return errBus
		}
		return nil
	}
	if err := d.Output(nopDelay{}); err != errBus {
		t.Fatalf("Output() = %v, want %v", err, errBus)
	}
	// 5 complete rows, then the row select, 2 complete planes and 31 columns
	// of the third, the last one failing on its shift.
	perPlane := 64*3 + 2
	perRow := 1 + 4*perPlane
	if got, want := len(r.ops), 5*perRow+1+2*perPlane+31*3; got != want {
		t.Errorf("%d ops, want %d", got, want)
	}
	if last := r.ops[len(r.ops)-1]; last.kind != opShift {
		t.Errorf("last op = %d, want shift", last.kind)
	}
	if got := r.count(opShow); got != 5*4+2 {
		t.Errorf("%d shows, want %d", got, 5*4+2)
	}
}

func TestOutputRowError(t *testing.T) {
	d, r := newTestDev(t, 4)
	r.fail = func(r *recorder, kind opKind) error {
		if kind == opSetRow {
			return errBus
		}
		return nil
	}
	if err := d.Output(nopDelay{}); err != errBus {
		t.Fatalf("Output() = %v, want %v", err, errBus)
	}
	if len(r.ops) != 1 {
		t.Errorf("%d ops after the row failed, want 1", len(r.ops))
	}
}

func TestOutputShowError(t *testing.T) {
	d, r := newTestDev(t, 1)
	r.fail = func(r *recorder, kind opKind) error {
		if kind == opShow {
			return errBus
		}
		return nil
	}
	if err := d.Output(nopDelay{}); err != errBus {
		t.Fatalf("Output() = %v, want %v", err, errBus)
	}
	if got := r.count(opSetRow); got != 1 {
		t.Errorf("%d rows selected, want 1", got)
	}
}

func TestHalt(t *testing.T) {
	r := &recorder{}
	oe := &gpiotest.Pin{N: "OE", L: gpio.Low}
	ctl := &ControlPins{CLK: &gpiotest.Pin{N: "CLK"}, LAT: &gpiotest.Pin{N: "LAT"}, OE: oe}
	d, err := New(colorView{r, opUpper}, colorView{r, opLower}, r, ctl, nil)
	if err != nil {
		t.Fatal(err)
	}
	d.Set(0, 0, color.White)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if oe.Read() != gpio.High {
		t.Error("OE still enabled after Halt()")
	}
	if d.fb != (framebuffer{}) {
		t.Error("framebuffer not wiped by Halt()")
	}

	// Data pins without Halt.
	d, _ = newTestDev(t, 4)
	if err := d.Halt(); err != nil {
		t.Error(err)
	}
}
