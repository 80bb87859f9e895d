// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// example shows the time and a CPU load graph on a 64x32 HUB75 panel.
//
// With -sim, the panel is emulated and printed on the terminal; -http serves
// snapshots of the emulated panel.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/GermanBionicSystems/ledmatrix/hub75"
	"github.com/GermanBionicSystems/ledmatrix/hub75/hub75sim"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/mattn/go-isatty"
	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/image/font/gofont/gomono"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// scene draws the frames.
type scene struct {
	dc   *gg.Context
	load []float64
}

func newScene() (*scene, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(hub75.Width, hub75.Height)
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: 11, DPI: 72}))
	return &scene{dc: dc, load: make([]float64, hub75.Width)}, nil
}

// sample appends the CPU usage since the previous call to the graph.
func (s *scene) sample() error {
	p, err := cpu.Percent(0, false)
	if err != nil {
		return err
	}
	if len(p) == 0 {
		return errors.New("no CPU usage reported")
	}
	copy(s.load, s.load[1:])
	s.load[len(s.load)-1] = p[0]
	return nil
}

func (s *scene) render(now time.Time) *gg.Context {
	dc := s.dc
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	for x, l := range s.load {
		h := l * 16 / 100
		dc.SetRGB(l/100, 1-l/100, 0.2)
		dc.DrawRectangle(float64(x), hub75.Height-h, 1, h)
		dc.Fill()
	}
	dc.SetRGB(0.3, 0.6, 1)
	dc.DrawStringAnchored(now.Format("15:04:05"), hub75.Width/2, 7, 0.5, 0.5)
	return dc
}

func openPins(names string, n int) ([]gpio.PinOut, error) {
	parts := strings.Split(names, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d pins, got %q", n, names)
	}
	pins := make([]gpio.PinOut, n)
	for i, name := range parts {
		p := gpioreg.ByName(strings.TrimSpace(name))
		if p == nil {
			return nil, fmt.Errorf("failed to find pin %s", name)
		}
		pins[i] = p
	}
	return pins, nil
}

func openPanel(rgb1, rgb2, addr, ctl string, opts *hub75.Opts) (*hub75.Dev, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	u, err := openPins(rgb1, 3)
	if err != nil {
		return nil, fmt.Errorf("rgb1: %w", err)
	}
	l, err := openPins(rgb2, 3)
	if err != nil {
		return nil, fmt.Errorf("rgb2: %w", err)
	}
	a, err := openPins(addr, 4)
	if err != nil {
		return nil, fmt.Errorf("addr: %w", err)
	}
	c, err := openPins(ctl, 3)
	if err != nil {
		return nil, fmt.Errorf("ctl: %w", err)
	}
	return hub75.New(
		&hub75.RGBPins{R: u[0], G: u[1], B: u[2]},
		&hub75.RGBPins{R: l[0], G: l[1], B: l[2]},
		&hub75.AddrPins{A: a[0], B: a[1], C: a[2], D: a[3]},
		&hub75.ControlPins{CLK: c[0], LAT: c[1], OE: c[2]},
		opts)
}

func mainImpl() error {
	sim := flag.Bool("sim", false, "emulate the panel instead of driving GPIOs")
	addr := flag.String("http", "", "serve snapshots of the emulated panel on this address")
	bits := flag.Uint("bits", uint(hub75.DefaultOpts.Bits), "color depth, 1 to 8")
	ratio := flag.Float64("ratio", hub75.DefaultOpts.OnRatio, "on ratio, between 0 and 1")
	rgb1 := flag.String("rgb1", "GPIO5,GPIO13,GPIO6", "R1,G1,B1 pins")
	rgb2 := flag.String("rgb2", "GPIO12,GPIO16,GPIO23", "R2,G2,B2 pins")
	addrPins := flag.String("addr", "GPIO22,GPIO26,GPIO27,GPIO20", "A,B,C,D pins")
	ctl := flag.String("ctl", "GPIO17,GPIO21,GPIO4", "CLK,LAT,OE pins")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	if *bits > 8 {
		return fmt.Errorf("invalid -bits %d", *bits)
	}
	opts := &hub75.Opts{Bits: uint8(*bits), OnRatio: *ratio}

	var dev *hub75.Dev
	var panel *hub75sim.Panel
	var console *hub75sim.Console
	var delay hub75.Delayer = hub75.SpinDelay{}
	if *sim {
		var err error
		if panel, err = hub75sim.New(&hub75sim.Opts{Bits: opts.Bits}); err != nil {
			return err
		}
		if dev, err = hub75.New(panel.Upper(), panel.Lower(), panel, panel, opts); err != nil {
			return err
		}
		if isatty.IsTerminal(os.Stdout.Fd()) {
			console = hub75sim.NewConsole(nil, nil)
			defer console.Halt()
		}
		if *addr != "" {
			go func() {
				log.Printf("serving snapshots on http://%s/", *addr)
				log.Print(http.ListenAndServe(*addr, hub75sim.NewHandler(panel, &hub75sim.HandlerOpts{Scale: 8})))
			}()
		}
		delay = hub75.SleepDelay{}
	} else {
		if *addr != "" {
			return errors.New("-http requires -sim")
		}
		var err error
		if dev, err = openPanel(*rgb1, *rgb2, *addrPins, *ctl, opts); err != nil {
			return err
		}
	}
	defer dev.Halt()
	log.Printf("%s: hold per plane %s to %s", dev, dev.Hold(0), dev.Hold(dev.Bits()-1))

	s, err := newScene()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var lastDraw, lastStats, lastRender time.Time
	frames := 0
	for ctx.Err() == nil {
		now := time.Now()
		if now.Sub(lastDraw) >= time.Second {
			if err := s.sample(); err != nil {
				return err
			}
			dc := s.render(now)
			if err := dev.Draw(dev.Bounds(), dc.Image(), dc.Image().Bounds().Min); err != nil {
				return err
			}
			lastDraw = now
		}
		if err := dev.Output(delay); err != nil {
			return err
		}
		frames++
		if console != nil && now.Sub(lastRender) >= 100*time.Millisecond {
			if err := console.Render(panel.Image()); err != nil {
				return err
			}
			lastRender = now
		}
		if d := now.Sub(lastStats); d >= 10*time.Second {
			if !lastStats.IsZero() {
				log.Printf("%.1f refreshes/s", float64(frames)/d.Seconds())
			}
			frames = 0
			lastStats = now
		}
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "example: %s.\n", err)
		os.Exit(1)
	}
}
