// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub75sim

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"net/http"
	"strconv"

	"golang.org/x/image/draw"
)

// Format is the encoding of the snapshots served by Handler.
type Format string

// Supported formats. PNG keeps the pixels sharp and is the default.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

const maxScale = 32

func parseFormat(s string, def Format) (Format, error) {
	switch s {
	case "":
		return def, nil
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return "", fmt.Errorf("hub75sim: unrecognized image format %q", s)
}

func (f Format) contentType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

var pngEncoder = png.Encoder{CompressionLevel: png.BestSpeed}

func (f Format) encode(w io.Writer, img image.Image) error {
	if f == JPEG {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	}
	return pngEncoder.Encode(w, img)
}

// HandlerOpts configures a Handler.
type HandlerOpts struct {
	// Format is the default encoding, PNG when empty.
	Format Format
	// Scale enlarges each LED to Scale x Scale pixels, 1 when zero.
	Scale int
}

// Handler serves a snapshot of a Panel over HTTP.
//
// Clients can override the options with the "format" ("png", "jpeg") and
// "scale" (1 to 32) URL parameters, e.g. "/?format=jpeg&scale=8".
type Handler struct {
	p      *Panel
	format Format
	scale  int
}

// NewHandler returns a Handler for p. opts may be nil.
func NewHandler(p *Panel, opts *HandlerOpts) *Handler {
	h := &Handler{p: p, format: PNG, scale: 1}
	if opts != nil {
		if opts.Format != "" {
			h.format = opts.Format
		}
		if opts.Scale > 0 {
			h.scale = opts.Scale
		}
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	format, err := parseFormat(q.Get("format"), h.format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	scale := h.scale
	if s := q.Get("scale"); s != "" {
		if scale, err = strconv.Atoi(s); err != nil || scale < 1 || scale > maxScale {
			http.Error(w, fmt.Sprintf("hub75sim: invalid scale %q", s), http.StatusBadRequest)
			return
		}
	}

	var img image.Image = h.p.Image()
	if scale > 1 {
		dst := image.NewNRGBA(image.Rect(0, 0, img.Bounds().Dx()*scale, img.Bounds().Dy()*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}
	var buf bytes.Buffer
	if err := format.encode(&buf, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.contentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	if r.Method == http.MethodHead {
		return
	}
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("hub75sim: sending snapshot failed: %v", err)
	}
}

var _ http.Handler = &Handler{}
