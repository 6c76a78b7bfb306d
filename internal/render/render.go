/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render rasterizes gallery thumbnails into per-item draw surfaces.
// Scaling is always nearest-neighbour so pixel art stays crisp.
package render

import (
	"errors"
	"image"
	"image/color"
	"log/slog"

	"golang.org/x/image/draw"

	"pixelgallery/internal/domain"
	applog "pixelgallery/internal/log"
)

// DefaultMaxHeight is the display height cap used when none is configured.
const DefaultMaxHeight = 256

var (
	ErrNoThumbnail = errors.New("item has no thumbnail")
	ErrBadWidth    = errors.New("cell width must be positive")
)

// Renderer draws thumbnails scaled to a cell width, capped at MaxHeight.
// A MaxHeight <= 0 disables the cap.
type Renderer struct {
	MaxHeight  int
	Background color.Color
}

// New returns a renderer with the given height cap and a transparent background.
func New(maxHeight int) *Renderer {
	return &Renderer{MaxHeight: maxHeight, Background: color.Transparent}
}

// TargetSize returns the size of the scaled thumbnail for a cell of the given
// width. The aspect ratio of src is preserved; when the resulting height
// exceeds maxHeight the height is clamped and the width shrinks with it.
func TargetSize(src image.Rectangle, width, maxHeight int) image.Point {
	sw, sh := src.Dx(), src.Dy()
	if sw <= 0 || sh <= 0 || width <= 0 {
		return image.Point{}
	}
	h := roundDiv(width*sh, sw)
	w := width
	if maxHeight > 0 && h > maxHeight {
		h = maxHeight
		w = roundDiv(maxHeight*sw, sh)
		if w > width {
			w = width
		}
	}
	if h < 1 {
		h = 1
	}
	if w < 1 {
		w = 1
	}
	return image.Pt(w, h)
}

func roundDiv(a, b int) int { return (2*a + b) / (2 * b) }

// Render clears item.Surface, reallocating it when the cell size changed, and
// blits the thumbnail into it. The surface is width pixels wide; a capped
// image is centred horizontally. It returns the rectangle the thumbnail
// occupies within the surface.
func (r *Renderer) Render(item *domain.GalleryItem, width int) (image.Rectangle, error) {
	if width <= 0 {
		return image.Rectangle{}, ErrBadWidth
	}
	if item == nil || item.Thumbnail == nil {
		return image.Rectangle{}, ErrNoThumbnail
	}
	src := item.Thumbnail.Bounds()
	size := TargetSize(src, width, r.MaxHeight)
	if size == (image.Point{}) {
		return image.Rectangle{}, ErrNoThumbnail
	}

	bounds := image.Rect(0, 0, width, size.Y)
	if item.Surface == nil || item.Surface.Bounds() != bounds {
		item.Surface = image.NewRGBA(bounds)
	}
	bg := r.Background
	if bg == nil {
		bg = color.Transparent
	}
	draw.Draw(item.Surface, bounds, image.NewUniform(bg), image.Point{}, draw.Src)

	x := (width - size.X) / 2
	dst := image.Rect(x, 0, x+size.X, size.Y)
	draw.NearestNeighbor.Scale(item.Surface, dst, item.Thumbnail, src, draw.Over, nil)

	applog.WithItem(applog.WithComponent("render"), item.ID).Debug("rendered",
		slog.Int("width", width), slog.Int("height", size.Y), slog.Int("image_width", size.X))
	return dst, nil
}
