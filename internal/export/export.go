/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes the gallery out in shareable formats: a printable
// PDF contact sheet, one PNG per work, and a CBZ archive.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"pixelgallery/internal/domain"
	"pixelgallery/internal/render"
)

// DefaultRenderWidth is the pixel width thumbnails are rendered at when an
// exporter is not told otherwise.
const DefaultRenderWidth = 256

var errNoItems = errors.New("nothing to export")

// rasterize renders item at width into a scratch surface and returns it
// PNG-encoded. item.Surface belongs to the on-screen cell and is left alone.
func rasterize(r *render.Renderer, item *domain.GalleryItem, width int) ([]byte, error) {
	scratch := *item
	scratch.Surface = nil
	if _, err := r.Render(&scratch, width); err != nil {
		return nil, fmt.Errorf("render item %d: %w", item.ID, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scratch.Surface); err != nil {
		return nil, fmt.Errorf("encode item %d: %w", item.ID, err)
	}
	return buf.Bytes(), nil
}

func newRenderer(width, maxHeight int, bg color.Color) *render.Renderer {
	if maxHeight <= 0 {
		maxHeight = width
	}
	r := render.New(maxHeight)
	if bg != nil {
		r.Background = bg
	}
	return r
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return nil
}

func ensureParent(path string) error { return ensureDir(filepath.Dir(path)) }
