/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pixelgallery/internal/domain"
	applog "pixelgallery/internal/log"
)

// PNGOptions controls per-item PNG export.
type PNGOptions struct {
	Width     int // default DefaultRenderWidth
	MaxHeight int // default Width
}

// ExportPNGs writes every item rendered at opt.Width to outDir as item-<id>.png
// and returns the written paths in collection order.
func ExportPNGs(items []*domain.GalleryItem, outDir string, opt PNGOptions) ([]string, error) {
	w := opt.Width
	if w <= 0 {
		w = DefaultRenderWidth
	}
	if err := ensureDir(outDir); err != nil {
		return nil, err
	}
	r := newRenderer(w, opt.MaxHeight, nil)
	paths := make([]string, 0, len(items))
	for _, it := range items {
		data, err := rasterize(r, it, w)
		if err != nil {
			return paths, err
		}
		name := filepath.Join(outDir, fmt.Sprintf("item-%d.png", it.ID))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return paths, fmt.Errorf("write png: %w", err)
		}
		paths = append(paths, name)
	}
	applog.WithComponent("export").Info("png export done", slog.String("dir", outDir), slog.Int("items", len(paths)))
	return paths, nil
}
