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
	"path/filepath"
	"strings"

	"pixelgallery/internal/domain"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls batch export across formats.
//
// A relative or empty OutDir resolves to <root>/exports/<preset>. Outputs
// are gallery.pdf, gallery.cbz and png/item-<id>.png inside it.
type BatchOptions struct {
	Preset  PresetName
	Formats []string // pdf, png, cbz; empty means preset defaults
	Width   int      // raster width; 0 means per-preset default
	OutDir  string
	Title   string
}

// BatchExport runs the exporters selected by opt for the gallery at root.
func BatchExport(root string, items []*domain.GalleryItem, opt BatchOptions) error {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	base := opt.OutDir
	if base == "" {
		base = string(opt.Preset)
		if base == "" {
			base = "default"
		}
	}
	if !filepath.IsAbs(base) {
		base = filepath.Join(root, "exports", base)
	}
	width := opt.Width
	if width <= 0 {
		width = presetWidth(opt.Preset)
	}

	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "pdf":
			po := PDFOptions{Title: opt.Title, RenderWidth: width, ShowLocked: opt.Preset != PresetWeb}
			if err := ContactSheetPDF(items, filepath.Join(base, "gallery.pdf"), po); err != nil {
				return fmt.Errorf("pdf: %w", err)
			}
		case "png":
			if _, err := ExportPNGs(items, filepath.Join(base, "png"), PNGOptions{Width: width}); err != nil {
				return fmt.Errorf("png: %w", err)
			}
		case "cbz":
			if len(items) == 0 {
				continue
			}
			if err := ExportCBZ(items, filepath.Join(base, "gallery.cbz"), CBZOptions{Title: opt.Title, Width: width}); err != nil {
				return fmt.Errorf("cbz: %w", err)
			}
		default:
			return fmt.Errorf("unknown format: %s", f)
		}
	}
	return nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "cbz"}
	case PresetPrint:
		return []string{"pdf"}
	default:
		return []string{"pdf"}
	}
}

func presetWidth(p PresetName) int {
	if p == PresetPrint {
		return 512
	}
	return DefaultRenderWidth
}
