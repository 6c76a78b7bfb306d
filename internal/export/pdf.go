/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/jung-kurt/gofpdf"

	"pixelgallery/internal/domain"
	applog "pixelgallery/internal/log"
)

// PDFOptions controls the contact sheet layout. Units are points.
type PDFOptions struct {
	Title       string
	Columns     int // default 4
	RenderWidth int // pixel width thumbnails are rasterized at; default DefaultRenderWidth
	Margin      float64
	Gap         float64
	ShowLocked  bool
}

const (
	a4W         = 595.0
	a4H         = 842.0
	captionSize = 9.0
	captionH    = 14.0
)

// ContactSheetPDF lays items out in a grid on A4 pages in collection order,
// each thumbnail captioned with its name and id. Locked works are marked when
// opt.ShowLocked is set.
func ContactSheetPDF(items []*domain.GalleryItem, outPath string, opt PDFOptions) error {
	cols := opt.Columns
	if cols <= 0 {
		cols = 4
	}
	rw := opt.RenderWidth
	if rw <= 0 {
		rw = DefaultRenderWidth
	}
	margin := opt.Margin
	if margin <= 0 {
		margin = 36
	}
	gap := opt.Gap
	if gap <= 0 {
		gap = 12
	}
	cellW := (a4W - 2*margin - gap*float64(cols-1)) / float64(cols)
	if cellW <= 0 {
		return fmt.Errorf("layout: %d columns do not fit the page", cols)
	}
	rowH := cellW + captionH + gap

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: a4W, Ht: a4H},
	})
	title := opt.Title
	if title == "" {
		title = "Pixel Gallery"
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetCreator("pixelgallery", false)
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(margin, margin, tr(title))
	top := margin + 16

	if len(items) == 0 {
		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(margin, top+12, "No items.")
	}

	r := newRenderer(rw, rw, color.White)
	x, y := margin, top
	col := 0
	for _, it := range items {
		if y+rowH > a4H-margin {
			pdf.AddPage()
			y = margin
		}
		data, err := rasterize(r, it, rw)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("item-%d", it.ID)
		info := pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data))
		if info == nil || pdf.Err() {
			return fmt.Errorf("embed item %d: %w", it.ID, pdf.Error())
		}
		h := cellW * info.Height() / info.Width()
		pdf.ImageOptions(name, x, y, cellW, h, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		pdf.SetDrawColor(200, 200, 200)
		pdf.SetLineWidth(0.5)
		pdf.Rect(x, y, cellW, cellW, "D")

		caption := fmt.Sprintf("#%d %s", it.ID, it.Name)
		if opt.ShowLocked && it.Locked {
			caption += " [locked]"
		}
		pdf.SetFont("Helvetica", "", captionSize)
		pdf.SetXY(x, y+cellW+2)
		pdf.CellFormat(cellW, captionH-2, tr(caption), "", 0, "L", false, 0, "")

		col++
		x += cellW + gap
		if col == cols {
			col = 0
			x = margin
			y += rowH
		}
	}

	if err := ensureParent(outPath); err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	applog.WithComponent("export").Info("contact sheet written",
		slog.String("path", outPath), slog.Int("items", len(items)), slog.Int("pages", pdf.PageNo()))
	return nil
}
