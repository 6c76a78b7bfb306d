//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"log/slog"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"pixelgallery/internal/domain"
	"pixelgallery/internal/gallery"
	applog "pixelgallery/internal/log"
	"pixelgallery/internal/render"
)

// cellWidth is the minimum on-screen width of a gallery cell.
const cellWidth float32 = 160

// galleryGrid binds a Collection to a virtualised GridWrap. Collection
// notifications are translated into grid refreshes; only visible cells hold
// a mounted item.
type galleryGrid struct {
	coll     *gallery.Collection
	renderer *render.Renderer
	grid     *widget.GridWrap
	listener *gallery.Callbacks
	selected int
}

func newGalleryGrid(coll *gallery.Collection, r *render.Renderer) *galleryGrid {
	g := &galleryGrid{coll: coll, renderer: r, selected: -1}
	g.grid = widget.NewGridWrap(
		func() int { return g.coll.Count() },
		func() fyne.CanvasObject { return newGalleryCell(g.renderer) },
		func(id widget.GridWrapItemID, o fyne.CanvasObject) {
			cell := o.(*galleryCell)
			it, err := g.coll.At(int(id))
			if err != nil {
				cell.unbind()
				return
			}
			cell.bind(it)
		},
	)
	g.grid.OnSelected = func(id widget.GridWrapItemID) { g.selected = int(id) }
	g.grid.OnUnselected = func(id widget.GridWrapItemID) {
		if g.selected == int(id) {
			g.selected = -1
		}
	}

	g.listener = &gallery.Callbacks{
		OnReload: func() {
			g.unselect()
			g.grid.Refresh()
		},
		OnAdd:    func(int) { g.grid.Refresh() },
		OnChange: func(i int) { g.grid.RefreshItem(widget.GridWrapItemID(i)) },
		OnDelete: func(int) { g.grid.Refresh() },
	}
	g.coll.RegisterDataChangeListener(g.listener)
	return g
}

func (g *galleryGrid) unselect() {
	if g.selected >= 0 {
		g.grid.UnselectAll()
	}
	g.selected = -1
}

func (g *galleryGrid) detach() { g.coll.UnregisterDataChangeListener(g.listener) }

// galleryCell shows one work. Its render.Cell redraws the thumbnail whenever
// the laid-out width changes.
type galleryCell struct {
	widget.BaseWidget
	cell  *render.Cell
	image *canvas.Image
	name  *widget.Label
	lock  *widget.Icon
}

func newGalleryCell(r *render.Renderer) *galleryCell {
	c := &galleryCell{
		cell:  render.NewCell(r),
		image: canvas.NewImageFromImage(nil),
		name:  widget.NewLabel(""),
		lock:  widget.NewIcon(theme.VisibilityOffIcon()),
	}
	c.image.ScaleMode = canvas.ImageScalePixels
	c.image.FillMode = canvas.ImageFillContain
	c.name.Alignment = fyne.TextAlignCenter
	c.name.Truncation = fyne.TextTruncateEllipsis
	c.lock.Hide()
	c.ExtendBaseWidget(c)
	return c
}

func (c *galleryCell) CreateRenderer() fyne.WidgetRenderer {
	return &galleryCellRenderer{c: c}
}

func (c *galleryCell) bind(it *domain.GalleryItem) {
	if c.cell.Item() != it {
		c.cell.Mount(it)
	} else {
		c.cell.Invalidate()
	}
	c.name.SetText(fmt.Sprintf("#%d %s", it.ID, it.Name))
	if it.Locked {
		c.lock.Show()
	} else {
		c.lock.Hide()
	}
	c.paint(c.Size().Width)
}

func (c *galleryCell) unbind() {
	c.cell.Unmount()
	c.image.Image = nil
	c.image.Refresh()
	c.name.SetText("")
	c.lock.Hide()
}

// paint renders at the cell's pixel width; the cell skips unchanged widths.
func (c *galleryCell) paint(width float32) {
	if c.cell.State() == render.Unmounted || width <= 0 {
		return
	}
	scale := float32(1)
	if cv := fyne.CurrentApp().Driver().CanvasForObject(c); cv != nil {
		scale = cv.Scale()
	}
	px := int(math.Round(float64(width * scale)))
	did, err := c.cell.Resize(px)
	if err != nil {
		applog.WithItem(applog.WithComponent("ui"), c.cell.Item().ID).Debug("render failed", slog.Any("err", err))
		return
	}
	if did {
		c.image.Image = c.cell.Item().Surface
		c.image.Refresh()
	}
}

type galleryCellRenderer struct {
	c *galleryCell
}

func (r *galleryCellRenderer) Layout(size fyne.Size) {
	labelH := r.c.name.MinSize().Height
	imgH := size.Height - labelH
	r.c.image.Move(fyne.NewPos(0, 0))
	r.c.image.Resize(fyne.NewSize(size.Width, imgH))
	r.c.name.Move(fyne.NewPos(0, imgH))
	r.c.name.Resize(fyne.NewSize(size.Width, labelH))
	iconSize := fyne.NewSquareSize(theme.IconInlineSize())
	r.c.lock.Resize(iconSize)
	r.c.lock.Move(fyne.NewPos(size.Width-iconSize.Width-theme.Padding(), theme.Padding()))
	r.c.paint(size.Width)
}

func (r *galleryCellRenderer) MinSize() fyne.Size {
	return fyne.NewSize(cellWidth, cellWidth+r.c.name.MinSize().Height)
}

func (r *galleryCellRenderer) Refresh() {
	r.c.image.Refresh()
	r.c.name.Refresh()
	r.c.lock.Refresh()
}

func (r *galleryCellRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.c.image, r.c.name, r.c.lock}
}

func (r *galleryCellRenderer) Destroy() {}
