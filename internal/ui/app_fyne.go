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
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"pixelgallery/internal/config"
	"pixelgallery/internal/crash"
	"pixelgallery/internal/domain"
	"pixelgallery/internal/export"
	"pixelgallery/internal/gallery"
	applog "pixelgallery/internal/log"
	"pixelgallery/internal/render"
	"pixelgallery/internal/storage"
	"pixelgallery/internal/version"
)

// Run starts the Fyne desktop gallery for the gallery at root, or the
// configured root when empty.
func Run(root string) error {
	cfg, err := config.Load()
	if err != nil {
		applog.L().Warn("config load failed; using defaults", slog.Any("err", err))
	}
	applog.Init(cfg.Logging.LogOptions())
	if root == "" {
		root = cfg.Gallery.Root
	}
	defer crash.Recover(root)
	l := applog.WithComponent("ui").With(slog.String("root", root))
	l.Info("starting UI")

	if err := storage.InitGallery(root); err != nil {
		return err
	}
	prefs, err := storage.OpenPrefs(root)
	if err != nil {
		return err
	}
	defer func() { _ = prefs.Close() }()

	fyneApp := app.NewWithID("pixelgallery")
	w := fyneApp.NewWindow(fmt.Sprintf("Pixel Gallery %s", version.String()))

	bus := gallery.NewBus()
	view := gallery.NewView(root, gallery.Options{IDs: prefs, Dispatch: fyne.Do})
	view.Subscribe(bus)

	g := newGalleryGrid(view.Collection(), render.New(cfg.Gallery.MaxDisplayHeight))
	status := widget.NewLabel("Loading…")

	// Window size from preferences, defaulting to the configured column count.
	p := fyneApp.Preferences()
	defW := cfg.Gallery.Columns*int(cellWidth+theme.Padding()) + 2*int(theme.Padding())
	winW := p.IntWithFallback("window.width", max(defW, 480))
	winH := p.IntWithFallback("window.height", 640)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	selected := func() (*domain.GalleryItem, bool) {
		it, err := view.Collection().At(g.selected)
		return it, err == nil
	}
	report := func(op string, err error) {
		if err == nil {
			return
		}
		applog.WithOperation(l, op).Warn("operation failed", slog.Any("err", err))
		dialog.ShowError(err, w)
	}

	rescan := func() {
		status.SetText("Scanning…")
		go func() {
			err := view.Load(context.Background())
			fyne.Do(func() {
				switch {
				case err == nil:
					status.SetText(fmt.Sprintf("%d works", view.Collection().Count()))
				case errors.Is(err, gallery.ErrStale), errors.Is(err, gallery.ErrClosed):
				default:
					status.SetText("Scan failed")
					report("load", err)
				}
			})
		}()
	}

	addPNG := func() {
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				report("add", err)
				return
			}
			defer rc.Close()
			img, err := png.Decode(rc)
			if err != nil {
				report("add", fmt.Errorf("decode %s: %w", rc.URI().Name(), err))
				return
			}
			name := rc.URI().Name()
			name = name[:len(name)-len(filepath.Ext(name))]
			if _, err := view.Create(context.Background(), name, img); err != nil {
				report("add", err)
				return
			}
			status.SetText(fmt.Sprintf("%d works", view.Collection().Count()))
		}, w)
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".png"}))
		fd.Show()
	}

	toggleLock := func() {
		if it, ok := selected(); ok {
			report("lock", view.SetLocked(it.ID, !it.Locked))
		}
	}

	rename := func() {
		it, ok := selected()
		if !ok {
			return
		}
		entry := widget.NewEntry()
		entry.SetText(it.Name)
		dialog.ShowForm("Rename", "Rename", "Cancel", []*widget.FormItem{widget.NewFormItem("Name", entry)}, func(ok bool) {
			if ok && entry.Text != "" {
				report("rename", view.Rename(it.ID, entry.Text))
			}
		}, w)
	}

	remove := func() {
		it, ok := selected()
		if !ok {
			return
		}
		if it.Locked {
			dialog.ShowInformation("Locked", fmt.Sprintf("%q is locked. Unlock it before deleting.", it.Name), w)
			return
		}
		dialog.ShowConfirm("Delete", fmt.Sprintf("Delete %q?", it.Name), func(ok bool) {
			if !ok {
				return
			}
			report("delete", view.Delete(it.ID))
			g.unselect()
			status.SetText(fmt.Sprintf("%d works", view.Collection().Count()))
		}, w)
	}

	exportPDF := func() {
		fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				report("export", err)
				return
			}
			path := wc.URI().Path()
			_ = wc.Close()
			opt := export.PDFOptions{Title: filepath.Base(root), Columns: cfg.Gallery.Columns, ShowLocked: true}
			if err := export.ContactSheetPDF(view.Collection().Items(), path, opt); err != nil {
				report("export", err)
				return
			}
			status.SetText("Exported " + filepath.Base(path))
		}, w)
		fd.SetFileName("gallery.pdf")
		fd.Show()
	}

	// Runs after the view's own handler, whose apply is already queued on fyne.Do.
	bus.Subscribe(func(s gallery.Signal) {
		if _, ok := s.(gallery.SignalRescan); ok {
			fyne.Do(func() { status.SetText(fmt.Sprintf("%d works", view.Collection().Count())) })
		}
	})

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentAddIcon(), addPNG),
		widget.NewToolbarAction(theme.DocumentCreateIcon(), rename),
		widget.NewToolbarAction(theme.VisibilityOffIcon(), toggleLock),
		widget.NewToolbarAction(theme.DeleteIcon(), remove),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() { go bus.Publish(gallery.SignalRescan{}) }),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), exportPDF),
	)

	w.SetContent(container.NewBorder(toolbar, status, nil, nil, g.grid))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		p.SetInt("window.width", int(sz.Width))
		p.SetInt("window.height", int(sz.Height))
		g.detach()
		view.Close()
	})

	rescan()
	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}
