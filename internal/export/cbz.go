/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"pixelgallery/internal/domain"
	applog "pixelgallery/internal/log"
)

// CBZOptions controls CBZ export. Each item becomes one page.
type CBZOptions struct {
	Title     string
	Width     int // default DefaultRenderWidth
	MaxHeight int // default Width
}

// comicInfo is the ComicInfo.xml manifest understood by most CBZ readers.
type comicInfo struct {
	XMLName   xml.Name `xml:"ComicInfo"`
	Title     string   `xml:"Title"`
	Series    string   `xml:"Series"`
	PageCount int      `xml:"PageCount"`
	Summary   string   `xml:"Summary,omitempty"`
	Manga     string   `xml:"Manga"`
}

// ExportCBZ packs items rendered as PNG pages, newest first, into a CBZ
// (ZIP) archive with a ComicInfo.xml manifest.
func ExportCBZ(items []*domain.GalleryItem, outPath string, opt CBZOptions) (err error) {
	if len(items) == 0 {
		return errNoItems
	}
	w := opt.Width
	if w <= 0 {
		w = DefaultRenderWidth
	}
	if err := ensureParent(outPath); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create cbz: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close cbz: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(outPath)
		}
	}()
	zw := zip.NewWriter(f)

	r := newRenderer(w, opt.MaxHeight, nil)
	pad := len(fmt.Sprint(len(items)))
	names := make([]string, 0, len(items))
	for i, it := range items {
		data, err := rasterize(r, it, w)
		if err != nil {
			return err
		}
		if err := addZipFile(zw, fmt.Sprintf("%0*d.png", pad, i+1), data); err != nil {
			return fmt.Errorf("zip add item %d: %w", it.ID, err)
		}
		names = append(names, it.Name)
	}

	title := opt.Title
	if title == "" {
		title = "Pixel Gallery"
	}
	manifest, err := xml.MarshalIndent(comicInfo{
		Title:     title,
		Series:    title,
		PageCount: len(items),
		Summary:   strings.Join(names, ", "),
		Manga:     "No",
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("build manifest: %w", err)
	}
	if err := addZipFile(zw, "ComicInfo.xml", append([]byte(xml.Header), manifest...)); err != nil {
		return fmt.Errorf("zip add manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	applog.WithComponent("export").Info("cbz written", slog.String("path", outPath), slog.Int("pages", len(items)))
	return nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
