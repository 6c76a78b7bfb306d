/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scan builds the gallery item list from storage.
//
// The id space 0..maxSid is sparse: deleted works leave gaps, which are
// skipped silently. A work whose metadata or preview cannot be understood is
// skipped with a warning. Any other storage failure aborts the scan with a
// *LoadError and no partial result.
package scan

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io/fs"
	"log/slog"
	"slices"
	"time"

	"pixelgallery/internal/domain"
	applog "pixelgallery/internal/log"
	"pixelgallery/internal/storage"
)

// Scan walks ids 0..maxID under root and returns the surviving items
// newest first (highest id at index 0). ctx is checked before every storage
// access; on cancellation the partial result is dropped and ctx.Err() returned.
func Scan(ctx context.Context, gw storage.Gateway, root string, maxID int) ([]*domain.GalleryItem, error) {
	l := applog.WithOperation(applog.WithComponent("scan"), "scan").With(slog.String("root", root), slog.Int("max_sid", maxID))
	start := time.Now()
	items := make([]*domain.GalleryItem, 0, 16)
	skipped := 0
	for id := 0; id <= maxID; id++ {
		it, err := loadItem(ctx, gw, root, id)
		switch {
		case err == nil:
			items = append(items, it)
		case errors.Is(err, ErrNotFound):
		case errors.Is(err, ErrCorrupt):
			skipped++
			applog.WithItem(l, id).Warn("skipping unreadable item", slog.Any("err", err))
		default:
			l.Error("scan aborted", slog.Int("sid", id), slog.Any("err", err))
			return nil, err
		}
	}
	slices.Reverse(items)
	l.Info("scan complete", slog.Int("items", len(items)), slog.Int("skipped", skipped), slog.Duration("took", time.Since(start)))
	return items, nil
}

// LoadItem loads a single item with the same rules as Scan. It returns an
// error wrapping ErrNotFound when id has no preview and ErrCorrupt when its
// files cannot be decoded.
func LoadItem(ctx context.Context, gw storage.Gateway, root string, id int) (*domain.GalleryItem, error) {
	return loadItem(ctx, gw, root, id)
}

func loadItem(ctx context.Context, gw storage.Gateway, root string, id int) (*domain.GalleryItem, error) {
	previewPath := storage.PreviewPath(root, id)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ok, err := gw.Exists(previewPath)
	if err != nil {
		return nil, &LoadError{ID: id, Path: previewPath, Err: err}
	}
	if !ok {
		return nil, ErrNotFound
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := gw.ReadFile(previewPath)
	if err != nil {
		return nil, &LoadError{ID: id, Path: previewPath, Err: err}
	}
	thumb, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, corrupt(previewPath, err)
	}

	infoPath := storage.InfoPath(root, id)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := gw.ReadFile(infoPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, corrupt(infoPath, err)
	}
	if err != nil {
		return nil, &LoadError{ID: id, Path: infoPath, Err: err}
	}
	info, err := ParseInfo(data)
	if err != nil {
		return nil, corrupt(infoPath, err)
	}

	lockPath := storage.LockPath(root, id)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locked, err := gw.Exists(lockPath)
	if err != nil {
		return nil, &LoadError{ID: id, Path: lockPath, Err: err}
	}

	return &domain.GalleryItem{ID: id, Name: info.Name, Locked: locked, Thumbnail: thumb}, nil
}
