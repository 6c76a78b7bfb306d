/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pixelgallery/internal/domain"
	applog "pixelgallery/internal/log"
)

// ErrItemLocked is returned by RemoveItem for an item carrying a LOCK marker.
var ErrItemLocked = errors.New("item is locked")

// InitGallery scaffolds <root>/Project and the state directory.
func InitGallery(root string) error {
	if strings.TrimSpace(root) == "" {
		return errors.New("root path is required")
	}
	for _, d := range []string{ProjectDirName, StateDirName} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// SaveItem writes the preview and metadata for id, creating the item
// directory if needed. Both files are replaced transactionally; the preview
// is written first so a scan never sees metadata without a preview.
func SaveItem(root string, id int, info domain.ProjectInfo, preview image.Image) error {
	if strings.TrimSpace(root) == "" {
		return errors.New("root path is required")
	}
	if id < 0 {
		return fmt.Errorf("invalid item id %d", id)
	}
	if strings.TrimSpace(info.Name) == "" {
		return errors.New("item name is required")
	}
	if preview == nil {
		return errors.New("preview image is required")
	}
	if err := os.MkdirAll(ItemDir(root, id), 0o755); err != nil {
		return fmt.Errorf("create item dir: %w", err)
	}
	if info.Created.IsZero() {
		info.Created = time.Now().UTC().Truncate(time.Second)
	}
	b := preview.Bounds()
	info.Width, info.Height = b.Dx(), b.Dy()

	var buf bytes.Buffer
	if err := png.Encode(&buf, preview); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := writeAtomic(PreviewPath(root, id), buf.Bytes()); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	if err := writeInfo(root, id, info); err != nil {
		return err
	}
	applog.WithItem(applog.WithComponent("storage"), id).Debug("item saved", slog.String("name", info.Name))
	return nil
}

// ReadInfo loads and decodes projectInfo.json for id.
func ReadInfo(root string, id int) (domain.ProjectInfo, error) {
	var info domain.ProjectInfo
	b, err := os.ReadFile(InfoPath(root, id))
	if err != nil {
		return info, fmt.Errorf("read info: %w", err)
	}
	if err := json.Unmarshal(b, &info); err != nil {
		return info, fmt.Errorf("parse info: %w", err)
	}
	return info, nil
}

// RenameItem rewrites the name in projectInfo.json, keeping other fields.
func RenameItem(root string, id int, name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("item name is required")
	}
	info, err := ReadInfo(root, id)
	if err != nil {
		return err
	}
	info.Name = name
	return writeInfo(root, id, info)
}

// SetLocked creates or removes the LOCK marker of id.
func SetLocked(root string, id int, locked bool) error {
	if _, err := os.Stat(ItemDir(root, id)); err != nil {
		return fmt.Errorf("item %d: %w", id, err)
	}
	path := LockPath(root, id)
	if locked {
		if err := writeFileSync(path, nil); err != nil {
			return fmt.Errorf("create lock marker: %w", err)
		}
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove lock marker: %w", err)
	}
	return nil
}

// IsLocked reports whether the LOCK marker of id exists.
func IsLocked(gw Gateway, root string, id int) (bool, error) {
	return gw.Exists(LockPath(root, id))
}

// RemoveItem deletes the item directory. Locked items are refused with ErrItemLocked.
func RemoveItem(root string, id int) error {
	locked, err := IsLocked(FS{}, root, id)
	if err != nil {
		return fmt.Errorf("check lock: %w", err)
	}
	if locked {
		return ErrItemLocked
	}
	if err := os.RemoveAll(ItemDir(root, id)); err != nil {
		return fmt.Errorf("remove item dir: %w", err)
	}
	return nil
}

func writeInfo(root string, id int, info domain.ProjectInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal info: %w", err)
	}
	data = append(data, '\n')
	if err := writeAtomic(InfoPath(root, id), data); err != nil {
		return fmt.Errorf("write info: %w", err)
	}
	return nil
}

// writeAtomic writes data to a temp file in the target directory and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		_ = os.Remove(temp)
		return err
	}
	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return err
	}
	return nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}
