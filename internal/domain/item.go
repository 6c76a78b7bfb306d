/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package domain holds the gallery data model shared by storage, scanning,
// the virtualized collection and the renderers.
package domain

import (
	"image"
	"time"
)

// GalleryItem is one saved work as shown in the gallery.
//
// ID is assigned from the persisted maxSid counter and is unique within a
// collection. Thumbnail is decoded once at scan/insert time and shared
// read-only with every renderer; Surface belongs to the item alone and is
// rebuilt on each render.
type GalleryItem struct {
	ID        int
	Name      string
	Locked    bool
	Thumbnail image.Image
	Surface   *image.RGBA
}

// ThumbnailBounds returns the thumbnail bounds or an empty rectangle.
func (it *GalleryItem) ThumbnailBounds() image.Rectangle {
	if it == nil || it.Thumbnail == nil {
		return image.Rectangle{}
	}
	return it.Thumbnail.Bounds()
}

// ProjectInfo is the metadata document stored next to each preview as
// projectInfo.json. Only Name is required; unknown fields are ignored.
// scan.ParseInfo reads the optional fields leniently.
type ProjectInfo struct {
	Name    string    `json:"name"`
	Created time.Time `json:"created,omitempty"`
	Width   int       `json:"width,omitempty"`
	Height  int       `json:"height,omitempty"`
}
