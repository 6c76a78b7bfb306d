/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"errors"

	"pixelgallery/internal/domain"
)

// State is the lifecycle position of a Cell.
type State int

const (
	Unmounted State = iota
	Mounted
	Rendered
)

func (s State) String() string {
	switch s {
	case Unmounted:
		return "unmounted"
	case Mounted:
		return "mounted"
	case Rendered:
		return "rendered"
	}
	return "unknown"
}

// ErrUnmounted is returned by Resize on a cell with no item.
var ErrUnmounted = errors.New("cell is not mounted")

// Cell tracks one visible grid cell. The rendering layer mounts an item when
// the cell scrolls into view, reports every observed width, and unmounts it
// when the cell leaves the visible range. The item is re-rendered only when
// the width actually changes or after Invalidate.
type Cell struct {
	r     *Renderer
	item  *domain.GalleryItem
	state State
	width int
}

func NewCell(r *Renderer) *Cell { return &Cell{r: r} }

func (c *Cell) State() State { return c.state }
func (c *Cell) Width() int { return c.width }
func (c *Cell) Item() *domain.GalleryItem { return c.item }

// Mount binds item to the cell. The render is pending until the first Resize.
func (c *Cell) Mount(item *domain.GalleryItem) {
	c.item = item
	c.state = Mounted
	c.width = 0
}

// Resize reports the cell's current width and renders when needed. It
// reports whether a render happened.
func (c *Cell) Resize(width int) (bool, error) {
	if c.state == Unmounted {
		return false, ErrUnmounted
	}
	if c.state == Rendered && width == c.width {
		return false, nil
	}
	if _, err := c.r.Render(c.item, width); err != nil {
		return false, err
	}
	c.state = Rendered
	c.width = width
	return true, nil
}

// Invalidate forces the next Resize to render even at an unchanged width.
func (c *Cell) Invalidate() {
	if c.state == Rendered {
		c.state = Mounted
	}
}

// Unmount releases the item. Its surface is kept for reuse on remount.
func (c *Cell) Unmount() {
	c.item = nil
	c.state = Unmounted
	c.width = 0
}
