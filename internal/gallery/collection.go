/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package gallery holds the virtualized collection of gallery items and the
// view that keeps it in sync with storage.
//
// The Collection owns the ordered item list (newest first) and tells its
// listeners exactly which positions changed, so a rendering layer only
// touches the cells it has materialized. It is not safe for concurrent use:
// all calls, and all listener callbacks, happen on the rendering layer's
// goroutine.
package gallery

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"pixelgallery/internal/domain"
	applog "pixelgallery/internal/log"
	"pixelgallery/internal/storage"
)

var (
	// ErrLocked is returned by Delete for an item carrying a lock marker.
	ErrLocked = errors.New("item is locked")
	// ErrNotFound is returned when no item has the requested id.
	ErrNotFound = errors.New("item not found")
	// ErrDuplicateID is returned by AddItem when the id is already present.
	ErrDuplicateID = errors.New("duplicate item id")
)

// IndexError reports a position outside the collection.
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0,%d)", e.Index, e.Count)
}

// Collection is the live, ordered list of gallery items plus its listeners.
//
// Lookups by id are linear scans; galleries are small enough that keeping an
// id index in sync across every structural change is not worth it.
type Collection struct {
	items     []*domain.GalleryItem
	listeners []Listener
	gw        storage.Gateway
	log       *slog.Logger
}

// NewCollection returns an empty collection using gw for lock lookups.
func NewCollection(gw storage.Gateway) *Collection {
	if gw == nil {
		gw = storage.FS{}
	}
	return &Collection{gw: gw, log: applog.WithComponent("gallery")}
}

// SetAll replaces the items without notifying anyone. It is meant for the
// initial population, before a rendering layer has registered.
func (c *Collection) SetAll(items []*domain.GalleryItem) {
	c.items = items
}

// Count returns the number of items.
func (c *Collection) Count() int { return len(c.items) }

// At returns the item at index or an *IndexError.
func (c *Collection) At(index int) (*domain.GalleryItem, error) {
	if index < 0 || index >= len(c.items) {
		return nil, &IndexError{Index: index, Count: len(c.items)}
	}
	return c.items[index], nil
}

// Items returns a copy of the current order.
func (c *Collection) Items() []*domain.GalleryItem {
	out := make([]*domain.GalleryItem, len(c.items))
	copy(out, c.items)
	return out
}

// IndexOf returns the position of the first item with id, or -1.
func (c *Collection) IndexOf(id int) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Reload replaces all items and sends a single Reload notification.
func (c *Collection) Reload(items []*domain.GalleryItem) {
	c.items = items
	c.log.Debug("reload", slog.Int("items", len(items)))
	c.notify(Event{Kind: EventReload, Index: -1})
}

// AddItem inserts item at index, shifting later items, and sends Add(index).
// index may equal Count() to append.
func (c *Collection) AddItem(index int, item *domain.GalleryItem) error {
	if index < 0 || index > len(c.items) {
		return &IndexError{Index: index, Count: len(c.items) + 1}
	}
	if item == nil {
		return errors.New("nil item")
	}
	if c.IndexOf(item.ID) >= 0 {
		return fmt.Errorf("%w: %d", ErrDuplicateID, item.ID)
	}
	c.items = slices.Insert(c.items, index, item)
	applog.WithItem(c.log, item.ID).Debug("add", slog.Int("index", index))
	c.notify(Event{Kind: EventAdd, Index: index})
	return nil
}

// Delete removes the item with id unless storage marks it locked.
// It returns ErrLocked, ErrNotFound, or the lock lookup error; only a nil
// result is accompanied by a Delete notification.
func (c *Collection) Delete(id int, root string) error {
	locked, err := storage.IsLocked(c.gw, root, id)
	if err != nil {
		return fmt.Errorf("check lock of %d: %w", id, err)
	}
	if locked {
		return ErrLocked
	}
	idx := c.IndexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	c.items = slices.Delete(c.items, idx, idx+1)
	applog.WithItem(c.log, id).Debug("delete", slog.Int("index", idx))
	c.notify(Event{Kind: EventDelete, Index: idx})
	return nil
}

// DelItem is Delete reduced to a success flag.
func (c *Collection) DelItem(id int, root string) bool {
	err := c.Delete(id, root)
	if err != nil && !errors.Is(err, ErrLocked) && !errors.Is(err, ErrNotFound) {
		applog.WithItem(c.log, id).Warn("delete failed", slog.Any("err", err))
	}
	return err == nil
}

// SetTopSid rewrites the id of the first item without notifying listeners.
// Listeners that cache ids per position will not see the change. It returns
// false on an empty collection or when another item already uses newID.
func (c *Collection) SetTopSid(newID int) bool {
	if len(c.items) == 0 {
		return false
	}
	if idx := c.IndexOf(newID); idx > 0 {
		return false
	}
	c.items[0].ID = newID
	return true
}

// UpdateLockItem sets the lock flag of the item with id and sends Change(index).
func (c *Collection) UpdateLockItem(id int, locked bool) bool {
	idx := c.IndexOf(id)
	if idx < 0 {
		return false
	}
	c.items[idx].Locked = locked
	c.notify(Event{Kind: EventChange, Index: idx})
	return true
}

// UpdateNameItem renames the item with id and sends Change(index).
func (c *Collection) UpdateNameItem(id int, name string) bool {
	idx := c.IndexOf(id)
	if idx < 0 {
		return false
	}
	c.items[idx].Name = name
	c.notify(Event{Kind: EventChange, Index: idx})
	return true
}

// replaceAt copies the stored fields of item into the entry at idx, keeping
// its rendered surface, and sends one Change(idx).
func (c *Collection) replaceAt(idx int, item *domain.GalleryItem) {
	cur := c.items[idx]
	cur.Name = item.Name
	cur.Locked = item.Locked
	cur.Thumbnail = item.Thumbnail
	c.notify(Event{Kind: EventChange, Index: idx})
}

// RegisterDataChangeListener adds l; registering it again is a no-op.
func (c *Collection) RegisterDataChangeListener(l Listener) {
	if l == nil || c.indexOfListener(l) >= 0 {
		return
	}
	c.listeners = append(c.listeners, l)
}

// UnregisterDataChangeListener removes l; unknown listeners are ignored.
func (c *Collection) UnregisterDataChangeListener(l Listener) {
	if i := c.indexOfListener(l); i >= 0 {
		c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
	}
}

func (c *Collection) hasListeners() bool { return len(c.listeners) > 0 }

func (c *Collection) indexOfListener(l Listener) int {
	for i, x := range c.listeners {
		if x == l {
			return i
		}
	}
	return -1
}

// notify delivers e synchronously in registration order. The listener slice
// is never mutated in place, so (un)registration from a callback only takes
// effect for the next event.
func (c *Collection) notify(e Event) {
	for _, l := range c.listeners {
		l.OnDataChange(e)
	}
}
