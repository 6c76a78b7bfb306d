/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gallery

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"go.uber.org/atomic"

	"pixelgallery/internal/domain"
	applog "pixelgallery/internal/log"
	"pixelgallery/internal/scan"
	"pixelgallery/internal/storage"
)

var (
	// ErrStale is returned by Load when a newer Load or Close superseded it.
	ErrStale = errors.New("scan result is stale")
	// ErrClosed is returned by operations on a closed View.
	ErrClosed = errors.New("view is closed")
)

// IDStore is the persisted id counter. *storage.Prefs implements it.
type IDStore interface {
	MaxSid(ctx context.Context) (int, error)
	NextID(ctx context.Context) (int, error)
}

// Options configures a View.
type Options struct {
	// Gateway defaults to storage.FS.
	Gateway storage.Gateway
	IDs     IDStore
	// Dispatch runs f on the goroutine that owns the collection. The default
	// runs f inline; UI toolkits pass their main-thread hop.
	Dispatch func(f func())
}

// View owns a Collection for the gallery at root and keeps it in step with
// storage: it scans, applies scan results, and performs item operations
// against storage before mirroring them into the collection.
//
// Each Load is stamped with a generation. A Load whose result arrives after
// a newer Load started, or after Close, is dropped without touching the
// collection.
type View struct {
	root     string
	gw       storage.Gateway
	ids      IDStore
	dispatch func(func())
	coll     *Collection
	log      *slog.Logger

	gen    atomic.Int64
	closed atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	unsubs []func()
}

// NewView creates a view for the gallery at root. Call Load to populate it.
func NewView(root string, opts Options) *View {
	gw := opts.Gateway
	if gw == nil {
		gw = storage.FS{}
	}
	dispatch := opts.Dispatch
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &View{
		root:     root,
		gw:       gw,
		ids:      opts.IDs,
		dispatch: dispatch,
		coll:     NewCollection(gw),
		log:      applog.WithComponent("gallery").With(slog.String("root", root)),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Root returns the gallery root path.
func (v *View) Root() string { return v.root }

// Collection returns the collection owned by the view.
func (v *View) Collection() *Collection { return v.coll }

// Load scans storage and applies the result: silently (SetAll) while no
// listener is registered, as a single Reload otherwise. Scan failures leave
// the collection untouched. Load may run on any goroutine; the apply step goes through
// Dispatch.
func (v *View) Load(ctx context.Context) error {
	if v.closed.Load() {
		return ErrClosed
	}
	gen := v.gen.Inc()
	l := applog.WithOperation(v.log, "load").With(slog.Int64("gen", gen))

	maxID := 0
	if v.ids != nil {
		n, err := v.ids.MaxSid(ctx)
		if err != nil {
			l.Error("read maxSid failed", slog.Any("err", err))
			return fmt.Errorf("read %s: %w", storage.MaxSidKey, err)
		}
		maxID = n
	}
	items, err := scan.Scan(ctx, v.gw, v.root, maxID)
	if err != nil {
		return err
	}
	if v.stale(gen) {
		l.Debug("discarding stale scan", slog.Int("items", len(items)))
		return ErrStale
	}
	v.dispatch(func() {
		if v.stale(gen) {
			l.Debug("discarding stale scan at apply", slog.Int("items", len(items)))
			return
		}
		if !v.coll.hasListeners() {
			v.coll.SetAll(items)
			return
		}
		v.coll.Reload(items)
	})
	return nil
}

func (v *View) stale(gen int64) bool {
	return v.closed.Load() || v.gen.Load() != gen
}

// Import loads the item with id from storage and merges it into the
// collection: a new item is inserted at its newest-first position (Add),
// an existing one is refreshed in place with a single Change.
func (v *View) Import(ctx context.Context, id int) error {
	if v.closed.Load() {
		return ErrClosed
	}
	item, err := scan.LoadItem(ctx, v.gw, v.root, id)
	if err != nil {
		return fmt.Errorf("import %d: %w", id, err)
	}
	v.dispatch(func() {
		if v.closed.Load() {
			return
		}
		if idx := v.coll.IndexOf(id); idx >= 0 {
			v.coll.replaceAt(idx, item)
			return
		}
		_ = v.coll.AddItem(insertPosition(v.coll, id), item)
	})
	return nil
}

// insertPosition keeps the newest-first order: before the first smaller id.
func insertPosition(c *Collection, id int) int {
	for i, it := range c.items {
		if it.ID < id {
			return i
		}
	}
	return len(c.items)
}

// Create allocates a new id, writes the work to storage and inserts it at
// the top of the collection. It must run on the collection's goroutine.
func (v *View) Create(ctx context.Context, name string, preview image.Image) (*domain.GalleryItem, error) {
	if v.closed.Load() {
		return nil, ErrClosed
	}
	if v.ids == nil {
		return nil, errors.New("no id store configured")
	}
	id, err := v.ids.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate id: %w", err)
	}
	if err := storage.SaveItem(v.root, id, domain.ProjectInfo{Name: name}, preview); err != nil {
		return nil, err
	}
	item := &domain.GalleryItem{ID: id, Name: name, Thumbnail: preview}
	if err := v.coll.AddItem(insertPosition(v.coll, id), item); err != nil {
		return nil, err
	}
	applog.WithItem(v.log, id).Info("item created", slog.String("name", name))
	return item, nil
}

// Delete removes an unlocked item from storage and then from the
// collection. A failed removal leaves the collection untouched.
func (v *View) Delete(id int) error {
	if v.coll.IndexOf(id) < 0 {
		return ErrNotFound
	}
	locked, err := storage.IsLocked(v.gw, v.root, id)
	if err != nil {
		return fmt.Errorf("check lock of %d: %w", id, err)
	}
	if locked {
		return ErrLocked
	}
	if err := storage.RemoveItem(v.root, id); err != nil {
		applog.WithItem(v.log, id).Error("remove item dir failed", slog.Any("err", err))
		if errors.Is(err, storage.ErrItemLocked) {
			return ErrLocked
		}
		return err
	}
	if err := v.coll.Delete(id, v.root); err != nil {
		return err
	}
	applog.WithItem(v.log, id).Info("item deleted")
	return nil
}

// SetLocked persists the lock marker and updates the collection.
func (v *View) SetLocked(id int, locked bool) error {
	if v.coll.IndexOf(id) < 0 {
		return ErrNotFound
	}
	if err := storage.SetLocked(v.root, id, locked); err != nil {
		return err
	}
	v.coll.UpdateLockItem(id, locked)
	return nil
}

// Rename persists the new name and updates the collection.
func (v *View) Rename(id int, name string) error {
	if v.coll.IndexOf(id) < 0 {
		return ErrNotFound
	}
	if err := storage.RenameItem(v.root, id, name); err != nil {
		return err
	}
	v.coll.UpdateNameItem(id, name)
	return nil
}

// Subscribe makes the view react to bus signals: SignalRescan triggers
// Load, SignalImport triggers Import. Handlers run on the publisher's
// goroutine and use the view's own context, which Close cancels.
func (v *View) Subscribe(bus *Bus) {
	unsub := bus.Subscribe(func(s Signal) {
		var err error
		switch s := s.(type) {
		case SignalRescan:
			err = v.Load(v.ctx)
		case SignalImport:
			err = v.Import(v.ctx, s.ID)
		}
		if err != nil && !errors.Is(err, ErrStale) && !errors.Is(err, ErrClosed) && !errors.Is(err, context.Canceled) {
			v.log.Warn("signal handling failed", slog.String("signal", fmt.Sprintf("%T", s)), slog.Any("err", err))
		}
	})
	v.unsubs = append(v.unsubs, unsub)
}

// Close cancels in-flight scans started through signals, drops any pending
// scan result and detaches from every bus.
func (v *View) Close() {
	if !v.closed.CompareAndSwap(false, true) {
		return
	}
	v.gen.Inc()
	v.cancel()
	for _, u := range v.unsubs {
		u()
	}
	v.unsubs = nil
}
