/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gallery

import (
	"errors"
	"image"
	"strings"
	"syscall"
	"testing"

	"pixelgallery/internal/domain"
	"pixelgallery/internal/storage"
)

type recorder struct{ events []Event }

func (r *recorder) OnDataChange(e Event) { r.events = append(r.events, e) }

func (r *recorder) count(kind EventKind) int {
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func items(ids ...int) []*domain.GalleryItem {
	out := make([]*domain.GalleryItem, len(ids))
	for i, id := range ids {
		out[i] = &domain.GalleryItem{ID: id, Name: "w", Thumbnail: image.NewRGBA(image.Rect(0, 0, 2, 2))}
	}
	return out
}

func order(c *Collection) []int {
	out := make([]int, 0, c.Count())
	for _, it := range c.Items() {
		out = append(out, it.ID)
	}
	return out
}

func sameOrder(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// lockFS reports a lock marker for the listed ids and fails for failID.
type lockFS struct {
	locked map[int]bool
	failID int
}

func (f lockFS) Exists(path string) (bool, error) {
	for id := range f.locked {
		if path == storage.LockPath("root", id) {
			return true, nil
		}
	}
	if f.failID >= 0 && path == storage.LockPath("root", f.failID) {
		return false, syscall.EIO
	}
	return false, nil
}

func (lockFS) ReadFile(string) ([]byte, error) { return nil, errors.New("not used") }

func newTestCollection(locked ...int) *Collection {
	fs := lockFS{locked: map[int]bool{}, failID: -1}
	for _, id := range locked {
		fs.locked[id] = true
	}
	return NewCollection(fs)
}

func TestSetAllIsSilent(t *testing.T) {
	c := newTestCollection()
	r := &recorder{}
	c.RegisterDataChangeListener(r)
	c.SetAll(items(3, 2, 1))
	if c.Count() != 3 || len(r.events) != 0 {
		t.Fatalf("count=%d events=%v", c.Count(), r.events)
	}
}

func TestAtOutOfRange(t *testing.T) {
	c := newTestCollection()
	c.SetAll(items(1, 0))
	for _, idx := range []int{-1, 2, 100} {
		_, err := c.At(idx)
		var ie *IndexError
		if !errors.As(err, &ie) || ie.Index != idx || ie.Count != 2 {
			t.Fatalf("At(%d): expected IndexError, got %v", idx, err)
		}
	}
	if it, err := c.At(1); err != nil || it.ID != 0 {
		t.Fatalf("At(1) = %v, %v", it, err)
	}
}

func TestAddItemInsertsAndNotifiesOnce(t *testing.T) {
	c := newTestCollection()
	c.SetAll(items(5, 3, 1))
	r := &recorder{}
	c.RegisterDataChangeListener(r)
	x := &domain.GalleryItem{ID: 4, Name: "new"}
	if err := c.AddItem(1, x); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if got, _ := c.At(1); got != x {
		t.Fatalf("At(1) is not the inserted item")
	}
	if c.Count() != 4 || !sameOrder(order(c), []int{5, 4, 3, 1}) {
		t.Fatalf("order after insert: %v", order(c))
	}
	if len(r.events) != 1 || r.events[0] != (Event{Kind: EventAdd, Index: 1}) {
		t.Fatalf("events = %v", r.events)
	}
}

func TestAddItemAppendAndRejects(t *testing.T) {
	c := newTestCollection()
	r := &recorder{}
	c.RegisterDataChangeListener(r)
	if err := c.AddItem(0, &domain.GalleryItem{ID: 1}); err != nil {
		t.Fatalf("add into empty: %v", err)
	}
	if err := c.AddItem(1, &domain.GalleryItem{ID: 0}); err != nil {
		t.Fatalf("append: %v", err)
	}
	var ie *IndexError
	if err := c.AddItem(5, &domain.GalleryItem{ID: 9}); !errors.As(err, &ie) {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if err := c.AddItem(0, &domain.GalleryItem{ID: 1}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if c.Count() != 2 || r.count(EventAdd) != 2 {
		t.Fatalf("count=%d adds=%d", c.Count(), r.count(EventAdd))
	}
}

func TestDelItemMissingID(t *testing.T) {
	c := newTestCollection()
	c.SetAll(items(2, 1, 0))
	r := &recorder{}
	c.RegisterDataChangeListener(r)
	if c.DelItem(7, "root") {
		t.Fatalf("DelItem on missing id returned true")
	}
	if c.Count() != 3 || !sameOrder(order(c), []int{2, 1, 0}) || len(r.events) != 0 {
		t.Fatalf("collection changed: %v events=%v", order(c), r.events)
	}
	if err := c.Delete(7, "root"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestDelItemLocked(t *testing.T) {
	c := newTestCollection(1)
	c.SetAll(items(2, 1, 0))
	r := &recorder{}
	c.RegisterDataChangeListener(r)
	if c.DelItem(1, "root") {
		t.Fatalf("DelItem on locked id returned true")
	}
	if r.count(EventDelete) != 0 {
		t.Fatalf("locked delete must not notify: %v", r.events)
	}
	if it, err := c.At(1); err != nil || it.ID != 1 {
		t.Fatalf("locked item not retrievable: %v %v", it, err)
	}
	if err := c.Delete(1, "root"); !errors.Is(err, ErrLocked) {
		t.Fatalf("Delete: expected ErrLocked, got %v", err)
	}
}

func TestDelItemLockLookupFailure(t *testing.T) {
	c := NewCollection(lockFS{failID: 2})
	c.SetAll(items(2, 1))
	if c.DelItem(2, "root") {
		t.Fatalf("DelItem must fail when the lock lookup fails")
	}
	if err := c.Delete(2, "root"); !errors.Is(err, syscall.EIO) {
		t.Fatalf("expected wrapped EIO, got %v", err)
	}
	if c.Count() != 2 {
		t.Fatalf("collection changed on lookup failure")
	}
}

func TestDelItemRemovesFirstMatch(t *testing.T) {
	c := newTestCollection()
	c.SetAll(items(4, 3, 2))
	r := &recorder{}
	c.RegisterDataChangeListener(r)
	if !c.DelItem(3, "root") {
		t.Fatalf("DelItem returned false")
	}
	if !sameOrder(order(c), []int{4, 2}) {
		t.Fatalf("order after delete: %v", order(c))
	}
	if len(r.events) != 1 || r.events[0] != (Event{Kind: EventDelete, Index: 1}) {
		t.Fatalf("events = %v", r.events)
	}
}

func TestUpdateLockAndName(t *testing.T) {
	c := newTestCollection()
	c.SetAll(items(9, 8))
	r := &recorder{}
	c.RegisterDataChangeListener(r)

	if !c.UpdateLockItem(8, true) {
		t.Fatalf("UpdateLockItem existing returned false")
	}
	if it, _ := c.At(1); !it.Locked {
		t.Fatalf("lock flag not set")
	}
	if len(r.events) != 1 || r.events[0] != (Event{Kind: EventChange, Index: 1}) {
		t.Fatalf("events after lock = %v", r.events)
	}
	if c.UpdateLockItem(77, true) || len(r.events) != 1 {
		t.Fatalf("missing id must return false without events")
	}

	if !c.UpdateNameItem(9, "Renamed") {
		t.Fatalf("UpdateNameItem existing returned false")
	}
	if it, _ := c.At(0); it.Name != "Renamed" {
		t.Fatalf("name not updated: %q", it.Name)
	}
	if len(r.events) != 2 || r.events[1] != (Event{Kind: EventChange, Index: 0}) {
		t.Fatalf("events after rename = %v", r.events)
	}
	if c.UpdateNameItem(77, "x") || len(r.events) != 2 {
		t.Fatalf("missing id must return false without events")
	}
}

func TestSetTopSidIsSilent(t *testing.T) {
	c := newTestCollection()
	r := &recorder{}
	c.RegisterDataChangeListener(r)
	if c.SetTopSid(10) {
		t.Fatalf("SetTopSid on empty collection returned true")
	}
	c.SetAll(items(4, 3))
	if c.SetTopSid(3) {
		t.Fatalf("SetTopSid must refuse an id used by another item")
	}
	if !c.SetTopSid(12) {
		t.Fatalf("SetTopSid returned false")
	}
	if it, _ := c.At(0); it.ID != 12 {
		t.Fatalf("top id = %d", it.ID)
	}
	if len(r.events) != 0 {
		t.Fatalf("SetTopSid must not notify: %v", r.events)
	}
}

func TestReloadAlwaysNotifiesOnce(t *testing.T) {
	c := newTestCollection()
	r := &recorder{}
	c.RegisterDataChangeListener(r)
	c.Reload(items(1, 0))
	c.Reload(nil)
	c.Reload(nil)
	if len(r.events) != 3 || r.count(EventReload) != 3 {
		t.Fatalf("events = %v", r.events)
	}
	if c.Count() != 0 {
		t.Fatalf("count after empty reload = %d", c.Count())
	}
}

func TestDuplicateRegistrationDeliversOnce(t *testing.T) {
	c := newTestCollection()
	r := &recorder{}
	c.RegisterDataChangeListener(r)
	c.RegisterDataChangeListener(r)
	c.Reload(items(0))
	if len(r.events) != 1 {
		t.Fatalf("expected 1 event, got %v", r.events)
	}
	c.UnregisterDataChangeListener(r)
	c.UnregisterDataChangeListener(r)
	c.UnregisterDataChangeListener(&recorder{})
	c.Reload(nil)
	if len(r.events) != 1 {
		t.Fatalf("unregistered listener still notified: %v", r.events)
	}
}

func TestListenersNotifiedInRegistrationOrder(t *testing.T) {
	c := newTestCollection()
	var trace []string
	a := &Callbacks{OnAdd: func(i int) { trace = append(trace, "a") }}
	b := &Callbacks{OnAdd: func(i int) { trace = append(trace, "b") }}
	c.RegisterDataChangeListener(b)
	c.RegisterDataChangeListener(a)
	if err := c.AddItem(0, &domain.GalleryItem{ID: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if strings.Join(trace, "") != "ba" {
		t.Fatalf("delivery order = %v", trace)
	}
}

func TestUnregisterDuringDispatch(t *testing.T) {
	c := newTestCollection()
	late := &recorder{}
	var self *Callbacks
	self = &Callbacks{OnReload: func() {
		c.UnregisterDataChangeListener(self)
		c.RegisterDataChangeListener(late)
	}}
	after := &recorder{}
	c.RegisterDataChangeListener(self)
	c.RegisterDataChangeListener(after)
	c.Reload(nil)
	if len(after.events) != 1 {
		t.Fatalf("listener after the unregistering one must still get the event")
	}
	if len(late.events) != 0 {
		t.Fatalf("listener registered during dispatch must wait for the next event")
	}
	c.Reload(nil)
	if len(late.events) != 1 || len(after.events) != 2 {
		t.Fatalf("late=%v after=%v", late.events, after.events)
	}
}

func TestCallbacksDispatchByKind(t *testing.T) {
	var got []string
	cb := &Callbacks{
		OnReload: func() { got = append(got, "reload") },
		OnAdd:    func(i int) { got = append(got, Event{Kind: EventAdd, Index: i}.String()) },
		OnChange: func(i int) { got = append(got, Event{Kind: EventChange, Index: i}.String()) },
		OnDelete: func(i int) { got = append(got, Event{Kind: EventDelete, Index: i}.String()) },
	}
	for _, e := range []Event{{EventReload, -1}, {EventAdd, 0}, {EventChange, 2}, {EventDelete, 1}} {
		cb.OnDataChange(e)
	}
	if strings.Join(got, ",") != "reload,add(0),change(2),delete(1)" {
		t.Fatalf("got %v", got)
	}
	(&Callbacks{}).OnDataChange(Event{Kind: EventAdd, Index: 0}) // nil funcs are skipped
}
