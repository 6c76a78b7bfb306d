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
	"testing"

	"pixelgallery/internal/domain"
)

func TestCellLifecycle(t *testing.T) {
	c := NewCell(New(0))
	if c.State() != Unmounted {
		t.Fatalf("initial state = %v", c.State())
	}
	if _, err := c.Resize(8); !errors.Is(err, ErrUnmounted) {
		t.Fatalf("expected ErrUnmounted, got %v", err)
	}

	item := &domain.GalleryItem{ID: 7, Thumbnail: stripe(2, 2, false)}
	c.Mount(item)
	if c.State() != Mounted || c.Item() != item {
		t.Fatalf("after mount: %v", c.State())
	}
	if item.Surface != nil {
		t.Fatalf("mount rendered eagerly")
	}

	steps := []struct {
		width  int
		render bool
	}{
		{8, true},
		{8, false},
		{8, false},
		{16, true},
		{8, true},
	}
	for i, s := range steps {
		did, err := c.Resize(s.width)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if did != s.render {
			t.Fatalf("step %d: rendered=%v, want %v", i, did, s.render)
		}
		if c.State() != Rendered || c.Width() != s.width {
			t.Fatalf("step %d: state=%v width=%d", i, c.State(), c.Width())
		}
		if item.Surface.Bounds().Dx() != s.width {
			t.Fatalf("step %d: surface width %d", i, item.Surface.Bounds().Dx())
		}
	}

	c.Invalidate()
	if did, _ := c.Resize(8); !did {
		t.Fatalf("invalidated cell did not re-render")
	}

	c.Unmount()
	if c.State() != Unmounted || c.Item() != nil || c.Width() != 0 {
		t.Fatalf("after unmount: state=%v item=%v", c.State(), c.Item())
	}
	if item.Surface == nil {
		t.Fatalf("unmount dropped item surface")
	}
}

func TestCellRenderFailureKeepsState(t *testing.T) {
	c := NewCell(New(0))
	c.Mount(&domain.GalleryItem{ID: 1})
	if _, err := c.Resize(8); !errors.Is(err, ErrNoThumbnail) {
		t.Fatalf("expected ErrNoThumbnail, got %v", err)
	}
	if c.State() != Mounted {
		t.Fatalf("state = %v, want mounted", c.State())
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Unmounted: "unmounted", Mounted: "mounted", Rendered: "rendered", State(9): "unknown"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q", s, s.String())
		}
	}
}
