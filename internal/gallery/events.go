/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gallery

import "fmt"

// EventKind tags a change notification.
type EventKind int

const (
	EventReload EventKind = iota
	EventAdd
	EventChange
	EventDelete
)

func (k EventKind) String() string {
	switch k {
	case EventReload:
		return "reload"
	case EventAdd:
		return "add"
	case EventChange:
		return "change"
	case EventDelete:
		return "delete"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a structural change of the collection. Index is the affected
// position for Add, Change and Delete; it is -1 for Reload.
type Event struct {
	Kind  EventKind
	Index int
}

func (e Event) String() string {
	if e.Kind == EventReload {
		return "reload"
	}
	return fmt.Sprintf("%s(%d)", e.Kind, e.Index)
}

// Listener receives change notifications. Registrations are compared with
// ==, so implementations should be pointer types.
type Listener interface {
	OnDataChange(e Event)
}

// Callbacks adapts optional per-kind funcs to a Listener.
// Register the *Callbacks pointer; nil funcs are skipped.
type Callbacks struct {
	OnReload func()
	OnAdd    func(index int)
	OnChange func(index int)
	OnDelete func(index int)
}

func (c *Callbacks) OnDataChange(e Event) {
	switch e.Kind {
	case EventReload:
		if c.OnReload != nil {
			c.OnReload()
		}
	case EventAdd:
		if c.OnAdd != nil {
			c.OnAdd(e.Index)
		}
	case EventChange:
		if c.OnChange != nil {
			c.OnChange(e.Index)
		}
	case EventDelete:
		if c.OnDelete != nil {
			c.OnDelete(e.Index)
		}
	}
}
