/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gallery

import (
	"sort"
	"sync"
)

// Signal is a cross-component request delivered over a Bus.
type Signal interface{ isSignal() }

// SignalRescan asks the view to rebuild its collection from storage.
type SignalRescan struct{}

// SignalImport announces that the item with ID was written to storage by
// someone else and should be picked up.
type SignalImport struct{ ID int }

func (SignalRescan) isSignal() {}
func (SignalImport) isSignal() {}

// Bus is a small publish/subscribe channel for Signals. It is safe for
// concurrent use; handlers run synchronously on the publishing goroutine in
// subscription order.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Signal)
}

func NewBus() *Bus { return &Bus{subs: make(map[int]func(Signal))} }

// Subscribe registers fn and returns a func that removes it again.
func (b *Bus) Subscribe(fn func(Signal)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers s to every current subscriber.
func (b *Bus) Publish(s Signal) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Signal), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.subs[id])
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
