/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scan

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the item has no preview; its id is a gap in the id space.
	ErrNotFound = errors.New("item not found")
	// ErrCorrupt marks an item whose files exist but cannot be understood.
	ErrCorrupt = errors.New("corrupt item")
)

// LoadError reports a storage failure that aborted a scan or item load.
type LoadError struct {
	ID   int
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load item %d: %s: %v", e.ID, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func corrupt(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
}
