/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"io/fs"
	"os"
)

// Gateway is the read side of gallery storage used by the scanner and the
// collection. Exists reports (false, nil) for a missing path and returns an
// error only when the check itself failed.
type Gateway interface {
	Exists(path string) (bool, error)
	ReadFile(path string) ([]byte, error)
}

// FS is the Gateway backed by the local filesystem.
type FS struct{}

func (FS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (FS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
