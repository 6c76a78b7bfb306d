/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"path/filepath"
	"strconv"
)

const (
	ProjectDirName  = "Project"
	PreviewFileName = "view.png"
	InfoFileName    = "projectInfo.json"
	LockFileName    = "LOCK"
	// StateDirName holds per-gallery state that is not part of any item.
	StateDirName = ".pixelgallery"
)

// ItemDir returns <root>/Project/<id>.
func ItemDir(root string, id int) string {
	return filepath.Join(root, ProjectDirName, strconv.Itoa(id))
}

func PreviewPath(root string, id int) string { return filepath.Join(ItemDir(root, id), PreviewFileName) }

func InfoPath(root string, id int) string { return filepath.Join(ItemDir(root, id), InfoFileName) }

func LockPath(root string, id int) string { return filepath.Join(ItemDir(root, id), LockFileName) }
