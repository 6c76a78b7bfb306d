/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements the on-disk side of the gallery.
//
// Every saved work lives in its own directory <root>/Project/<sid>/ holding
// view.png (the preview), projectInfo.json (metadata) and an optional LOCK
// marker. Reads go through the Gateway interface so the scanner and the
// collection can be exercised against failing or fake storage. Writes are
// transactional (temp file, fsync, rename).
//
// The persisted maxSid counter lives in a small SQLite preference store at
// <root>/.pixelgallery/prefs.sqlite.
package storage
