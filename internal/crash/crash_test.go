/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pixelgallery/internal/storage"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport("", "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Pixel Gallery Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") || strings.Contains(s, "GalleryRoot:") {
		t.Fatalf("unexpected content: %s", s)
	}
}

func TestWriteReportCreatesFileInStateDir(t *testing.T) {
	root := t.TempDir()
	path, err := writeReport(root, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(root, storage.StateDirName) {
		t.Fatalf("expected crash report under state dir, got %s", path)
	}
	b, _ := os.ReadFile(path)
	if !bytes.Contains(b, []byte("GalleryRoot: "+root)) {
		t.Fatalf("root missing from report: %s", b)
	}
}

func TestWriteReportNamesAreUnique(t *testing.T) {
	root := t.TempDir()
	a, err := writeReport(root, "one", nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := writeReport(root, "two", nil)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("reports written in the same second share a name: %s", a)
	}
	data, _ := os.ReadFile(a)
	if !strings.Contains(string(data), "ReportID: ") {
		t.Fatalf("report id missing: %s", data)
	}
}
