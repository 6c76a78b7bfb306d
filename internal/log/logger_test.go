/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func lastJSONLine(t *testing.T, data []byte) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", lines[len(lines)-1], err)
	}
	return m
}

func TestItemRecordReachesRotatedFile(t *testing.T) {
	// Outside t.TempDir: the rotated file stays open and Windows refuses to delete it.
	fpath := filepath.Join(os.TempDir(), "pxg_log_"+strconv.Itoa(os.Getpid())+".json")
	Init(Options{Level: "debug", Format: "json", File: fpath, Console: io.Discard})
	t.Cleanup(func() { Init(Options{Level: "error", Console: io.Discard}) })

	l := WithItem(WithOperation(WithComponent("scan"), "load"), 7)
	l.Debug("preview decoded", slog.Int("w", 16))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	m := lastJSONLine(t, b)
	if m["app"] != "pixelgallery" {
		t.Fatalf("app attr = %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "scan" || m["op"] != "load" || m["msg"] != "preview decoded" {
		t.Fatalf("unexpected record: %v", m)
	}
	// JSON numbers decode as float64.
	if m["sid"] != float64(7) || m["w"] != float64(16) {
		t.Fatalf("item attrs = %v", m)
	}
}

func TestConsoleLevelFilterAndJSONFormat(t *testing.T) {
	t.Cleanup(func() { Init(Options{Level: "error", Console: io.Discard}) })

	var pretty bytes.Buffer
	Init(Options{Level: "info", Console: &pretty})
	WithItem(WithComponent("gallery"), 3).Info("item deleted")
	WithComponent("gallery").Debug("hidden")
	out := pretty.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one line, got %q", out)
	}
	for _, want := range []string{"INF item deleted", "app=pixelgallery", "component=gallery", "sid=3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("console output %q missing %q", out, want)
		}
	}

	var js bytes.Buffer
	Init(Options{Level: "warn", Format: " JSON ", Console: &js})
	WithComponent("render").Warn("no thumbnail")
	m := lastJSONLine(t, js.Bytes())
	if m["level"] != "WARN" || m["component"] != "render" {
		t.Fatalf("json console record = %v", m)
	}
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{
		"1": true, "true": true, " YES ": true, "on": true,
		"": false, "0": false, "off": false, "maybe": false,
	} {
		if got := parseBool(in); got != want {
			t.Fatalf("parseBool(%q) = %v, want %v", in, got, want)
		}
	}
}
