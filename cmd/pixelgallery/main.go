/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"pixelgallery/internal/config"
	"pixelgallery/internal/crash"
	"pixelgallery/internal/export"
	"pixelgallery/internal/gallery"
	applog "pixelgallery/internal/log"
	"pixelgallery/internal/storage"
	"pixelgallery/internal/ui"
	"pixelgallery/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Pixel Gallery")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pixelgallery version|-v|--version              Show version")
	fmt.Fprintln(w, "  pixelgallery init <root>                       Create an empty gallery at <root>")
	fmt.Fprintln(w, "  pixelgallery add <root> <name> <file.png>      Add a work from a PNG file")
	fmt.Fprintln(w, "  pixelgallery list <root>                       List works, newest first")
	fmt.Fprintln(w, "  pixelgallery lock|unlock <root> <id>           Protect a work from deletion, or release it")
	fmt.Fprintln(w, "  pixelgallery rename <root> <id> <name>         Rename a work")
	fmt.Fprintln(w, "  pixelgallery delete <root> <id>                Delete an unlocked work")
	fmt.Fprintln(w, "  pixelgallery export <root> <out.pdf|out.cbz|dir|web|print>")
	fmt.Fprintln(w, "                                                 Export a contact sheet, archive, PNGs or a preset")
	fmt.Fprintln(w, "  pixelgallery ui [<root>]                       Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.Logging.LogOptions())
	if cfgErr != nil {
		applog.WithComponent("cli").Warn("config load failed; using defaults", slog.Any("err", cfgErr))
	}
	root := ""
	if len(os.Args) > 2 {
		root = os.Args[2]
	}
	defer crash.Recover(root)

	os.Exit(run(context.Background(), cfg, os.Args[1:], os.Stdout))
}

// exitErr carries a process exit code for usage errors.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func needArgs(args []string, n int, what string) error {
	if len(args) < n {
		return &exitErr{code: 2, msg: what}
	}
	return nil
}

// run executes one CLI command and returns the process exit code.
func run(ctx context.Context, cfg config.AppConfig, args []string, out io.Writer) int {
	l := applog.WithComponent("cli")
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage(out)
		return 0
	}

	var err error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(out, "Pixel Gallery")
		fmt.Fprintln(out, version.String())
		return 0
	case "init":
		err = cmdInit(args[1:], out)
	case "add":
		err = cmdAdd(ctx, args[1:], out)
	case "list":
		err = cmdList(ctx, args[1:], out)
	case "lock", "unlock":
		err = cmdLock(ctx, args[1:], args[0] == "lock", out)
	case "rename":
		err = cmdRename(ctx, args[1:], out)
	case "delete":
		err = cmdDelete(ctx, args[1:], out)
	case "export":
		err = cmdExport(ctx, cfg, args[1:], out)
	case "ui":
		dir := ""
		if len(args) > 1 {
			dir = args[1]
		}
		err = ui.Run(dir)
	default:
		usage(out)
		return 2
	}

	var ee *exitErr
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		fmt.Fprintln(out, ee.msg)
		usage(out)
		return ee.code
	default:
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
}

// openView opens the gallery at root and loads it. The caller closes both.
func openView(ctx context.Context, root string) (*gallery.View, *storage.Prefs, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, err
	}
	prefs, err := storage.OpenPrefs(abs)
	if err != nil {
		return nil, nil, err
	}
	v := gallery.NewView(abs, gallery.Options{IDs: prefs})
	if err := v.Load(ctx); err != nil {
		v.Close()
		_ = prefs.Close()
		return nil, nil, err
	}
	return v, prefs, nil
}

func withView(ctx context.Context, root string, fn func(v *gallery.View) error) error {
	v, prefs, err := openView(ctx, root)
	if err != nil {
		return err
	}
	defer func() {
		v.Close()
		_ = prefs.Close()
	}()
	return fn(v)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, &exitErr{code: 2, msg: fmt.Sprintf("invalid id %q", s)}
	}
	return id, nil
}

func cmdInit(args []string, out io.Writer) error {
	if err := needArgs(args, 1, "init requires <root>"); err != nil {
		return err
	}
	abs, _ := filepath.Abs(args[0])
	if err := storage.InitGallery(abs); err != nil {
		return err
	}
	prefs, err := storage.OpenPrefs(abs)
	if err != nil {
		return err
	}
	if err := prefs.Close(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Created gallery at", abs)
	return nil
}

func cmdAdd(ctx context.Context, args []string, out io.Writer) error {
	if err := needArgs(args, 3, "add requires <root> <name> <file.png>"); err != nil {
		return err
	}
	f, err := os.Open(args[2])
	if err != nil {
		return err
	}
	img, err := png.Decode(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[2], err)
	}
	if err := storage.InitGallery(args[0]); err != nil {
		return err
	}
	return withView(ctx, args[0], func(v *gallery.View) error {
		it, err := v.Create(ctx, args[1], img)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Added #%d %s\n", it.ID, it.Name)
		return nil
	})
}

func cmdList(ctx context.Context, args []string, out io.Writer) error {
	if err := needArgs(args, 1, "list requires <root>"); err != nil {
		return err
	}
	return withView(ctx, args[0], func(v *gallery.View) error {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tSIZE\tLOCKED")
		for _, it := range v.Collection().Items() {
			b := it.ThumbnailBounds()
			locked := ""
			if it.Locked {
				locked = "yes"
			}
			fmt.Fprintf(tw, "%d\t%s\t%dx%d\t%s\n", it.ID, it.Name, b.Dx(), b.Dy(), locked)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%d works\n", v.Collection().Count())
		return nil
	})
}

func cmdLock(ctx context.Context, args []string, locked bool, out io.Writer) error {
	if err := needArgs(args, 2, "lock/unlock requires <root> <id>"); err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	return withView(ctx, args[0], func(v *gallery.View) error {
		if err := v.SetLocked(id, locked); err != nil {
			return fmt.Errorf("work #%d: %w", id, err)
		}
		state := "Unlocked"
		if locked {
			state = "Locked"
		}
		fmt.Fprintf(out, "%s #%d\n", state, id)
		return nil
	})
}

func cmdRename(ctx context.Context, args []string, out io.Writer) error {
	if err := needArgs(args, 3, "rename requires <root> <id> <name>"); err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	name := strings.Join(args[2:], " ")
	return withView(ctx, args[0], func(v *gallery.View) error {
		if err := v.Rename(id, name); err != nil {
			return fmt.Errorf("work #%d: %w", id, err)
		}
		fmt.Fprintf(out, "Renamed #%d to %s\n", id, name)
		return nil
	})
}

func cmdDelete(ctx context.Context, args []string, out io.Writer) error {
	if err := needArgs(args, 2, "delete requires <root> <id>"); err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	return withView(ctx, args[0], func(v *gallery.View) error {
		if err := v.Delete(id); err != nil {
			return fmt.Errorf("work #%d: %w", id, err)
		}
		fmt.Fprintf(out, "Deleted #%d\n", id)
		return nil
	})
}

func cmdExport(ctx context.Context, cfg config.AppConfig, args []string, out io.Writer) error {
	if err := needArgs(args, 2, "export requires <root> <target>"); err != nil {
		return err
	}
	target := args[1]
	return withView(ctx, args[0], func(v *gallery.View) error {
		items := v.Collection().Items()
		title := filepath.Base(v.Root())
		switch p := export.PresetName(target); {
		case p == export.PresetWeb || p == export.PresetPrint:
			if err := export.BatchExport(v.Root(), items, export.BatchOptions{Preset: p, Title: title}); err != nil {
				return err
			}
			fmt.Fprintf(out, "Exported %d works with preset %s\n", len(items), p)
			return nil
		case strings.EqualFold(filepath.Ext(target), ".pdf"):
			opt := export.PDFOptions{Title: title, Columns: cfg.Gallery.Columns, ShowLocked: true}
			if err := export.ContactSheetPDF(items, target, opt); err != nil {
				return err
			}
		case strings.EqualFold(filepath.Ext(target), ".cbz"):
			if err := export.ExportCBZ(items, target, export.CBZOptions{Title: title}); err != nil {
				return err
			}
		default:
			if _, err := export.ExportPNGs(items, target, export.PNGOptions{}); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "Exported %d works to %s\n", len(items), target)
		return nil
	})
}
