//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"freedraw/internal/board"
	"freedraw/internal/codec"
	"freedraw/internal/config"
	"freedraw/internal/crash"
	"freedraw/internal/export"
	applog "freedraw/internal/log"
	"freedraw/internal/storage"
	"freedraw/internal/version"
)

// Run opens the drawing window. file, if set, is loaded at startup.
func Run(cfg config.AppConfig, file string) error {
	l := applog.WithComponent("ui")
	dataDir, err := cfg.Storage.ResolveDataDir()
	if err != nil {
		return err
	}

	b, err := board.New(board.Options{Style: cfg.Drawing.Style(), FillColor: cfg.Drawing.DefaultFill, Post: fyne.Do})
	if err != nil {
		return err
	}
	defer crash.Recover(dataDir, b)
	l = l.With(slog.String("session", b.ID()))
	l.Info("starting UI", slog.String("version", version.String()))

	fyneApp := app.NewWithID("io.freedraw")
	w := fyneApp.NewWindow("FreeDraw")
	prefs := fyneApp.Preferences()
	w.Resize(fyne.NewSize(
		float32(max(prefs.IntWithFallback("window.width", cfg.Drawing.Width+80), 640)),
		float32(max(prefs.IntWithFallback("window.height", cfg.Drawing.Height+120), 480)),
	))

	s := &session{cfg: cfg, dataDir: dataDir, board: b, win: w, l: l}
	s.canvas = NewDrawingCanvas(b, cfg.Drawing.Width, cfg.Drawing.Height)
	s.status = widget.NewLabel("Ready")
	s.swatch = canvas.NewRectangle(color.Black)
	s.swatch.SetMinSize(fyne.NewSize(18, 18))
	s.canvas.OnChange = s.updateStatus
	s.applyFillSwatch()

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), s.newDrawing),
		widget.NewToolbarAction(theme.FolderOpenIcon(), s.showOpen),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), s.save),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), s.undo),
		widget.NewToolbarAction(theme.ColorPaletteIcon(), s.pickFill),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DownloadIcon(), s.showExportPNG),
		widget.NewToolbarAction(theme.HistoryIcon(), s.showRecents),
	)
	top := container.NewBorder(nil, nil, nil, container.NewHBox(widget.NewLabel("Fill"), s.swatch), toolbar)
	w.SetContent(container.NewBorder(top, s.status, nil, nil, container.NewScroll(container.NewCenter(s.canvas))))
	w.SetMainMenu(s.menu())

	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { s.undo() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { s.save() })

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		b.Close()
		s.canvas.Close()
	})

	if file != "" {
		s.open(file)
	}
	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}

// session is the state of one drawing window.
type session struct {
	cfg     config.AppConfig
	dataDir string
	board   *board.Board
	canvas  *DrawingCanvas
	win     fyne.Window
	status  *widget.Label
	swatch  *canvas.Rectangle
	path    string
	l       *slog.Logger
}

func (s *session) menu() *fyne.MainMenu {
	file := fyne.NewMenu("File",
		fyne.NewMenuItem("New", s.newDrawing),
		fyne.NewMenuItem("Open…", s.showOpen),
		fyne.NewMenuItem("Open Recent…", s.showRecents),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", s.save),
		fyne.NewMenuItem("Save As…", s.showSaveAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PNG…", s.showExportPNG),
		fyne.NewMenuItem("Export PDF…", s.showExportPDF),
	)
	edit := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", s.undo),
		fyne.NewMenuItem("Fill Color…", s.pickFill),
	)
	about := fyne.NewMenu("Help", fyne.NewMenuItem("About", func() {
		dialog.ShowInformation("About FreeDraw", "FreeDraw "+version.String(), s.win)
	}))
	return fyne.NewMainMenu(file, edit, about)
}

func (s *session) updateStatus() {
	name := "untitled"
	if s.path != "" {
		name = filepath.Base(s.path)
	}
	s.status.SetText(fmt.Sprintf("%s | %d strokes | fill %s", name, len(s.board.Strokes()), s.board.FillColor()))
}

func (s *session) applyFillSwatch() {
	if c, err := parseFill(s.board.FillColor()); err == nil {
		s.swatch.FillColor = c
		s.swatch.Refresh()
	}
}

func (s *session) newDrawing() {
	s.board.Clear()
	s.path = ""
	s.canvas.Sync()
}

func (s *session) undo() {
	s.board.Undo()
	s.canvas.Sync()
}

func (s *session) pickFill() {
	picker := dialog.NewColorPicker("Fill Color", "Closed strokes are filled with this color", func(c color.Color) {
		if err := s.board.SetFillColor(hexColor(c)); err != nil {
			dialog.ShowError(err, s.win)
			return
		}
		s.applyFillSwatch()
		s.updateStatus()
	}, s.win)
	picker.Advanced = true
	if c, err := parseFill(s.board.FillColor()); err == nil {
		picker.SetColor(c)
	}
	picker.Show()
}

func (s *session) drawFilter() fstorage.FileFilter {
	return fstorage.NewExtensionFileFilter([]string{codec.Ext})
}

func (s *session) showOpen() {
	open := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, s.win)
			return
		}
		if ur == nil {
			return
		}
		path := ur.URI().Path()
		_ = ur.Close()
		s.open(path)
	}, s.win)
	open.SetFilter(s.drawFilter())
	open.Show()
}

// open loads path without blocking the UI goroutine. A failed load keeps
// the current drawing.
func (s *session) open(path string) {
	f, err := os.Open(path)
	if err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	s.status.SetText("Loading " + filepath.Base(path) + "…")
	s.board.LoadAsync(f, s.opened(path, true))
}

// opened returns the LoadAsync continuation for path. A malformed file with
// backups leads to an offer to restore the newest usable one.
func (s *session) opened(path string, offerBackup bool) func(error) {
	return func(err error) {
		if err != nil {
			s.l.Warn("open failed", slog.String("path", path), slog.Any("err", err))
			s.updateStatus()
			if bs, _ := storage.Backups(path); offerBackup && errors.Is(err, codec.ErrMalformed) && len(bs) > 0 {
				msg := fmt.Sprintf("%s is damaged.\nRestore the newest usable backup?", filepath.Base(path))
				dialog.ShowConfirm("Damaged drawing", msg, func(ok bool) {
					if ok {
						s.restore(path)
					}
				}, s.win)
				return
			}
			dialog.ShowError(fmt.Errorf("%s: %w", filepath.Base(path), err), s.win)
			return
		}
		s.path = path
		s.canvas.Sync()
		s.remember(path)
	}
}

// restore loads the newest backup of path that decodes. The document keeps
// path as its location, so the next save replaces the damaged file.
func (s *session) restore(path string) {
	s.status.SetText("Restoring " + filepath.Base(path) + "…")
	go func() {
		data, used, err := storage.ReadLatestValid(path)
		fyne.Do(func() {
			if err != nil {
				s.l.Warn("restore failed", slog.String("path", path), slog.Any("err", err))
				dialog.ShowError(err, s.win)
				s.updateStatus()
				return
			}
			s.l.Info("restoring from backup", slog.String("path", path), slog.String("backup", used))
			s.board.LoadAsync(bytes.NewReader(data), s.opened(path, false))
		})
	}()
}

func (s *session) save() {
	if s.path == "" {
		s.showSaveAs()
		return
	}
	s.saveTo(s.path)
}

func (s *session) showSaveAs() {
	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, s.win)
			return
		}
		if uc == nil {
			return
		}
		path := uc.URI().Path()
		_ = uc.Close()
		s.saveTo(path)
	}, s.win)
	save.SetFileName("drawing" + codec.Ext)
	save.SetFilter(s.drawFilter())
	save.Show()
}

func (s *session) saveTo(path string) {
	data, err := s.board.Save()
	if err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	final, err := storage.WriteDrawing(path, data, s.cfg.Storage.KeepBackups)
	if err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	s.path = final
	s.updateStatus()
	s.remember(final)
}

// remember records path in the recents index in the background.
func (s *session) remember(path string) {
	snap := s.canvas.Snapshot()
	n := len(s.board.Strokes())
	keep := s.cfg.Storage.RecentsLimit
	go func() {
		ctx, cancel := context.WithTimeout(applog.ContextWithDocument(context.Background(), path), 5*time.Second)
		defer cancel()
		r := storage.Recent{Path: path, Strokes: n}
		if thumb, tw, th, err := storage.Thumbnail(snap, storage.DefaultThumbSize); err == nil {
			r.Thumb, r.ThumbW, r.ThumbH = thumb, tw, th
		}
		if err := storage.RecordRecent(ctx, s.dataDir, r); err != nil {
			s.l.WarnContext(ctx, "record recent failed", slog.Any("err", err))
			return
		}
		if _, err := storage.PruneRecents(ctx, s.dataDir, keep); err != nil {
			s.l.WarnContext(ctx, "prune recents failed", slog.Any("err", err))
		}
	}()
}

func (s *session) showRecents() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	recents, err := storage.ListRecents(ctx, s.dataDir, s.cfg.Storage.RecentsLimit)
	if err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	if len(recents) == 0 {
		dialog.ShowInformation("Open Recent", "No recent drawings.", s.win)
		return
	}
	var dlg dialog.Dialog
	list := widget.NewList(
		func() int { return len(recents) },
		func() fyne.CanvasObject {
			img := canvas.NewImageFromResource(nil)
			img.FillMode = canvas.ImageFillContain
			img.SetMinSize(fyne.NewSize(64, 48))
			return container.NewHBox(img, widget.NewLabel(""))
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			r := recents[i]
			row := o.(*fyne.Container)
			img := row.Objects[0].(*canvas.Image)
			img.Resource = nil
			img.Image = nil
			if len(r.Thumb) > 0 {
				img.Resource = fyne.NewStaticResource(filepath.Base(r.Path)+".png", r.Thumb)
			}
			img.Refresh()
			row.Objects[1].(*widget.Label).SetText(fmt.Sprintf("%s  (%d strokes, %s)", r.Path, r.Strokes, r.OpenedAt.Local().Format("2006-01-02 15:04")))
		},
	)
	list.OnSelected = func(i widget.ListItemID) {
		path := recents[i].Path
		dlg.Hide()
		if _, err := os.Stat(path); err != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = storage.ForgetRecent(ctx, s.dataDir, path)
			dialog.ShowError(fmt.Errorf("%s is no longer available", path), s.win)
			return
		}
		s.open(path)
	}
	dlg = dialog.NewCustom("Open Recent", "Close", container.NewGridWrap(fyne.NewSize(560, 360), list), s.win)
	dlg.Show()
}

func (s *session) exportTarget(ext string, write func(path string) error) {
	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, s.win)
			return
		}
		if uc == nil {
			return
		}
		outPath := uc.URI().Path()
		_ = uc.Close()
		if !strings.HasSuffix(strings.ToLower(outPath), ext) {
			outPath += ext
		}
		if err := write(outPath); err != nil {
			dialog.ShowError(err, s.win)
			return
		}
		dialog.ShowInformation("Export", "Exported to "+outPath, s.win)
	}, s.win)
	name := "drawing"
	if s.path != "" {
		name = strings.TrimSuffix(filepath.Base(s.path), codec.Ext)
	}
	save.SetFileName(name + ext)
	save.SetFilter(fstorage.NewExtensionFileFilter([]string{ext}))
	save.Show()
}

func (s *session) showExportPNG() {
	s.exportTarget(".png", func(path string) error {
		return export.PNGFile(s.board.Document(), path, export.PNGOptions{
			Width:   s.cfg.Drawing.Width,
			Height:  s.cfg.Drawing.Height,
			Flatten: true,
			Style:   s.cfg.Drawing.Style(),
		})
	})
}

func (s *session) showExportPDF() {
	s.exportTarget(".pdf", func(path string) error {
		title := "FreeDraw drawing"
		if s.path != "" {
			title = filepath.Base(s.path)
		}
		return export.PDFFile(s.board.Document(), path, export.PDFOptions{
			Width:  s.cfg.Drawing.Width,
			Height: s.cfg.Drawing.Height,
			Style:  s.cfg.Drawing.Style(),
			Title:  title,
		})
	})
}
