/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"freedraw/internal/config"
	"freedraw/internal/crash"
	applog "freedraw/internal/log"
	"freedraw/internal/surface"
	"freedraw/internal/ui"
	"freedraw/internal/version"
)

func usage() {
	fmt.Println("FreeDraw")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  freedraw version|-v|--version          Show version")
	fmt.Println("  freedraw new <file> [w h]              Create an empty drawing, optionally with a white w x h background")
	fmt.Println("  freedraw info <file>                   Print a summary of a drawing")
	fmt.Println("  freedraw render <file> <out.png>       Render a drawing to PNG")
	fmt.Println("  freedraw pdf <file> <out.pdf>          Render a drawing to PDF")
	fmt.Println("  freedraw recents [n]                   List recently used drawings")
	fmt.Println("  freedraw config                        Show effective settings and env overrides")
	fmt.Println("  freedraw ui [<file>]                   Launch desktop UI (build with -tags fyne for full UI)")
}

var errUsage = errors.New("usage")

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.Logging.LogOptions())
	l := applog.WithComponent("cli")
	surface.RouteRasterizerLogs(applog.WithComponent("gg"))
	if cfgErr != nil {
		l.Warn("config problem, using defaults where needed", slog.Any("err", cfgErr))
		cfg = config.Defaults()
	}
	dataDir, err := cfg.Storage.ResolveDataDir()
	if err != nil {
		l.Warn("no data dir", slog.Any("err", err))
	}
	defer crash.Recover(dataDir, nil)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	c := &cli{cfg: cfg, dataDir: dataDir, out: os.Stdout, l: l}
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("FreeDraw")
		fmt.Println(version.String())
		return
	case "ui":
		var file string
		if len(args) >= 3 {
			file = args[2]
		}
		err = ui.Run(cfg, file)
	default:
		err = c.run(args[1], args[2:])
	}
	if errors.Is(err, errUsage) {
		fmt.Println(err)
		usage()
		os.Exit(2)
	}
	if err != nil {
		l.Error("command failed", slog.String("cmd", args[1]), slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
