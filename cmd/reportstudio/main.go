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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"reportstudio/internal/autolayout"
	"reportstudio/internal/config"
	"reportstudio/internal/crash"
	"reportstudio/internal/datasource"
	"reportstudio/internal/domain"
	"reportstudio/internal/export"
	applog "reportstudio/internal/log"
	"reportstudio/internal/storage"
	"reportstudio/internal/telemetry"
	"reportstudio/internal/ui"
	"reportstudio/internal/version"
)

func usage() {
	fmt.Println("Report Studio — report designer")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  reportstudio version|-v|--version          Show version")
	fmt.Println("  reportstudio init <dir> <name>             Create a new report project at <dir> with name <name>")
	fmt.Println("  reportstudio open <dir>                    Open report at <dir> and print summary")
	fmt.Println("  reportstudio save <dir>                    Save report at <dir> (creates backup)")
	fmt.Println("  reportstudio suggest <dir> [template]      Print layout suggestions; with [template] apply it and save")
	fmt.Println("  reportstudio datasources <dir> <schema> [tables...]")
	fmt.Println("                                             Introspect PostgreSQL tables into the report's datasources")
	fmt.Println("                                             and save; connection comes from RST_PG_HOST/PORT/USER/")
	fmt.Println("                                             PASSWORD/DATABASE/SSLMODE")
	fmt.Println("  reportstudio export <dir> <pdf|png> [out]  Export the design as a PDF or PNG wireframe")
	fmt.Println("  reportstudio ui [<dir>]                    Launch desktop designer (build with -tags fyne for full UI)")
}

func main() {
	applog.Init(applog.FromEnv())
	telemetry.InitDefault()
	l := applog.WithComponent("cli")
	var rh *storage.ReportHandle
	defer func() { crash.Recover(rh) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Report Studio — report designer")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <name>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			name := args[3]
			abs, _ := filepath.Abs(dir)
			l.Info("init report", slog.String("root", abs), slog.String("name", name))
			cfg, _, _ := config.Load()
			r := domain.Report{Name: name, Page: cfg.Canvas.PageSettings(), Components: []domain.Component{}}
			h, err := storage.InitReport(abs, r)
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			rh = h
			fmt.Println("Created report project at", abs)
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("open report", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			rh = h
			fmt.Printf("Opened report: %s\n", h.Report.Name)
			fmt.Printf("Page: %.0fx%.0f (grid %.0f)\n", h.Report.Page.Width, h.Report.Page.Height, h.Report.Page.GridSize)
			fmt.Printf("Datasources: %d\n", len(h.Report.Datasources))
			fmt.Printf("Components: %d\n", len(h.Report.Components))
			fmt.Println("Root:", h.Root)
			return
		case "save":
			if len(args) < 3 {
				fmt.Println("save requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("save report", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open before save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			rh = h
			if err := storage.Save(h); err != nil {
				l.Error("save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Saved report and created a backup of previous manifest (if any).")
			return
		case "suggest":
			if len(args) < 3 {
				fmt.Println("suggest requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			h, err := storage.Open(abs)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			rh = h
			sugs := autolayout.Generate(h.Report.Datasources, h.Report.Page)
			if len(sugs) == 0 {
				fmt.Println("No suggestions: the report has no datasources.")
				return
			}
			if len(args) >= 4 {
				want := autolayout.Template(args[3])
				for _, s := range sugs {
					if s.Template != want {
						continue
					}
					h.Report.Components = autolayout.Apply(s)
					if err := storage.Save(h); err != nil {
						fmt.Println("Error:", err)
						os.Exit(1)
					}
					fmt.Printf("Applied %s layout (%d components) and saved.\n", s.Template, len(h.Report.Components))
					telemetry.Event("layout_applied", map[string]any{"template": string(s.Template)})
					return
				}
				fmt.Printf("No suggestion for template %q.\n", args[3])
				os.Exit(1)
			}
			for _, s := range sugs {
				fmt.Printf("%-12s %3.0f%%  %s — %s\n", s.Template, s.Confidence*100, s.Name, s.Reasoning)
			}
			return
		case "datasources":
			if len(args) < 4 {
				fmt.Println("datasources requires <dir> and <schema>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			schema := args[3]
			tables := args[4:]
			h, err := storage.Open(abs)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			rh = h
			pgCfg := datasource.ConnectionFromEnv()
			l.Info("introspect datasources",
				slog.String("host", pgCfg.Host), slog.String("database", pgCfg.Database),
				slog.String("schema", schema))
			var insp datasource.Inspector
			if err := insp.Connect(pgCfg); err != nil {
				l.Error("postgres connect failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			defer insp.Close()
			ctx := context.Background()
			if len(tables) == 0 {
				tables, err = insp.ListTables(ctx, schema)
				if err != nil {
					fmt.Println("Error:", err)
					os.Exit(1)
				}
			}
			dss, err := insp.InspectDatasources(ctx, pgCfg.Database, schema, tables)
			if err != nil {
				l.Error("introspection failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if len(dss) == 0 {
				fmt.Printf("No tables found in schema %q.\n", schema)
				return
			}
			h.Report.Datasources = domain.MergeDatasources(h.Report.Datasources, dss)
			if err := storage.Save(h); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, ds := range dss {
				fmt.Printf("%-24s %d fields\n", ds.Alias, len(ds.SelectedFields))
			}
			fmt.Printf("Added %d datasource(s) and saved (%d total).\n", len(dss), len(h.Report.Datasources))
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <dir> and <pdf|png>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			h, err := storage.Open(abs)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			rh = h
			format := args[3]
			out := "design." + format
			if len(args) >= 5 {
				out = args[4]
			}
			switch format {
			case "pdf":
				err = export.ExportPDF(h, out, export.PDFOptions{IncludeGrid: true})
			case "png":
				err = export.ExportPNG(h, out, export.PNGOptions{IncludeGrid: true})
			default:
				fmt.Printf("unknown export format %q (want pdf or png)\n", format)
				os.Exit(2)
			}
			if err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Exported", out)
			return
		case "ui":
			var dir string
			if len(args) >= 3 {
				dir = args[2]
			}
			if err := ui.Run(dir); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}
