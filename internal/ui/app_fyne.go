//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"log/slog"
	"sort"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"reportstudio/internal/autolayout"
	"reportstudio/internal/backend"
	rcanvas "reportstudio/internal/canvas"
	"reportstudio/internal/config"
	"reportstudio/internal/crash"
	"reportstudio/internal/domain"
	"reportstudio/internal/export"
	"reportstudio/internal/geom"
	applog "reportstudio/internal/log"
	"reportstudio/internal/storage"
	"reportstudio/internal/telemetry"
	"reportstudio/internal/undo"
	"reportstudio/internal/version"
)

// Run starts the Fyne-based report designer shell.
func Run(reportDir string) error {
	cfg, token, err := config.Load()
	if err != nil {
		return err
	}
	applog.Init(applog.FromEnv())
	telemetry.InitDefault()
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	var rh *storage.ReportHandle
	defer func() { crash.Recover(rh) }()

	fyneApp := app.NewWithID("reportstudio")
	w := fyneApp.NewWindow("Report Studio")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	eng := rcanvas.NewEngine(cfg.Canvas.PageSettings())
	dc := NewDesignCanvas(eng)
	backendCli := backend.NewClient(cfg.Backend.BaseURL, token)

	undoMgr := undo.NewManager(undo.Config{
		MaxBytes:     16 * 1024 * 1024,
		MaxPerReport: 50,
		MinInterval:  300 * time.Millisecond,
	})

	reportID := func() string {
		if rh == nil {
			return ""
		}
		return rh.Root
	}

	// lastBlob is the serialized component list before the most recent change;
	// it becomes the undo snapshot when the next change lands.
	var lastBlob []byte
	captureBlob := func(list []domain.Component) []byte {
		b, err := json.Marshal(list)
		if err != nil {
			return nil
		}
		return b
	}

	restoreBlob := func(blob []byte) {
		var list []domain.Component
		if err := json.Unmarshal(blob, &list); err != nil {
			l.Error("restore snapshot failed", slog.Any("err", err))
			return
		}
		if rh != nil {
			rh.Report.Components = list
		}
		lastBlob = captureBlob(list)
		eng.SetComponents(list)
		dc.Refresh()
	}

	eng.OnComponentsChange = func(list []domain.Component) {
		if lastBlob != nil {
			undoMgr.PushSnapshot(undo.Snapshot{ReportID: reportID(), Blob: lastBlob, TS: time.Now()})
		}
		lastBlob = captureBlob(list)
		if rh != nil {
			rh.Report.Components = list
		}
		dc.Refresh()
	}
	eng.OnSelectionChange = func(ids []string) {
		switch len(ids) {
		case 0:
			status.SetText("Ready")
		case 1:
			status.SetText(fmt.Sprintf("Selected %s", ids[0]))
		default:
			status.SetText(fmt.Sprintf("Selected %d components", len(ids)))
		}
		dc.Refresh()
	}

	openReport := func(root string) {
		h, err := storage.Open(root)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		rh = h
		eng.SetPage(rh.Report.Page)
		eng.SetComponents(rh.Report.Components)
		lastBlob = captureBlob(rh.Report.Components)
		undoMgr.ClearReport(reportID())
		dc.Refresh()
		w.SetTitle(fmt.Sprintf("Report Studio — %s", rh.Report.Name))
		status.SetText(fmt.Sprintf("Opened %s (%d components)", rh.Report.Name, len(rh.Report.Components)))
		telemetry.Event("report_opened", map[string]any{"components": len(rh.Report.Components)})
	}

	saveReport := func() {
		if rh == nil {
			dialog.ShowInformation("Save", "No report open.", w)
			return
		}
		if err := storage.Save(rh); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Saved")
	}

	// Component palette (left)
	paletteLabels := map[domain.ComponentType]string{
		domain.TypeTable:     "Table",
		domain.TypeChart:     "Chart",
		domain.TypeBarcode:   "Barcode",
		domain.TypeText:      "Text",
		domain.TypeImage:     "Image",
		domain.TypeDrillDown: "Drill-down",
		domain.TypeSubReport: "Sub-report",
	}
	palette := container.NewVBox(widget.NewLabel("Components"), widget.NewSeparator())
	for _, t := range domain.ComponentTypes {
		t := t
		palette.Add(widget.NewButton(paletteLabels[t], func() {
			if rh == nil {
				dialog.ShowInformation("Add Component", "Open a report first.", w)
				return
			}
			c := eng.Add(t)
			l.Info("component added", slog.String("id", c.ID), slog.String("type", string(c.Type)))
		}))
	}
	multiCheck := widget.NewCheck("Multi-select", func(v bool) { dc.additive = v })
	palette.Add(widget.NewSeparator())
	palette.Add(multiCheck)

	// Alignment and distribution toolbar rows
	alignRow := container.NewHBox(
		widget.NewButton("Left", func() { eng.AlignSelection(rcanvas.AlignLeft) }),
		widget.NewButton("Center", func() { eng.AlignSelection(rcanvas.AlignCenterX) }),
		widget.NewButton("Right", func() { eng.AlignSelection(rcanvas.AlignRight) }),
		widget.NewButton("Top", func() { eng.AlignSelection(rcanvas.AlignTop) }),
		widget.NewButton("Middle", func() { eng.AlignSelection(rcanvas.AlignMiddleY) }),
		widget.NewButton("Bottom", func() { eng.AlignSelection(rcanvas.AlignBottom) }),
		widget.NewSeparator(),
		widget.NewButton("Distribute H", func() { eng.DistributeSelection(rcanvas.Horizontal) }),
		widget.NewButton("Distribute V", func() { eng.DistributeSelection(rcanvas.Vertical) }),
	)

	showAutoLayout := func() {
		if rh == nil {
			dialog.ShowInformation("Auto Layout", "Open a report first.", w)
			return
		}
		sugs := autolayout.Generate(rh.Report.Datasources, rh.Report.Page)
		if len(sugs) == 0 {
			dialog.ShowInformation("Auto Layout", "Add a datasource to the report to generate layout suggestions.", w)
			return
		}
		selected := 0
		items := make([]string, len(sugs))
		for i, s := range sugs {
			items[i] = fmt.Sprintf("%s (%.0f%% match) — %s", s.Name, s.Confidence*100, s.Description)
		}
		list := widget.NewList(
			func() int { return len(items) },
			func() fyne.CanvasObject { return widget.NewLabel("") },
			func(i widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(items[i]) },
		)
		list.OnSelected = func(id widget.ListItemID) { selected = int(id) }
		list.Select(0)
		content := container.NewVScroll(list)
		content.SetMinSize(fyne.NewSize(520, 220))
		dialog.ShowCustomConfirm("Auto Layout", "Apply", "Cancel", content, func(ok bool) {
			if !ok || selected < 0 || selected >= len(sugs) {
				return
			}
			comps := autolayout.Apply(sugs[selected])
			eng.Replace(comps)
			status.SetText(fmt.Sprintf("Applied %s layout (%d components)", sugs[selected].Template, len(comps)))
			telemetry.Event("layout_applied", map[string]any{"template": string(sugs[selected].Template)})
		}, w)
	}

	// The engine is single-owner: every call on it happens on the UI thread.
	// Fetches are registered here via BeginPreview, only the provider runs in
	// the goroutine, and results come back through fyne.Do + ApplyPreview.
	fetchPreviews := func() {
		if rh == nil {
			return
		}
		ids := eng.Selection()
		if len(ids) == 0 {
			status.SetText("Select a component to preview")
			return
		}
		type previewJob struct {
			id   string
			seq  uint64
			comp domain.Component
		}
		comps := eng.Components()
		jobs := make([]previewJob, 0, len(ids))
		for _, id := range ids {
			i := domain.FindComponent(comps, id)
			if i < 0 {
				continue
			}
			if seq, ok := eng.BeginPreview(id); ok {
				jobs = append(jobs, previewJob{id: id, seq: seq, comp: comps[i]})
			}
		}
		if len(jobs) == 0 {
			return
		}
		status.SetText("Loading preview…")
		root := rh.Root
		go func(jobs []previewJob, root string) {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			for _, j := range jobs {
				j := j
				data, err := backendCli.FetchPreview(ctx, j.comp)
				if err == nil {
					if blob, merr := json.Marshal(data); merr == nil {
						if cerr := storage.PutPreviewBlob(ctx, root, j.id, blob); cerr != nil {
							l.Warn("preview cache write failed", slog.Any("err", cerr))
						}
					}
				}
				fyne.Do(func() {
					eng.ApplyPreview(j.id, j.seq, data, err)
				})
			}
			fyne.Do(func() {
				dc.Refresh()
				status.SetText(fmt.Sprintf("Preview loaded for %d component(s)", len(jobs)))
			})
		}(jobs, root)
	}

	exportDesign := func(format string) {
		if rh == nil {
			dialog.ShowInformation("Export", "Open a report first.", w)
			return
		}
		go func() {
			var err error
			var out string
			switch format {
			case "pdf":
				out = "design.pdf"
				err = export.ExportPDF(rh, out, export.PDFOptions{IncludeGrid: true})
			case "png":
				out = "design.png"
				err = export.ExportPNG(rh, out, export.PNGOptions{IncludeGrid: true})
			}
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				status.SetText(fmt.Sprintf("Exported %s to exports/%s", format, out))
			})
		}()
	}

	toolbar := container.NewHBox(
		widget.NewButton("Open…", func() {
			dialog.ShowFolderOpen(func(lu fyne.ListableURI, err error) {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				if lu == nil {
					return
				}
				openReport(lu.Path())
			}, w)
		}),
		widget.NewButton("Save", saveReport),
		widget.NewSeparator(),
		widget.NewButton("Undo", func() {
			if s, ok := undoMgr.Undo(reportID()); ok {
				// Push current state onto redo by re-recording it before restore.
				restoreBlob(s.Blob)
				status.SetText("Undo")
			}
		}),
		widget.NewButton("Redo", func() {
			if s, ok := undoMgr.Redo(reportID()); ok {
				restoreBlob(s.Blob)
				status.SetText("Redo")
			}
		}),
		widget.NewSeparator(),
		widget.NewButton("Auto Layout…", showAutoLayout),
		widget.NewButton("Preview Data", fetchPreviews),
		widget.NewSeparator(),
		widget.NewButton("Export PDF", func() { exportDesign("pdf") }),
		widget.NewButton("Export PNG", func() { exportDesign("png") }),
	)

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			eng.CancelGesture()
			dc.clearPreview()
			dc.Refresh()
		case fyne.KeyDelete, fyne.KeyBackspace:
			ids := eng.Selection()
			for _, id := range ids {
				eng.Delete(id)
			}
			if rh != nil && len(ids) > 0 {
				root := rh.Root
				go func(ids []string, root string) {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					for _, id := range ids {
						if err := storage.DeletePreviewBlob(ctx, root, id); err != nil {
							l.Warn("preview cache delete failed", slog.Any("err", err))
						}
					}
				}(ids, root)
			}
		}
	})

	top := container.NewVBox(toolbar, alignRow)
	w.SetContent(container.NewBorder(top, status, palette, nil, dc))

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		telemetry.Event("app_closed", nil)
	})

	if reportDir != "" {
		openReport(reportDir)
	}
	w.ShowAndRun()
	return nil
}

// handleOrder maps visual handle slots (clockwise from NW) to engine handles.
var handleOrder = [8]rcanvas.Handle{
	rcanvas.HandleNW, rcanvas.HandleN, rcanvas.HandleNE, rcanvas.HandleE,
	rcanvas.HandleSE, rcanvas.HandleS, rcanvas.HandleSW, rcanvas.HandleW,
}

var typeFills = map[domain.ComponentType]color.RGBA{
	domain.TypeTable:     {R: 224, G: 235, B: 248, A: 255},
	domain.TypeChart:     {R: 232, G: 245, B: 230, A: 255},
	domain.TypeBarcode:   {R: 245, G: 240, B: 225, A: 255},
	domain.TypeText:      {R: 244, G: 244, B: 244, A: 255},
	domain.TypeImage:     {R: 240, G: 232, B: 245, A: 255},
	domain.TypeDrillDown: {R: 226, G: 242, B: 244, A: 255},
	domain.TypeSubReport: {R: 248, G: 234, B: 234, A: 255},
}

// DesignCanvas renders the page, grid, components and selection handles, and
// translates pointer events into engine gestures. Pan with a background drag,
// zoom with the wheel.
type DesignCanvas struct {
	widget.BaseWidget
	eng *rcanvas.Engine

	zoom             float32
	offsetX, offsetY float32
	additive         bool

	// gesture preview: the rect shown for previewID instead of its committed
	// geometry while a drag is in flight
	previewID   string
	previewRect geom.Rect
	hasPreview  bool

	lastX, lastY float64 // last pointer position in page coords
	panning      bool
}

func NewDesignCanvas(eng *rcanvas.Engine) *DesignCanvas {
	dc := &DesignCanvas{eng: eng, zoom: 0.8}
	dc.ExtendBaseWidget(dc)
	return dc
}

func (d *DesignCanvas) PreferredSize() fyne.Size { return fyne.NewSize(820, 620) }

func (d *DesignCanvas) clearPreview() {
	d.previewID = ""
	d.hasPreview = false
}

// originScale returns the screen position of the page origin and the scale.
func (d *DesignCanvas) originScale() (cx, cy, s float32) {
	size := d.Size()
	page := d.eng.Page()
	scaledW := float32(page.Width) * d.zoom
	scaledH := float32(page.Height) * d.zoom
	cx = size.Width/2 - scaledW/2 + d.offsetX
	cy = size.Height/2 - scaledH/2 + d.offsetY
	return cx, cy, d.zoom
}

func (d *DesignCanvas) toPage(pos fyne.Position) (float64, float64) {
	cx, cy, s := d.originScale()
	return float64((pos.X - cx) / s), float64((pos.Y - cy) / s)
}

func (d *DesignCanvas) toScreen(x, y float64) fyne.Position {
	cx, cy, s := d.originScale()
	return fyne.NewPos(cx+float32(x)*s, cy+float32(y)*s)
}

// hitTest returns the id of the top-most visible component at page coords.
func (d *DesignCanvas) hitTest(x, y float64) string {
	comps := d.eng.Components()
	sort.SliceStable(comps, func(i, j int) bool { return comps[i].ZIndex > comps[j].ZIndex })
	for _, c := range comps {
		if !c.IsVisible {
			continue
		}
		if c.Geometry.GeomRect().Contains(geom.Pt{X: x, Y: y}) {
			return c.ID
		}
	}
	return ""
}

const handlePx = float32(8)

// handleScreenRects returns the eight handle rects (screen coords, clockwise
// from NW) for the sole selected component, or false when the selection is
// not exactly one component.
func (d *DesignCanvas) handleScreenRects() (rects [8]fyne.Position, id string, ok bool) {
	sel := d.eng.Selection()
	if len(sel) != 1 {
		return rects, "", false
	}
	id = sel[0]
	comps := d.eng.Components()
	i := domain.FindComponent(comps, id)
	if i < 0 {
		return rects, "", false
	}
	g := comps[i].Geometry
	p0 := d.toScreen(g.X, g.Y)
	p1 := d.toScreen(g.X+g.Width, g.Y+g.Height)
	mx := (p0.X + p1.X) / 2
	my := (p0.Y + p1.Y) / 2
	rects = [8]fyne.Position{
		{X: p0.X, Y: p0.Y}, // NW
		{X: mx, Y: p0.Y},   // N
		{X: p1.X, Y: p0.Y}, // NE
		{X: p1.X, Y: my},   // E
		{X: p1.X, Y: p1.Y}, // SE
		{X: mx, Y: p1.Y},   // S
		{X: p0.X, Y: p1.Y}, // SW
		{X: p0.X, Y: my},   // W
	}
	return rects, id, true
}

// handleAt returns the handle under the given screen position, if any.
func (d *DesignCanvas) handleAt(pos fyne.Position) (rcanvas.Handle, string, bool) {
	centers, id, ok := d.handleScreenRects()
	if !ok {
		return "", "", false
	}
	for i, c := range centers {
		if pos.X >= c.X-handlePx/2 && pos.X <= c.X+handlePx/2 &&
			pos.Y >= c.Y-handlePx/2 && pos.Y <= c.Y+handlePx/2 {
			return handleOrder[i], id, true
		}
	}
	return "", "", false
}

// Tapped selects the component under the cursor. With multi-select enabled
// the tap toggles membership; otherwise it replaces the selection, and a tap
// on empty page clears it.
func (d *DesignCanvas) Tapped(e *fyne.PointEvent) {
	x, y := d.toPage(e.Position)
	id := d.hitTest(x, y)
	if id == "" {
		if !d.additive {
			d.eng.DeselectAll()
		}
		return
	}
	d.eng.Select(id, d.additive)
}

func (d *DesignCanvas) Dragged(e *fyne.DragEvent) {
	if !d.eng.Active() && !d.panning {
		start := fyne.NewPos(e.Position.X-e.Dragged.DX, e.Position.Y-e.Dragged.DY)
		sx, sy := d.toPage(start)
		if h, id, ok := d.handleAt(start); ok {
			d.eng.PointerDown(id, h, sx, sy)
			d.previewID = id
		} else if id := d.hitTest(sx, sy); id != "" {
			if !d.eng.Selected(id) {
				d.eng.Select(id, false)
			}
			d.eng.PointerDown(id, "", sx, sy)
			d.previewID = id
		} else {
			d.panning = true
		}
	}
	if d.panning {
		d.offsetX += e.Dragged.DX
		d.offsetY += e.Dragged.DY
		d.Refresh()
		return
	}
	x, y := d.toPage(e.Position)
	d.lastX, d.lastY = x, y
	if r, ok := d.eng.PointerMove(x, y); ok {
		d.previewRect = r
		d.hasPreview = true
	}
	d.Refresh()
}

func (d *DesignCanvas) DragEnd() {
	if d.eng.Active() {
		d.eng.PointerUp(d.lastX, d.lastY)
	}
	d.panning = false
	d.clearPreview()
	d.Refresh()
}

// Scrolled zooms around the widget center.
func (d *DesignCanvas) Scrolled(e *fyne.ScrollEvent) {
	d.zoom += e.Scrolled.DY * 0.05
	if d.zoom < 0.25 {
		d.zoom = 0.25
	}
	if d.zoom > 3 {
		d.zoom = 3
	}
	d.Refresh()
}

func (d *DesignCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 42, G: 42, B: 46, A: 255})
	page := canvas.NewRectangle(color.White)
	page.StrokeColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	page.StrokeWidth = 1

	bbox := canvas.NewRectangle(color.RGBA{})
	bbox.StrokeColor = color.RGBA{R: 0, G: 150, B: 255, A: 255}
	bbox.StrokeWidth = 1
	bbox.Hide()

	var handles [8]*canvas.Rectangle
	for i := range handles {
		handles[i] = canvas.NewRectangle(color.RGBA{R: 0, G: 150, B: 255, A: 255})
		handles[i].Hide()
	}

	r := &designRenderer{dc: d, bg: bg, page: page, bbox: bbox, handles: handles}
	r.rebuild()
	return r
}

type designRenderer struct {
	dc      *DesignCanvas
	bg      *canvas.Rectangle
	page    *canvas.Rectangle
	grid    []*canvas.Line
	rects   []*canvas.Rectangle
	labels  []*canvas.Text
	bbox    *canvas.Rectangle
	handles [8]*canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *designRenderer) Destroy()                     {}
func (r *designRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *designRenderer) MinSize() fyne.Size           { return r.dc.PreferredSize() }
func (r *designRenderer) Refresh() {
	r.Layout(r.dc.Size())
	canvas.Refresh(r.dc)
}

// rebuild recreates the per-component and grid objects and the draw-order
// slice. Called whenever counts change.
func (r *designRenderer) rebuild() {
	comps := r.dc.eng.Components()
	pageCfg := r.dc.eng.Page()

	gridCount := 0
	if pageCfg.GridSize > 0 {
		gridCount = int(pageCfg.Width/pageCfg.GridSize) + int(pageCfg.Height/pageCfg.GridSize)
	}
	if len(r.grid) != gridCount {
		r.grid = r.grid[:0]
		for i := 0; i < gridCount; i++ {
			ln := canvas.NewLine(color.RGBA{R: 225, G: 225, B: 228, A: 255})
			ln.StrokeWidth = 1
			r.grid = append(r.grid, ln)
		}
	}
	if len(r.rects) != len(comps) {
		r.rects = r.rects[:0]
		r.labels = r.labels[:0]
		for range comps {
			rect := canvas.NewRectangle(color.White)
			rect.StrokeColor = color.RGBA{R: 90, G: 90, B: 94, A: 255}
			rect.StrokeWidth = 1
			r.rects = append(r.rects, rect)
			txt := canvas.NewText("", color.RGBA{R: 60, G: 60, B: 64, A: 255})
			r.labels = append(r.labels, txt)
		}
	}

	objs := []fyne.CanvasObject{r.bg, r.page}
	for _, ln := range r.grid {
		objs = append(objs, ln)
	}
	for i := range r.rects {
		objs = append(objs, r.rects[i], r.labels[i])
	}
	objs = append(objs, r.bbox)
	for _, h := range r.handles {
		objs = append(objs, h)
	}
	r.objects = objs
}

func (r *designRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	pageCfg := r.dc.eng.Page()
	comps := r.dc.eng.Components()
	sort.SliceStable(comps, func(i, j int) bool { return comps[i].ZIndex < comps[j].ZIndex })
	wantGrid := 0
	if pageCfg.GridSize > 0 {
		wantGrid = int(pageCfg.Width/pageCfg.GridSize) + int(pageCfg.Height/pageCfg.GridSize)
	}
	if len(comps) != len(r.rects) || len(r.grid) != wantGrid {
		r.rebuild()
	}

	cx, cy, s := r.dc.originScale()
	r.page.Move(fyne.NewPos(cx, cy))
	r.page.Resize(fyne.NewSize(float32(pageCfg.Width)*s, float32(pageCfg.Height)*s))

	// grid lines: verticals first, then horizontals
	gi := 0
	if pageCfg.GridSize > 0 {
		for x := pageCfg.GridSize; x < pageCfg.Width && gi < len(r.grid); x += pageCfg.GridSize {
			ln := r.grid[gi]
			ln.Position1 = r.dc.toScreen(x, 0)
			ln.Position2 = r.dc.toScreen(x, pageCfg.Height)
			gi++
		}
		for y := pageCfg.GridSize; y < pageCfg.Height && gi < len(r.grid); y += pageCfg.GridSize {
			ln := r.grid[gi]
			ln.Position1 = r.dc.toScreen(0, y)
			ln.Position2 = r.dc.toScreen(pageCfg.Width, y)
			gi++
		}
	}
	for ; gi < len(r.grid); gi++ {
		r.grid[gi].Position1 = fyne.NewPos(0, 0)
		r.grid[gi].Position2 = fyne.NewPos(0, 0)
	}

	for i, c := range comps {
		g := c.Geometry.GeomRect()
		if r.dc.hasPreview && c.ID == r.dc.previewID {
			g = r.dc.previewRect
		}
		pos := r.dc.toScreen(g.X, g.Y)
		r.rects[i].Move(pos)
		r.rects[i].Resize(fyne.NewSize(float32(g.W)*s, float32(g.H)*s))
		if fill, ok := typeFills[c.Type]; ok {
			r.rects[i].FillColor = fill
		}
		if !c.IsVisible {
			r.rects[i].Hide()
			r.labels[i].Hide()
			continue
		}
		r.rects[i].Show()
		r.labels[i].Show()
		r.labels[i].Text = string(c.Type)
		r.labels[i].TextSize = 10 * s
		r.labels[i].Move(fyne.NewPos(pos.X+3*s, pos.Y+2*s))
		r.labels[i].Refresh()
	}

	// Selection bbox spans the union of the selected components; resize
	// handles only appear for a single selection.
	sel := r.dc.eng.Selection()
	if len(sel) == 0 {
		r.bbox.Hide()
		for _, h := range r.handles {
			h.Hide()
		}
		return
	}
	selSet := make(map[string]struct{}, len(sel))
	for _, id := range sel {
		selSet[id] = struct{}{}
	}
	var union geom.Rect
	first := true
	for _, c := range comps {
		if _, ok := selSet[c.ID]; !ok {
			continue
		}
		g := c.Geometry.GeomRect()
		if r.dc.hasPreview && c.ID == r.dc.previewID {
			g = r.dc.previewRect
		}
		if first {
			union = g
			first = false
		} else {
			union = union.Union(g)
		}
	}
	p0 := r.dc.toScreen(union.X, union.Y)
	r.bbox.Move(p0)
	r.bbox.Resize(fyne.NewSize(float32(union.W)*s, float32(union.H)*s))
	r.bbox.Show()

	if centers, _, ok := r.dc.handleScreenRects(); ok {
		for i, h := range r.handles {
			h.Move(fyne.NewPos(centers[i].X-handlePx/2, centers[i].Y-handlePx/2))
			h.Resize(fyne.NewSize(handlePx, handlePx))
			h.Show()
		}
	} else {
		for _, h := range r.handles {
			h.Hide()
		}
	}
}
