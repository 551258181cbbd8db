package ui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/cnharrison/har-insights/internal/format"
	"github.com/cnharrison/har-insights/internal/har"
)

// analyzeDocument runs the analyzer over source after applying the current
// filter and refreshes every panel. It must run on the UI goroutine.
func (app *Application) analyzeDocument() {
	if app.source == nil {
		return
	}

	doc := app.filterState.Apply(app.source)
	analysis, err := app.analyzer.Analyze(doc)
	if err != nil {
		app.loadErr = err
		app.analysis = nil
		app.overviewView.SetText(fmt.Sprintf("[red]%s[white]", tview.Escape(err.Error())))
		app.showStatusMessage(fmt.Sprintf("Analysis failed: %v", err))
		return
	}

	app.loadErr = nil
	app.doc = doc
	app.analysis = analysis
	app.analyzedIdx = app.analyzedIdx[:0]
	for i, entry := range doc.Log.Entries {
		if entry.DecodeErr == nil {
			app.analyzedIdx = append(app.analyzedIdx, i)
		}
	}
	app.selected = nil

	app.updatePanels()
}

// updatePanels renders the current analysis into every view
func (app *Application) updatePanels() {
	if app.analysis == nil {
		return
	}
	m := app.analysis.Metrics

	app.overviewView.SetText(renderOverview(m))
	app.histogramView.SetText(renderHistograms(m))
	app.websocketView.SetText(renderWebSocket(m.WebSocketMetrics))
	app.domainsView.SetText(renderDomains(m))
	app.warningsView.SetText(renderWarnings(app.analysis.Warnings))
	app.warningsView.SetTitle(fmt.Sprintf(" Warnings (%d) ", len(app.analysis.Warnings)))

	app.updateSlowestTable()
	app.updateLargestTable()
	app.waterfallView.Update(m.Timeseries)

	app.detailView.SetText("[dim]Select a request to see its details[white]")
	if len(m.Selected.SlowestRequests) > 0 {
		app.slowestTable.Select(1, 0)
		app.selectSlowest(0)
	} else if len(m.Selected.LargestRequests) > 0 {
		app.largestTable.Select(1, 0)
		app.selectLargest(0)
	}
}

func setHeader(table *tview.Table, titles ...string) {
	for col, title := range titles {
		table.SetCell(0, col, tview.NewTableCell(title).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold))
	}
}

func (app *Application) updateSlowestTable() {
	table := app.slowestTable
	table.Clear()
	setHeader(table, "Time", "Type", "URL")

	rows := app.analysis.Metrics.Selected.SlowestRequests
	if len(rows) == 0 {
		table.SetCell(1, 0, tview.NewTableCell("[dim]No slow requests[white]").SetSelectable(false))
		return
	}
	for i, r := range rows {
		table.SetCell(i+1, 0, tview.NewTableCell(format.Duration(r.Time)).SetTextColor(tcell.ColorRed))
		table.SetCell(i+1, 1, tview.NewTableCell(r.Type).SetTextColor(tcell.ColorTeal))
		table.SetCell(i+1, 2, tview.NewTableCell(tview.Escape(truncateString(r.URL, maxURLDisplay))).SetExpansion(1))
	}
}

func (app *Application) updateLargestTable() {
	table := app.largestTable
	table.Clear()
	setHeader(table, "Size", "Type", "URL")

	rows := app.analysis.Metrics.Selected.LargestRequests
	if len(rows) == 0 {
		table.SetCell(1, 0, tview.NewTableCell("[dim]No large requests[white]").SetSelectable(false))
		return
	}
	for i, r := range rows {
		table.SetCell(i+1, 0, tview.NewTableCell(format.Bytes(r.Size)).SetTextColor(tcell.ColorOrange))
		table.SetCell(i+1, 1, tview.NewTableCell(r.Type).SetTextColor(tcell.ColorTeal))
		table.SetCell(i+1, 2, tview.NewTableCell(tview.Escape(truncateString(r.URL, maxURLDisplay))).SetExpansion(1))
	}
}

func (app *Application) selectSlowest(i int) {
	rows := app.analysis.Metrics.Selected.SlowestRequests
	if i < 0 || i >= len(rows) {
		return
	}
	app.showEntry(app.findEntry(rows[i].URL))
}

func (app *Application) selectLargest(i int) {
	rows := app.analysis.Metrics.Selected.LargestRequests
	if i < 0 || i >= len(rows) {
		return
	}
	app.showEntry(app.findEntry(rows[i].URL))
}

// selectTimeseriesPoint shows the entry behind a waterfall row
func (app *Application) selectTimeseriesPoint(point int) {
	if app.doc == nil || point < 0 || point >= len(app.analyzedIdx) {
		return
	}
	entry := app.doc.Log.Entries[app.analyzedIdx[point]]
	app.showEntry(&entry)
}

// findEntry returns the first analyzed entry requesting url
func (app *Application) findEntry(url string) *har.HAREntry {
	if app.doc == nil {
		return nil
	}
	for _, i := range app.analyzedIdx {
		entry := app.doc.Log.Entries[i]
		if entry.Request != nil && entry.Request.URL == url {
			return &entry
		}
	}
	return nil
}

func (app *Application) showEntry(entry *har.HAREntry) {
	app.selected = entry
	if entry == nil {
		app.detailView.SetText("[dim]Entry not found[white]")
		return
	}
	app.detailView.SetText(renderEntryDetail(*entry, app.formatter))
	app.detailView.ScrollToBeginning()
}

// updateBottomBar shows loading progress, filter state and transient messages
func (app *Application) updateBottomBar() {
	var status string
	switch {
	case app.isLoading:
		status = fmt.Sprintf("[yellow]Loading %s... %d entries[white]", tview.Escape(app.filename), app.loadingProgress)
	case app.loadErr != nil:
		status = fmt.Sprintf("[red]Error: %s[white]", tview.Escape(app.loadErr.Error()))
	case app.analysis != nil:
		status = fmt.Sprintf("[green]%d requests[white] | %s", app.analysis.Metrics.TotalRequests, tview.Escape(app.filename))
		if app.filterState.ShowErrorsOnly {
			status += " | [red]errors only[white]"
		}
	}

	if app.confirmationMessage != "" && time.Now().Before(app.confirmationEnd) {
		status += fmt.Sprintf(" | [::b]%s[::-]", tview.Escape(app.confirmationMessage))
	}

	status += fmt.Sprintf(" | %s[dim]Tab[white] panels [dim]w[white] waterfall [dim]c[white] report [dim]y[white] curl [dim]e[white] errors [dim]?[white] help [dim]q[white] quit", app.getBlinkingArrows())
	app.bottomBar.SetText(status)
}

// getBlinkingArrows returns blinking arrow characters
func (app *Application) getBlinkingArrows() string {
	if app.animationFrame%animationCycleFrames < pulseCycleFrames {
		return "► "
	}
	return "  "
}
