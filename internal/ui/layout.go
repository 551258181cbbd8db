package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

var panelColors = map[string]tcell.Color{
	panelSlowest:   tcell.ColorDarkRed,
	panelLargest:   tcell.ColorDarkBlue,
	panelWaterfall: tcell.ColorDarkCyan,
	panelDetail:    tcell.ColorDarkCyan,
	panelDomains:   tcell.ColorGreen,
	panelWarnings:  tcell.ColorOrange,
}

// createLayout builds the main application layout
func (app *Application) createLayout() {
	summary := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(app.overviewView, 0, 1, false).
		AddItem(app.histogramView, 0, 1, false).
		AddItem(app.websocketView, 0, 1, false)

	tables := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(app.slowestTable, 0, 1, true).
		AddItem(app.largestTable, 0, 1, false)

	// Switches between the top-K tables and the waterfall
	app.mainPanel = tview.NewPages()
	app.mainPanel.AddPage("tables", tables, true, true)
	app.mainPanel.AddPage("waterfall", app.waterfallView, true, false)

	sidebar := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(app.domainsView, 0, 1, false).
		AddItem(app.warningsView, 0, 1, false)

	details := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(app.detailView, 0, detailRatio, false).
		AddItem(sidebar, 0, 1, false)

	app.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(app.topBar, 1, 0, false).
		AddItem(summary, summaryHeight, 0, false).
		AddItem(app.mainPanel, 0, 1, true).
		AddItem(details, 0, 1, false).
		AddItem(app.bottomBar, 1, 0, false)

	app.setPanels()
}

// setPanels rebuilds the Tab order for the current main panel page
func (app *Application) setPanels() {
	if app.showWaterfall {
		app.panels = []string{panelWaterfall, panelDetail, panelDomains, panelWarnings}
	} else {
		app.panels = []string{panelSlowest, panelLargest, panelDetail, panelDomains, panelWarnings}
	}
	app.currentPanel = 0
}

func (app *Application) currentPanelName() string {
	if app.currentPanel < 0 || app.currentPanel >= len(app.panels) {
		return panelDetail
	}
	return app.panels[app.currentPanel]
}

// cyclePanel moves focus delta panels forward, wrapping around
func (app *Application) cyclePanel(delta int) {
	n := len(app.panels)
	if n == 0 {
		return
	}
	app.currentPanel = ((app.currentPanel+delta)%n + n) % n
	app.app.SetFocus(app.panelPrimitive(app.currentPanelName()))
	app.updateFocusStyles()
}

// toggleWaterfall swaps the top-K tables for the waterfall and back
func (app *Application) toggleWaterfall() {
	app.showWaterfall = !app.showWaterfall
	if app.showWaterfall {
		app.mainPanel.SwitchToPage("waterfall")
	} else {
		app.mainPanel.SwitchToPage("tables")
	}
	app.setPanels()
	app.app.SetFocus(app.panelPrimitive(app.currentPanelName()))
	app.updateFocusStyles()
}

// updateFocusStyles highlights the border of the focused panel
func (app *Application) updateFocusStyles() {
	focused := app.currentPanelName()
	for name, color := range panelColors {
		box := app.focusBox(name)
		if name == focused {
			box.SetBorderColor(tcell.ColorYellow)
			box.SetBorderAttributes(tcell.AttrBold)
			continue
		}
		box.SetBorderColor(color)
		box.SetBorderAttributes(tcell.AttrNone)
	}
}
