package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// setupUI creates and configures all UI components
func (app *Application) setupUI() {
	// Configure tview for transparent background
	tview.Styles.PrimitiveBackgroundColor = tcell.ColorDefault
	tview.Styles.ContrastBackgroundColor = tcell.ColorDefault

	app.createComponents()
	app.styleComponents()
	app.createLayout()
}

func newTextPanel() *tview.TextView {
	return tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetWordWrap(true)
}

func newRequestTable() *tview.Table {
	table := tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)
	table.SetSelectedStyle(tcell.StyleDefault.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorYellow))
	return table
}

// createComponents initializes all UI components
func (app *Application) createComponents() {
	app.topBar = tview.NewTextView().
		SetText("[::b][yellow] HAR INSIGHTS - Press ? for Help [white]").
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	app.overviewView = newTextPanel()
	app.histogramView = newTextPanel()
	app.websocketView = newTextPanel()
	app.detailView = newTextPanel()
	app.domainsView = newTextPanel()
	app.warningsView = newTextPanel()

	app.slowestTable = newRequestTable()
	app.largestTable = newRequestTable()
	app.slowestTable.SetSelectionChangedFunc(func(row, _ int) {
		if app.analysis != nil {
			app.selectSlowest(row - 1)
		}
	})
	app.largestTable.SetSelectionChangedFunc(func(row, _ int) {
		if app.analysis != nil {
			app.selectLargest(row - 1)
		}
	})

	app.waterfallView = NewWaterfallView()
	app.waterfallView.SetSelectionChangedFunc(func(point int) {
		app.selectTimeseriesPoint(point)
	})

	app.bottomBar = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignLeft)

	app.overviewView.SetText("[dim]Loading...[white]")
	app.detailView.SetText("[dim]Select a request to see its details[white]")
}

// styleComponents applies styling to all components
func (app *Application) styleComponents() {
	app.overviewView.SetBorder(true).SetTitle(" Overview ").SetTitleAlign(tview.AlignCenter).SetBorderColor(tcell.ColorTeal)
	app.histogramView.SetBorder(true).SetTitle(" Status & Types ").SetTitleAlign(tview.AlignCenter).SetBorderColor(tcell.ColorDarkGreen)
	app.websocketView.SetBorder(true).SetTitle(" WebSocket ").SetTitleAlign(tview.AlignCenter).SetBorderColor(tcell.ColorDarkMagenta)
	app.slowestTable.SetBorder(true).SetTitle(" Slowest Requests ").SetTitleAlign(tview.AlignCenter).SetBorderColor(tcell.ColorDarkRed)
	app.largestTable.SetBorder(true).SetTitle(" Largest Requests ").SetTitleAlign(tview.AlignCenter).SetBorderColor(tcell.ColorDarkBlue)
	app.waterfallView.SetBorder(true).SetTitle(" Waterfall ").SetTitleAlign(tview.AlignCenter).SetBorderColor(tcell.ColorDarkCyan)
	app.detailView.SetBorder(true).SetTitle(" Request ").SetTitleAlign(tview.AlignCenter).SetBorderColor(tcell.ColorDarkCyan)
	app.domainsView.SetBorder(true).SetTitle(" Domains & Security ").SetTitleAlign(tview.AlignCenter).SetBorderColor(tcell.ColorGreen)
	app.warningsView.SetBorder(true).SetTitle(" Warnings ").SetTitleAlign(tview.AlignCenter).SetBorderColor(tcell.ColorOrange)
}

// panelPrimitive maps a panel name to the component that takes focus
func (app *Application) panelPrimitive(name string) tview.Primitive {
	switch name {
	case panelSlowest:
		return app.slowestTable
	case panelLargest:
		return app.largestTable
	case panelWaterfall:
		return app.waterfallView
	case panelDomains:
		return app.domainsView
	case panelWarnings:
		return app.warningsView
	default:
		return app.detailView
	}
}

// focusBox returns the bordered box of a panel so its border can be highlighted
func (app *Application) focusBox(name string) *tview.Box {
	switch name {
	case panelSlowest:
		return app.slowestTable.Box
	case panelLargest:
		return app.largestTable.Box
	case panelWaterfall:
		return app.waterfallView.Box
	case panelDomains:
		return app.domainsView.Box
	case panelWarnings:
		return app.warningsView.Box
	default:
		return app.detailView.Box
	}
}
