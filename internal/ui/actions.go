package ui

import (
	"fmt"

	"github.com/cnharrison/har-insights/internal/export"
)

// copyReport copies the Markdown report of the current analysis
func (app *Application) copyReport() {
	if app.analysis == nil {
		app.showStatusMessage("Nothing to copy yet")
		return
	}
	report := export.GenerateMarkdownReport(app.analysis.Metrics, app.analysis.Warnings, "")
	if err := app.copyText(report); err != nil {
		app.showStatusMessage(fmt.Sprintf("Copy failed: %v", err))
		return
	}
	app.showStatusMessage("Markdown report copied to clipboard")
}

// copyCurl copies the selected entry as a cURL command
func (app *Application) copyCurl() {
	if app.selected == nil || app.selected.Request == nil {
		app.showStatusMessage("No request selected")
		return
	}
	if err := app.copyText(export.GenerateCurlCommand(*app.selected)); err != nil {
		app.showStatusMessage(fmt.Sprintf("Copy failed: %v", err))
		return
	}
	app.showStatusMessage("cURL command copied to clipboard")
}

// toggleErrorsOnly re-runs the analysis over failed requests only, or over
// everything again
func (app *Application) toggleErrorsOnly() {
	if app.source == nil {
		return
	}
	app.filterState.ToggleErrorsOnly()
	app.analyzeDocument()

	if app.filterState.ShowErrorsOnly {
		app.showStatusMessage("Showing errors only")
	} else {
		app.showStatusMessage("Showing all requests")
	}
	app.updateBottomBar()
}
