package ui

import (
	"fmt"

	"github.com/cnharrison/har-insights/internal/har"
)

// Streaming callbacks run on the loader goroutine, so all view changes are
// queued onto the UI goroutine.
func (app *Application) onLoadingComplete() {
	doc := app.streamingLoader.Document()
	app.app.QueueUpdateDraw(func() {
		app.finishLoading(doc)
		app.updateBottomBar()
	})
}

// finishLoading records the streamed document and analyzes it
func (app *Application) finishLoading(doc *har.HARFile) {
	app.isLoading = false
	app.source = doc
	app.analyzeDocument()
	if app.analysis != nil {
		app.logger.Debug().
			Str("file", app.filename).
			Int("entries", len(doc.Log.Entries)).
			Int("warnings", len(app.analysis.Warnings)).
			Msg("dashboard analysis complete")
		app.showStatusMessage("Analysis complete")
	}
}

func (app *Application) onLoadingError(err error) {
	app.app.QueueUpdateDraw(func() {
		app.isLoading = false
		app.loadErr = err
		app.overviewView.SetText(fmt.Sprintf("[red]Could not load %s[white]", app.filename))
		app.showStatusMessage(fmt.Sprintf("Loading error: %v", err))
		app.updateBottomBar()
	})
}

func (app *Application) onLoadingProgress(count int) {
	app.app.QueueUpdateDraw(func() {
		app.loadingProgress = count
		app.updateBottomBar()
	})
}
