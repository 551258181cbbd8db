package ui

import (
	"github.com/gdamore/tcell/v2"
)

// handleInput handles all keyboard input for the application
func (app *Application) handleInput(event *tcell.EventKey) *tcell.EventKey {
	// Modals install their own input capture
	if app.modalOpen {
		return event
	}

	switch event.Key() {
	case tcell.KeyTab:
		app.cyclePanel(1)
		return nil
	case tcell.KeyBacktab:
		app.cyclePanel(-1)
		return nil
	case tcell.KeyCtrlC:
		app.app.Stop()
		return nil
	}

	switch event.Rune() {
	case 'q':
		app.app.Stop()
		return nil
	case '?':
		app.showHelpModal()
		return nil
	case 'w':
		app.toggleWaterfall()
		return nil
	case 'c':
		app.copyReport()
		return nil
	case 'y':
		app.copyCurl()
		return nil
	case 'e':
		app.toggleErrorsOnly()
		return nil
	}

	if app.currentPanelName() == panelWaterfall {
		return app.handleWaterfallInput(event)
	}
	return event
}

// handleWaterfallInput adds vi-style movement and zoom to the waterfall list
func (app *Application) handleWaterfallInput(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'j':
		app.waterfallView.MoveDown()
		return nil
	case 'k':
		app.waterfallView.MoveUp()
		return nil
	case 'g':
		app.waterfallView.GoToTop()
		return nil
	case 'G':
		app.waterfallView.GoToBottom()
		return nil
	case '+', '=':
		app.waterfallView.ZoomIn()
		return nil
	case '-', '_':
		app.waterfallView.ZoomOut()
		return nil
	}

	switch event.Key() {
	case tcell.KeyDown:
		app.waterfallView.MoveDown()
		return nil
	case tcell.KeyUp:
		app.waterfallView.MoveUp()
		return nil
	}
	return event
}
