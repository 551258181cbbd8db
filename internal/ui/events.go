package ui

import (
	"time"
)

// setupEventHandling configures all event handlers
func (app *Application) setupEventHandling() {
	app.app.SetInputCapture(app.handleInput)
	app.app.SetFocus(app.panelPrimitive(app.currentPanelName()))
}

// startAnimationLoop drives the focus arrows and expires status messages
func (app *Application) startAnimationLoop() {
	go func() {
		ticker := time.NewTicker(animationIntervalMs * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-app.stopAnimation:
				return
			case <-ticker.C:
			}
			app.app.QueueUpdateDraw(func() {
				app.animationFrame++
				app.updateBottomBar()
			})
		}
	}()
}
