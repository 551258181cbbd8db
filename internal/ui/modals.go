package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const helpText = `[yellow]HAR INSIGHTS - Command Help[white]

[yellow]Navigation:[white]
  [cyan]Tab/Shift+Tab[white]  Cycle panels
  [cyan]j/k[white]            Move up/down in the focused table or waterfall
  [cyan]g/G[white]            Go to top/bottom
  [cyan]w[white]              Toggle between the top request tables and the waterfall

[yellow]Waterfall:[white]
  [cyan]+/=[white]            Zoom in (wider chart)
  [cyan]-/_[white]            Zoom out (narrower chart)

[yellow]Analysis:[white]
  [cyan]e[white]              Re-analyze with only failed requests (4xx/5xx/no response)

[yellow]Actions:[white]
  [cyan]c[white]              Copy the Markdown report to the clipboard
  [cyan]y[white]              Copy the selected request as a cURL command
  [cyan]q[white]              Quit`

// showHelpModal displays the help modal
func (app *Application) showHelpModal() {
	helpView := tview.NewTextView()
	helpView.SetDynamicColors(true)
	helpView.SetText(helpText)
	helpView.SetTextAlign(tview.AlignLeft)
	helpView.SetBorder(true)
	helpView.SetTitle(" Help ")
	helpView.SetTitleAlign(tview.AlignCenter)
	helpView.SetBorderColor(tcell.ColorYellow)

	app.showModal(helpView)
}

// showModal centers content over the dashboard until q, ? or Escape is pressed
func (app *Application) showModal(content tview.Primitive) {
	container := tview.NewFlex().SetDirection(tview.FlexRow)
	container.AddItem(nil, 0, 1, false)
	container.AddItem(
		tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(content, 0, 2, true).
			AddItem(nil, 0, 1, false),
		0, 2, true)
	container.AddItem(nil, 0, 1, false)

	container.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'q' || event.Key() == tcell.KeyEscape || event.Rune() == '?' {
			app.closeModal()
			return nil
		}
		return event
	})

	app.modalOpen = true
	app.app.SetRoot(container, true)
	app.app.SetFocus(container)
}

func (app *Application) closeModal() {
	app.modalOpen = false
	app.app.SetRoot(app.layout, true)
	app.app.SetFocus(app.panelPrimitive(app.currentPanelName()))
}
