package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/cnharrison/har-insights/internal/analyzer"
	"github.com/cnharrison/har-insights/internal/format"
	"github.com/cnharrison/har-insights/internal/har"
)

const (
	waterfallHeaderRows = 2
	defaultChartWidth   = 80
	minChartWidth       = 30
	maxChartWidth       = 150
	waterfallInfoWidth  = 36
	waterfallTicks      = 5
)

// WaterfallView draws the analysis timeseries as one bar per entry, in input order
type WaterfallView struct {
	*tview.List
	points     []analyzer.TimeseriesPoint
	offsets    []float64 // ms since the earliest parsable start
	span       float64   // ms from the earliest start to the latest end
	chartWidth int
	zoomed     bool

	onSelectionChanged func(int)
}

func NewWaterfallView() *WaterfallView {
	list := tview.NewList()
	list.ShowSecondaryText(false)

	wv := &WaterfallView{
		List:       list,
		chartWidth: defaultChartWidth,
	}

	wv.SetSelectedBackgroundColor(tcell.ColorDarkBlue)
	wv.SetSelectedTextColor(tcell.ColorYellow)
	wv.SetMainTextColor(tcell.ColorWhite)
	// The list reports the new item before it updates its current item.
	wv.SetChangedFunc(func(item int, _ string, _ string, _ rune) {
		i := item - waterfallHeaderRows
		if wv.onSelectionChanged != nil && i >= 0 && i < len(wv.points) {
			wv.onSelectionChanged(i)
		}
	})

	return wv
}

// SetSelectionChangedFunc registers a handler receiving the selected point index
func (wv *WaterfallView) SetSelectionChangedFunc(handler func(int)) {
	wv.onSelectionChanged = handler
}

// GetSelectedIndex returns the selected point index, or -1 when a header row
// or nothing is selected
func (wv *WaterfallView) GetSelectedIndex() int {
	i := wv.GetCurrentItem() - waterfallHeaderRows
	if i < 0 || i >= len(wv.points) {
		return -1
	}
	return i
}

// SetSelectedPoint moves the selection to point i
func (wv *WaterfallView) SetSelectedPoint(i int) {
	if i < 0 || i >= len(wv.points) {
		return
	}
	wv.SetCurrentItem(i + waterfallHeaderRows)
}

func (wv *WaterfallView) MoveUp() {
	if wv.GetSelectedIndex() > 0 {
		wv.SetSelectedPoint(wv.GetSelectedIndex() - 1)
	}
}

func (wv *WaterfallView) MoveDown() {
	if i := wv.GetSelectedIndex(); i < len(wv.points)-1 {
		wv.SetSelectedPoint(i + 1)
	}
}

func (wv *WaterfallView) GoToTop() {
	wv.SetSelectedPoint(0)
}

func (wv *WaterfallView) GoToBottom() {
	wv.SetSelectedPoint(len(wv.points) - 1)
}

// Update replaces the plotted points and redraws
func (wv *WaterfallView) Update(points []analyzer.TimeseriesPoint) {
	wv.points = points
	wv.offsets, wv.span = timelineOffsets(points)
	wv.renderWaterfall()
}

// timelineOffsets places each point relative to the earliest parsable start.
// Points whose timestamp cannot be parsed are drawn at the origin.
func timelineOffsets(points []analyzer.TimeseriesPoint) ([]float64, float64) {
	offsets := make([]float64, len(points))
	starts := make([]float64, len(points))
	valid := make([]bool, len(points))

	origin := 0.0
	haveOrigin := false
	for i, p := range points {
		t, err := har.ParseHARDateTime(p.Timestamp)
		if err != nil {
			continue
		}
		starts[i] = float64(t.UnixMicro()) / 1000
		valid[i] = true
		if !haveOrigin || starts[i] < origin {
			origin = starts[i]
			haveOrigin = true
		}
	}

	span := 0.0
	for i, p := range points {
		if valid[i] {
			offsets[i] = starts[i] - origin
		}
		if end := offsets[i] + p.ElapsedTime; end > span {
			span = end
		}
	}
	return offsets, span
}

func (wv *WaterfallView) renderWaterfall() {
	selected := wv.GetSelectedIndex()
	wv.Clear()

	if len(wv.points) == 0 {
		wv.AddItem("[dim]No requests to display[white]", "", 0, nil)
		return
	}

	// Fit the chart to the view until the user zooms
	if !wv.zoomed {
		_, _, viewWidth, _ := wv.GetInnerRect()
		if available := viewWidth - waterfallInfoWidth - 12; available > minChartWidth {
			wv.chartWidth = available
		}
	}

	wv.AddItem(wv.renderTimeScale(), "", 0, nil)
	wv.AddItem(strings.Repeat("─", waterfallInfoWidth+wv.chartWidth+12), "", 0, nil)

	for i, p := range wv.points {
		wv.AddItem(wv.renderRequestBar(i, p), "", 0, nil)
	}

	if selected < 0 {
		selected = 0
	}
	if selected >= len(wv.points) {
		selected = len(wv.points) - 1
	}
	wv.SetSelectedPoint(selected)
}

func (wv *WaterfallView) renderTimeScale() string {
	var scale strings.Builder
	scale.WriteString(fmt.Sprintf("%-*s│", waterfallInfoWidth, "Time"))

	step := wv.chartWidth / waterfallTicks
	for i := 0; i < waterfallTicks; i++ {
		label := format.Duration(wv.span * float64(i) / waterfallTicks)
		scale.WriteString(fmt.Sprintf("[dim]%-*s[white]", step, label))
	}
	scale.WriteString(fmt.Sprintf("[dim]%s[white]", format.Duration(wv.span)))
	return scale.String()
}

// barGeometry converts a point's offset and duration into a column and width on the chart
func (wv *WaterfallView) barGeometry(offset, elapsed float64) (int, int) {
	if wv.span <= 0 {
		return 0, 1
	}
	start := int(float64(wv.chartWidth) * offset / wv.span)
	width := int(float64(wv.chartWidth) * elapsed / wv.span)
	if width < 1 {
		width = 1
	}
	if start >= wv.chartWidth {
		start = wv.chartWidth - 1
	}
	if start+width > wv.chartWidth {
		width = wv.chartWidth - start
	}
	return start, width
}

func (wv *WaterfallView) renderRequestBar(i int, p analyzer.TimeseriesPoint) string {
	start, width := wv.barGeometry(wv.offsets[i], p.ElapsedTime)
	color := resourceColor(p.ResourceType)

	var bar strings.Builder
	bar.WriteString(fmt.Sprintf("[dim]#%-4d[-] [%s]%-12s[-] [white]%10s[-]       │",
		i, color, truncateString(p.ResourceType, 12), format.Bytes(p.Size)))
	bar.WriteString(strings.Repeat(" ", start))
	bar.WriteString(fmt.Sprintf("[%s]%s[-]", color, strings.Repeat("█", width)))
	bar.WriteString(fmt.Sprintf(" [yellow]%s[-]", format.Duration(p.ElapsedTime)))
	return bar.String()
}

func (wv *WaterfallView) ZoomIn() {
	if wv.chartWidth < maxChartWidth {
		wv.zoomed = true
		wv.chartWidth += 10
		wv.renderWaterfall()
	}
}

func (wv *WaterfallView) ZoomOut() {
	if wv.chartWidth > minChartWidth {
		wv.zoomed = true
		wv.chartWidth -= 10
		wv.renderWaterfall()
	}
}
