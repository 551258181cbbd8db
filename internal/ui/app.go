// Package ui is a terminal dashboard of the metrics computed for one HAR file.
package ui

import (
	"time"

	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"github.com/cnharrison/har-insights/internal/analyzer"
	"github.com/cnharrison/har-insights/internal/filter"
	"github.com/cnharrison/har-insights/internal/format"
	"github.com/cnharrison/har-insights/internal/har"
	"github.com/cnharrison/har-insights/pkg/clipboard"
)

const (
	// Animation and timing constants
	animationIntervalMs      = 500
	statusMessageDurationSec = 5
	animationCycleFrames     = 4
	pulseCycleFrames         = 2

	// Layout constants
	summaryHeight    = 14
	detailRatio      = 2
	maxURLDisplay    = 60
	histogramBarSize = 20
)

// Panel names cycled with Tab
const (
	panelSlowest   = "slowest"
	panelLargest   = "largest"
	panelWaterfall = "waterfall"
	panelDetail    = "detail"
	panelDomains   = "domains"
	panelWarnings  = "warnings"
)

// Options configures the dashboard
type Options struct {
	Analyzer *analyzer.Analyzer
	Logger   zerolog.Logger
	// Copy writes text to the system clipboard. Defaults to clipboard.Copy.
	Copy func(string) error
}

// Application is the HAR metrics dashboard
type Application struct {
	filename    string
	app         *tview.Application
	analyzer    *analyzer.Analyzer
	logger      zerolog.Logger
	copyText    func(string) error
	filterState *filter.FilterState
	formatter   *format.ContentFormatter

	// Streaming components
	streamingLoader *har.StreamingLoader
	isLoading       bool
	loadingProgress int
	loadErr         error

	// Analysis state. doc is what was analyzed (possibly filtered) and
	// analyzedIdx maps timeseries points back to entries of doc.
	source      *har.HARFile
	doc         *har.HARFile
	analysis    *analyzer.Analysis
	analyzedIdx []int
	selected    *har.HAREntry

	// UI state
	panels         []string
	currentPanel   int
	showWaterfall  bool
	modalOpen      bool
	animationFrame int
	stopAnimation  chan struct{}

	// Confirmation/status messages
	confirmationMessage string
	confirmationEnd     time.Time

	// UI components
	topBar        *tview.TextView
	overviewView  *tview.TextView
	histogramView *tview.TextView
	websocketView *tview.TextView
	slowestTable  *tview.Table
	largestTable  *tview.Table
	waterfallView *WaterfallView
	mainPanel     *tview.Pages
	detailView    *tview.TextView
	domainsView   *tview.TextView
	warningsView  *tview.TextView
	bottomBar     *tview.TextView
	layout        *tview.Flex
}

// NewApplication creates a dashboard that streams and analyzes filename
func NewApplication(filename string, opts Options) *Application {
	if opts.Analyzer == nil {
		opts.Analyzer = analyzer.New(analyzer.WithLogger(opts.Logger))
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.Copy
	}

	app := &Application{
		filename:        filename,
		app:             tview.NewApplication(),
		analyzer:        opts.Analyzer,
		logger:          opts.Logger,
		copyText:        opts.Copy,
		filterState:     filter.NewFilterState(),
		formatter:       format.NewContentFormatter(),
		streamingLoader: har.NewStreamingLoader(),
		isLoading:       true,
		stopAnimation:   make(chan struct{}),
	}

	// Entries are only analyzed once the stream completes.
	app.streamingLoader.SetCallbacks(
		nil,
		app.onLoadingComplete,
		app.onLoadingError,
		app.onLoadingProgress,
	)

	return app
}

// Run starts the dashboard and blocks until the user quits
func (app *Application) Run() error {
	app.setupUI()
	app.setupEventHandling()
	app.startAnimationLoop()
	defer close(app.stopAnimation)

	app.streamingLoader.LoadHARFileStreaming(app.filename)

	app.updateFocusStyles()
	app.updateBottomBar()

	return app.app.SetRoot(app.layout, true).Run()
}

// showStatusMessage shows a temporary status message
func (app *Application) showStatusMessage(msg string) {
	app.confirmationMessage = msg
	app.confirmationEnd = time.Now().Add(statusMessageDurationSec * time.Second)
}
