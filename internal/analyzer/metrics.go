package analyzer

// Metrics is the finalized result of one analysis run. Field names and nesting
// are consumed verbatim by the insight generator and by stored results, so they
// must stay stable.
type Metrics struct {
	TotalRequests int     `json:"totalRequests"`
	TotalSize     int64   `json:"totalSize"`
	TotalTime     float64 `json:"totalTime"`

	Primary  PrimaryMetrics  `json:"primary"`
	Selected SelectedMetrics `json:"selected"`

	// Timeseries has one point per analyzed entry, in input order.
	Timeseries []TimeseriesPoint `json:"timeseries"`

	RequestsByType map[string]int `json:"requestsByType"`
	StatusCodes    map[string]int `json:"statusCodes"`
	Domains        []string       `json:"domains"`

	HTTPMetrics      HTTPMetrics      `json:"httpMetrics"`
	WebSocketMetrics WebSocketMetrics `json:"websocketMetrics"`
}

// PrimaryMetrics holds the headline figures derived at finalization
type PrimaryMetrics struct {
	AvgResponseTime float64 `json:"avgResponseTime"`
	ErrorRate       float64 `json:"errorRate"`
	TotalSize       int64   `json:"totalSize"`
	TotalRequests   int     `json:"totalRequests"`
}

// SelectedMetrics holds the entries worth calling out individually
type SelectedMetrics struct {
	SlowestRequests []SlowRequest  `json:"slowestRequests"`
	LargestRequests []LargeRequest `json:"largestRequests"`
	ErrorCount      int            `json:"errorCount"`
}

// TimeseriesPoint describes one entry on the capture timeline
type TimeseriesPoint struct {
	Timestamp    string  `json:"timestamp"`
	ElapsedTime  float64 `json:"elapsed_time"`
	Size         int64   `json:"size"`
	ResourceType string  `json:"resource_type"`
}

// SlowRequest is an HTTP entry whose elapsed time exceeded the slow threshold
type SlowRequest struct {
	URL  string  `json:"url"`
	Time float64 `json:"time"`
	Type string  `json:"type"`
}

// LargeRequest is an HTTP entry whose response body exceeded the large threshold
type LargeRequest struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// SecurityIssue flags a request that deserves a security review
type SecurityIssue struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// SecurityIssueInsecureProtocol marks requests not made over https
const SecurityIssueInsecureProtocol = "insecure-protocol"

// HTTPMetrics aggregates entries classified as plain HTTP exchanges
type HTTPMetrics struct {
	Requests        int             `json:"requests"`
	TotalSize       int64           `json:"totalSize"`
	TotalTime       float64         `json:"totalTime"`
	AvgResponseTime float64         `json:"avgResponseTime"`
	StatusCodes     map[string]int  `json:"statusCodes"`
	CacheHits       int             `json:"cacheHits"`
	CacheMisses     int             `json:"cacheMisses"`
	SlowestRequests []SlowRequest   `json:"slowestRequests"`
	LargestRequests []LargeRequest  `json:"largestRequests"`
	SecurityIssues  []SecurityIssue `json:"securityIssues"`
}

// WebSocketMetrics aggregates entries classified as WebSocket sessions
type WebSocketMetrics struct {
	Connections        int            `json:"connections"`
	MessageCount       int            `json:"messageCount"`
	SentMessages       int            `json:"sentMessages"`
	ReceivedMessages   int            `json:"receivedMessages"`
	MessageTypes       map[string]int `json:"messageTypes"`
	TotalMessageSize   int64          `json:"totalMessageSize"`
	AverageMessageSize float64        `json:"averageMessageSize"`
	ConnectionDuration float64        `json:"connectionDuration"`
	Protocols          []string       `json:"protocols"`
}

// Analysis pairs the metrics with the per-entry warnings raised while computing them
type Analysis struct {
	Metrics  Metrics   `json:"metrics"`
	Warnings []Warning `json:"warnings"`
}

func newMetrics() Metrics {
	return Metrics{
		Timeseries:     []TimeseriesPoint{},
		RequestsByType: map[string]int{},
		StatusCodes:    map[string]int{},
		Domains:        []string{},
		Selected: SelectedMetrics{
			SlowestRequests: []SlowRequest{},
			LargestRequests: []LargeRequest{},
		},
		HTTPMetrics: HTTPMetrics{
			StatusCodes:     map[string]int{},
			SlowestRequests: []SlowRequest{},
			LargestRequests: []LargeRequest{},
			SecurityIssues:  []SecurityIssue{},
		},
		WebSocketMetrics: WebSocketMetrics{
			MessageTypes: map[string]int{},
			Protocols:    []string{},
		},
	}
}
