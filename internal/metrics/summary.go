package metrics

import "sync"

// Summary pairs the raw results of a metric computation with a deferred
// chart rendering. The chart is never rendered at construction: the render
// function runs on the first Visualize call and the result is memoized.
type Summary struct {
	// Data is the decoded server results in the metric's natural shape
	// (a distribution map, or the mention structure for consistency).
	Data any

	// Description is the server-provided description of the metric.
	Description string

	render func() string
	once   sync.Once
	chart  string
}

// NewSummary builds a Summary around data and a render thunk. render must
// not be invoked here.
func NewSummary(data any, description string, render func() string) *Summary {
	return &Summary{
		Data:        data,
		Description: description,
		render:      render,
	}
}

// Visualize renders the chart for this summary. Rendering happens at most
// once; subsequent calls return the cached chart.
func (s *Summary) Visualize() string {
	s.once.Do(func() {
		if s.render != nil {
			s.chart = s.render()
		}
	})
	return s.chart
}
