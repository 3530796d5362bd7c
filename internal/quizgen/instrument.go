package quizgen

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InstrumentCompleter wraps a completer so that every provider call records
// its duration on observer, success or failure.
func InstrumentCompleter(next Completer, observer prometheus.Observer) Completer {
	return &instrumentedCompleter{next: next, observer: observer}
}

type instrumentedCompleter struct {
	next     Completer
	observer prometheus.Observer
}

func (c *instrumentedCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()
	text, err := c.next.Complete(ctx, system, prompt)
	c.observer.Observe(time.Since(start).Seconds())
	return text, err
}
