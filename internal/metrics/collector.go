package metrics

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
)

// Collector accumulates one request's metrics record. It is owned by a
// single request goroutine and is not safe for concurrent use; the sinks
// behind it are.
type Collector struct {
	rec     domain.RequestMetrics
	started time.Time
	steps   map[string]time.Time
}

// StartRequest opens a fresh record stamped with a unique request id.
func StartRequest(userID string) *Collector {
	now := time.Now()
	return &Collector{
		rec: domain.RequestMetrics{
			RequestID: fmt.Sprintf("%s_%s", userID, uuid.NewString()),
			UserID:    userID,
			Timestamp: now.Format(time.RFC3339),
		},
		started: now,
		steps:   make(map[string]time.Time),
	}
}

// Record exposes the in-progress record for the pipeline to fill in.
func (c *Collector) Record() *domain.RequestMetrics {
	return &c.rec
}

func (c *Collector) StartStep(name string) {
	c.steps[name] = time.Now()
}

// EndStep returns the elapsed seconds for a step, zero if it was never
// started.
func (c *Collector) EndStep(name string) float64 {
	started, ok := c.steps[name]
	if !ok {
		return 0
	}
	return time.Since(started).Seconds()
}

// Finalize stamps the total processing time and returns the finished record.
func (c *Collector) Finalize() domain.RequestMetrics {
	c.rec.ProcessingTimeSec = time.Since(c.started).Seconds()
	return c.rec
}
