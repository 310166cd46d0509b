package reportdex

import (
	"context"
	"time"

	healthuc "github.com/kailas-cloud/reportdex/internal/usecase/health"
)

// HealthStatus is the aggregated health of the embedded service.
// Status is "ok", "degraded" (cache tier failing, results come from the store)
// or "error" (document store failing).
type HealthStatus struct {
	Status string
	Checks map[string]string // "database", "cache" → "ok"/"error"
}

// OK reports whether searches can be served.
func (h HealthStatus) OK() bool {
	return h.Status != string(healthuc.Unhealthy)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Health checks the document store and, when configured, the redis tier.
func (c *Client) Health(ctx context.Context) (h HealthStatus) {
	start := time.Now()
	report := c.healthSvc.Check(ctx)

	h = HealthStatus{
		Status: string(report.Status),
		Checks: make(map[string]string, len(report.Checks)),
	}
	for name, res := range report.Checks {
		h.Checks[name] = string(res)
	}
	c.obs.observe("health", start, false, nil)
	return h
}
